// Package parsers reads the document formats the indexer accepts:
// TREC-tagged text, FASTA sequence records, and uniCOIL's pre-weighted
// JSON-lines format. None of these are part of the core query path; they
// only feed the indexer's term table before quantization.
//
// The TREC reader is grounded in instream_document_trec.cpp's
// start/end-tag scan, simplified from its streaming double-buffer
// implementation to a single in-memory pass since the indexer here reads
// whole collections rather than paging through them.
package parsers

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode"
)

// Document is one parsed TREC or FASTA record: its external primary key
// and the raw token stream extracted from its body.
type Document struct {
	PrimaryKey string
	Tokens     []string
}

// TRECOptions names the start/end tags the reader scans for; JASS's
// default TREC profile uses <DOC>/<DOCNO>.
type TRECOptions struct {
	DocumentTag   string // default "DOC"
	PrimaryKeyTag string // default "DOCNO"
}

func (o TRECOptions) withDefaults() TRECOptions {
	if o.DocumentTag == "" {
		o.DocumentTag = "DOC"
	}
	if o.PrimaryKeyTag == "" {
		o.PrimaryKeyTag = "DOCNO"
	}
	return o
}

// ParseTREC scans r for <DOC>...</DOC> records, extracts the primary key
// from the nested <DOCNO>...</DOCNO> tag, and tokenizes the remaining text.
func ParseTREC(r io.Reader, opts TRECOptions) ([]Document, error) {
	opts = opts.withDefaults()
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("parsers: read TREC input: %w", err)
	}
	text := string(raw)

	docStart := "<" + opts.DocumentTag + ">"
	docEnd := "</" + opts.DocumentTag + ">"
	keyStart := "<" + opts.PrimaryKeyTag + ">"
	keyEnd := "</" + opts.PrimaryKeyTag + ">"

	var docs []Document
	pos := 0
	for {
		start := strings.Index(text[pos:], docStart)
		if start < 0 {
			break
		}
		start += pos + len(docStart)
		end := strings.Index(text[start:], docEnd)
		if end < 0 {
			break
		}
		end += start
		body := text[start:end]
		pos = end + len(docEnd)

		keyBody := body
		var primaryKey string
		if ks := strings.Index(body, keyStart); ks >= 0 {
			ks += len(keyStart)
			if ke := strings.Index(body[ks:], keyEnd); ke >= 0 {
				primaryKey = strings.TrimSpace(body[ks : ks+ke])
				keyBody = body[:ks-len(keyStart)] + body[ks+ke+len(keyEnd):]
			}
		}
		docs = append(docs, Document{PrimaryKey: primaryKey, Tokens: Tokenize(keyBody)})
	}
	return docs, nil
}

// Tokenize lowercases text and splits it on runs of non-letter,
// non-digit characters, matching JASS's default ASCII word-break
// tokenizer behavior closely enough for indexing purposes.
func Tokenize(text string) []string {
	var tokens []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			cur.WriteRune(unicode.ToLower(r))
		} else {
			flush()
		}
	}
	flush()
	return tokens
}

// scanLines is a small helper other parsers in this package share for
// line-oriented formats.
func scanLines(r io.Reader) *bufio.Scanner {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 64*1024), 16*1024*1024)
	return s
}
