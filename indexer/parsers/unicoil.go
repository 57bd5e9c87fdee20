package parsers

import (
	"encoding/json"
	"fmt"
	"io"
)

// WeightedDocument is one uniCOIL record: a primary key plus pre-computed
// term weights. Unlike TREC/FASTA, uniCOIL input skips BM25 scoring
// entirely — the weights it supplies go straight into the quantizer.
type WeightedDocument struct {
	PrimaryKey string
	Weights    map[string]float64
}

type unicoilLine struct {
	ID     string             `json:"id"`
	Vector map[string]float64 `json:"vector"`
}

// ParseUniCOILJSON reads one JSON object per line, matching
// instream_document_unicoil_json's `{"id": ..., "vector": {...}}` record
// shape, expressed here with encoding/json rather than the original's
// hand-rolled tag scanner since the format is already well-formed JSON.
func ParseUniCOILJSON(r io.Reader) ([]WeightedDocument, error) {
	scanner := scanLines(r)
	var docs []WeightedDocument
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec unicoilLine
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("parsers: uniCOIL line %d: %w", lineNo, err)
		}
		docs = append(docs, WeightedDocument{PrimaryKey: rec.ID, Weights: rec.Vector})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("parsers: read uniCOIL input: %w", err)
	}
	return docs, nil
}
