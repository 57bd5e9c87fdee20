package postings

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/jass-ir/jass/codec"
	"github.com/jass-ir/jass/indexmeta"
)

// Builder accumulates the postings file body. Call WriteTerm once per term
// in the vocabulary's sorted order, then Finish to obtain the complete file
// contents (including the leading codec tag byte and metadata blob).
type Builder struct {
	codec codec.Codec
	buf   bytes.Buffer
	meta  indexmeta.Meta
}

// NewBuilder starts a postings file using c for every term's payloads. Per
// spec.md §4.1, mixing codecs within one index is a fatal error, so a
// Builder is single-codec for its whole lifetime.
func NewBuilder(c codec.Codec, collectionSize uint64, ceiling uint16) (*Builder, error) {
	b := &Builder{codec: c}
	if err := b.meta.AddUint64(indexmeta.KeyCollectionSize, collectionSize); err != nil {
		return nil, err
	}
	if err := b.meta.AddUint64(indexmeta.KeyCeiling, uint64(ceiling)); err != nil {
		return nil, err
	}
	b.buf.WriteByte(c.Tag())
	metaBytes := b.meta.Bytes()
	b.buf.Write(metaBytes)
	return b, nil
}

// WriteTerm writes quanta (already sorted by descending impact, per
// spec.md §4.2 step 2) for one term and returns the absolute file offset
// of the term's postings block — the value stored as PostingsOffset in the
// term's vocabulary entry — and the quantum count k_t.
func (b *Builder) WriteTerm(quanta []Quantum) (postingsOffset uint64, kt int, err error) {
	postingsOffset = uint64(b.buf.Len())
	kt = len(quanta)

	// Pass 1: encode every quantum's payload into scratch buffers so the
	// eventual payload offsets (needed by the headers, which precede the
	// payloads) are known up front.
	payloads := make([][]byte, kt)
	for i, q := range quanta {
		values := deltaEncode(q.DocIDs, b.codec.Tag())
		enc, err := b.codec.Encode(nil, values)
		if err != nil {
			return 0, 0, fmt.Errorf("postings: encode term quantum %d: %w", i, err)
		}
		payloads[i] = enc
	}

	offsetsArraySize := kt * 8
	headerBlockSize := (kt + 1) * headerSize // +1 for the zero terminator
	payloadAreaStart := postingsOffset + uint64(offsetsArraySize) + uint64(headerBlockSize)

	headers := make([]QuantumHeader, kt)
	offset := payloadAreaStart
	for i, q := range quanta {
		aligned := pad(int(offset-payloadAreaStart), b.codec.Alignment())
		start := payloadAreaStart + uint64(aligned)
		end := start + uint64(len(payloads[i]))
		headers[i] = QuantumHeader{
			Impact:       q.Impact,
			PayloadStart: start,
			PayloadEnd:   end,
			IntegerCount: uint32(len(q.DocIDs)),
		}
		offset = end
	}

	// (i) offsets array: the absolute payload-start offset of each quantum,
	// written separately from the headers so a reader can scan straight to
	// a quantum's bytes without decoding every header field.
	for _, h := range headers {
		var tmp [8]byte
		putUint64LE(tmp[:], h.PayloadStart)
		b.buf.Write(tmp[:])
	}
	// (ii) headers, (iii) zero terminator.
	for _, h := range headers {
		b.buf.Write(marshalHeader(h))
	}
	b.buf.Write(marshalHeader(QuantumHeader{}))

	// (iv) padding then (v) payloads, each individually aligned as computed
	// above.
	pos := payloadAreaStart
	for i, h := range headers {
		for pos < h.PayloadStart {
			b.buf.WriteByte(0)
			pos++
		}
		b.buf.Write(payloads[i])
		pos += uint64(len(payloads[i]))
	}

	return postingsOffset, kt, nil
}

// Finish returns the complete postings file contents, with a trailing
// 8-byte little-endian xxhash64 checksum of everything written before it.
// The checksum lives outside the region any PayloadStart/PayloadEnd offset
// ever points into, so appending it never disturbs those absolute
// offsets; Open verifies it before trusting the rest of the file.
func (b *Builder) Finish() []byte {
	body := b.buf.Bytes()
	sum := xxhash.Sum64(body)
	var trailer [8]byte
	binary.LittleEndian.PutUint64(trailer[:], sum)
	return append(body, trailer[:]...)
}

func putUint64LE(dst []byte, v uint64) {
	for i := 0; i < 8; i++ {
		dst[i] = byte(v >> (8 * uint(i)))
	}
}

// deltaEncode converts absolute, strictly increasing docIDs into the
// representation the codec expects: D1 gaps for every tag except the D0
// variant, which receives absolute values unchanged (spec.md §4.1/§4.5).
// The first D1 value is the first DocID minus 1; every value after that is
// the gap from its predecessor.
func deltaEncode(docIDs []uint32, tag byte) []uint32 {
	if tag == 'R' { // qmx-d0: no delta at all
		return docIDs
	}
	out := make([]uint32, len(docIDs))
	for i, d := range docIDs {
		if i == 0 {
			out[i] = d - 1
		} else {
			out[i] = d - docIDs[i-1]
		}
	}
	return out
}

// DeltaDecode reverses deltaEncode: given the codec's decoded D1 buffer, it
// recovers absolute docIDs by prefix-sum, skipping the step entirely for
// the D0-tagged codec whose buffer already holds absolute values.
func DeltaDecode(buf []uint32, tag byte) {
	if tag == 'R' {
		return
	}
	if len(buf) == 0 {
		return
	}
	buf[0] = buf[0] + 1
	for i := 1; i < len(buf); i++ {
		buf[i] = buf[i-1] + buf[i]
	}
}
