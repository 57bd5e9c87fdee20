package postings

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/jass-ir/jass/codec"
	"github.com/jass-ir/jass/indexmeta"
)

const checksumTrailerSize = 8

// ErrCorrupt marks on-disk structural violations: bad tag, impact
// non-monotonicity, inconsistent offsets — always fatal per spec.md §7.
type ErrCorrupt struct{ Reason string }

func (e *ErrCorrupt) Error() string { return "postings: corrupt: " + e.Reason }

// File is a read-only view over an opened postings file's bytes.
type File struct {
	bytes   []byte
	Codec   codec.Codec
	Meta    indexmeta.Meta
	metaEnd int // byte offset, relative to bytes, where term blocks start
}

// Open parses the codec tag and metadata blob from raw and returns a File
// ready for ReadTerm calls. raw is held, not copied; callers own its
// lifetime (typically the full contents of CIpostings.bin).
func Open(raw []byte) (*File, error) {
	if len(raw) < 1+checksumTrailerSize {
		return nil, &ErrCorrupt{"postings file is empty"}
	}
	body := raw[:len(raw)-checksumTrailerSize]
	wantSum := binary.LittleEndian.Uint64(raw[len(raw)-checksumTrailerSize:])
	if gotSum := xxhash.Sum64(body); gotSum != wantSum {
		return nil, &ErrCorrupt{fmt.Sprintf("checksum mismatch: file has %x, computed %x", wantSum, gotSum)}
	}
	raw = body

	c, err := codec.ByTag(raw[0])
	if err != nil {
		return nil, &ErrCorrupt{err.Error()}
	}
	f := &File{bytes: raw, Codec: c}
	// The metadata blob's own length is self-describing (a 1-byte kv
	// count followed by length-prefixed pairs); UnmarshalWithDecoder stops
	// naturally, so the first term's offsets array starts at the byte
	// position right after. We replay the same decode to learn that
	// position rather than storing it separately.
	n, err := f.Meta.UnmarshalCounting(raw[1:])
	if err != nil {
		return nil, &ErrCorrupt{fmt.Sprintf("metadata blob: %v", err)}
	}
	f.metaEnd = 1 + n
	return f, nil
}

// ReadTerm reads the kt quantum headers for the term whose vocabulary entry
// carries the given postingsOffset, validates the zero terminator and the
// descending-impact ordering invariant (spec.md §4.2/§8), and returns the
// headers in on-disk order (the order Builder.WriteTerm was given, which
// this check confirms is non-increasing in impact).
func (f *File) ReadTerm(postingsOffset uint64, kt int) ([]QuantumHeader, error) {
	if kt <= 0 {
		return nil, &ErrCorrupt{"term has zero quanta"}
	}
	offsetsArraySize := kt * 8
	headerBlockStart := int(postingsOffset) + offsetsArraySize
	headerBlockSize := (kt + 1) * headerSize
	if headerBlockStart < 0 || headerBlockStart+headerBlockSize > len(f.bytes) {
		return nil, &ErrCorrupt{"term header block runs past end of file"}
	}

	headers := make([]QuantumHeader, kt)
	pos := headerBlockStart
	var prevImpact uint16
	for i := 0; i < kt; i++ {
		h := unmarshalHeader(f.bytes[pos : pos+headerSize])
		if h.isZero() {
			return nil, &ErrCorrupt{"zero terminator found before kt headers were read"}
		}
		if h.PayloadEnd < h.PayloadStart {
			return nil, &ErrCorrupt{"quantum payload end precedes start"}
		}
		if i > 0 && h.Impact > prevImpact {
			return nil, &ErrCorrupt{"quantum impacts are not non-increasing"}
		}
		headers[i] = h
		prevImpact = h.Impact
		pos += headerSize
	}
	terminator := unmarshalHeader(f.bytes[pos : pos+headerSize])
	if !terminator.isZero() {
		return nil, &ErrCorrupt{"missing zero terminator after kt headers"}
	}
	return headers, nil
}

// DecodeQuantum decodes a single quantum's payload given its header,
// reversing the codec's own encoding and the delta transform applied by
// Builder.WriteTerm. dst must have length >= h.IntegerCount; the returned
// Quantum's DocIDs alias dst[:h.IntegerCount]. Per spec.md §5, the caller
// (query.Context) owns this scratch buffer and reuses it across quanta and
// across queries instead of handing DecodeQuantum a fresh allocation.
func (f *File) DecodeQuantum(h QuantumHeader, dst []uint32) (Quantum, error) {
	if h.PayloadEnd > uint64(len(f.bytes)) {
		return Quantum{}, &ErrCorrupt{"quantum payload runs past end of file"}
	}
	if uint32(len(dst)) < h.IntegerCount {
		return Quantum{}, fmt.Errorf("postings: decode quantum: dst has room for %d integers, need %d", len(dst), h.IntegerCount)
	}
	docIDs := dst[:h.IntegerCount]
	payload := f.bytes[h.PayloadStart:h.PayloadEnd]
	if _, err := f.Codec.Decode(payload, int(h.IntegerCount), docIDs); err != nil {
		return Quantum{}, fmt.Errorf("postings: decode quantum payload: %w", err)
	}
	DeltaDecode(docIDs, f.Codec.Tag())
	return Quantum{Impact: h.Impact, DocIDs: docIDs}, nil
}
