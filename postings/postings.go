// Package postings implements the postings file (CIpostings.bin) described
// in spec.md §6: a codec tag, an embedded metadata blob, and then, for
// each term in vocabulary order, an offsets array, a zero-terminated block
// of quantum headers, and the codec-encoded payloads themselves.
//
// The "contiguous fixed headers in front of variable-length payload runs,
// with an explicit terminator" shape is grounded in the reference corpus's
// store/index/recordlist.go (ReadRecord / EncodeKeyPosition), the closest
// structural parallel available for this kind of length-prefixed,
// sequentially scanned binary layout.
package postings

import (
	"encoding/binary"
)

// QuantumHeader is the fixed-width per-quantum record: impact, absolute
// payload start/end offsets, and the number of integers (docIDs) the
// payload decodes to.
type QuantumHeader struct {
	Impact       uint16
	PayloadStart uint64
	PayloadEnd   uint64
	IntegerCount uint32
}

const headerSize = 2 + 8 + 8 + 4 // 22 bytes, no implicit padding

func (h QuantumHeader) isZero() bool {
	return h.Impact == 0 && h.PayloadStart == 0 && h.PayloadEnd == 0 && h.IntegerCount == 0
}

func marshalHeader(h QuantumHeader) []byte {
	buf := make([]byte, headerSize)
	binary.LittleEndian.PutUint16(buf[0:], h.Impact)
	binary.LittleEndian.PutUint64(buf[2:], h.PayloadStart)
	binary.LittleEndian.PutUint64(buf[10:], h.PayloadEnd)
	binary.LittleEndian.PutUint32(buf[18:], h.IntegerCount)
	return buf
}

func unmarshalHeader(buf []byte) QuantumHeader {
	return QuantumHeader{
		Impact:       binary.LittleEndian.Uint16(buf[0:]),
		PayloadStart: binary.LittleEndian.Uint64(buf[2:]),
		PayloadEnd:   binary.LittleEndian.Uint64(buf[10:]),
		IntegerCount: binary.LittleEndian.Uint32(buf[18:]),
	}
}

// Quantum is one (impact, docID-run) pair as supplied to the builder.
// DocIDs must already be sorted strictly increasing (spec.md invariant i);
// the builder takes care of delta-encoding before handing the run to the
// codec (except for D0-tagged codecs, which receive absolute values).
type Quantum struct {
	Impact uint16
	DocIDs []uint32
}

func pad(n, alignment int) int {
	if alignment <= 1 {
		return n
	}
	rem := n % alignment
	if rem == 0 {
		return n
	}
	return n + (alignment - rem)
}
