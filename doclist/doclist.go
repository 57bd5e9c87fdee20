// Package doclist implements the doclist file (CIdoclist.bin) described in
// spec.md §6: the DocID -> primary key mapping, stored as a NUL-terminated
// primary-key blob plus a parallel offset array, loaded once per index and
// held read-only for the lifetime of a query processor.
//
// The load-and-warm shape here is grounded in the reference corpus's
// compactindexsized/query.go Open, including its pattern of fadvise'ing the
// backing file for random access and then touching every page up front so
// the first query isn't the one paying for page faults.
package doclist

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"
	"k8s.io/klog/v2"
)

// DocList is the loaded, read-only primary-key table.
type DocList struct {
	keys    []byte   // NUL-terminated primary keys, concatenated in DocID order
	offsets []uint64 // offsets[i] is the start of DocID i+1's key in keys
}

// Build constructs a DocList from primary keys in DocID order: keys[0]
// belongs to DocID 1, the first real document, and so on. The reserved
// DocID 0 has no entry.
func Build(primaryKeys []string) *DocList {
	var blob bytes.Buffer
	offsets := make([]uint64, len(primaryKeys))
	for i, k := range primaryKeys {
		offsets[i] = uint64(blob.Len())
		blob.WriteString(k)
		blob.WriteByte(0)
	}
	return &DocList{keys: blob.Bytes(), offsets: offsets}
}

// MarshalBinary encodes the doclist file: the NUL-terminated key blob,
// followed by the offset array, followed by a trailing little-endian
// document count (spec.md §6).
func (d *DocList) MarshalBinary() []byte {
	var buf bytes.Buffer
	buf.Write(d.keys)
	var tmp [8]byte
	for _, off := range d.offsets {
		binary.LittleEndian.PutUint64(tmp[:], off)
		buf.Write(tmp[:])
	}
	binary.LittleEndian.PutUint64(tmp[:], uint64(len(d.offsets)))
	buf.Write(tmp[:])
	return buf.Bytes()
}

type fileDescriptor interface {
	Fd() uintptr
	Name() string
}

// Open reads a doclist file from stream, fadvise'ing it for random access
// and warming every page before returning, matching the warmup strategy
// the reference corpus's index loader uses.
//
// The on-disk layout (spec.md §6) is the key blob, then the offset array,
// then a trailing document count - the count must be read last to learn
// where the offset array (and therefore the key blob) begins.
func Open(stream io.ReaderAt) (*DocList, error) {
	if f, ok := stream.(fileDescriptor); ok {
		if err := unix.Fadvise(int(f.Fd()), 0, 0, unix.FADV_RANDOM); err != nil {
			klog.Warningf("doclist: fadvise(RANDOM) failed for %s: %v", f.Name(), err)
		}
	}

	size, err := streamSize(stream)
	if err != nil {
		return nil, fmt.Errorf("doclist: %w", err)
	}
	if size < 8 {
		return nil, fmt.Errorf("doclist: file too small for a document count")
	}

	var countBuf [8]byte
	if _, err := stream.ReadAt(countBuf[:], size-8); err != nil {
		return nil, fmt.Errorf("doclist: read document count: %w", err)
	}
	count := binary.LittleEndian.Uint64(countBuf[:])

	offsetsSize := int64(count) * 8
	offsetsStart := size - 8 - offsetsSize
	if offsetsStart < 0 {
		return nil, fmt.Errorf("doclist: offset array runs before start of file")
	}

	offsetsBuf := make([]byte, offsetsSize)
	if offsetsSize > 0 {
		if _, err := stream.ReadAt(offsetsBuf, offsetsStart); err != nil {
			return nil, fmt.Errorf("doclist: read offset array: %w", err)
		}
	}
	offsets := make([]uint64, count)
	for i := range offsets {
		offsets[i] = binary.LittleEndian.Uint64(offsetsBuf[i*8:])
	}

	keysLen := offsetsStart
	keys := make([]byte, keysLen)
	if keysLen > 0 {
		if _, err := stream.ReadAt(keys, 0); err != nil {
			return nil, fmt.Errorf("doclist: read key blob: %w", err)
		}
	}

	klog.V(2).Infof("doclist: loaded %d primary keys", count)
	return &DocList{keys: keys, offsets: offsets}, nil
}

// streamSize determines the total byte length backing stream, so Open can
// locate the trailing count and offset array without a separately stored
// length. *io.SectionReader and *os.File report their own size directly;
// anything else (tests typically pass a *bytes.Reader) is read fully once
// to measure it.
func streamSize(stream io.ReaderAt) (int64, error) {
	switch s := stream.(type) {
	case *io.SectionReader:
		return s.Size(), nil
	case *os.File:
		fi, err := s.Stat()
		if err != nil {
			return 0, err
		}
		return fi.Size(), nil
	default:
		all, err := io.ReadAll(io.NewSectionReader(stream, 0, 1<<40))
		if err != nil {
			return 0, err
		}
		return int64(len(all)), nil
	}
}

// Len returns the number of documents.
func (d *DocList) Len() int { return len(d.offsets) }

// PrimaryKey returns the primary key string stored at row docID of the
// offset array. Row 0 is the first real document, so the key of DocID d
// is at row d-1.
func (d *DocList) PrimaryKey(docID uint32) (string, error) {
	if int(docID) >= len(d.offsets) {
		return "", fmt.Errorf("doclist: docID %d out of range (have %d documents)", docID, len(d.offsets))
	}
	start := d.offsets[docID]
	end := bytes.IndexByte(d.keys[start:], 0)
	if end < 0 {
		return "", fmt.Errorf("doclist: unterminated primary key at docID %d", docID)
	}
	return string(d.keys[start : start+uint64(end)]), nil
}
