// Package codec implements the pluggable integer codec family JASS uses to
// compress quantum payloads (runs of docID gaps). Every codec is registered
// under the single-byte tag that the postings file header stores; mixing
// codecs within one index is a fatal error, so the tag alone determines the
// decoder used at load time.
package codec

import "fmt"

// Codec encodes and decodes runs of non-negative 32-bit integers. Encode
// operates on the values the caller supplies directly (the postings builder
// is responsible for delta-encoding beforehand, except where a codec's own
// delta handling is documented as internal, e.g. QMX-D4).
type Codec interface {
	// Tag is the single byte stored in the postings file header that
	// identifies this codec.
	Tag() byte

	// Name is a short human-readable identifier, used in log messages and
	// CLI flag help text.
	Name() string

	// Encode appends the encoding of src to dst and returns the result.
	Encode(dst []byte, src []uint32) ([]byte, error)

	// Decode reads exactly n integers from src into dst[:n]. dst must have
	// length >= n. It returns the number of bytes of src consumed.
	Decode(src []byte, n int, dst []uint32) (int, error)

	// Alignment is the byte boundary payloads of this codec must be padded
	// to (1 for byte-aligned codecs, 16 for QMX's 128-bit blocks).
	Alignment() int
}

var registry = map[byte]Codec{}

// Register adds a codec to the package-level tag registry. Called from each
// codec's init().
func Register(c Codec) {
	if _, exists := registry[c.Tag()]; exists {
		panic(fmt.Sprintf("codec: duplicate registration for tag %q", c.Tag()))
	}
	registry[c.Tag()] = c
}

// ByTag returns the codec registered for tag, or an error if none is.
func ByTag(tag byte) (Codec, error) {
	c, ok := registry[tag]
	if !ok {
		return nil, fmt.Errorf("codec: unknown tag %q", tag)
	}
	return c, nil
}

// Tags lists every registered tag byte, in registration order is not
// guaranteed; callers that need a stable order should sort the result.
func Tags() []byte {
	tags := make([]byte, 0, len(registry))
	for t := range registry {
		tags = append(tags, t)
	}
	return tags
}
