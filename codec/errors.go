package codec

import "errors"

// errShortRead is returned when a decoder runs out of source bytes before
// producing the requested number of integers. Per spec.md §7 this is an
// I/O-adjacent Corrupt condition and callers should treat it as fatal.
var errShortRead = errors.New("codec: short read decoding payload")
