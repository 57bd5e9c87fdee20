package codec

// variableByte is the mandatory fallback codec: big-endian base-128 with
// high-bit continuation. Every byte except the last has its high bit clear;
// the terminating byte has its high bit set.
type variableByte struct{}

func init() {
	Register(variableByte{})
}

func (variableByte) Tag() byte    { return 'c' }
func (variableByte) Name() string { return "variable-byte" }
func (variableByte) Alignment() int { return 1 }

func (variableByte) Encode(dst []byte, src []uint32) ([]byte, error) {
	for _, v := range src {
		dst = appendVarByte(dst, v)
	}
	return dst, nil
}

// appendVarByte appends the variable-byte encoding of v to dst.
func appendVarByte(dst []byte, v uint32) []byte {
	// Emit 7-bit groups from least to most significant, then reverse so the
	// most significant group comes first (the wire format is big-endian).
	var tmp [5]byte
	n := 0
	for {
		tmp[n] = byte(v & 0x7f)
		v >>= 7
		n++
		if v == 0 {
			break
		}
	}
	for i := n - 1; i >= 0; i-- {
		b := tmp[i]
		if i == 0 {
			b |= 0x80
		}
		dst = append(dst, b)
	}
	return dst
}

func (variableByte) Decode(src []byte, n int, dst []uint32) (int, error) {
	pos := 0
	for i := 0; i < n; i++ {
		var v uint32
		for {
			if pos >= len(src) {
				return pos, errShortRead
			}
			b := src[pos]
			pos++
			v = (v << 7) | uint32(b&0x7f)
			if b&0x80 != 0 {
				break
			}
		}
		dst[i] = v
	}
	return pos, nil
}
