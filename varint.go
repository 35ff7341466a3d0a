package sstable

import "github.com/pkg/errors"

// MaxVarintLen is the maximum length of a varint-encoded uint32.
const MaxVarintLen = 5

// VarintLen returns the number of bytes required to encode v.
func VarintLen(v uint32) int {
	switch {
	case v < 1<<7:
		return 1
	case v < 1<<14:
		return 2
	case v < 1<<21:
		return 3
	case v < 1<<28:
		return 4
	default:
		return 5
	}
}

// PutVarint encodes v into buf and returns the number of bytes written.
// It panics if buf is too small.
func PutVarint(buf []byte, v uint32) int {
	n := VarintLen(v)
	_ = buf[n-1]

	// n-1 leading one bits, a zero bit, then the lowest 8-n bits of v
	bits := uint(8 - n)
	prefix := byte(0xff << (bits + 1))
	buf[0] = prefix | byte(v)&byte(1<<bits-1)

	v >>= bits
	for i := 1; i < n; i++ {
		buf[i] = byte(v)
		v >>= 8
	}
	return n
}

// AppendVarint appends the encoding of v to dst.
func AppendVarint(dst []byte, v uint32) []byte {
	var tmp [MaxVarintLen]byte
	n := PutVarint(tmp[:], v)
	return append(dst, tmp[:n]...)
}

// ReadVarint decodes a varint from the start of buf and returns the value
// and the number of bytes consumed. Over-long encodings are accepted.
func ReadVarint(buf []byte) (uint32, int, error) {
	if len(buf) == 0 {
		return 0, 0, errors.Wrap(ErrTruncated, "sstable: empty varint")
	}

	first := buf[0]
	n := 1
	for n <= MaxVarintLen && first&(0x80>>uint(n-1)) != 0 {
		n++
	}
	if n > MaxVarintLen {
		return 0, 0, errors.Wrapf(ErrCorrupt, "sstable: invalid varint prefix %#x", first)
	}
	if len(buf) < n {
		return 0, 0, errors.Wrapf(ErrTruncated, "sstable: varint needs %d bytes, got %d", n, len(buf))
	}

	bits := uint(8 - n)
	v := uint64(first & byte(1<<bits-1))
	for i := 1; i < n; i++ {
		v |= uint64(buf[i]) << (bits + 8*uint(i-1))
	}
	if v > maxLen {
		return 0, 0, errors.Wrap(ErrCorrupt, "sstable: varint overflows 32 bits")
	}
	return uint32(v), n, nil
}
