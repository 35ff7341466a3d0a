package sstable

import (
	"math"

	"github.com/pkg/errors"
)

// ErrNotFound is returned by the reader when a key cannot be found.
var ErrNotFound = errors.New("sstable: not found")

// ErrTooLong is returned when a key or value exceeds the maximum length of 4GiB-1.
var ErrTooLong = errors.New("sstable: byte string too long")

// ErrTruncated is returned when data ends before a complete varint, block,
// footer or trailer could be read.
var ErrTruncated = errors.New("sstable: truncated input")

// ErrCorrupt is returned when data is structurally invalid.
var ErrCorrupt = errors.New("sstable: corrupt data")

var (
	errClosed    = errors.New("sstable: is closed")
	errReleased  = errors.New("sstable: iterator was released")
	errBlockFull = errors.New("sstable: would overflow non-empty block")
)

const (
	// DefaultBlockSize is the default target size of uncompressed block data.
	DefaultBlockSize = 1 << 16

	maxLen = math.MaxUint32

	trailerLen = 8
)

func checkLen(n int) error {
	if uint64(n) > maxLen {
		return ErrTooLong
	}
	return nil
}

// --------------------------------------------------------------------

// ByteString is a byte sequence with a length that fits into 32 bits.
type ByteString struct {
	b []byte
}

// CopyByteString returns a ByteString with a copy of p.
func CopyByteString(p []byte) (ByteString, error) {
	if err := checkLen(len(p)); err != nil {
		return ByteString{}, err
	}
	return copyByteString(p), nil
}

// copyByteString copies p, which must be known to fit.
func copyByteString(p []byte) ByteString {
	if p == nil {
		return ByteString{}
	}
	return ByteString{b: append(make([]byte, 0, len(p)), p...)}
}

// TakeByteString returns a ByteString that takes ownership of p.
// The caller must not modify p afterwards.
func TakeByteString(p []byte) (ByteString, error) {
	if err := checkLen(len(p)); err != nil {
		return ByteString{}, err
	}
	return ByteString{b: p}, nil
}

// Len returns the length.
func (s ByteString) Len() uint32 { return uint32(len(s.b)) }

// Bytes returns the underlying bytes, which must not be modified.
func (s ByteString) Bytes() []byte { return s.b }

// String implements fmt.Stringer.
func (s ByteString) String() string { return string(s.b) }
