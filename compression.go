package sstable

import (
	"sync"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
)

// Compression is the compression codec
type Compression byte

func (c Compression) isValid() bool {
	return c < unknownCompression
}

// String implements fmt.Stringer.
func (c Compression) String() string {
	switch c {
	case ZstdCompression:
		return "zstd"
	case SnappyCompression:
		return "snappy"
	case NoCompression:
		return "none"
	}
	return "unknown"
}

// Supported compression codecs
const (
	ZstdCompression Compression = iota
	SnappyCompression
	NoCompression
	unknownCompression
)

// ParseCompression parses a codec name, as returned by String.
func ParseCompression(s string) (Compression, error) {
	for c := ZstdCompression; c < unknownCompression; c++ {
		if c.String() == s {
			return c, nil
		}
	}
	return unknownCompression, errors.Errorf("sstable: unknown compression %q", s)
}

func (c Compression) encode(dst, src []byte) ([]byte, error) {
	switch c {
	case ZstdCompression:
		enc, _, err := zstdCodecs()
		if err != nil {
			return nil, err
		}
		return enc.EncodeAll(src, dst[:0]), nil
	case SnappyCompression:
		return snappy.Encode(dst[:cap(dst)], src), nil
	case NoCompression:
		return append(dst[:0], src...), nil
	}
	return nil, errors.Errorf("sstable: bad compression codec %d", c)
}

// decode decodes src, using dst if it is large enough.
func (c Compression) decode(dst, src []byte) ([]byte, error) {
	switch c {
	case ZstdCompression:
		_, dec, err := zstdCodecs()
		if err != nil {
			return nil, err
		}
		return dec.DecodeAll(src, dst[:0])
	case SnappyCompression:
		return snappy.Decode(dst[:cap(dst)], src)
	case NoCompression:
		return src, nil
	}
	return nil, errors.Errorf("sstable: bad compression codec %d", c)
}

// --------------------------------------------------------------------

// zstd encoders and decoders are safe for concurrent EncodeAll/DecodeAll
// calls and expensive to create, they are shared by all blocks.
var zstdState struct {
	once sync.Once
	enc  *zstd.Encoder
	dec  *zstd.Decoder
	err  error
}

func zstdCodecs() (*zstd.Encoder, *zstd.Decoder, error) {
	zstdState.once.Do(func() {
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			zstdState.err = errors.Wrap(err, "sstable: init zstd encoder")
			return
		}
		dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
		if err != nil {
			zstdState.err = errors.Wrap(err, "sstable: init zstd decoder")
			return
		}
		zstdState.enc, zstdState.dec = enc, dec
	})
	return zstdState.enc, zstdState.dec, zstdState.err
}
