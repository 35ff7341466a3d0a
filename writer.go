package sstable

import (
	"encoding/binary"
	"io"
)

// WriterOptions define writer specific options.
type WriterOptions struct {
	// BlockSize is the target uncompressed size in bytes of each table block.
	// Default: 64KiB.
	BlockSize int

	// The compression codec to use.
	// Default: ZstdCompression.
	Compression Compression
}

func (o *WriterOptions) norm() *WriterOptions {
	var oo WriterOptions
	if o != nil {
		oo = *o
	}

	if oo.BlockSize < 1 {
		oo.BlockSize = DefaultBlockSize
	}
	if !oo.Compression.isValid() {
		oo.Compression = ZstdCompression
	}

	return &oo
}

// Writer instances can write a table.
type Writer struct {
	w *trackingWriter
	o *WriterOptions

	meta  tableMeta
	block *Block

	closed bool
}

// NewWriter wraps a writer and returns a Writer. Keys must be appended
// in sorted order, this is not validated.
func NewWriter(w io.Writer, o *WriterOptions) *Writer {
	o = o.norm()
	return &Writer{
		w:     &trackingWriter{Writer: w},
		o:     o,
		block: NewBlock(o.BlockSize),
	}
}

// Append appends a key/value pair to the table.
func (w *Writer) Append(key, value []byte) error {
	if w.closed {
		return errClosed
	}

	err := w.block.Append(key, value)
	if err != errBlockFull {
		return err
	}

	if err := w.flush(); err != nil {
		return err
	}
	return w.block.Append(key, value)
}

// NumBlocks returns the number of blocks written so far.
func (w *Writer) NumBlocks() int { return len(w.meta.Bookends) }

// Size returns the number of bytes written so far.
func (w *Writer) Size() int64 { return w.w.written }

// Close flushes the last block and writes the footer. It does not close the
// underlying writer, but flushes it if it implements Flush() error.
func (w *Writer) Close() error {
	if w.closed {
		return errClosed
	}
	w.closed = true

	if !w.block.IsEmpty() {
		if err := w.flush(); err != nil {
			return err
		}
	}

	metaOffset := w.w.written
	if err := w.meta.writeTo(w.w); err != nil {
		return err
	}

	var tmp [trailerLen]byte
	binary.BigEndian.PutUint64(tmp[:], uint64(metaOffset))
	if _, err := w.w.Write(tmp[:]); err != nil {
		return err
	}

	if f, ok := w.w.Writer.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}

func (w *Writer) flush() error {
	if err := w.block.Drain(w.w, w.o.Compression); err != nil {
		return err
	}
	w.meta.Bookends = append(w.meta.Bookends, uint64(w.w.written))
	return nil
}

// --------------------------------------------------------------------

type trackingWriter struct {
	io.Writer
	written int64
}

func (w *trackingWriter) Write(p []byte) (int, error) {
	n, err := w.Writer.Write(p)
	w.written += int64(n)
	return n, err
}
