package sstable

import (
	"bytes"
	"encoding/binary"
	"io"
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// ReaderOptions define reader specific options.
type ReaderOptions struct {
	// The compression codec the table was written with.
	// Default: ZstdCompression.
	Compression Compression
}

func (o *ReaderOptions) norm() *ReaderOptions {
	var oo ReaderOptions
	if o != nil {
		oo = *o
	}

	if !oo.Compression.isValid() {
		oo.Compression = ZstdCompression
	}
	return &oo
}

// Reader instances can access blocks and iterate across data in tables.
// All reads are positional, a Reader is safe for concurrent use if the
// underlying io.ReaderAt is.
type Reader struct {
	r io.ReaderAt
	o *ReaderOptions

	meta       tableMeta
	metaOffset int64
}

// NewReader opens a reader.
func NewReader(r io.ReaderAt, size int64, o *ReaderOptions) (*Reader, error) {
	if size < trailerLen {
		return nil, errors.Wrapf(ErrTruncated, "sstable: table of %d bytes is too short", size)
	}

	// read trailer
	footerEnd := size - trailerLen
	var tmp [trailerLen]byte
	if err := readAt(r, tmp[:], footerEnd); err != nil {
		return nil, errors.Wrap(err, "sstable: read footer offset")
	}

	metaOffset := binary.BigEndian.Uint64(tmp[:])
	if metaOffset > uint64(footerEnd) {
		return nil, errors.Wrapf(ErrCorrupt, "sstable: footer offset %d is beyond %d", metaOffset, footerEnd)
	}

	// read footer
	buf := make([]byte, footerEnd-int64(metaOffset))
	if err := readAt(r, buf, int64(metaOffset)); err != nil {
		return nil, errors.Wrap(err, "sstable: read footer")
	}

	var meta tableMeta
	if err := meta.decode(buf); err != nil {
		return nil, err
	}
	if last := meta.lastBookend(); last > metaOffset {
		return nil, errors.Wrapf(ErrCorrupt, "sstable: last bookend %d overlaps footer at %d", last, metaOffset)
	}

	return &Reader{
		r:          r,
		o:          o.norm(),
		meta:       meta,
		metaOffset: int64(metaOffset),
	}, nil
}

// NumBlocks returns the number of stored blocks.
func (r *Reader) NumBlocks() int {
	return len(r.meta.Bookends)
}

// BlockRange returns the byte range [start, end) of the n-th compressed block.
func (r *Reader) BlockRange(bpos int) (start, end int64, ok bool) {
	if bpos < 0 || bpos >= len(r.meta.Bookends) {
		return 0, 0, false
	}
	if bpos > 0 {
		start = int64(r.meta.Bookends[bpos-1])
	}
	return start, int64(r.meta.Bookends[bpos]), true
}

// ReadCompressedBlock reads the n-th block without decompressing it.
// It returns nil if bpos is out of range.
func (r *Reader) ReadCompressedBlock(bpos int) (CompressedBlock, error) {
	start, end, ok := r.BlockRange(bpos)
	if !ok {
		return nil, nil
	}

	raw := make([]byte, end-start)
	if err := readAt(r.r, raw, start); err != nil {
		return nil, errors.Wrapf(err, "sstable: read block %d", bpos)
	}
	return CompressedBlock(raw), nil
}

// ReadBlock reads and decompresses the n-th block.
// It returns nil if bpos is out of range. Blocks may be released
// once no longer needed.
func (r *Reader) ReadBlock(bpos int) (*Block, error) {
	start, end, ok := r.BlockRange(bpos)
	if !ok {
		return nil, nil
	}

	raw := fetchBuffer(int(end - start))
	if err := readAt(r.r, raw, start); err != nil {
		releaseBuffer(raw)
		return nil, errors.Wrapf(err, "sstable: read block %d", bpos)
	}

	var plain []byte
	if c := r.o.Compression; c == NoCompression {
		plain = raw
	} else {
		defer releaseBuffer(raw)

		var err error
		if plain, err = c.decode(fetchBuffer(0), raw); err != nil {
			return nil, errors.Wrapf(err, "sstable: decompress block %d", bpos)
		}
	}

	block, err := parseBlock(plain)
	if err != nil {
		releaseBuffer(plain)
		return nil, errors.Wrapf(err, "sstable: block %d", bpos)
	}
	block.pooled = plain
	return block, nil
}

// Iter returns an iterator over all entries of the table.
func (r *Reader) Iter() *Iterator {
	return &Iterator{r: r}
}

// Seek returns an iterator starting at the position >= key.
func (r *Reader) Seek(key []byte) (*Iterator, error) {
	var (
		seen    *Block
		seenPos = -1
		err     error
	)

	bpos := sort.Search(r.NumBlocks(), func(i int) bool {
		if err != nil {
			return true
		}

		var b *Block
		if b, err = r.ReadBlock(i); err != nil {
			return true
		}
		seen.Release()
		seen, seenPos = b, i
		if b.IsEmpty() {
			return false
		}

		last, _, e := b.entryAt(b.Len() - 1)
		if e != nil {
			err = e
			return true
		}
		return bytes.Compare(last, key) >= 0
	})
	if err != nil {
		seen.Release()
		return nil, err
	}

	iter := &Iterator{r: r, next: bpos}
	if seenPos == bpos {
		iter.setBlock(seen)
		iter.next++
	} else {
		seen.Release()
		if !iter.nextBlock() {
			return iter, iter.err
		}
	}

	// skip entries within the block
	b := iter.block
	epos := sort.Search(b.Len(), func(i int) bool {
		if err != nil {
			return true
		}

		var k []byte
		if k, _, err = b.entryAt(i); err != nil {
			return true
		}
		return bytes.Compare(k, key) >= 0
	})
	if err != nil {
		iter.Release()
		return nil, err
	}
	iter.bi.pos = epos
	return iter, nil
}

// Append retrieves a single value for a key and appends it to dst.
// It may return an ErrNotFound error.
func (r *Reader) Append(dst []byte, key []byte) ([]byte, error) {
	iter, err := r.Seek(key)
	if err != nil {
		return dst, err
	}
	defer iter.Release()

	if !iter.Next() {
		if err := iter.Err(); err != nil {
			return dst, err
		}
		return dst, ErrNotFound
	}
	if !bytes.Equal(iter.Key(), key) {
		return dst, ErrNotFound
	}
	return append(dst, iter.Value()...), nil
}

// Get is a shortcut for Append(nil, key).
// It may return an ErrNotFound error.
func (r *Reader) Get(key []byte) ([]byte, error) {
	return r.Append(nil, key)
}

// readAt reads exactly len(p) bytes at off.
func readAt(r io.ReaderAt, p []byte, off int64) error {
	n, err := r.ReadAt(p, off)
	if n == len(p) {
		return nil
	}
	if err == nil || err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	if err == io.ErrUnexpectedEOF {
		return errors.Wrapf(ErrTruncated, "sstable: read %d of %d bytes at %d", n, len(p), off)
	}
	return err
}

// --------------------------------------------------------------------

// Iterator is a convenience wrapper around blocks which can (forward-)
// iterate over keys across block boundaries.
type Iterator struct {
	r *Reader

	block *Block
	bi    BlockIterator
	next  int // next block position

	err error
}

// Next advances the cursor to the next entry and returns true if successful.
// Once exhausted, it keeps returning false.
func (i *Iterator) Next() bool {
	if i.err != nil {
		return false
	}

	for {
		if i.block != nil {
			if i.bi.Next() {
				return true
			}
			if i.err = i.bi.Err(); i.err != nil {
				return false
			}
		}
		if !i.nextBlock() {
			return false
		}
	}
}

// Key returns the key of the current entry. Keys point into the current
// block and must be copied if used beyond the next cursor move.
func (i *Iterator) Key() []byte { return i.bi.Key() }

// Value returns the value of the current entry. Values point into the current
// block and must be copied if used beyond the next cursor move.
func (i *Iterator) Value() []byte { return i.bi.Value() }

// Entry returns copies of the current key and value, which remain
// valid after the cursor moves.
func (i *Iterator) Entry() (key, value ByteString) { return i.bi.Entry() }

// Err exposes iterator errors, if any.
func (i *Iterator) Err() error { return i.err }

// Release releases the iterator and frees up resources. The iterator must not be used
// after this method is called.
func (i *Iterator) Release() {
	i.setBlock(nil)
	i.err = errReleased
}

func (i *Iterator) nextBlock() bool {
	block, err := i.r.ReadBlock(i.next)
	if err != nil {
		i.err = err
	}
	i.setBlock(block)
	if block == nil {
		return false
	}

	i.next++
	return true
}

// setBlock releases the current block and positions the cursor
// at the start of b.
func (i *Iterator) setBlock(b *Block) {
	i.block.Release()
	i.block = b
	i.bi = BlockIterator{}
	if b != nil {
		i.bi.src = b
	}
}

// --------------------------------------------------------------------

var bufPool sync.Pool

func fetchBuffer(sz int) []byte {
	if v := bufPool.Get(); v != nil {
		if p := v.([]byte); sz <= cap(p) {
			return p[:sz]
		}
	}
	return make([]byte, sz)
}

func releaseBuffer(p []byte) {
	if cap(p) != 0 {
		bufPool.Put(p)
	}
}
