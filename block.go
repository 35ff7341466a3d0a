package sstable

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// CompressedBlock is the compressed representation of a Block.
type CompressedBlock []byte

// Block is an in-memory batch of key/value entries.
type Block struct {
	data    []byte // encoded entries
	offsets []byte // 4-byte entry offsets into data
	numEnts uint32

	targetSize uint64
	buf        []byte // scratch buffer, used for compression
	pooled     []byte // backing buffer, returned to the pool on release
}

// NewBlock creates an empty block with a target data size.
// A target size < 1 selects DefaultBlockSize.
func NewBlock(targetSize int) *Block {
	if targetSize < 1 {
		targetSize = DefaultBlockSize
	}

	// entry offsets are 32-bit
	size := uint64(targetSize)
	if size > maxLen {
		size = maxLen
	}
	return &Block{targetSize: size}
}

// Append appends an entry to the block. It fails without modifying the block
// if the block is not empty and the entry would grow it beyond its target size.
// An empty block always accepts an entry.
func (b *Block) Append(key, value []byte) error {
	if err := checkLen(len(key)); err != nil {
		return err
	}
	if err := checkLen(len(value)); err != nil {
		return err
	}

	curLen := len(b.data)
	encLen := VarintLen(uint32(len(key))) + VarintLen(uint32(len(value))) + len(key) + len(value)
	if curLen > 0 && uint64(curLen)+uint64(encLen) > b.targetSize {
		return errBlockFull
	}

	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], uint32(curLen))
	b.offsets = append(b.offsets, tmp[:]...)

	b.data = AppendVarint(b.data, uint32(len(key)))
	b.data = AppendVarint(b.data, uint32(len(value)))
	b.data = append(b.data, key...)
	b.data = append(b.data, value...)
	b.numEnts++
	return nil
}

// IsEmpty returns true if the block has no entries.
func (b *Block) IsEmpty() bool { return b.numEnts == 0 }

// Len returns the number of entries.
func (b *Block) Len() int { return int(b.numEnts) }

// Size returns the size of the uncompressed entry data in bytes.
func (b *Block) Size() int { return len(b.data) }

// Reset clears the block, retaining allocated buffers.
func (b *Block) Reset() {
	b.data = b.data[:0]
	b.offsets = b.offsets[:0]
	b.numEnts = 0
}

// Compress returns the compressed representation of the block.
// The block itself is not modified.
func (b *Block) Compress(c Compression) (CompressedBlock, error) {
	p, err := c.encode(nil, b.raw())
	if err != nil {
		return nil, errors.Wrap(err, "sstable: compress block")
	}
	return CompressedBlock(p), nil
}

// Drain compresses the block, writes it to w and resets the block.
func (b *Block) Drain(w io.Writer, c Compression) error {
	p, err := c.encode(b.buf, b.raw())
	if err != nil {
		return errors.Wrap(err, "sstable: compress block")
	}
	b.buf = p

	if _, err := w.Write(p); err != nil {
		return err
	}
	b.Reset()
	return nil
}

// raw returns the uncompressed block encoding.
func (b *Block) raw() []byte {
	raw := make([]byte, 0, len(b.data)+len(b.offsets)+4)
	raw = append(raw, b.data...)
	raw = append(raw, b.offsets...)

	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], b.numEnts)
	return append(raw, tmp[:]...)
}

// DecompressBlock decompresses a block. It returns ErrTruncated if the
// decompressed data is too short to hold its entry index.
func DecompressBlock(cb CompressedBlock, c Compression) (*Block, error) {
	raw, err := c.decode(nil, cb)
	if err != nil {
		return nil, errors.Wrap(err, "sstable: decompress block")
	}
	return parseBlock(raw)
}

func parseBlock(raw []byte) (*Block, error) {
	if len(raw) < 4 {
		return nil, errors.Wrapf(ErrTruncated, "sstable: block of %d bytes is too short", len(raw))
	}

	tail := len(raw) - 4
	numEnts := binary.BigEndian.Uint32(raw[tail:])
	if uint64(tail) < 4*uint64(numEnts) {
		return nil, errors.Wrapf(ErrTruncated, "sstable: block of %d bytes cannot hold %d entries", len(raw), numEnts)
	}

	split := tail - 4*int(numEnts)
	return &Block{
		data:       raw[:split:split],
		offsets:    raw[split:tail:tail],
		numEnts:    numEnts,
		targetSize: DefaultBlockSize,
	}, nil
}

// Release releases the block and frees up resources. The block must not be used
// after this method is called.
func (b *Block) Release() {
	if b == nil {
		return
	}
	if b.pooled != nil {
		releaseBuffer(b.pooled)
	}
	*b = Block{}
}

// Iter returns an iterator over the entries of the block.
func (b *Block) Iter() *BlockIterator {
	return &BlockIterator{src: b}
}

func (b *Block) numEntries() int { return int(b.numEnts) }

func (b *Block) entryAt(i int) (key, value []byte, err error) {
	pos := binary.BigEndian.Uint32(b.offsets[4*i:])
	if uint64(pos) > uint64(len(b.data)) {
		return nil, nil, errors.Wrapf(ErrCorrupt, "sstable: entry %d offset %d is out of bounds", i, pos)
	}
	p := b.data[pos:]

	klen, n, err := ReadVarint(p)
	if err != nil {
		return nil, nil, err
	}
	p = p[n:]

	vlen, n, err := ReadVarint(p)
	if err != nil {
		return nil, nil, err
	}
	p = p[n:]

	need := uint64(klen) + uint64(vlen)
	if uint64(len(p)) < need {
		return nil, nil, errors.Wrapf(ErrTruncated, "sstable: entry %d needs %d bytes, got %d", i, need, len(p))
	}

	k, v := int(klen), int(need)
	return p[:k:k], p[k:v:v], nil
}

// --------------------------------------------------------------------

// entrySource is anything with indexed entries.
type entrySource interface {
	numEntries() int
	entryAt(i int) (key, value []byte, err error)
}

// BlockIterator iterates over the entries of a single block.
// Keys and values point into the block and must not be modified.
type BlockIterator struct {
	src entrySource
	pos int

	key, val []byte
	err      error
}

// Next advances the cursor to the next entry and returns true if successful.
// Once exhausted, it keeps returning false.
func (i *BlockIterator) Next() bool {
	if i.err != nil || i.pos >= i.src.numEntries() {
		i.key, i.val = nil, nil
		return false
	}

	i.key, i.val, i.err = i.src.entryAt(i.pos)
	if i.err != nil {
		i.key, i.val = nil, nil
		return false
	}
	i.pos++
	return true
}

// Key returns the key of the current entry.
func (i *BlockIterator) Key() []byte { return i.key }

// Value returns the value of the current entry.
func (i *BlockIterator) Value() []byte { return i.val }

// Entry returns copies of the current key and value, which remain
// valid after the cursor moves.
func (i *BlockIterator) Entry() (key, value ByteString) {
	return copyByteString(i.key), copyByteString(i.val)
}

// Err exposes iterator errors, if any.
func (i *BlockIterator) Err() error { return i.err }
