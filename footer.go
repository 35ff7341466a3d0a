package sstable

import (
	"io"
	"math"

	"github.com/fxamacker/cbor/v2"
	"github.com/pkg/errors"
)

// tableMeta is the table footer.
type tableMeta struct {
	// Bookends holds the end offset of each block.
	Bookends []uint64 `cbor:"bookends"`
}

var (
	// nil bookends are written as an empty list, not as null.
	footerEncMode = mustEncMode(cbor.EncOptions{NilContainers: cbor.NilContainerAsEmpty})

	// the number of blocks is only bounded by the file size.
	footerDecMode = mustDecMode(cbor.DecOptions{MaxArrayElements: math.MaxInt32})
)

func mustEncMode(o cbor.EncOptions) cbor.EncMode {
	em, err := o.EncMode()
	if err != nil {
		panic(err)
	}
	return em
}

func mustDecMode(o cbor.DecOptions) cbor.DecMode {
	dm, err := o.DecMode()
	if err != nil {
		panic(err)
	}
	return dm
}

func (m *tableMeta) writeTo(w io.Writer) error {
	if err := footerEncMode.NewEncoder(w).Encode(m); err != nil {
		return errors.Wrap(err, "sstable: write footer")
	}
	return nil
}

func (m *tableMeta) decode(p []byte) error {
	if err := footerDecMode.Unmarshal(p, m); err != nil {
		return errors.Wrapf(ErrCorrupt, "sstable: decode footer: %v", err)
	}

	var prev uint64
	for i, end := range m.Bookends {
		if end <= prev {
			return errors.Wrapf(ErrCorrupt, "sstable: bookend %d (%d) is not increasing", i, end)
		}
		prev = end
	}
	return nil
}

// lastBookend returns the end offset of the last block.
func (m *tableMeta) lastBookend() uint64 {
	if len(m.Bookends) == 0 {
		return 0
	}
	return m.Bookends[len(m.Bookends)-1]
}
