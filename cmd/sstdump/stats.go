package main

import (
	"fmt"
	"io"

	"github.com/bsm/sstable"
	"github.com/cespare/xxhash/v2"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:          "stats <file>...",
	Short:        "print block layout statistics",
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFiles(cmd, args, runStats)
	},
}

func runStats(w io.Writer, r *sstable.Reader, c sstable.Compression) error {
	fmt.Fprintf(w, "blocks: %d\n", r.NumBlocks())

	var entries, size int
	for i := 0; i < r.NumBlocks(); i++ {
		raw, err := r.ReadCompressedBlock(i)
		if err != nil {
			return err
		}
		block, err := sstable.DecompressBlock(raw, c)
		if err != nil {
			return err
		}

		start, end, _ := r.BlockRange(i)
		fmt.Fprintf(w, "  %5d: offset=%d length=%d entries=%d size=%d digest=%016x\n",
			i, start, end-start, block.Len(), block.Size(), xxhash.Sum64(raw))

		entries += block.Len()
		size += block.Size()
	}
	fmt.Fprintf(w, "entries: %d\n", entries)
	fmt.Fprintf(w, "data size: %d\n", size)
	return nil
}
