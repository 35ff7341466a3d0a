package main

import (
	"bytes"
	"fmt"
	"io"

	"github.com/bsm/sstable"
	"github.com/spf13/cobra"
)

var (
	scanTruncate bool
	kBuf, vBuf   bytes.Buffer
)

var scanCmd = &cobra.Command{
	Use:          "scan <file>...",
	Short:        "print all key/value pairs",
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFiles(cmd, args, runScan)
	},
}

func runScan(w io.Writer, r *sstable.Reader, _ sstable.Compression) error {
	iter := r.Iter()
	for iter.Next() {
		k, v := iter.Key(), iter.Value()
		if scanTruncate {
			k = trunc(&kBuf, k)
			v = trunc(&vBuf, v)
		}
		fmt.Fprintf(w, "%q: %q,\n", k, v)
	}
	return iter.Err()
}

func trunc(dst *bytes.Buffer, b []byte) []byte {
	if len(b) < 64 {
		return b
	}
	dst.Reset()
	fmt.Fprintf(dst, "%s...(%d bytes)...%s", b[:20], len(b)-40, b[len(b)-20:])
	return dst.Bytes()
}
