// The sstdump program dumps the contents and block layout of sstable files.
package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/bsm/sstable"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var errBadFiles = errors.New("sstdump: failed to process one or more files")

var compression string

var rootCmd = &cobra.Command{
	Use:   "sstdump [command] (flags)",
	Short: "sstable introspection tool",
	Long:  ``,
}

func init() {
	rootCmd.AddCommand(scanCmd, statsCmd)
	rootCmd.PersistentFlags().StringVarP(
		&compression, "compression", "c", sstable.ZstdCompression.String(), "block compression codec (zstd, snappy, none)")
	scanCmd.Flags().BoolVarP(
		&scanTruncate, "truncate", "t", false, "truncate long keys and values")
}

func main() {
	log.SetFlags(0)

	cobra.EnableCommandSorting = false
	if err := rootCmd.Execute(); err != nil {
		log.Fatalln(err)
	}
}

type tableFunc func(w io.Writer, r *sstable.Reader, c sstable.Compression) error

// runFiles opens each file and runs fn, reporting errors per file.
func runFiles(cmd *cobra.Command, args []string, fn tableFunc) error {
	c, err := sstable.ParseCompression(compression)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	bad := false
	for i, arg := range args {
		if i != 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "filename: %q\n", arg)
		if err := runFile(w, arg, c, fn); err != nil {
			fmt.Fprintf(w, "error: %q\n", err)
			bad = true
		}
	}
	if bad {
		return errBadFiles
	}
	return nil
}

func runFile(w io.Writer, filename string, c sstable.Compression, fn tableFunc) error {
	f, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	fs, err := f.Stat()
	if err != nil {
		return err
	}

	r, err := sstable.NewReader(f, fs.Size(), &sstable.ReaderOptions{Compression: c})
	if err != nil {
		return err
	}
	return fn(w, r, c)
}
