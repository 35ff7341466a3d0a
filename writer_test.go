package sstable_test

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"math/rand"

	"github.com/bsm/sstable"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Writer", func() {
	var buf *bytes.Buffer
	var subject *sstable.Writer
	var testdata = []byte("testdata")

	footerOffset := func() uint64 {
		return binary.BigEndian.Uint64(buf.Bytes()[buf.Len()-8:])
	}

	BeforeEach(func() {
		buf = new(bytes.Buffer)
		subject = sstable.NewWriter(buf, nil)
	})

	AfterEach(func() {
		_ = subject.Close()
	})

	It("should write empty", func() {
		Expect(subject.Close()).To(Succeed())
		Expect(subject.NumBlocks()).To(Equal(0))
		Expect(footerOffset()).To(Equal(uint64(0)))

		// {"bookends": []}
		Expect(buf.String()).To(Equal("\xa1\x68bookends\x80" + "\x00\x00\x00\x00\x00\x00\x00\x00"))
	})

	It("should not allow appends after close", func() {
		Expect(subject.Close()).To(Succeed())
		Expect(subject.Append(testdata, testdata)).To(MatchError(`sstable: is closed`))
		Expect(subject.Close()).To(MatchError(`sstable: is closed`))
	})

	It("should write a single block", func() {
		Expect(subject.Append([]byte("hello"), []byte("world"))).To(Succeed())
		Expect(subject.NumBlocks()).To(Equal(0))
		Expect(subject.Size()).To(Equal(int64(0)))

		Expect(subject.Close()).To(Succeed())
		Expect(subject.NumBlocks()).To(Equal(1))
		Expect(footerOffset()).To(BeNumerically(">", 0))
		Expect(subject.Size()).To(Equal(int64(buf.Len())))
	})

	It("should flush blocks lazily", func() {
		subject = sstable.NewWriter(buf, &sstable.WriterOptions{BlockSize: 64, Compression: sstable.NoCompression})

		// 2 + 5 + 20 bytes each, two entries per block
		val := bytes.Repeat([]byte{'v'}, 20)
		Expect(subject.Append([]byte("key.1"), val)).To(Succeed())
		Expect(subject.Append([]byte("key.2"), val)).To(Succeed())
		Expect(subject.NumBlocks()).To(Equal(0))
		Expect(buf.Len()).To(Equal(0))

		Expect(subject.Append([]byte("key.3"), val)).To(Succeed())
		Expect(subject.NumBlocks()).To(Equal(1))
		Expect(buf.Len()).To(Equal(2*27 + 2*4 + 4))

		Expect(subject.Close()).To(Succeed())
		Expect(subject.NumBlocks()).To(Equal(2))
		Expect(footerOffset()).To(Equal(uint64(2*27 + 2*4 + 4 + 27 + 4 + 4)))

		// {"bookends": [66, 101]}
		footer := buf.Bytes()[footerOffset() : buf.Len()-8]
		Expect(footer).To(Equal([]byte("\xa1\x68bookends\x82\x18\x42\x18\x65")))
	})

	It("should flush the sink on close", func() {
		bw := bufio.NewWriter(buf)
		subject = sstable.NewWriter(bw, nil)
		Expect(subject.Append([]byte("hello"), []byte("world"))).To(Succeed())
		Expect(subject.Close()).To(Succeed())
		Expect(bw.Buffered()).To(Equal(0))
		Expect(buf.Len()).To(Equal(int(subject.Size())))
	})

	It("should write (non-compressable)", func() {
		rnd := rand.New(rand.NewSource(1))
		val := make([]byte, 128)
		key := make([]byte, 8)

		for n := uint64(0); n < 100000; n += 2 {
			binary.BigEndian.PutUint64(key, n)
			_, err := rnd.Read(val)
			Expect(err).NotTo(HaveOccurred())
			Expect(subject.Append(key, val)).To(Succeed())
		}
		Expect(subject.Close()).To(Succeed())
		Expect(subject.NumBlocks()).To(BeNumerically(">", 100))
		Expect(buf.Len()).To(BeNumerically(">", 50000*128))
	})

	It("should write (well-compressable)", func() {
		val := bytes.Repeat(testdata, 16)
		key := make([]byte, 8)

		for n := uint64(0); n < 100000; n += 2 {
			binary.BigEndian.PutUint64(key, n)
			Expect(subject.Append(key, val)).To(Succeed())
		}
		Expect(subject.Close()).To(Succeed())
		Expect(subject.NumBlocks()).To(BeNumerically(">", 100))
		Expect(buf.Len()).To(BeNumerically("<", 50000*128/4))
	})
})
