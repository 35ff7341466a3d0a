package sstable_test

import (
	"math"

	"github.com/bsm/sstable"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"
)

var _ = Describe("Varint", func() {
	DescribeTable("round-trip",
		func(v uint32, size int) {
			enc := sstable.AppendVarint(nil, v)
			Expect(enc).To(HaveLen(size))
			Expect(sstable.VarintLen(v)).To(Equal(size))

			dec, n, err := sstable.ReadVarint(enc)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(size))
			Expect(dec).To(Equal(v))
		},
		Entry("0", uint32(0), 1),
		Entry("2^7-1", uint32(1<<7-1), 1),
		Entry("2^7", uint32(1<<7), 2),
		Entry("2^14-1", uint32(1<<14-1), 2),
		Entry("2^14", uint32(1<<14), 3),
		Entry("2^21-1", uint32(1<<21-1), 3),
		Entry("2^21", uint32(1<<21), 4),
		Entry("2^28-1", uint32(1<<28-1), 4),
		Entry("2^28", uint32(1<<28), 5),
		Entry("2^32-1", uint32(math.MaxUint32), 5),
	)

	It("should encode golden values", func() {
		Expect(sstable.AppendVarint(nil, 0)).To(Equal([]byte{0x00}))
		Expect(sstable.AppendVarint(nil, 127)).To(Equal([]byte{0x7f}))
		Expect(sstable.AppendVarint(nil, 128)).To(Equal([]byte{0x80, 0x02}))
		Expect(sstable.AppendVarint(nil, 300)).To(Equal([]byte{0xac, 0x04}))
		Expect(sstable.AppendVarint(nil, 1<<14)).To(Equal([]byte{0xc0, 0x00, 0x02}))
		Expect(sstable.AppendVarint(nil, math.MaxUint32)).To(Equal([]byte{0xf7, 0xff, 0xff, 0xff, 0x1f}))
	})

	It("should append", func() {
		buf := sstable.AppendVarint([]byte("x"), 5)
		buf = sstable.AppendVarint(buf, 200)
		Expect(buf).To(Equal([]byte{'x', 0x05, 0x88, 0x03}))

		v, n, err := sstable.ReadVarint(buf[2:])
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(2))
		Expect(v).To(Equal(uint32(200)))
	})

	It("should accept over-long encodings", func() {
		v, n, err := sstable.ReadVarint([]byte{0x80, 0x00})
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(2))
		Expect(v).To(Equal(uint32(0)))

		v, n, err = sstable.ReadVarint([]byte{0xe1, 0x00, 0x00, 0x00})
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(4))
		Expect(v).To(Equal(uint32(1)))
	})

	It("should only consume the encoded bytes", func() {
		v, n, err := sstable.ReadVarint([]byte{0x05, 0xff, 0xff})
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(1))
		Expect(v).To(Equal(uint32(5)))
	})

	It("should fail on truncated input", func() {
		_, _, err := sstable.ReadVarint(nil)
		Expect(err).To(MatchError(sstable.ErrTruncated))

		_, _, err = sstable.ReadVarint([]byte{0x80})
		Expect(err).To(MatchError(sstable.ErrTruncated))

		_, _, err = sstable.ReadVarint([]byte{0xf0, 0x01, 0x02, 0x03})
		Expect(err).To(MatchError(sstable.ErrTruncated))
	})

	It("should fail on invalid input", func() {
		_, _, err := sstable.ReadVarint([]byte{0xf8, 0x00, 0x00, 0x00, 0x00, 0x00})
		Expect(err).To(MatchError(sstable.ErrCorrupt))

		_, _, err = sstable.ReadVarint([]byte{0xf0, 0x00, 0x00, 0x00, 0x20})
		Expect(err).To(MatchError(sstable.ErrCorrupt))
	})
})
