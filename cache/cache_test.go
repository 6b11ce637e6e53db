package cache_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/z32sim/cache"
	"github.com/sarchlab/z32sim/emu"
)

func read32(m *emu.Memory, addr uint32) uint32 {
	v, err := m.Read32(addr)
	Expect(err).NotTo(HaveOccurred())
	return v
}

var _ = Describe("Cache", func() {
	var (
		c      *cache.Cache
		memory *emu.Memory
	)

	BeforeEach(func() {
		memory = emu.NewMemory()
		// 256B, 4-way, 16B lines: 4 sets, addresses 64 bytes apart share a set.
		var err error
		c, err = cache.New(cache.Config{
			Size:          256,
			Associativity: 4,
			BlockSize:     16,
		}, cache.NewMemoryBacking(memory))
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("Read operations", func() {
		It("should miss on cold cache", func() {
			Expect(memory.Write32(0x1000, 0xDEADBEEF)).To(Succeed())

			result := c.Read(0x1000, 4)
			Expect(result.Hit).To(BeFalse())
			Expect(result.Data).To(Equal(uint32(0xDEADBEEF)))

			stats := c.Stats()
			Expect(stats.Reads).To(Equal(uint64(1)))
			Expect(stats.Misses).To(Equal(uint64(1)))
			Expect(stats.Hits).To(Equal(uint64(0)))
		})

		It("should hit on cached data", func() {
			Expect(memory.Write32(0x1000, 0xCAFEBABE)).To(Succeed())

			c.Read(0x1000, 4)
			result := c.Read(0x1000, 4)

			Expect(result.Hit).To(BeTrue())
			Expect(result.Data).To(Equal(uint32(0xCAFEBABE)))
			Expect(c.Stats().HitRate()).To(BeNumerically("~", 0.5))
		})

		It("should hit on different addresses in same cache line", func() {
			Expect(memory.Write32(0x1000, 0x11111111)).To(Succeed())
			Expect(memory.Write32(0x1004, 0x22222222)).To(Succeed())

			c.Read(0x1000, 4)
			result := c.Read(0x1004, 4)

			Expect(result.Hit).To(BeTrue())
			Expect(result.Data).To(Equal(uint32(0x22222222)))
		})

		It("should read single bytes", func() {
			Expect(memory.Write32(0x20, 0x44332211)).To(Succeed())

			Expect(c.Read(0x22, 1).Data).To(Equal(uint32(0x33)))
		})

		It("should assemble a word that straddles two lines", func() {
			Expect(memory.Write32(0x0C, 0x44332211)).To(Succeed())
			Expect(memory.Write32(0x10, 0x88776655)).To(Succeed())

			result := c.Read(0x0E, 4)

			Expect(result.Data).To(Equal(uint32(0x66554433)))
			Expect(c.Stats().Misses).To(Equal(uint64(2)))
		})
	})

	Describe("Write operations", func() {
		It("should write-allocate on miss", func() {
			result := c.Write(0x1000, 4, 0x12345678)
			Expect(result.Hit).To(BeFalse())

			readResult := c.Read(0x1000, 4)
			Expect(readResult.Hit).To(BeTrue())
			Expect(readResult.Data).To(Equal(uint32(0x12345678)))
		})

		It("should not write through", func() {
			c.Write(0x1000, 4, 0x12345678)

			Expect(read32(memory, 0x1000)).To(BeZero())
		})

		It("should merge a byte store into the line", func() {
			Expect(memory.Write32(0x40, 0xAABBCCDD)).To(Succeed())

			c.Write(0x41, 1, 0x1FF)

			Expect(c.Read(0x40, 4).Data).To(Equal(uint32(0xAABBFFDD)))
		})

		It("should split a straddling store", func() {
			c.Write(0x1E, 4, 0xA1B2C3D4)
			c.Flush()

			Expect(read32(memory, 0x1C)).To(Equal(uint32(0xC3D40000)))
			Expect(read32(memory, 0x20)).To(Equal(uint32(0x0000A1B2)))
		})
	})

	Describe("Eviction", func() {
		It("should evict when a set is full", func() {
			c.Write(0x000, 4, 0x11111111)
			c.Write(0x040, 4, 0x22222222)
			c.Write(0x080, 4, 0x33333333)
			c.Write(0x0C0, 4, 0x44444444)

			Expect(c.Read(0x000, 4).Hit).To(BeTrue())
			Expect(c.Read(0x040, 4).Hit).To(BeTrue())
			Expect(c.Read(0x080, 4).Hit).To(BeTrue())
			Expect(c.Read(0x0C0, 4).Hit).To(BeTrue())

			result := c.Write(0x100, 4, 0x55555555)
			Expect(result.Hit).To(BeFalse())
			Expect(result.Evicted).To(BeTrue())
			Expect(result.EvictedAddr).To(Equal(uint32(0x000)))
			Expect(c.Stats().Evictions).To(Equal(uint64(1)))
		})

		It("should writeback the least recently used dirty block", func() {
			c.Write(0x000, 4, 0x11111111)
			c.Write(0x040, 4, 0x22222222)
			c.Write(0x080, 4, 0x33333333)
			c.Write(0x0C0, 4, 0x44444444)

			c.Read(0x040, 4)
			c.Read(0x080, 4)
			c.Read(0x0C0, 4)

			c.Write(0x100, 4, 0x55555555)

			Expect(read32(memory, 0x000)).To(Equal(uint32(0x11111111)))
			Expect(read32(memory, 0x040)).To(BeZero())
			Expect(c.Stats().Writebacks).To(Equal(uint64(1)))
		})
	})

	Describe("Flush", func() {
		It("should write back all dirty blocks", func() {
			c.Write(0x0000, 4, 0x11111111)
			c.Write(0x1000, 4, 0x22222222)

			c.Flush()

			Expect(read32(memory, 0x0000)).To(Equal(uint32(0x11111111)))
			Expect(read32(memory, 0x1000)).To(Equal(uint32(0x22222222)))
			Expect(c.Stats().Writebacks).To(Equal(uint64(2)))
			Expect(c.Read(0x0000, 4).Hit).To(BeFalse())
		})
	})

	Describe("Invalidate and Reset", func() {
		It("should drop a dirty line without writing it back", func() {
			c.Write(0x80, 4, 0x12345678)

			c.Invalidate(0x80)
			c.Flush()

			Expect(read32(memory, 0x80)).To(BeZero())
		})

		It("should clear statistics", func() {
			c.Read(0, 4)
			c.Reset()

			Expect(c.Stats()).To(Equal(cache.Statistics{}))
		})
	})
})

var _ = Describe("Config", func() {
	It("should accept the default", func() {
		Expect(cache.DefaultConfig().Validate()).To(Succeed())
	})

	DescribeTable("rejected geometries",
		func(cfg cache.Config) {
			Expect(cfg.Validate()).To(MatchError(cache.ErrBadConfig))

			_, err := cache.New(cfg, nil)
			Expect(err).To(MatchError(cache.ErrBadConfig))
		},
		Entry("block not a power of two", cache.Config{Size: 96, Associativity: 2, BlockSize: 24}),
		Entry("block smaller than a word", cache.Config{Size: 64, Associativity: 4, BlockSize: 2}),
		Entry("no ways", cache.Config{Size: 64, Associativity: 0, BlockSize: 16}),
		Entry("size not a multiple of a set", cache.Config{Size: 100, Associativity: 2, BlockSize: 16}),
	)
})
