package memsys_test

import (
	"bytes"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kestrelsim/rv32cache/cache"
	"github.com/kestrelsim/rv32cache/mem"
	"github.com/kestrelsim/rv32cache/memsys"
)

func TestMemsys(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Memory Facade Suite")
}

var _ = Describe("System", func() {
	var (
		m   *mem.Memory
		sys *memsys.System
	)

	BeforeEach(func() {
		m = mem.New(mem.Config{AccessTime: 100, SizeWords: 64})
	})

	Describe("without a cache", func() {
		BeforeEach(func() {
			sys = memsys.New(m)
		})

		It("round-trips a write through to a later read", func() {
			_, err := sys.WriteWord(12, 0x42)
			Expect(err).NotTo(HaveOccurred())
			v, _, err := sys.ReadWord(12)
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(Equal(uint32(0x42)))
		})

		It("rejects unaligned addresses", func() {
			_, _, err := sys.ReadWord(2)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("with a cache attached", func() {
		BeforeEach(func() {
			c, err := cache.New(cache.DefaultConfig(), m)
			Expect(err).NotTo(HaveOccurred())
			sys = memsys.New(m, memsys.WithCache(c))
		})

		It("reports a cache is bound", func() {
			Expect(sys.HasCache()).To(BeTrue())
		})

		It("delegates reads and writes to the cache", func() {
			_, err := sys.WriteWord(0, 7)
			Expect(err).NotTo(HaveOccurred())
			v, _, err := sys.ReadWord(0)
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(Equal(uint32(7)))
			Expect(sys.Cache().Stats().Hits + sys.Cache().Stats().Misses).To(BeNumerically(">", 0))
		})
	})

	Describe("program-range write warning", func() {
		var buf *bytes.Buffer

		BeforeEach(func() {
			buf = &bytes.Buffer{}
			sys = memsys.New(m, memsys.WithWarnings(buf))
			sys.SetProgramRange(16)
		})

		It("warns, but still succeeds, on a write inside the program range", func() {
			_, err := sys.WriteWord(4, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(buf.String()).To(ContainSubstring("warning"))
		})

		It("does not warn on a write outside the program range", func() {
			_, err := sys.WriteWord(20, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(buf.String()).To(BeEmpty())
		})
	})

	Describe("raw bypass", func() {
		BeforeEach(func() {
			c, err := cache.New(cache.DefaultConfig(), m)
			Expect(err).NotTo(HaveOccurred())
			sys = memsys.New(m, memsys.WithCache(c))
		})

		It("writes straight to main memory without touching the cache", func() {
			Expect(sys.RawWriteWord(0, 99)).To(Succeed())
			Expect(sys.Cache().Stats().Hits + sys.Cache().Stats().Misses).To(Equal(uint64(0)))

			v, _, err := m.ReadWord(0)
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(Equal(uint32(99)))
		})
	})
})
