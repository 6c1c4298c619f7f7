package trace_test

import (
	"bytes"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kestrelsim/rv32cache/cache"
	"github.com/kestrelsim/rv32cache/mem"
	"github.com/kestrelsim/rv32cache/memsys"
	"github.com/kestrelsim/rv32cache/regfile"
	"github.com/kestrelsim/rv32cache/sim"
	"github.com/kestrelsim/rv32cache/trace"
)

func TestTrace(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Trace Formatter Suite")
}

var _ = Describe("Formatter", func() {
	var buf bytes.Buffer

	BeforeEach(func() {
		buf.Reset()
	})

	It("renders a per-instruction progress line", func() {
		f := trace.New(&buf)
		var regs [regfile.NumRegisters]uint32
		regs[1] = 5
		f.Step(sim.StepReport{PC: 4, Cycles: 13, Registers: regs})

		out := buf.String()
		Expect(out).To(ContainSubstring("Program Counter : 0x4"))
		Expect(out).To(ContainSubstring("Time taken : 13"))
		Expect(out).To(ContainSubstring("x1"))
	})

	It("renders the final summary with a bound cache", func() {
		m := mem.New(mem.Config{AccessTime: 100, SizeWords: 16})
		c, err := cache.New(cache.DefaultConfig(), m)
		Expect(err).NotTo(HaveOccurred())
		sys := memsys.New(m, memsys.WithCache(c))

		f := trace.New(&buf)
		f.Final(42, sys)

		out := buf.String()
		Expect(out).To(ContainSubstring("Total simulation cycles : 42"))
		Expect(out).To(ContainSubstring("Cache hits"))
		Expect(out).To(ContainSubstring("mem[0x0]"))
	})

	It("renders the final summary without a cache", func() {
		m := mem.New(mem.Config{AccessTime: 100, SizeWords: 16})
		sys := memsys.New(m)

		f := trace.New(&buf)
		f.Final(7, sys)

		out := buf.String()
		Expect(out).To(ContainSubstring("Total simulation cycles : 7"))
		Expect(out).NotTo(ContainSubstring("Cache hits"))
	})
})
