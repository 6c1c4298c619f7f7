// Package trace renders the register, cache, and memory dumps and
// per-instruction progress lines the core exposes only as read-only views.
// Nothing here touches simulator-internal state directly.
package trace

import (
	"fmt"
	"io"

	"github.com/kestrelsim/rv32cache/cache"
	"github.com/kestrelsim/rv32cache/memsys"
	"github.com/kestrelsim/rv32cache/regfile"
	"github.com/kestrelsim/rv32cache/sim"
)

// Formatter writes simulation output to w.
type Formatter struct {
	w io.Writer
}

// New creates a Formatter writing to w.
func New(w io.Writer) *Formatter {
	return &Formatter{w: w}
}

// Step renders one instruction's progress line: the program counter (as
// it stood before the instruction executed), the register dump, and the
// cycles consumed.
func (f *Formatter) Step(report sim.StepReport) {
	fmt.Fprintf(f.w, "Program Counter : 0x%x\n", report.PC)
	f.registers(report.Registers)
	fmt.Fprintf(f.w, "Time taken : %d\n", report.Cycles)
}

func (f *Formatter) registers(regs [regfile.NumRegisters]uint32) {
	for i, v := range regs {
		fmt.Fprintf(f.w, "x%-2d : 0x%08x\n", i, v)
	}
}

// Final renders the end-of-run summary: total cycles, the cache dump (if
// a cache is bound), then the main-memory dump.
func (f *Formatter) Final(totalCycles uint64, sys *memsys.System) {
	fmt.Fprintf(f.w, "Total simulation cycles : %d\n", totalCycles)
	if sys.HasCache() {
		f.cacheDump(sys.Cache())
	}
	f.memoryDump(sys)
}

func (f *Formatter) cacheDump(c *cache.Cache) {
	stats := c.Stats()
	fmt.Fprintf(f.w, "Cache hits : %d\n", stats.Hits)
	fmt.Fprintf(f.w, "Cache misses : %d\n", stats.Misses)
	for i, line := range c.Lines() {
		fmt.Fprintf(f.w, "line %d : tag=0x%x index=%d active=%t dirty=%t data=%v\n",
			i, line.Tag, line.Index, line.Active, line.Dirty, line.Data)
	}
}

func (f *Formatter) memoryDump(sys *memsys.System) {
	words := sys.Memory().Dump()
	for i, w := range words {
		fmt.Fprintf(f.w, "mem[0x%x] : 0x%08x\n", i*4, w)
	}
}
