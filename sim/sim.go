// Package sim drives the fetch-decode-execute-writeback loop, owns the
// register file and memory facade for a run, and accumulates the
// simulated cycle count.
package sim

import (
	"io"

	"github.com/kestrelsim/rv32cache/cache"
	"github.com/kestrelsim/rv32cache/cpu"
	"github.com/kestrelsim/rv32cache/isa"
	"github.com/kestrelsim/rv32cache/loader"
	"github.com/kestrelsim/rv32cache/mem"
	"github.com/kestrelsim/rv32cache/memsys"
	"github.com/kestrelsim/rv32cache/regfile"
)

// StepReport describes one executed instruction, for the trace formatter.
type StepReport struct {
	PC        uint32
	Inst      *isa.Instruction
	Cycles    uint64
	Registers [regfile.NumRegisters]uint32
}

// Simulator owns the architectural state for one run: registers, memory
// facade, and the program's end address.
type Simulator struct {
	regs *regfile.File
	sys  *memsys.System
	cpu  *cpu.Unit

	pc   uint32
	end  uint32
	time uint64
}

// New constructs a Simulator, loading the binary at path into a freshly
// built memory/cache system per cfg.
func New(cfg Config, path string, warnings io.Writer) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := mem.New(cfg.Memory)

	opts := []memsys.Option{memsys.WithWarnings(warnings)}
	if cfg.UseCache {
		c, err := cache.New(cfg.Cache, m)
		if err != nil {
			return nil, err
		}
		opts = append(opts, memsys.WithCache(c))
	}
	sys := memsys.New(m, opts...)

	end, err := loader.Load(path, sys)
	if err != nil {
		return nil, err
	}

	regs := regfile.New()

	return &Simulator{
		regs: regs,
		sys:  sys,
		cpu:  cpu.New(regs, sys),
		pc:   0,
		end:  end,
	}, nil
}

// Running reports whether the simulation has not yet reached the
// program's end address.
func (s *Simulator) Running() bool {
	return s.pc != s.end
}

// PC returns the current program counter.
func (s *Simulator) PC() uint32 {
	return s.pc
}

// Time returns the accumulated cycle count.
func (s *Simulator) Time() uint64 {
	return s.time
}

// Registers returns a read-only snapshot of the register file.
func (s *Simulator) Registers() [regfile.NumRegisters]uint32 {
	return s.regs.Snapshot()
}

// Memory returns the underlying memory facade, for the trace formatter's
// read-only dumps.
func (s *Simulator) Memory() *memsys.System {
	return s.sys
}

// Step executes exactly one instruction: fetch, decode, execute,
// write-back. Cost accounting follows the fixed per-stage formula: fetch
// charges whatever the memory facade returns for the instruction-word
// read, decode is a flat 1 cycle, execute is 1 cycle plus any memory
// latency incurred by a load or store, and write-back is 1 cycle iff the
// instruction has a destination register.
func (s *Simulator) Step() (StepReport, error) {
	pc := s.pc

	word, fetchCycles, err := s.sys.ReadWord(pc)
	if err != nil {
		return StepReport{}, err
	}

	inst, err := isa.Decode(word)
	if err != nil {
		return StepReport{}, err
	}

	res, err := s.cpu.Execute(inst, pc)
	if err != nil {
		return StepReport{}, err
	}

	if err := s.cpu.WriteBack(inst, res); err != nil {
		return StepReport{}, err
	}

	var writebackCost uint64
	if res.HasWriteback {
		writebackCost = 1
	}
	cycles := fetchCycles + 1 + (1 + res.MemCycles) + writebackCost

	s.pc = res.NextPC
	s.time += cycles

	return StepReport{
		PC:        pc,
		Inst:      inst,
		Cycles:    cycles,
		Registers: s.regs.Snapshot(),
	}, nil
}

// Run executes instructions until the program counter reaches the
// program's end address, invoking hook (if non-nil) after every step.
func (s *Simulator) Run(hook func(StepReport)) error {
	for s.Running() {
		report, err := s.Step()
		if err != nil {
			return err
		}
		if hook != nil {
			hook(report)
		}
	}
	return nil
}
