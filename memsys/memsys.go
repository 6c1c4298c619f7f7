// Package memsys presents main memory and an optional cache in front of it
// as one uniform word-addressed store, so the execution unit never needs
// to know whether a cache is configured.
package memsys

import (
	"fmt"
	"io"

	"github.com/kestrelsim/rv32cache/cache"
	"github.com/kestrelsim/rv32cache/mem"
	"github.com/kestrelsim/rv32cache/simerr"
)

// System is the facade the execution unit reads and writes through. It owns
// both the main memory and, optionally, a cache in front of it; the cache
// keeps its own non-owning reference to that same memory, given to it at
// construction.
type System struct {
	memory *mem.Memory
	cache  *cache.Cache

	programEnd uint32
	hasProgram bool
	warnings   io.Writer
}

// Option configures a System at construction time.
type Option func(*System)

// WithCache attaches a cache in front of main memory.
func WithCache(c *cache.Cache) Option {
	return func(s *System) { s.cache = c }
}

// WithWarnings directs advisory (non-fatal) diagnostics to w. If unset,
// warnings are discarded.
func WithWarnings(w io.Writer) Option {
	return func(s *System) { s.warnings = w }
}

// New constructs a System backed by m, with options applied in order.
func New(m *mem.Memory, opts ...Option) *System {
	s := &System{memory: m, warnings: io.Discard}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func checkAligned(addr uint32) error {
	if addr%4 != 0 {
		return simerr.New(simerr.AlignmentError, "unaligned access at 0x%x", addr)
	}
	return nil
}

// SetProgramRange records the loaded program's address range
// [0, end), used only to advise (never block) writes that land inside it.
func (s *System) SetProgramRange(end uint32) {
	s.programEnd = end
	s.hasProgram = true
}

func (s *System) warnIfProgramRange(addr uint32) {
	if s.hasProgram && addr < s.programEnd {
		fmt.Fprintf(s.warnings, "warning: write to 0x%x falls inside the loaded program's address range\n", addr)
	}
}

// ReadWord reads the word at addr, through the cache if one is attached,
// otherwise directly from main memory. Returns the word and the cycles
// charged for the access.
func (s *System) ReadWord(addr uint32) (uint32, uint64, error) {
	if err := checkAligned(addr); err != nil {
		return 0, 0, err
	}
	if s.cache != nil {
		return s.cache.Read(addr)
	}
	return s.memory.ReadWord(addr)
}

// WriteWord stores value at addr, through the cache if one is attached,
// otherwise directly to main memory. Returns the cycles charged for the
// access. Writes inside the loaded program's address range are allowed but
// produce an advisory warning.
func (s *System) WriteWord(addr uint32, value uint32) (uint64, error) {
	if err := checkAligned(addr); err != nil {
		return 0, err
	}
	s.warnIfProgramRange(addr)
	if s.cache != nil {
		return s.cache.Write(addr, value)
	}
	return s.memory.WriteWord(addr, value)
}

// RawWriteWord stores value at addr directly in main memory, bypassing any
// cache. Used by the loader to populate the program image before
// simulation starts, without polluting cache state or charging cycles
// that belong to the program's own execution.
func (s *System) RawWriteWord(addr uint32, value uint32) error {
	if err := checkAligned(addr); err != nil {
		return err
	}
	_, err := s.memory.WriteWord(addr, value)
	return err
}

// HasCache reports whether a cache is attached.
func (s *System) HasCache() bool {
	return s.cache != nil
}

// Cache returns the attached cache, or nil if none is configured.
func (s *System) Cache() *cache.Cache {
	return s.cache
}

// Memory returns the underlying main memory.
func (s *System) Memory() *mem.Memory {
	return s.memory
}
