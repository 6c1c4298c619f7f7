// Package mem implements the flat, word-addressed main memory that backs
// the simulator: a fixed-size ordered sequence of words, each access
// returning a fixed latency that models DRAM row-burst behavior (a whole
// block is charged a single access time, not one charge per word).
package mem

import "github.com/kestrelsim/rv32cache/simerr"

// DefaultAccessTime is the fixed main-memory access latency, in cycles,
// charged once per read/write call regardless of block length.
const DefaultAccessTime = 100

// DefaultSizeWords is the default main memory capacity in words (1 KiB of
// byte-addressable space).
const DefaultSizeWords = 256

// Config holds main memory construction parameters.
type Config struct {
	// AccessTime is the fixed cycles charged per access (read or write,
	// word or block).
	AccessTime uint64 `json:"access_time"`
	// SizeWords is the number of 32-bit words of storage.
	SizeWords int `json:"size_words"`
}

// DefaultConfig returns the spec's default main memory configuration.
func DefaultConfig() Config {
	return Config{AccessTime: DefaultAccessTime, SizeWords: DefaultSizeWords}
}

// Memory is a flat word-indexed store, addressed by word-aligned byte
// addresses. It is created empty (all zero) and its lifetime spans the
// whole simulation run.
type Memory struct {
	words      []uint32
	accessTime uint64
}

// New creates a Memory with the given configuration.
func New(cfg Config) *Memory {
	return &Memory{
		words:      make([]uint32, cfg.SizeWords),
		accessTime: cfg.AccessTime,
	}
}

// Size returns the memory's capacity in words.
func (m *Memory) Size() int {
	return len(m.words)
}

// AccessTime returns the fixed per-access latency.
func (m *Memory) AccessTime() uint64 {
	return m.accessTime
}

func (m *Memory) wordIndex(addr uint32) (int, error) {
	if addr%4 != 0 {
		return 0, simerr.New(simerr.AlignmentError, "unaligned memory access at 0x%x", addr)
	}
	idx := int(addr / 4)
	if idx >= len(m.words) {
		return 0, simerr.New(simerr.OutOfBounds, "address 0x%x outside memory bounds", addr)
	}
	return idx, nil
}

// ReadWord reads the word at addr (a word-aligned byte address) and
// returns it along with the fixed access latency.
func (m *Memory) ReadWord(addr uint32) (uint32, uint64, error) {
	idx, err := m.wordIndex(addr)
	if err != nil {
		return 0, 0, err
	}
	return m.words[idx], m.accessTime, nil
}

// ReadBlock reads n consecutive words starting at addr, returning a single
// access-time charge regardless of n (models a burst transfer).
func (m *Memory) ReadBlock(addr uint32, n int) ([]uint32, uint64, error) {
	idx, err := m.wordIndex(addr)
	if err != nil {
		return nil, 0, err
	}
	if idx+n > len(m.words) {
		return nil, 0, simerr.New(simerr.OutOfBounds, "block read at 0x%x outside memory bounds", addr)
	}
	out := make([]uint32, n)
	copy(out, m.words[idx:idx+n])
	return out, m.accessTime, nil
}

// WriteWord stores value at addr and returns the fixed access latency.
func (m *Memory) WriteWord(addr uint32, value uint32) (uint64, error) {
	idx, err := m.wordIndex(addr)
	if err != nil {
		return 0, err
	}
	m.words[idx] = value
	return m.accessTime, nil
}

// WriteBlock stores consecutive words starting at addr, charging a single
// access time regardless of the block length.
func (m *Memory) WriteBlock(addr uint32, values []uint32) (uint64, error) {
	idx, err := m.wordIndex(addr)
	if err != nil {
		return 0, err
	}
	if idx+len(values) > len(m.words) {
		return 0, simerr.New(simerr.OutOfBounds, "block write at 0x%x outside memory bounds", addr)
	}
	copy(m.words[idx:idx+len(values)], values)
	return m.accessTime, nil
}

// Dump returns a read-only copy of the entire memory contents, for the
// trace formatter and for tests.
func (m *Memory) Dump() []uint32 {
	out := make([]uint32, len(m.words))
	copy(out, m.words)
	return out
}
