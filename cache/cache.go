// Package cache implements a configurable set-associative cache sitting in
// front of a word-addressed main memory. It models hit/miss timing,
// write-back vs write-through propagation, and LRU/FIFO/Random
// replacement, all charged in cycles rather than wall-clock time.
package cache

import (
	"math/bits"
	"math/rand"

	"github.com/kestrelsim/rv32cache/simerr"
)

// WritePolicy selects how a cache write is propagated to main memory.
type WritePolicy int

const (
	// WriteThrough propagates every write to main memory immediately;
	// lines are never dirty.
	WriteThrough WritePolicy = iota
	// WriteBack marks written lines dirty and defers the write to main
	// memory until the line is evicted.
	WriteBack
)

// ReplacementPolicy selects how a set picks its next eviction victim.
type ReplacementPolicy int

const (
	// LRU evicts the least-recently-used way; hits and misses both
	// move the accessed way to the most-recently-used position.
	LRU ReplacementPolicy = iota
	// FIFO evicts ways in the order they were filled; only misses
	// change the order, hits leave it untouched.
	FIFO
	// Random evicts a uniformly chosen way and never touches the
	// per-set order list.
	Random
)

// Config holds the cache's construction parameters. See spec: capacity and
// block size are in words, associativity is ways per set.
type Config struct {
	SizeWords         int               `json:"size_words"`
	BlockSizeWords    int               `json:"block_size_words"`
	Associativity     int               `json:"associativity"`
	MissPenalty       uint64            `json:"miss_penalty"`
	HitTime           uint64            `json:"hit_time"`
	WritePolicy       WritePolicy       `json:"write_policy"`
	ReplacementPolicy ReplacementPolicy `json:"replacement_policy"`
}

// DefaultConfig returns the spec's default cache configuration:
// 32 words, 2-word blocks, 2-way, write-through, LRU.
func DefaultConfig() Config {
	return Config{
		SizeWords:         32,
		BlockSizeWords:    2,
		Associativity:     2,
		MissPenalty:       4,
		HitTime:           10,
		WritePolicy:       WriteThrough,
		ReplacementPolicy: LRU,
	}
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// Validate checks the structural preconditions on a Config: capacity,
// block size and associativity must be positive powers of two, capacity
// must be an even multiple of block*associativity, and the resulting tag
// field must be at least one bit wide (spec §9's open question, treated as
// a hard precondition here rather than left to silently misbehave).
func (c Config) Validate() error {
	if !isPowerOfTwo(c.SizeWords) {
		return simerr.New(simerr.ConfigError, "cache size %d is not a positive power of two", c.SizeWords)
	}
	if !isPowerOfTwo(c.BlockSizeWords) {
		return simerr.New(simerr.ConfigError, "block size %d is not a positive power of two", c.BlockSizeWords)
	}
	if !isPowerOfTwo(c.Associativity) {
		return simerr.New(simerr.ConfigError, "associativity %d is not a positive power of two", c.Associativity)
	}
	waysPerSet := c.BlockSizeWords * c.Associativity
	if c.SizeWords%waysPerSet != 0 {
		return simerr.New(simerr.ConfigError, "cache size %d is not a multiple of block*associativity (%d)", c.SizeWords, waysPerSet)
	}
	numSets := c.SizeWords / waysPerSet
	offsetBits := bits.TrailingZeros(uint(c.BlockSizeWords * 4))
	indexBits := bits.TrailingZeros(uint(numSets))
	tagBits := 32 - offsetBits - indexBits
	if tagBits < 1 {
		return simerr.New(simerr.ConfigError, "configuration leaves no room for a tag field (%d bits)", tagBits)
	}
	return nil
}

// Backing is the next level of the memory hierarchy a Cache fills from and
// writes back to. mem.Memory satisfies this directly.
type Backing interface {
	ReadBlock(addr uint32, n int) ([]uint32, uint64, error)
	WriteBlock(addr uint32, values []uint32) (uint64, error)
	WriteWord(addr uint32, value uint32) (uint64, error)
}

// Statistics holds non-decreasing cache access counters.
type Statistics struct {
	Hits   uint64
	Misses uint64
}

// LineView is a read-only snapshot of one cache line, for the trace
// formatter and for tests.
type LineView struct {
	Tag    uint32
	Index  uint32
	Active bool
	Dirty  bool
	Data   []uint32
}

type line struct {
	tag    uint32
	index  uint32
	data   []uint32
	active bool
	dirty  bool
}

type set struct {
	lines []*line
	order []int // index into lines; front (index 0) is the eviction candidate
}

// Cache is a set-associative cache bound to exactly one Backing store.
type Cache struct {
	cfg Config

	numSets    int
	offsetBits uint
	indexBits  uint

	sets    []*set
	backing Backing
	stats   Statistics
}

// New constructs a Cache bound to backing. Returns a ConfigError if cfg
// violates a structural precondition.
func New(cfg Config, backing Backing) (*Cache, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	waysPerSet := cfg.BlockSizeWords * cfg.Associativity
	numSets := cfg.SizeWords / waysPerSet

	c := &Cache{
		cfg:        cfg,
		numSets:    numSets,
		offsetBits: uint(bits.TrailingZeros(uint(cfg.BlockSizeWords * 4))),
		indexBits:  uint(bits.TrailingZeros(uint(numSets))),
		sets:       make([]*set, numSets),
		backing:    backing,
	}

	for i := range c.sets {
		s := &set{
			lines: make([]*line, cfg.Associativity),
			order: make([]int, cfg.Associativity),
		}
		for w := 0; w < cfg.Associativity; w++ {
			s.lines[w] = &line{data: make([]uint32, cfg.BlockSizeWords)}
			s.order[w] = w
		}
		c.sets[i] = s
	}

	return c, nil
}

// Config returns the cache's configuration.
func (c *Cache) Config() Config {
	return c.cfg
}

// Stats returns the current hit/miss counters.
func (c *Cache) Stats() Statistics {
	return c.stats
}

// decompose splits a word-aligned byte address into (tag, index, offset in
// words within the block).
func (c *Cache) decompose(addr uint32) (tag uint32, index uint32, offsetWords uint32) {
	offsetBytes := addr & uint32(1<<c.offsetBits-1)
	index = (addr >> c.offsetBits) & uint32(1<<c.indexBits-1)
	tag = addr >> (c.offsetBits + c.indexBits)
	return tag, index, offsetBytes / 4
}

func (c *Cache) blockAddr(tag, index uint32) uint32 {
	return (tag<<c.indexBits | index) << c.offsetBits
}

// lookup scans a set for an active line matching tag, auditing the line's
// recorded index field against the index this address decomposed to.
func (c *Cache) lookup(s *set, tag, index uint32) (way int, found bool, err error) {
	for w, ln := range s.lines {
		if !ln.active || ln.tag != tag {
			continue
		}
		if ln.index != index {
			return 0, false, simerr.New(simerr.CacheInconsistency,
				"line tag 0x%x carries index %d but address decodes to index %d", ln.tag, ln.index, index)
		}
		return w, true, nil
	}
	return 0, false, nil
}

// touchOnHit applies the replacement policy's hit behavior: LRU moves the
// way to the back (most-recently-used) of the order list; FIFO and Random
// leave the order list untouched.
func (s *set) touchOnHit(policy ReplacementPolicy, way int) {
	if policy != LRU {
		return
	}
	s.moveToBack(way)
}

func (s *set) moveToBack(way int) {
	for i, w := range s.order {
		if w == way {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.order = append(s.order, way)
}

// chooseVictim selects the way to evict on a miss, per the configured
// replacement policy. LRU and FIFO pop the front of the order list and
// push it to the back; Random picks uniformly and never touches the order
// list (spec §9: the order list is deliberately unused under Random).
func (s *set) chooseVictim(policy ReplacementPolicy) int {
	switch policy {
	case Random:
		return rand.Intn(len(s.lines))
	default: // LRU, FIFO
		victim := s.order[0]
		s.order = s.order[1:]
		s.order = append(s.order, victim)
		return victim
	}
}

// handleMiss evicts a victim (writing it back first if dirty and the write
// policy is WriteBack), fills it from backing, and returns the filled line
// plus the backing-store cycles (fill, and write-back if any) the miss
// incurred; the caller adds the hit time and the miss penalty.
func (c *Cache) handleMiss(s *set, tag, index uint32) (*line, uint64, error) {
	way := s.chooseVictim(c.cfg.ReplacementPolicy)
	victim := s.lines[way]

	var cycles uint64

	if victim.active && victim.dirty {
		oldAddr := c.blockAddr(victim.tag, victim.index)
		wbCycles, err := c.backing.WriteBlock(oldAddr, victim.data)
		if err != nil {
			return nil, 0, err
		}
		cycles += wbCycles
	}

	blockAddr := c.blockAddr(tag, index)
	data, fillCycles, err := c.backing.ReadBlock(blockAddr, c.cfg.BlockSizeWords)
	if err != nil {
		return nil, 0, err
	}
	cycles += fillCycles

	copy(victim.data, data)
	victim.tag = tag
	victim.index = index
	victim.active = true
	victim.dirty = false

	return victim, cycles, nil
}

// Read returns the word at addr (a 4-byte-aligned byte address) and the
// total cycles charged for the access.
func (c *Cache) Read(addr uint32) (uint32, uint64, error) {
	tag, index, offset := c.decompose(addr)
	s := c.sets[index]

	way, hit, err := c.lookup(s, tag, index)
	if err != nil {
		return 0, 0, err
	}

	if hit {
		c.stats.Hits++
		s.touchOnHit(c.cfg.ReplacementPolicy, way)
		ln := s.lines[way]
		return ln.data[offset], c.cfg.HitTime, nil
	}

	c.stats.Misses++
	ln, missCycles, err := c.handleMiss(s, tag, index)
	if err != nil {
		return 0, 0, err
	}
	cycles := c.cfg.HitTime + c.cfg.MissPenalty + missCycles
	return ln.data[offset], cycles, nil
}

// Write stores value at addr (a 4-byte-aligned byte address) and returns
// the total cycles charged for the access. On a miss, the line is
// filled first (write-allocate), then written.
func (c *Cache) Write(addr uint32, value uint32) (uint64, error) {
	tag, index, offset := c.decompose(addr)
	s := c.sets[index]

	way, hit, err := c.lookup(s, tag, index)
	if err != nil {
		return 0, err
	}

	var cycles uint64
	var ln *line

	if hit {
		c.stats.Hits++
		s.touchOnHit(c.cfg.ReplacementPolicy, way)
		ln = s.lines[way]
		cycles = c.cfg.HitTime
	} else {
		c.stats.Misses++
		var missCycles uint64
		ln, missCycles, err = c.handleMiss(s, tag, index)
		if err != nil {
			return 0, err
		}
		cycles = c.cfg.HitTime + c.cfg.MissPenalty + missCycles
	}

	ln.data[offset] = value

	switch c.cfg.WritePolicy {
	case WriteThrough:
		wtCycles, err := c.backing.WriteWord(addr, value)
		if err != nil {
			return 0, err
		}
		cycles += wtCycles
	case WriteBack:
		ln.dirty = true
	}

	return cycles, nil
}

// Lines returns a read-only snapshot of every line in the cache, ordered
// by set then way, for the trace formatter and for tests.
func (c *Cache) Lines() []LineView {
	var out []LineView
	for _, s := range c.sets {
		for _, ln := range s.lines {
			data := make([]uint32, len(ln.data))
			copy(data, ln.data)
			out = append(out, LineView{
				Tag:    ln.tag,
				Index:  ln.index,
				Active: ln.active,
				Dirty:  ln.dirty,
				Data:   data,
			})
		}
	}
	return out
}
