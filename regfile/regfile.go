// Package regfile implements the architectural register file: 32
// general-purpose 32-bit registers, with register 0 hardwired to zero.
package regfile

import "github.com/kestrelsim/rv32cache/simerr"

// NumRegisters is the number of general-purpose registers.
const NumRegisters = 32

// File holds the 32 general-purpose word registers.
type File struct {
	r [NumRegisters]uint32
}

// New creates a File with all registers at zero.
func New() *File {
	return &File{}
}

// Read returns the value of register i. Register 0 always reads as 0.
// i >= NumRegisters is a fatal simerr.InvalidRegister error.
func (f *File) Read(i uint32) (uint32, error) {
	if i >= NumRegisters {
		return 0, simerr.New(simerr.InvalidRegister, "register index %d out of range", i)
	}
	if i == 0 {
		return 0, nil
	}
	return f.r[i], nil
}

// Write stores v into register i. Writes to register 0 are silently
// discarded. i >= NumRegisters is a fatal simerr.InvalidRegister error.
func (f *File) Write(i uint32, v uint32) error {
	if i >= NumRegisters {
		return simerr.New(simerr.InvalidRegister, "register index %d out of range", i)
	}
	if i == 0 {
		return nil
	}
	f.r[i] = v
	return nil
}

// Snapshot returns a read-only copy of all 32 registers, for the trace
// formatter and for tests — callers never get a handle to the live array.
func (f *File) Snapshot() [NumRegisters]uint32 {
	return f.r
}
