// Package isa decodes 32-bit RV32I instruction words into their
// constituent fields: opcode, register indices, function cods, and a
// sign-extended immediate, classified by encoding format.
package isa

import (
	"fmt"

	"github.com/kestrelsim/rv32cache/simerr"
)

// Op identifies one decoded instruction mnemonic.
type Op uint8

const (
	LW Op = iota
	ADDI
	JALR
	SW
	ADD
	SUB
	SLL
	XOR
	SRA
	OR
	AND
	LUI
	BEQ
	BNE
	BLT
	BGE
	JAL
)

var opNames = [...]string{
	"LW", "ADDI", "JALR", "SW", "ADD", "SUB", "SLL", "XOR", "SRA", "OR",
	"AND", "LUI", "BEQ", "BNE", "BLT", "BGE", "JAL",
}

func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return "UNKNOWN"
}

// Format identifies the encoding class an instruction word belongs to.
type Format uint8

const (
	FormatR Format = iota
	FormatI
	FormatS
	FormatB
	FormatU
	FormatJ
)

// Opcode values, extracted from I[6:0].
const (
	opLoad   = 0x03
	opStore  = 0x23
	opOpImm  = 0x13
	opOp     = 0x33
	opLUI    = 0x37
	opBranch = 0x63
	opJALR   = 0x67
	opJAL    = 0x6f
)

// Instruction is a fully decoded instruction: the fields relevant to its
// format are populated, the rest left at zero.
type Instruction struct {
	Raw    uint32
	Op     Op
	Format Format
	Rd     uint32
	Rs1    uint32
	Rs2    uint32
	Funct3 uint32
	Funct7 uint32
	Imm    int32
}

func bits(word uint32, hi, lo uint) uint32 {
	width := hi - lo + 1
	mask := uint32(1)<<width - 1
	return (word >> lo) & mask
}

// sext sign-extends the low w bits of x to a full 32-bit two's-complement
// value.
func sext(x uint32, w uint) int32 {
	shift := 32 - w
	return int32(x<<shift) >> shift
}

// Decode classifies and decodes a 32-bit instruction word. An opcode or
// funct3/funct7 combination this decoder does not recognize is a fatal
// simerr.DecodeError.
func Decode(word uint32) (*Instruction, error) {
	opcode := bits(word, 6, 0)
	funct3 := bits(word, 14, 12)
	funct7 := bits(word, 31, 25)
	rd := bits(word, 11, 7)
	rs1 := bits(word, 19, 15)
	rs2 := bits(word, 24, 20)

	inst := &Instruction{Raw: word, Rd: rd, Rs1: rs1, Rs2: rs2, Funct3: funct3, Funct7: funct7}

	switch opcode {
	case opLoad:
		if funct3 != 0x2 {
			return nil, unknownInst(word, opcode, funct3, funct7)
		}
		inst.Op = LW
		inst.Format = FormatI
		inst.Imm = sext(bits(word, 31, 20), 12)

	case opOpImm:
		if funct3 != 0x0 {
			return nil, unknownInst(word, opcode, funct3, funct7)
		}
		inst.Op = ADDI
		inst.Format = FormatI
		inst.Imm = sext(bits(word, 31, 20), 12)

	case opJALR:
		if funct3 != 0x0 {
			return nil, unknownInst(word, opcode, funct3, funct7)
		}
		inst.Op = JALR
		inst.Format = FormatI
		inst.Imm = sext(bits(word, 31, 20), 12)

	case opStore:
		if funct3 != 0x2 {
			return nil, unknownInst(word, opcode, funct3, funct7)
		}
		inst.Op = SW
		inst.Format = FormatS
		imm := bits(word, 31, 25)<<5 | bits(word, 11, 7)
		inst.Imm = sext(imm, 12)

	case opOp:
		inst.Format = FormatR
		switch {
		case funct3 == 0x0 && funct7 == 0x00:
			inst.Op = ADD
		case funct3 == 0x0 && funct7 == 0x20:
			inst.Op = SUB
		case funct3 == 0x1 && funct7 == 0x00:
			inst.Op = SLL
		case funct3 == 0x4 && funct7 == 0x00:
			inst.Op = XOR
		case funct3 == 0x5 && funct7 == 0x20:
			inst.Op = SRA
		case funct3 == 0x6 && funct7 == 0x00:
			inst.Op = OR
		case funct3 == 0x7 && funct7 == 0x00:
			inst.Op = AND
		default:
			return nil, unknownInst(word, opcode, funct3, funct7)
		}

	case opLUI:
		inst.Op = LUI
		inst.Format = FormatU
		inst.Imm = int32(bits(word, 31, 12) << 12)

	case opBranch:
		inst.Format = FormatB
		switch funct3 {
		case 0x0:
			inst.Op = BEQ
		case 0x1:
			inst.Op = BNE
		case 0x4:
			inst.Op = BLT
		case 0x5:
			inst.Op = BGE
		default:
			return nil, unknownInst(word, opcode, funct3, funct7)
		}
		imm := bits(word, 31, 31)<<12 | bits(word, 7, 7)<<11 | bits(word, 30, 25)<<5 | bits(word, 11, 8)<<1
		inst.Imm = sext(imm, 13)

	case opJAL:
		inst.Op = JAL
		inst.Format = FormatJ
		imm := bits(word, 31, 31)<<20 | bits(word, 19, 12)<<12 | bits(word, 20, 20)<<11 | bits(word, 30, 21)<<1
		inst.Imm = sext(imm, 21)

	default:
		return nil, unknownInst(word, opcode, funct3, funct7)
	}

	return inst, nil
}

func unknownInst(word, opcode, funct3, funct7 uint32) error {
	return simerr.New(simerr.DecodeError, "unrecognized instruction 0x%08x (opcode=0x%x funct3=0x%x funct7=0x%x)", word, opcode, funct3, funct7)
}

// HasDest reports whether this instruction writes a register.
func (i *Instruction) HasDest() bool {
	switch i.Op {
	case SW, BEQ, BNE, BLT, BGE:
		return false
	default:
		return true
	}
}

// IsMemory reports whether this instruction accesses main memory.
func (i *Instruction) IsMemory() bool {
	return i.Op == LW || i.Op == SW
}

// String renders a disassembly line, for the CLI's -v output and for
// debugging. Not used by the core for any semantic decision.
func (i *Instruction) String() string {
	switch i.Format {
	case FormatR:
		return fmt.Sprintf("%s x%d, x%d, x%d", i.Op, i.Rd, i.Rs1, i.Rs2)
	case FormatI:
		if i.Op == LW || i.Op == JALR {
			return fmt.Sprintf("%s x%d, %d(x%d)", i.Op, i.Rd, i.Imm, i.Rs1)
		}
		return fmt.Sprintf("%s x%d, x%d, %d", i.Op, i.Rd, i.Rs1, i.Imm)
	case FormatS:
		return fmt.Sprintf("%s x%d, %d(x%d)", i.Op, i.Rs2, i.Imm, i.Rs1)
	case FormatB:
		return fmt.Sprintf("%s x%d, x%d, %d", i.Op, i.Rs1, i.Rs2, i.Imm)
	case FormatU:
		return fmt.Sprintf("%s x%d, 0x%x", i.Op, i.Rd, uint32(i.Imm)>>12)
	case FormatJ:
		return fmt.Sprintf("%s x%d, %d", i.Op, i.Rd, i.Imm)
	default:
		return fmt.Sprintf("0x%08x", i.Raw)
	}
}
