// Package cpu implements instruction execution: ALU, branch, and
// load/store semantics, wired to a register file and a memory facade.
package cpu

import (
	"github.com/kestrelsim/rv32cache/isa"
	"github.com/kestrelsim/rv32cache/memsys"
	"github.com/kestrelsim/rv32cache/regfile"
)

// Result carries an executed instruction's architectural effects: the
// next PC, an optional write-back, and the memory-access cycles incurred
// during execute (0 for non-memory instructions).
type Result struct {
	NextPC       uint32
	HasWriteback bool
	Writeback    uint32
	MemCycles    uint64
}

// Unit executes decoded instructions against a shared register file and
// memory facade.
type Unit struct {
	regs *regfile.File
	mem  *memsys.System
}

// New creates a Unit wired to regs and mem.
func New(regs *regfile.File, mem *memsys.System) *Unit {
	return &Unit{regs: regs, mem: mem}
}

// Execute applies inst's semantics at program counter pc and returns the
// resulting next PC, write-back value, and memory cycles. Register writes
// are not applied here — the caller commits Result.Writeback during its
// own write-back stage, matching the fetch→decode→execute→write-back
// ordering the simulation loop enforces.
func (u *Unit) Execute(inst *isa.Instruction, pc uint32) (Result, error) {
	rs1, err := u.regs.Read(inst.Rs1)
	if err != nil {
		return Result{}, err
	}
	rs2, err := u.regs.Read(inst.Rs2)
	if err != nil {
		return Result{}, err
	}

	switch inst.Op {
	case isa.LW:
		addr := rs1 + uint32(inst.Imm)
		val, cycles, err := u.mem.ReadWord(addr)
		if err != nil {
			return Result{}, err
		}
		return Result{NextPC: pc + 4, HasWriteback: true, Writeback: val, MemCycles: cycles}, nil

	case isa.SW:
		addr := rs1 + uint32(inst.Imm)
		cycles, err := u.mem.WriteWord(addr, rs2)
		if err != nil {
			return Result{}, err
		}
		return Result{NextPC: pc + 4, MemCycles: cycles}, nil

	case isa.ADDI:
		return Result{NextPC: pc + 4, HasWriteback: true, Writeback: rs1 + uint32(inst.Imm)}, nil

	case isa.JALR:
		target := (rs1 + uint32(inst.Imm)) &^ 1
		return Result{NextPC: target, HasWriteback: true, Writeback: pc + 4}, nil

	case isa.ADD:
		return Result{NextPC: pc + 4, HasWriteback: true, Writeback: rs1 + rs2}, nil

	case isa.SUB:
		return Result{NextPC: pc + 4, HasWriteback: true, Writeback: rs1 - rs2}, nil

	case isa.SLL:
		return Result{NextPC: pc + 4, HasWriteback: true, Writeback: rs1 << (rs2 & 31)}, nil

	case isa.XOR:
		return Result{NextPC: pc + 4, HasWriteback: true, Writeback: rs1 ^ rs2}, nil

	case isa.SRA:
		return Result{NextPC: pc + 4, HasWriteback: true, Writeback: uint32(int32(rs1) >> (rs2 & 31))}, nil

	case isa.OR:
		return Result{NextPC: pc + 4, HasWriteback: true, Writeback: rs1 | rs2}, nil

	case isa.AND:
		return Result{NextPC: pc + 4, HasWriteback: true, Writeback: rs1 & rs2}, nil

	case isa.LUI:
		return Result{NextPC: pc + 4, HasWriteback: true, Writeback: uint32(inst.Imm)}, nil

	case isa.BEQ:
		return Result{NextPC: branchTarget(pc, inst.Imm, rs1 == rs2)}, nil

	case isa.BNE:
		return Result{NextPC: branchTarget(pc, inst.Imm, rs1 != rs2)}, nil

	case isa.BLT:
		return Result{NextPC: branchTarget(pc, inst.Imm, int32(rs1) < int32(rs2))}, nil

	case isa.BGE:
		return Result{NextPC: branchTarget(pc, inst.Imm, int32(rs1) >= int32(rs2))}, nil

	case isa.JAL:
		return Result{NextPC: pc + uint32(inst.Imm), HasWriteback: true, Writeback: pc + 4}, nil
	}

	return Result{NextPC: pc + 4}, nil
}

func branchTarget(pc uint32, imm int32, taken bool) uint32 {
	if taken {
		return pc + uint32(imm)
	}
	return pc + 4
}

// WriteBack commits a Result's register write, if any.
func (u *Unit) WriteBack(inst *isa.Instruction, res Result) error {
	if !res.HasWriteback {
		return nil
	}
	return u.regs.Write(inst.Rd, res.Writeback)
}
