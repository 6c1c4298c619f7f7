package isa_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kestrelsim/rv32cache/isa"
)

func TestISA(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Decoder Suite")
}

func encodeR(opcode, funct3, funct7, rd, rs1, rs2 uint32) uint32 {
	return funct7<<25 | rs2<<20 | rs1<<15 | funct3<<12 | rd<<7 | opcode
}

func encodeI(opcode, funct3, rd, rs1 uint32, imm int32) uint32 {
	return uint32(imm)<<20 | rs1<<15 | funct3<<12 | rd<<7 | opcode
}

func encodeS(funct3, rs1, rs2 uint32, imm int32) uint32 {
	u := uint32(imm)
	return (u>>5&0x7f)<<25 | rs2<<20 | rs1<<15 | funct3<<12 | (u&0x1f)<<7 | 0x23
}

func encodeB(funct3, rs1, rs2 uint32, imm int32) uint32 {
	u := uint32(imm)
	bit12 := (u >> 12) & 1
	bit11 := (u >> 11) & 1
	bits10_5 := (u >> 5) & 0x3f
	bits4_1 := (u >> 1) & 0xf
	return bit12<<31 | bits10_5<<25 | rs2<<20 | rs1<<15 | funct3<<12 | bits4_1<<8 | bit11<<7 | 0x63
}

func encodeU(opcode, rd uint32, imm uint32) uint32 {
	return imm&0xfffff000 | rd<<7 | opcode
}

func encodeJ(rd uint32, imm int32) uint32 {
	u := uint32(imm)
	bit20 := (u >> 20) & 1
	bits10_1 := (u >> 1) & 0x3ff
	bit11 := (u >> 11) & 1
	bits19_12 := (u >> 12) & 0xff
	return bit20<<31 | bits10_1<<21 | bit11<<20 | bits19_12<<12 | rd<<7 | 0x6f
}

var _ = Describe("Decode", func() {
	It("decodes ADDI with a positive immediate", func() {
		inst, err := isa.Decode(encodeI(0x13, 0x0, 1, 2, 5))
		Expect(err).NotTo(HaveOccurred())
		Expect(inst.Op).To(Equal(isa.ADDI))
		Expect(inst.Rd).To(Equal(uint32(1)))
		Expect(inst.Rs1).To(Equal(uint32(2)))
		Expect(inst.Imm).To(Equal(int32(5)))
	})

	It("sign-extends a negative I-type immediate", func() {
		inst, err := isa.Decode(encodeI(0x13, 0x0, 1, 2, -1))
		Expect(err).NotTo(HaveOccurred())
		Expect(inst.Imm).To(Equal(int32(-1)))
	})

	It("decodes SW with a split S-type immediate", func() {
		inst, err := isa.Decode(encodeS(0x2, 5, 6, -4))
		Expect(err).NotTo(HaveOccurred())
		Expect(inst.Op).To(Equal(isa.SW))
		Expect(inst.Imm).To(Equal(int32(-4)))
		Expect(inst.Rs1).To(Equal(uint32(5)))
		Expect(inst.Rs2).To(Equal(uint32(6)))
	})

	It("decodes a B-type branch immediate round-trip across its valid range", func() {
		for imm := int32(-4096); imm <= 4094; imm += 2 {
			inst, err := isa.Decode(encodeB(0x0, 1, 2, imm))
			Expect(err).NotTo(HaveOccurred())
			Expect(inst.Op).To(Equal(isa.BEQ))
			Expect(inst.Imm).To(Equal(imm))
		}
	})

	It("decodes a J-type JAL immediate round-trip across a sample of its valid range", func() {
		for imm := int32(-1 << 20); imm <= (1<<20)-2; imm += 4096 {
			inst, err := isa.Decode(encodeJ(1, imm))
			Expect(err).NotTo(HaveOccurred())
			Expect(inst.Op).To(Equal(isa.JAL))
			Expect(inst.Imm).To(Equal(imm))
		}
	})

	It("decodes LUI without sign-extending the upper immediate", func() {
		inst, err := isa.Decode(encodeU(0x37, 1, 0xABCDE000))
		Expect(err).NotTo(HaveOccurred())
		Expect(inst.Op).To(Equal(isa.LUI))
		Expect(uint32(inst.Imm)).To(Equal(uint32(0xABCDE000)))
	})

	It("decodes each R-type ALU op by its funct3/funct7 pair", func() {
		cases := []struct {
			funct3, funct7 uint32
			op             isa.Op
		}{
			{0x0, 0x00, isa.ADD},
			{0x0, 0x20, isa.SUB},
			{0x1, 0x00, isa.SLL},
			{0x4, 0x00, isa.XOR},
			{0x5, 0x20, isa.SRA},
			{0x6, 0x00, isa.OR},
			{0x7, 0x00, isa.AND},
		}
		for _, c := range cases {
			inst, err := isa.Decode(encodeR(0x33, c.funct3, c.funct7, 1, 2, 3))
			Expect(err).NotTo(HaveOccurred())
			Expect(inst.Op).To(Equal(c.op))
		}
	})

	It("rejects an unknown opcode", func() {
		_, err := isa.Decode(0x0000007f)
		Expect(err).To(HaveOccurred())
	})

	It("rejects a recognized opcode with an unsupported funct3", func() {
		_, err := isa.Decode(encodeI(0x03, 0x5, 1, 2, 0))
		Expect(err).To(HaveOccurred())
	})
})
