// Package loader reads an ASCII "0"/"1" binary image, one 32-bit
// instruction per line, and writes it into main memory at sequential word
// addresses starting at 0.
package loader

import (
	"bufio"
	"os"

	"github.com/kestrelsim/rv32cache/memsys"
	"github.com/kestrelsim/rv32cache/simerr"
)

const lineLength = 32

// Load reads the binary image at path and writes it into sys starting at
// address 0, raw (bypassing any cache). Returns the program's end address
// (the byte address one past the last word written), for the simulation
// loop's halt condition.
func Load(path string, sys *memsys.System) (uint32, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, simerr.Wrap(simerr.BinaryNotFound, err, "opening %s", path)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	var addr uint32
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) != lineLength {
			return 0, simerr.New(simerr.BinaryMalformed, "line has length %d, want %d", len(line), lineLength)
		}

		word := assembleWord(line)

		if err := sys.RawWriteWord(addr, word); err != nil {
			return 0, err
		}
		addr += 4
	}
	if err := scanner.Err(); err != nil {
		return 0, simerr.Wrap(simerr.BinaryNotFound, err, "reading %s", path)
	}

	sys.SetProgramRange(addr)
	return addr, nil
}

// assembleWord packs a 32-character "0"/"1" line into a word, character 0
// becoming the most significant bit. Any character other than '1' is
// treated as '0', per the input format's tolerance rule.
func assembleWord(line string) uint32 {
	var word uint32
	for i := 0; i < lineLength; i++ {
		word <<= 1
		if line[i] == '1' {
			word |= 1
		}
	}
	return word
}
