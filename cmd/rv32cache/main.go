// Command rv32cache simulates an RV32I binary and reports its register,
// cache, and memory state at termination.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/kestrelsim/rv32cache/sim"
	"github.com/kestrelsim/rv32cache/trace"
)

var (
	configPath = flag.String("config", "", "path to a JSON configuration file")
	noCache    = flag.Bool("no-cache", false, "run without a cache, direct to main memory")
	verbose    = flag.Bool("v", false, "print a decode mnemonic for each instruction")
)

func main() {
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: rv32cache <binary>")
		os.Exit(1)
	}

	if err := run(flag.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(0)
	}
}

func run(binaryPath string) error {
	cfg := sim.DefaultConfig()
	if *configPath != "" {
		loaded, err := sim.LoadConfig(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if *noCache {
		cfg.UseCache = false
	}

	s, err := sim.New(cfg, binaryPath, os.Stderr)
	if err != nil {
		return err
	}

	f := trace.New(os.Stdout)

	for s.Running() {
		report, err := s.Step()
		if err != nil {
			return err
		}
		if *verbose {
			fmt.Fprintf(os.Stdout, "%s\n", report.Inst)
		}
		f.Step(report)
	}
	f.Final(s.Time(), s.Memory())
	return nil
}
