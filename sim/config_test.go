package sim_test

import (
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kestrelsim/rv32cache/cache"
	"github.com/kestrelsim/rv32cache/sim"
)

var _ = Describe("Config", func() {
	It("validates the default configuration", func() {
		Expect(sim.DefaultConfig().Validate()).NotTo(HaveOccurred())
	})

	It("round-trips through JSON save and load", func() {
		dir := GinkgoT().TempDir()
		path := filepath.Join(dir, "config.json")

		cfg := sim.DefaultConfig()
		cfg.Cache.ReplacementPolicy = cache.FIFO

		Expect(sim.SaveConfig(cfg, path)).To(Succeed())

		loaded, err := sim.LoadConfig(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded.Cache.ReplacementPolicy).To(Equal(cache.FIFO))
		Expect(loaded.Memory.SizeWords).To(Equal(cfg.Memory.SizeWords))
	})

	It("rejects an invalid cache configuration when a cache is in use", func() {
		cfg := sim.DefaultConfig()
		cfg.Cache.SizeWords = 30
		Expect(cfg.Validate()).To(HaveOccurred())
	})

	It("ignores cache validity when no cache is configured", func() {
		cfg := sim.DefaultConfig()
		cfg.UseCache = false
		cfg.Cache.SizeWords = 30
		Expect(cfg.Validate()).NotTo(HaveOccurred())
	})
})
