package config_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	"mnemo/internal/config"
)

var _ = Describe("Load", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	It("returns defaults when the file does not exist", func() {
		cfg, err := config.Load(filepath.Join(dir, "missing.toml"))
		Expect(err).NotTo(HaveOccurred())

		Expect(cfg.Providers).To(Equal([]string{"groq", "openai"}))
		Expect(cfg.Gateway.Addr).To(Equal(":8484"))
		Expect(cfg.Gateway.CookieName).To(Equal("uid"))
		Expect(cfg.Memory.Backend).To(Equal("file"))
		Expect(cfg.History.Window).To(Equal(100))
		Expect(cfg.LLMs["groq"].BaseURL).To(Equal("https://api.groq.com/openai/v1"))
		Expect(cfg.LLMs["openai"].Model).To(Equal("gpt-4o-mini"))
	})

	It("overrides defaults with values from the file", func() {
		path := filepath.Join(dir, "config.toml")
		data := `
providers = ["local"]

[llm.local]
model = "llama3"
base_url = "http://localhost:11434/v1"

[gateway]
addr = ":9000"

[memory]
backend = "sqlite"
path = "/tmp/facts.json"

[history]
window = 20
`
		Expect(os.WriteFile(path, []byte(data), 0o644)).To(Succeed())

		cfg, err := config.Load(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Providers).To(Equal([]string{"local"}))
		Expect(cfg.LLMs["local"].Model).To(Equal("llama3"))
		Expect(cfg.LLMs["local"].Temperature).To(Equal(0.4))
		Expect(cfg.Gateway.Addr).To(Equal(":9000"))
		Expect(cfg.Gateway.CookieName).To(Equal("uid"))
		Expect(cfg.Memory.Backend).To(Equal("sqlite"))
		Expect(cfg.Memory.Path).To(Equal("/tmp/facts.json"))
		Expect(cfg.History.Window).To(Equal(20))
	})

	It("fails on invalid TOML", func() {
		path := filepath.Join(dir, "bad.toml")
		Expect(os.WriteFile(path, []byte("[gateway\naddr="), 0o644)).To(Succeed())

		_, err := config.Load(path)
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("LLMConfig.Key", func() {
	It("prefers the inline key", func() {
		c := &config.LLMConfig{APIKey: "inline", APIKeyEnv: "MNEMO_TEST_KEY"}
		Expect(c.Key()).To(Equal("inline"))
	})

	It("falls back to the environment", func() {
		GinkgoT().Setenv("MNEMO_TEST_KEY", "from-env")
		c := &config.LLMConfig{APIKeyEnv: "MNEMO_TEST_KEY"}
		Expect(c.Key()).To(Equal("from-env"))
	})
})

var _ = Describe("Overlay", func() {
	It("applies MNEMO_ environment variables", func() {
		GinkgoT().Setenv("MNEMO_GATEWAY_ADDR", ":7777")
		GinkgoT().Setenv("MNEMO_HISTORY_WINDOW", "5")

		cfg := config.Default()
		config.Overlay(cfg, config.NewViper())

		Expect(cfg.Gateway.Addr).To(Equal(":7777"))
		Expect(cfg.History.Window).To(Equal(5))
		Expect(cfg.Memory.Backend).To(Equal("file"))
	})

	It("lets a changed flag win over the environment", func() {
		GinkgoT().Setenv("MNEMO_MEMORY_BACKEND", "redis")

		cmd := &cobra.Command{Use: "test"}
		var backend string
		cmd.Flags().StringVar(&backend, "backend", "", "")
		Expect(cmd.Flags().Set("backend", "sqlite")).To(Succeed())

		v := config.NewViper()
		config.BindFlags(v, cmd, map[string]string{"backend": config.KeyMemoryBackend})

		cfg := config.Default()
		config.Overlay(cfg, v)
		Expect(cfg.Memory.Backend).To(Equal("sqlite"))
	})
})
