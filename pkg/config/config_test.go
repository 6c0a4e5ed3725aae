package config_test

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/petalhealth/petal/pkg/config"
)

func TestConfig(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Config Suite")
}

var _ = Describe("Configer config", func() {
	var tmpDir string

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "config-test-*")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	Describe("LoadConfig", func() {
		It("returns default config when no config file exists", func() {
			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			cfg, err := c.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg).NotTo(BeNil())

			defaults := config.NewDefaultConfig()
			Expect(cfg.Version).To(Equal(defaults.Version))
			Expect(cfg.API.Listen).To(Equal(defaults.API.Listen))
			Expect(cfg.Corpus.Root).To(Equal(defaults.Corpus.Root))
			Expect(cfg.History.Driver).To(Equal(defaults.History.Driver))
			Expect(cfg.VectorStore.Provider).To(Equal(defaults.VectorStore.Provider))
			Expect(cfg.VectorStore.Collection).To(Equal(defaults.VectorStore.Collection))
			Expect(cfg.Embedding.Provider).To(Equal(defaults.Embedding.Provider))
			Expect(cfg.Embedding.Model).To(Equal(defaults.Embedding.Model))
			Expect(cfg.Embedding.Dimensions).To(Equal(defaults.Embedding.Dimensions))
			Expect(cfg.LLM.Model).To(Equal(defaults.LLM.Model))
			Expect(cfg.Retrieval.TopK).To(Equal(defaults.Retrieval.TopK))
			Expect(cfg.Conversation.MaxHistory).To(Equal(defaults.Conversation.MaxHistory))
			Expect(cfg.Conversation.RecallTriggers).NotTo(BeEmpty())
			Expect(cfg.EventStream.Provider).To(Equal(defaults.EventStream.Provider))
		})

		It("loads a valid config file and fills remaining defaults", func() {
			data := `version = 0

[api]
listen = ":9000"

[vector_store]
provider = "qdrant"
host = "qdrant.internal"

[embedding]
provider = "openai"
model = "text-embedding-3-small"
dimensions = 1536

[conversation]
recall_triggers = ["flashback"]
`
			err := os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(data), 0o600)
			Expect(err).NotTo(HaveOccurred())

			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			cfg, err := c.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.API.Listen).To(Equal(":9000"))
			Expect(cfg.VectorStore.Provider).To(Equal("qdrant"))
			Expect(cfg.VectorStore.Host).To(Equal("qdrant.internal"))
			Expect(cfg.Embedding.Dimensions).To(Equal(uint(1536)))
			Expect(cfg.Conversation.RecallTriggers).To(Equal([]string{"flashback"}))

			// Unset sections keep defaults.
			defaults := config.NewDefaultConfig()
			Expect(cfg.VectorStore.Port).To(Equal(defaults.VectorStore.Port))
			Expect(cfg.LLM.Model).To(Equal(defaults.LLM.Model))
			Expect(cfg.Retrieval.TopK).To(Equal(defaults.Retrieval.TopK))
		})

		It("rejects unsupported config versions", func() {
			data := "version = 99\n"
			err := os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(data), 0o600)
			Expect(err).NotTo(HaveOccurred())

			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			_, err = c.LoadConfig()
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("unsupported config version"))
		})
	})

	Describe("SaveConfig", func() {
		It("round-trips a config through disk", func() {
			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			cfg := config.NewDefaultConfig()
			cfg.Corpus.Root = "/srv/petal/corpus"
			Expect(c.SaveConfig(cfg)).To(Succeed())

			loaded, err := c.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.Corpus.Root).To(Equal("/srv/petal/corpus"))
		})

		It("rejects a nil config", func() {
			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(c.SaveConfig(nil)).To(HaveOccurred())
		})
	})

	Describe("SetConfigValue and GetConfigValue", func() {
		var c *config.Configer

		BeforeEach(func() {
			var err error
			c, err = config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())
		})

		It("sets and gets string keys", func() {
			Expect(c.SetConfigValue("llm.model", "gpt-4.1")).To(Succeed())
			v, err := c.GetConfigValue("llm.model")
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(Equal("gpt-4.1"))
		})

		It("sets and gets numeric keys", func() {
			Expect(c.SetConfigValue("embedding.dimensions", "1536")).To(Succeed())
			v, err := c.GetConfigValue("embedding.dimensions")
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(Equal("1536"))
		})

		It("sets list keys from comma-separated values", func() {
			Expect(c.SetConfigValue("eventstream.brokers", "b1:9092, b2:9092")).To(Succeed())
			v, err := c.GetConfigValue("eventstream.brokers")
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(Equal("b1:9092,b2:9092"))
		})

		It("rejects invalid numeric values", func() {
			Expect(c.SetConfigValue("retrieval.top_k", "lots")).To(HaveOccurred())
		})

		It("rejects unknown keys", func() {
			Expect(c.SetConfigValue("nope.nothing", "x")).To(HaveOccurred())
			_, err := c.GetConfigValue("nope.nothing")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("ValidConfigKeys", func() {
		It("covers every registered key exactly once", func() {
			keys := config.ValidConfigKeys()
			seen := map[string]bool{}
			for _, k := range keys {
				Expect(seen[k]).To(BeFalse(), "duplicate key %s", k)
				seen[k] = true
				Expect(config.IsValidConfigKey(k)).To(BeTrue())
			}
			Expect(keys).To(ContainElement("api.listen"))
			Expect(keys).To(ContainElement("conversation.recall_triggers"))
		})
	})

	Describe("PresetConfig", func() {
		It("returns an ollama preset with local targets", func() {
			cfg, err := config.PresetConfig("ollama")
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Embedding.Provider).To(Equal("ollama"))
			Expect(cfg.LLM.Provider).To(Equal("ollama"))
		})

		It("rejects unknown presets", func() {
			_, err := config.PresetConfig("cloudz")
			Expect(err).To(HaveOccurred())
		})
	})
})
