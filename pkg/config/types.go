package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Config represents the persistent petal configuration stored as config.toml
// in the .petal/ directory. The TOML layout uses sections for logical grouping.
type Config struct {
	Version      int                `toml:"version"`
	API          APIConfig          `toml:"api"`
	Corpus       CorpusConfig       `toml:"corpus"`
	History      HistoryConfig      `toml:"history"`
	VectorStore  VectorStoreConfig  `toml:"vector_store"`
	Embedding    EmbeddingConfig    `toml:"embedding"`
	LLM          LLMConfig          `toml:"llm"`
	Retrieval    RetrievalConfig    `toml:"retrieval"`
	Conversation ConversationConfig `toml:"conversation"`
	EventStream  EventStreamConfig  `toml:"eventstream"`
}

// APIConfig holds API server settings.
type APIConfig struct {
	Listen string `toml:"listen,omitempty"`
}

// CorpusConfig holds document corpus settings.
type CorpusConfig struct {
	Root  string `toml:"root,omitempty"`
	Watch bool   `toml:"watch,omitempty"`
}

// HistoryConfig holds conversation history storage settings.
type HistoryConfig struct {
	Driver     string `toml:"driver,omitempty"`
	SQLitePath string `toml:"sqlite_path,omitempty"`
}

// VectorStoreConfig holds vector store settings.
type VectorStoreConfig struct {
	Provider   string `toml:"provider,omitempty"`
	Host       string `toml:"host,omitempty"`
	Port       uint   `toml:"port,omitempty"`
	Collection string `toml:"collection,omitempty"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider   string `toml:"provider,omitempty"`
	Target     string `toml:"target,omitempty"`
	Model      string `toml:"model,omitempty"`
	Dimensions uint   `toml:"dimensions,omitempty"`
}

// LLMConfig holds generation provider settings.
type LLMConfig struct {
	Provider string `toml:"provider,omitempty"`
	Target   string `toml:"target,omitempty"`
	Model    string `toml:"model,omitempty"`
}

// RetrievalConfig holds retrieval settings.
type RetrievalConfig struct {
	TopK uint `toml:"top_k,omitempty"`
}

// ConversationConfig holds conversation compaction settings.
type ConversationConfig struct {
	MaxHistory     uint     `toml:"max_history,omitempty"`
	RecentWindow   uint     `toml:"recent_window,omitempty"`
	RecallTriggers []string `toml:"recall_triggers,omitempty"`
}

// EventStreamConfig holds event publishing settings.
type EventStreamConfig struct {
	Provider string   `toml:"provider,omitempty"`
	Brokers  []string `toml:"brokers,omitempty"`
	Topic    string   `toml:"topic,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"api.listen": {
		get: func(c *Config) string { return c.API.Listen },
		set: func(c *Config, v string) error { c.API.Listen = v; return nil },
	},
	"corpus.root": {
		get: func(c *Config) string { return c.Corpus.Root },
		set: func(c *Config, v string) error { c.Corpus.Root = v; return nil },
	},
	"corpus.watch": {
		get: func(c *Config) string { return strconv.FormatBool(c.Corpus.Watch) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for corpus.watch: %w", err)
			}
			c.Corpus.Watch = b
			return nil
		},
	},
	"history.driver": {
		get: func(c *Config) string { return c.History.Driver },
		set: func(c *Config, v string) error { c.History.Driver = v; return nil },
	},
	"history.sqlite_path": {
		get: func(c *Config) string { return c.History.SQLitePath },
		set: func(c *Config, v string) error { c.History.SQLitePath = v; return nil },
	},
	"vector_store.provider": {
		get: func(c *Config) string { return c.VectorStore.Provider },
		set: func(c *Config, v string) error { c.VectorStore.Provider = v; return nil },
	},
	"vector_store.host": {
		get: func(c *Config) string { return c.VectorStore.Host },
		set: func(c *Config, v string) error { c.VectorStore.Host = v; return nil },
	},
	"vector_store.port": {
		get: func(c *Config) string {
			if c.VectorStore.Port == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.VectorStore.Port), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 16)
			if err != nil {
				return fmt.Errorf("invalid value for vector_store.port: %w", err)
			}
			c.VectorStore.Port = uint(n)
			return nil
		},
	},
	"vector_store.collection": {
		get: func(c *Config) string { return c.VectorStore.Collection },
		set: func(c *Config, v string) error { c.VectorStore.Collection = v; return nil },
	},
	"embedding.provider": {
		get: func(c *Config) string { return c.Embedding.Provider },
		set: func(c *Config, v string) error { c.Embedding.Provider = v; return nil },
	},
	"embedding.target": {
		get: func(c *Config) string { return c.Embedding.Target },
		set: func(c *Config, v string) error { c.Embedding.Target = v; return nil },
	},
	"embedding.model": {
		get: func(c *Config) string { return c.Embedding.Model },
		set: func(c *Config, v string) error { c.Embedding.Model = v; return nil },
	},
	"embedding.dimensions": {
		get: func(c *Config) string {
			if c.Embedding.Dimensions == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Embedding.Dimensions), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for embedding.dimensions: %w", err)
			}
			c.Embedding.Dimensions = uint(n)
			return nil
		},
	},
	"llm.provider": {
		get: func(c *Config) string { return c.LLM.Provider },
		set: func(c *Config, v string) error { c.LLM.Provider = v; return nil },
	},
	"llm.target": {
		get: func(c *Config) string { return c.LLM.Target },
		set: func(c *Config, v string) error { c.LLM.Target = v; return nil },
	},
	"llm.model": {
		get: func(c *Config) string { return c.LLM.Model },
		set: func(c *Config, v string) error { c.LLM.Model = v; return nil },
	},
	"retrieval.top_k": {
		get: func(c *Config) string {
			if c.Retrieval.TopK == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Retrieval.TopK), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 32)
			if err != nil {
				return fmt.Errorf("invalid value for retrieval.top_k: %w", err)
			}
			c.Retrieval.TopK = uint(n)
			return nil
		},
	},
	"conversation.max_history": {
		get: func(c *Config) string {
			if c.Conversation.MaxHistory == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Conversation.MaxHistory), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 32)
			if err != nil {
				return fmt.Errorf("invalid value for conversation.max_history: %w", err)
			}
			c.Conversation.MaxHistory = uint(n)
			return nil
		},
	},
	"conversation.recent_window": {
		get: func(c *Config) string {
			if c.Conversation.RecentWindow == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Conversation.RecentWindow), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 32)
			if err != nil {
				return fmt.Errorf("invalid value for conversation.recent_window: %w", err)
			}
			c.Conversation.RecentWindow = uint(n)
			return nil
		},
	},
	"conversation.recall_triggers": {
		get: func(c *Config) string { return strings.Join(c.Conversation.RecallTriggers, ",") },
		set: func(c *Config, v string) error {
			c.Conversation.RecallTriggers = splitList(v)
			return nil
		},
	},
	"eventstream.provider": {
		get: func(c *Config) string { return c.EventStream.Provider },
		set: func(c *Config, v string) error { c.EventStream.Provider = v; return nil },
	},
	"eventstream.brokers": {
		get: func(c *Config) string { return strings.Join(c.EventStream.Brokers, ",") },
		set: func(c *Config, v string) error {
			c.EventStream.Brokers = splitList(v)
			return nil
		},
	},
	"eventstream.topic": {
		get: func(c *Config) string { return c.EventStream.Topic },
		set: func(c *Config, v string) error { c.EventStream.Topic = v; return nil },
	},
}

// splitList parses a comma-separated value into trimmed, non-empty entries.
func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
