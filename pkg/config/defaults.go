package config

import "github.com/petalhealth/petal/pkg/convo"

const (
	defaultAPIListen = ":8000"

	defaultCorpusRoot = "./corpus"

	defaultHistoryDriver = "local"

	defaultVectorProvider   = "memory"
	defaultVectorHost       = "localhost"
	defaultVectorPort       = 6334
	defaultVectorCollection = "petal"

	defaultEmbeddingProvider   = "ollama"
	defaultEmbeddingTarget     = "http://localhost:11434"
	defaultEmbeddingModel      = "nomic-embed-text"
	defaultEmbeddingDimensions = 768

	defaultLLMProvider = "openai"
	defaultLLMModel    = "gpt-4.1-nano"

	defaultTopK = 5

	defaultMaxHistory   = 50
	defaultRecentWindow = 10

	defaultEventStreamProvider = "nop"
	defaultEventStreamTopic    = "petal.events"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		API: APIConfig{
			Listen: defaultAPIListen,
		},
		Corpus: CorpusConfig{
			Root: defaultCorpusRoot,
		},
		History: HistoryConfig{
			Driver: defaultHistoryDriver,
		},
		VectorStore: VectorStoreConfig{
			Provider:   defaultVectorProvider,
			Host:       defaultVectorHost,
			Port:       defaultVectorPort,
			Collection: defaultVectorCollection,
		},
		Embedding: EmbeddingConfig{
			Provider:   defaultEmbeddingProvider,
			Target:     defaultEmbeddingTarget,
			Model:      defaultEmbeddingModel,
			Dimensions: defaultEmbeddingDimensions,
		},
		LLM: LLMConfig{
			Provider: defaultLLMProvider,
			Model:    defaultLLMModel,
		},
		Retrieval: RetrievalConfig{
			TopK: defaultTopK,
		},
		Conversation: ConversationConfig{
			MaxHistory:     defaultMaxHistory,
			RecentWindow:   defaultRecentWindow,
			RecallTriggers: append([]string(nil), convo.DefaultRecallPhrases...),
		},
		EventStream: EventStreamConfig{
			Provider: defaultEventStreamProvider,
			Topic:    defaultEventStreamTopic,
		},
	}
}
