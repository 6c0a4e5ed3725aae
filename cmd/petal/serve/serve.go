// Package servecmder provides the serve command for running the API server.
package servecmder

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/petalhealth/petal/api"
	"github.com/petalhealth/petal/pkg/chunker"
	"github.com/petalhealth/petal/pkg/config"
	"github.com/petalhealth/petal/pkg/convo"
	embeddingutils "github.com/petalhealth/petal/pkg/embeddings/utils"
	"github.com/petalhealth/petal/pkg/eventstream"
	eventstreamutils "github.com/petalhealth/petal/pkg/eventstream/utils"
	historyutils "github.com/petalhealth/petal/pkg/history/utils"
	identitystatic "github.com/petalhealth/petal/pkg/identity/static"
	"github.com/petalhealth/petal/pkg/ingest"
	llmutils "github.com/petalhealth/petal/pkg/llm/utils"
	"github.com/petalhealth/petal/pkg/logger"
	"github.com/petalhealth/petal/pkg/rag"
	"github.com/petalhealth/petal/pkg/report"
	"github.com/petalhealth/petal/pkg/retriever"
	vectorutils "github.com/petalhealth/petal/pkg/vector/utils"
	"github.com/petalhealth/petal/pkg/worker"
)

type ServeCommander struct {
	configDir string
	debug     bool

	apiListen     string
	corpusRoot    string
	historyDriver string
	sqlitePath    string
	vectorProv    string
	vectorHost    string
	vectorPort    uint
	collection    string
	embProvider   string
	embTarget     string
	embModel      string
	embDims       uint
	llmProvider   string
	llmTarget     string
	llmModel      string
	topK          uint

	logger *slog.Logger
}

const serveLongDesc string = `Run the petal API server.

Serves the answer pipeline over HTTP:
  POST /chat/send        Answer a chat message with grounded context
  GET  /chat/history     Return a user's recent turns
  POST /search           Raw passage retrieval without generation
  POST /report/analyze   Extract and explain an uploaded lab report
  POST /admin/reindex    Re-index the document corpus

Configuration follows the precedence chain: flags > PETAL_* environment
variables > .petal/config.toml > built-in defaults.`

const serveShortDesc string = "Run the petal API server"

// serveFlagKeys are the registry flags bound to viper for this command.
var serveFlagKeys = []string{
	config.FlagAPIListen,
	config.FlagCorpusRoot,
	config.FlagHistoryDriver,
	config.FlagSQLite,
	config.FlagVectorStoreProv,
	config.FlagVectorStoreHost,
	config.FlagVectorStorePort,
	config.FlagCollection,
	config.FlagEmbeddingProv,
	config.FlagEmbeddingTgt,
	config.FlagEmbeddingModel,
	config.FlagEmbeddingDims,
	config.FlagLLMProvider,
	config.FlagLLMTarget,
	config.FlagLLMModel,
	config.FlagTopK,
}

func NewServeCmd() *cobra.Command {
	cmder := &ServeCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(cmder.configDir)
			if err != nil {
				return err
			}
			config.BindRegisteredFlags(v, cmd, config.Flags, serveFlagKeys)

			return cmder.run(v)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagAPIListen, &cmder.apiListen)
	config.AddStringFlag(cmd, config.Flags, config.FlagCorpusRoot, &cmder.corpusRoot)
	config.AddStringFlag(cmd, config.Flags, config.FlagHistoryDriver, &cmder.historyDriver)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.Flags, config.FlagVectorStoreProv, &cmder.vectorProv)
	config.AddStringFlag(cmd, config.Flags, config.FlagVectorStoreHost, &cmder.vectorHost)
	config.AddUintFlag(cmd, config.Flags, config.FlagVectorStorePort, &cmder.vectorPort)
	config.AddStringFlag(cmd, config.Flags, config.FlagCollection, &cmder.collection)
	config.AddStringFlag(cmd, config.Flags, config.FlagEmbeddingProv, &cmder.embProvider)
	config.AddStringFlag(cmd, config.Flags, config.FlagEmbeddingTgt, &cmder.embTarget)
	config.AddStringFlag(cmd, config.Flags, config.FlagEmbeddingModel, &cmder.embModel)
	config.AddUintFlag(cmd, config.Flags, config.FlagEmbeddingDims, &cmder.embDims)
	config.AddStringFlag(cmd, config.Flags, config.FlagLLMProvider, &cmder.llmProvider)
	config.AddStringFlag(cmd, config.Flags, config.FlagLLMTarget, &cmder.llmTarget)
	config.AddStringFlag(cmd, config.Flags, config.FlagLLMModel, &cmder.llmModel)
	config.AddUintFlag(cmd, config.Flags, config.FlagTopK, &cmder.topK)

	return cmd
}

func (c *ServeCommander) run(v *viper.Viper) error {
	c.logger = logger.New(logger.WithDebug(c.debug))

	// Embedder
	embedder, err := embeddingutils.NewEmbedder(&embeddingutils.NewEmbedderOpts{
		ProviderType: v.GetString("embedding.provider"),
		TargetURL:    v.GetString("embedding.target"),
		APIKey:       os.Getenv("OPENAI_API_KEY"),
		Model:        v.GetString("embedding.model"),
		Dimensions:   v.GetUint64("embedding.dimensions"),
	})
	if err != nil {
		return fmt.Errorf("creating embedder: %w", err)
	}
	defer embedder.Close()

	// Vector store
	driver, err := vectorutils.NewDriver(&vectorutils.NewDriverOpts{
		ProviderType: v.GetString("vector_store.provider"),
		Host:         v.GetString("vector_store.host"),
		Port:         v.GetInt("vector_store.port"),
		APIKey:       os.Getenv("QDRANT_API_KEY"),
		Collection:   v.GetString("vector_store.collection"),
		Logger:       c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating vector driver: %w", err)
	}
	defer driver.Close()

	// Chat history
	store, err := historyutils.NewDriver(
		v.GetString("history.driver"),
		v.GetString("history.sqlite_path"),
		c.logger,
	)
	if err != nil {
		return fmt.Errorf("creating history driver: %w", err)
	}
	defer store.Close()

	// Chat client
	chat, err := llmutils.NewChatClient(&llmutils.NewChatClientOpts{
		ProviderType: v.GetString("llm.provider"),
		TargetURL:    v.GetString("llm.target"),
		APIKey:       os.Getenv("OPENAI_API_KEY"),
		Model:        v.GetString("llm.model"),
	})
	if err != nil {
		return fmt.Errorf("creating chat client: %w", err)
	}
	defer chat.Close()

	// Event stream
	events, err := eventstreamutils.NewPublisher(
		v.GetString("eventstream.provider"),
		v.GetStringSlice("eventstream.brokers"),
		v.GetString("eventstream.topic"),
		c.logger,
	)
	if err != nil {
		return fmt.Errorf("creating event publisher: %w", err)
	}
	defer events.Close()

	// Retrieval pipeline
	loader := ingest.NewLoader(c.logger)
	retr := retriever.New(chunker.New(0, 0), embedder, driver, loader, c.logger)

	// Conversation context
	recall, err := convo.NewRecallPolicy(v.GetStringSlice("conversation.recall_triggers"))
	if err != nil {
		return fmt.Errorf("compiling recall triggers: %w", err)
	}
	compactor := convo.NewCompactor(store, recall, c.logger)
	compactor.MaxHistory = v.GetInt("conversation.max_history")
	compactor.RecentWindow = v.GetInt("conversation.recent_window")

	engine := rag.New(retr, compactor, chat, c.logger)
	engine.TopK = v.GetUint64("retrieval.top_k")

	// Background persistence
	pool, err := worker.NewPool(&worker.Config{
		History:    store,
		Summarizer: convo.NewSummarizer(chat, c.logger),
		Publisher:  events,
		Logger:     c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating worker pool: %w", err)
	}

	corpusRoot := v.GetString("corpus.root")

	apiConfig := api.Config{
		ListenAddr: v.GetString("api.listen"),
		CorpusRoot: corpusRoot,
	}
	server := api.NewServer(apiConfig, api.Deps{
		Engine:    engine,
		Retriever: retr,
		History:   store,
		Reports:   report.NewAgent(loader, chat, engine, c.logger),
		Verifier:  identitystatic.NewVerifier(nil),
		Pool:      pool,
		Events:    events,
		Logger:    c.logger,
	})

	// Optional corpus watcher: re-index after changes settle.
	if v.GetBool("corpus.watch") {
		watcher, err := c.watchCorpus(retr, events, corpusRoot)
		if err != nil {
			return fmt.Errorf("watching corpus: %w", err)
		}
		defer watcher.Close()
	}

	c.logger.Info("starting api server",
		"api_addr", apiConfig.ListenAddr,
		"corpus_root", corpusRoot,
	)

	// Channel to capture errors from goroutines
	errChan := make(chan error, 1)

	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	// Wait for interrupt signal or error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		pool.Close()
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", "signal", sig.String())
		if err := server.Shutdown(); err != nil {
			c.logger.Warn("api server shutdown failed", "error", err)
		}
		// Drain queued persistence jobs before the history store closes.
		pool.Close()
		return nil
	}
}

// watchCorpus starts a debounced rebuild of the index on filesystem changes
// under root. Rebuilding avoids duplicating chunks from rewritten files.
func (c *ServeCommander) watchCorpus(retr *retriever.Retriever, events eventstream.Publisher, root string) (*ingest.Watcher, error) {
	return ingest.NewWatcher(root, ingest.DefaultDebounce, func() {
		ctx := context.Background()

		stats, err := retr.IndexCorpus(ctx, root, true)
		if err != nil {
			c.logger.Error("corpus re-index failed", "root", root, "error", err)
			return
		}

		event := eventstream.NewCorpusEvent(root, stats.Documents, stats.Chunks, stats.Skipped, true)
		if err := events.PublishCorpusIndexed(ctx, event); err != nil {
			c.logger.Warn("failed to publish corpus event", "error", err)
		}
	}, c.logger)
}
