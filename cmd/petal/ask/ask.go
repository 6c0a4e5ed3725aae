// Package askcmder provides the ask command for one-off questions from the
// terminal.
package askcmder

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/petalhealth/petal/pkg/chunker"
	"github.com/petalhealth/petal/pkg/cliui"
	"github.com/petalhealth/petal/pkg/config"
	"github.com/petalhealth/petal/pkg/convo"
	embeddingutils "github.com/petalhealth/petal/pkg/embeddings/utils"
	historylocal "github.com/petalhealth/petal/pkg/history/local"
	"github.com/petalhealth/petal/pkg/ingest"
	llmutils "github.com/petalhealth/petal/pkg/llm/utils"
	"github.com/petalhealth/petal/pkg/logger"
	"github.com/petalhealth/petal/pkg/prompt"
	"github.com/petalhealth/petal/pkg/rag"
	"github.com/petalhealth/petal/pkg/retriever"
	vectorutils "github.com/petalhealth/petal/pkg/vector/utils"
)

type AskCommander struct {
	configDir string
	debug     bool

	vectorProv  string
	vectorHost  string
	vectorPort  uint
	collection  string
	embProvider string
	embTarget   string
	embModel    string
	embDims     uint
	llmProvider string
	llmTarget   string
	llmModel    string
	topK        uint

	logger *slog.Logger
}

const askLongDesc string = `Ask a one-off question against the indexed corpus.

Retrieves the most relevant passages from the vector store, composes a
grounded prompt, and prints the model's answer with its sources. Runs the
pipeline locally against the configured providers; no server is needed.

Examples:
  petal ask "What lifestyle changes help with insulin resistance?"
  petal ask --top-k 8 "How is PCOS diagnosed?"`

const askShortDesc string = "Ask a one-off question"

var askFlagKeys = []string{
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

func NewAskCmd() *cobra.Command {
	cmder := &AskCommander{}

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: askShortDesc,
		Long:  askLongDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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
			config.BindRegisteredFlags(v, cmd, config.Flags, askFlagKeys)

			return cmder.run(v, strings.Join(args, " "))
		},
	}

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

func (c *AskCommander) run(v *viper.Viper, question string) error {
	c.logger = logger.New(logger.WithDebug(c.debug), logger.WithWriter(os.Stderr))

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

	retr := retriever.New(chunker.New(0, 0), embedder, driver, ingest.NewLoader(c.logger), c.logger)

	// One-shot invocation: no prior turns exist, so an empty in-memory
	// history store keeps the context path identical to the server's.
	store := historylocal.NewDriver()
	defer store.Close()

	recall, err := convo.NewRecallPolicy(v.GetStringSlice("conversation.recall_triggers"))
	if err != nil {
		return fmt.Errorf("compiling recall triggers: %w", err)
	}

	engine := rag.New(retr, convo.NewCompactor(store, recall, c.logger), chat, c.logger)
	engine.TopK = v.GetUint64("retrieval.top_k")

	var answer *rag.Answer
	err = cliui.Step(os.Stderr, "Retrieving and answering", func() error {
		var stepErr error
		answer, stepErr = engine.Answer(context.Background(), "cli", question, prompt.ModeChat)
		return stepErr
	})
	if err != nil {
		return fmt.Errorf("answering question: %w", err)
	}

	rendered, err := cliui.RenderMarkdown(answer.Reply)
	if err != nil {
		// Fall back to the raw reply if the terminal renderer fails.
		rendered = answer.Reply
	}
	fmt.Println(rendered)

	if len(answer.Citations) > 0 {
		fmt.Printf("  %s\n", cliui.KeyStyle.Render("Sources:"))
		for _, citation := range answer.Citations {
			line := citation.Source
			if citation.Page != "" && citation.Page != "N/A" {
				line += ", p. " + citation.Page
			}
			fmt.Printf("    %s\n", cliui.DimStyle.Render(line))
		}
		fmt.Println()
	}

	return nil
}
