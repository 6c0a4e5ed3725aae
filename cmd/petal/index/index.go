// Package indexcmder provides the index command for ingesting the document
// corpus into the vector store.
package indexcmder

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/petalhealth/petal/pkg/chunker"
	"github.com/petalhealth/petal/pkg/cliui"
	"github.com/petalhealth/petal/pkg/config"
	embeddingutils "github.com/petalhealth/petal/pkg/embeddings/utils"
	"github.com/petalhealth/petal/pkg/ingest"
	"github.com/petalhealth/petal/pkg/logger"
	"github.com/petalhealth/petal/pkg/retriever"
	vectorutils "github.com/petalhealth/petal/pkg/vector/utils"
)

type IndexCommander struct {
	configDir string
	debug     bool
	rebuild   bool

	corpusRoot  string
	vectorProv  string
	vectorHost  string
	vectorPort  uint
	collection  string
	embProvider string
	embTarget   string
	embModel    string
	embDims     uint

	logger *slog.Logger
}

const indexLongDesc string = `Index the document corpus into the vector store.

Walks the corpus directory, loads supported documents (.pdf, .txt, .md),
splits them into overlapping chunks, embeds each chunk, and upserts the
result into the configured vector collection.

Use --rebuild to drop and recreate the collection first. Without it the
collection is created only if missing, and re-running the command adds
duplicate entries for unchanged documents.

Examples:
  petal index
  petal index --corpus ./docs --rebuild`

const indexShortDesc string = "Index the document corpus"

var indexFlagKeys = []string{
	config.FlagCorpusRoot,
	config.FlagVectorStoreProv,
	config.FlagVectorStoreHost,
	config.FlagVectorStorePort,
	config.FlagCollection,
	config.FlagEmbeddingProv,
	config.FlagEmbeddingTgt,
	config.FlagEmbeddingModel,
	config.FlagEmbeddingDims,
}

func NewIndexCmd() *cobra.Command {
	cmder := &IndexCommander{}

	cmd := &cobra.Command{
		Use:   "index",
		Short: indexShortDesc,
		Long:  indexLongDesc,
		Args:  cobra.NoArgs,
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
			config.BindRegisteredFlags(v, cmd, config.Flags, indexFlagKeys)

			return cmder.run(v)
		},
	}

	cmd.Flags().BoolVar(&cmder.rebuild, "rebuild", false, "Drop and recreate the collection before indexing")

	config.AddStringFlag(cmd, config.Flags, config.FlagCorpusRoot, &cmder.corpusRoot)
	config.AddStringFlag(cmd, config.Flags, config.FlagVectorStoreProv, &cmder.vectorProv)
	config.AddStringFlag(cmd, config.Flags, config.FlagVectorStoreHost, &cmder.vectorHost)
	config.AddUintFlag(cmd, config.Flags, config.FlagVectorStorePort, &cmder.vectorPort)
	config.AddStringFlag(cmd, config.Flags, config.FlagCollection, &cmder.collection)
	config.AddStringFlag(cmd, config.Flags, config.FlagEmbeddingProv, &cmder.embProvider)
	config.AddStringFlag(cmd, config.Flags, config.FlagEmbeddingTgt, &cmder.embTarget)
	config.AddStringFlag(cmd, config.Flags, config.FlagEmbeddingModel, &cmder.embModel)
	config.AddUintFlag(cmd, config.Flags, config.FlagEmbeddingDims, &cmder.embDims)

	return cmd
}

func (c *IndexCommander) run(v *viper.Viper) error {
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

	retr := retriever.New(chunker.New(0, 0), embedder, driver, ingest.NewLoader(c.logger), c.logger)

	root := v.GetString("corpus.root")
	fmt.Printf("\nIndexing corpus: %s\n\n", root)

	var stats *retriever.IndexStats
	err = cliui.Step(os.Stdout, "Loading, chunking, and embedding documents", func() error {
		var stepErr error
		stats, stepErr = retr.IndexCorpus(context.Background(), root, c.rebuild)
		return stepErr
	})
	if err != nil {
		return fmt.Errorf("indexing corpus: %w", err)
	}

	fmt.Printf("\n  %s  %s\n  %s  %s\n  %s  %s\n\n",
		cliui.KeyStyle.Render("Documents:"), cliui.ValueStyle.Render(fmt.Sprintf("%d", stats.Documents)),
		cliui.KeyStyle.Render("Chunks:   "), cliui.ValueStyle.Render(fmt.Sprintf("%d", stats.Chunks)),
		cliui.KeyStyle.Render("Skipped:  "), cliui.ValueStyle.Render(fmt.Sprintf("%d", stats.Skipped)),
	)

	return nil
}
