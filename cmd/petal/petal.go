// Package petalcmder
package petalcmder

import (
	"github.com/spf13/cobra"

	askcmder "github.com/petalhealth/petal/cmd/petal/ask"
	configcmder "github.com/petalhealth/petal/cmd/petal/config"
	indexcmder "github.com/petalhealth/petal/cmd/petal/index"
	initcmder "github.com/petalhealth/petal/cmd/petal/init"
	servecmder "github.com/petalhealth/petal/cmd/petal/serve"
	versioncmder "github.com/petalhealth/petal/cmd/version"
)

const petalLongDesc string = `Petal is a retrieval-augmented assistant for PCOS & women's health.

Index a document corpus, then answer questions grounded in it:
  petal init           Initialize a local .petal/ directory
  petal index          Index the document corpus into the vector store
  petal ask            Ask a one-off question from the terminal
  petal serve          Run the API server`

const petalShortDesc string = "Petal - Grounded Health Answers"

func NewPetalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "petal",
		Short: petalShortDesc,
		Long:  petalLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Path to the .petal config directory (default: ./.petal, then ~/.petal)")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(indexcmder.NewIndexCmd())
	cmd.AddCommand(askcmder.NewAskCmd())
	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
