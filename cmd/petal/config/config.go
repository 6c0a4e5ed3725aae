// Package configcmder provides the config command for managing persistent
// petal configuration stored in the .petal/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent petal configuration.

Configuration is stored as config.toml in the .petal/ directory and provides
default values for command flags. CLI flags always take precedence over
config file values.

Keys use dotted notation matching the TOML section structure:
  api.listen, corpus.root, corpus.watch,
  history.driver, history.sqlite_path,
  vector_store.provider, vector_store.host, vector_store.port, vector_store.collection,
  embedding.provider, embedding.target, embedding.model, embedding.dimensions,
  llm.provider, llm.target, llm.model,
  retrieval.top_k,
  conversation.max_history, conversation.recent_window, conversation.recall_triggers,
  eventstream.provider, eventstream.brokers, eventstream.topic

Use subcommands to get, set, or list configuration values:
  petal config set <key> <value>    Set a configuration value
  petal config get <key>            Get a configuration value
  petal config list                 List all configuration values

Examples:
  petal config set embedding.model nomic-embed-text
  petal config set vector_store.host qdrant.internal
  petal config get llm.model
  petal config list`

const configShortDesc string = "Manage persistent petal configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
