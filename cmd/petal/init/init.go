// Package initcmder provides the init command for initializing a local .petal
// directory in the current working directory.
package initcmder

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/petalhealth/petal/pkg/cliui"
	"github.com/petalhealth/petal/pkg/config"
	"github.com/petalhealth/petal/pkg/dotdir"
)

const initLongDesc string = `Initialize a new .petal/ directory in the current working directory.

Creates a local .petal/ directory that takes precedence over the default
~/.petal/ directory for configuration, and writes a starter config.toml.

Use --preset to seed the config for a known provider stack:
  openai   OpenAI embeddings and chat completions
  ollama   Local Ollama embeddings and chat completions

Examples:
  petal init
  petal init --preset ollama`

const initShortDesc string = "Initialize a local .petal/ directory"

func NewInitCmd() *cobra.Command {
	var preset string

	cmd := &cobra.Command{
		Use:   "init",
		Short: initShortDesc,
		Long:  initLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runInit(preset)
		},
	}

	cmd.Flags().StringVar(&preset, "preset", "",
		fmt.Sprintf("Provider preset for the starter config (%s)", strings.Join(config.ValidPresetNames(), ", ")))

	return cmd
}

func runInit(preset string) error {
	ddm := dotdir.NewManager()
	dir, err := ddm.Init()
	if err != nil {
		return fmt.Errorf("creating .petal directory: %w", err)
	}

	cfg := config.NewDefaultConfig()
	if preset != "" {
		cfg, err = config.PresetConfig(preset)
		if err != nil {
			return err
		}
	}

	cfger, err := config.NewConfiger(dir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Re-running init without a preset keeps an existing config.toml.
	if preset == "" {
		if _, err := os.Stat(cfger.GetTarget()); err == nil {
			fmt.Printf("\n  %s Already initialized: %s\n\n",
				cliui.SuccessMark,
				cliui.DimStyle.Render(dir),
			)
			return nil
		}
	}

	if err := cfger.SaveConfig(cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Printf("\n  %s Initialized %s\n\n",
		cliui.SuccessMark,
		cliui.ValueStyle.Render(dir),
	)
	return nil
}
