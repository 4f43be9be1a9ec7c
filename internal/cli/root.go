// Package cli implements the fmrules command-line interface.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/frontmatter-rules/engine/internal/engineconfig"
	"github.com/frontmatter-rules/engine/internal/ui"
)

var (
	// Global flags.
	configPathFlag string
	accentFlag     string

	// Resolved config, loaded once in PersistentPreRunE.
	cfg engineconfig.Config
)

var rootCmd = &cobra.Command{
	Use:   "fmrules",
	Short: "Rule engine for bulk YAML front-matter mutation",
	Long: `fmrules applies condition/action rules to a Markdown note's YAML
front-matter: a condition predicate decides whether a rule fires, an
action transforms the front-matter value, and the note body is preserved
byte-for-byte.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		ui.ConfigureTheme(accentFlag)

		switch cmd.Name() {
		case "version", "completion", "help":
			return nil
		}

		p := configPathFlag
		if p == "" {
			p = engineconfig.DefaultPath()
		}
		loaded, err := engineconfig.Load(p)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		return nil
	},
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPathFlag, "config", "", "Path to config file (defaults to fmrules/config.toml under the OS config dir)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format (for agent/script use)")
	rootCmd.PersistentFlags().StringVar(&accentFlag, "accent", "", "Override the accent color (ANSI code or #rrggbb/#rgb hex; \"none\" disables)")
}
