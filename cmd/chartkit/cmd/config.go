package cmd

import (
	"fmt"
	"strings"

	"github.com/rustyeddy/chartkit/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Generate or validate configuration files",
	Long: `Manage chartkit configuration files.

Subcommands:
  init     - Generate a default configuration file
  validate - Validate an existing configuration file

Examples:
  chartkit config init -o chartkit.yaml
  chartkit config validate -f chartkit.yaml`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a default configuration file",
	Long: `Create a new configuration file with default settings.

Example:
  chartkit config init -o chartkit.yaml`,
	RunE: runConfigInit,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Check if a configuration file is valid and can be loaded.

Example:
  chartkit config validate -f chartkit.yaml`,
	RunE: runConfigValidate,
}

var (
	configInitOutput   string
	configValidatePath string
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configValidateCmd)

	configInitCmd.Flags().StringVarP(&configInitOutput, "output", "o", "chartkit.yaml", "output config file path")
	configValidateCmd.Flags().StringVarP(&configValidatePath, "file", "f", "", "path to config file (required)")
	cobra.CheckErr(configValidateCmd.MarkFlagRequired("file"))
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	if err := config.Default().SaveToFile(configInitOutput); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "✓ Created default configuration: %s\n", configInitOutput)
	fmt.Fprintln(w, "\nEdit the file and run with:")
	fmt.Fprintf(w, "  chartkit --config %s indicator rsi --data candles.csv\n", configInitOutput)
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	c, err := config.LoadFromFile(configValidatePath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	enabled := "all"
	if len(c.Patterns.Enabled) > 0 {
		enabled = strings.Join(c.Patterns.Enabled, ", ")
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "✓ Configuration valid: %s\n", configValidatePath)
	fmt.Fprintf(w, "  Patterns: %s (doji threshold %.2f)\n", enabled, c.Patterns.DojiThreshold)
	fmt.Fprintf(w, "  Viewport: %d..%d visible candles, enforced from %d\n",
		c.Viewport.MinVisible, c.Viewport.MaxVisible, c.Viewport.Threshold)
	fmt.Fprintf(w, "  Log: %s (%s)\n", c.Log.Level, c.Log.Format)
	return nil
}
