// Package cmd provides the gtnctl commands.
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"GtnPortal/internal/config"
	"GtnPortal/internal/headers"
	"GtnPortal/internal/ingest"
	"GtnPortal/internal/logger"
)

var (
	aliasesFile string
	logLevel    string
	jsonOutput  bool
)

var rootCmd = &cobra.Command{
	Use:   "gtnctl",
	Short: "Normalize and analyse gross-to-net uploads offline",
	Long: `gtnctl runs the GTN portal pipeline on local files.

Examples:
  gtnctl normalize omzet_2025.xlsx
  gtnctl aggregate --group-by customer_sku contracten.csv
  gtnctl pricelist --products producten.csv staatscourant.pdf
  gtnctl export --dataset aggregates --format xlsx -o out.xlsx contracten.csv`,
	SilenceUsage: true,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initLogging)

	rootCmd.PersistentFlags().StringVar(&aliasesFile, "aliases", "", "YAML file with extra header aliases")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print results as JSON")

	rootCmd.AddCommand(normalizeCmd)
	rootCmd.AddCommand(aggregateCmd)
	rootCmd.AddCommand(pricelistCmd)
	rootCmd.AddCommand(exportCmd)
}

func initLogging() {
	cfg := config.Load()
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	zap.ReplaceGlobals(logger.New(cfg.LogLevel, "console", os.Stderr))
}

func newService() (*ingest.Service, error) {
	if aliasesFile == "" {
		aliasesFile = config.Load().HeaderAliasesFile
	}
	if aliasesFile == "" {
		return ingest.NewService(nil, nil), nil
	}
	r, err := headers.LoadAliases(aliasesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load aliases: %w", err)
	}
	return ingest.NewService(r, nil), nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
