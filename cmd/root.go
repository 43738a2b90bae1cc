// Package cmd defines the CLI commands for the crawler executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "disclosure-crawler",
		Short: "Collects quarterly savings-bank disclosures from the association portal",
		Long: `disclosure-crawler loads each savings bank's disclosure page in a
headless browser, extracts the published financial tables, and packages the
results into a dated archive with an emailed summary report.`,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (settings also come from the environment)")
	cmd.AddCommand(newScrapeCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
