package main

import (
	"os"

	"github.com/spf13/cobra"
)

var confPath string

var rootCmd = &cobra.Command{
	Use:   "trendctl",
	Short: "Operator tools for the trend writer backend",
	Long: `trendctl resolves live trending topics with the configured scrapers
and extracts text from reference documents, without starting the HTTP server.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&confPath, "conf", "app/trend_writer/configs/config.yaml", "config path")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
