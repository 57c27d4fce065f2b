package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iWorld-y/trend_writer/app/trend_writer/pkg/cache"
	"github.com/iWorld-y/trend_writer/app/trend_writer/pkg/config"
	"github.com/iWorld-y/trend_writer/app/trend_writer/pkg/knowledge"
	"github.com/iWorld-y/trend_writer/app/trend_writer/pkg/logger"
	"github.com/iWorld-y/trend_writer/app/trend_writer/pkg/resolver"
	"github.com/iWorld-y/trend_writer/app/trend_writer/pkg/trend/factory"
)

var trendsCmd = &cobra.Command{
	Use:   "trends",
	Short: "Resolve trending topics once and print them",
	Long:  `Runs the configured scrapers in order and prints the first non-empty result, or the static fallback list.`,
	RunE:  runTrends,
}

func init() {
	rootCmd.AddCommand(trendsCmd)
}

func runTrends(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(confPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := logger.InitLogger(cfg.Log.Level, ""); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	scrapers, err := factory.NewScrapers(cfg.Trend)
	if err != nil {
		return fmt.Errorf("build scrapers: %w", err)
	}

	r := resolver.New(cache.New(cache.DefaultTTL), scrapers)
	set := r.GetTrends(context.Background())

	out := cmd.OutOrStdout()
	if len(set) == 0 {
		kb, err := knowledge.Default()
		if err != nil {
			return err
		}
		fmt.Fprintln(out, "(no live trends, static fallback)")
		set = kb.FallbackTrends
	}
	for i, item := range set {
		fmt.Fprintf(out, "%2d. %s\n", i+1, item)
	}
	return nil
}
