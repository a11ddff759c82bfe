package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var g globalOptions

	rootCmd := &cobra.Command{
		Use:          "cropstats",
		Short:        "Statistics Canada crop production and CPI chart data builder",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "debug, info, warn or error")

	rootCmd.AddCommand(grainCmd(&g))
	rootCmd.AddCommand(cpiCmd(&g))
	rootCmd.AddCommand(groupingsCmd(&g))
	return rootCmd
}

func addFetchFlags(cmd *cobra.Command, opts *fetchOptions) {
	cmd.Flags().StringVarP(&opts.outDir, "out", "o", "", "artifact output directory (default from config)")
	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "read a local table CSV instead of downloading")
	cmd.Flags().StringVar(&opts.cacheDir, "cache-dir", "", "cache table downloads in this directory")
	cmd.Flags().StringVar(&opts.metricsFile, "metrics-file", "", "write run metrics in Prometheus text format")
}

func grainCmd(g *globalOptions) *cobra.Command {
	var opts fetchOptions
	var xlsx string

	cmd := &cobra.Command{
		Use:   "grain",
		Short: "Build the grain production growth decomposition artifacts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGrain(cmd.Context(), *g, opts, xlsx)
		},
	}

	addFetchFlags(cmd, &opts)
	cmd.Flags().StringVar(&xlsx, "xlsx", "", "also write the decomposition tables to this workbook")
	return cmd
}

func cpiCmd(g *globalOptions) *cobra.Command {
	var opts fetchOptions
	var years int

	cmd := &cobra.Command{
		Use:   "cpi",
		Short: "Build the rebased consumer price index series",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCPI(cmd.Context(), *g, opts, years)
		},
	}

	addFetchFlags(cmd, &opts)
	cmd.Flags().IntVarP(&years, "years", "y", 0, "years of history to keep (default from config)")
	return cmd
}

func groupingsCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "groupings",
		Short: "Print the effective crop groupings as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGroupings(*g, cmd.OutOrStdout())
		},
	}
}
