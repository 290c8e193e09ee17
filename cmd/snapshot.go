package cmd

import (
	"os"

	"github.com/pet2cattle/aws-dashboard/pkg/printutils"
	"github.com/spf13/cobra"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Print one dashboard render to the terminal",
	Long: `Print one dashboard render to the terminal.

Runs exactly what a page request runs (probe, the four fetchers, demo fallback)
once and prints the result instead of serving it.`,
	Example: `  # Print the resources as tables
  aws-dashboard snapshot

  # Print them as YAML
  aws-dashboard snapshot -o yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		logger := newLogger(settings)

		ctx := cmd.Context()
		aggregator, _, err := newAggregator(ctx, settings, logger)
		if err != nil {
			return err
		}

		resources, err := aggregator.Aggregate(ctx)
		if err != nil {
			return err
		}

		snapshot := printutils.Snapshot{
			Resources:     resources,
			Orchestration: newStatusCollector(settings).Status(ctx),
		}

		output, _ := cmd.Flags().GetString("output")
		noHeaders, _ := cmd.Flags().GetBool("no-headers")
		return printutils.PrintSnapshot(os.Stdout, snapshot, output, noHeaders)
	},
}

func init() {
	snapshotCmd.Flags().StringP("output", "o", "", "Output format: wide, json or yaml")
	snapshotCmd.Flags().Bool("no-headers", false, "Don't print headers")
	rootCmd.AddCommand(snapshotCmd)
}
