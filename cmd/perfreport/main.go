package main

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/frostdev-ops/pbi-monitor-go/pkg/version"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "perfreport",
		Short:         "Compute fleet summaries and performance sets from the monitor database",
		Version:       version.GetVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().String("config", "", "Path to config.yaml (default: ./configs/config.yaml or ./config.yaml)")
	cmd.PersistentFlags().String("db", "", "Database path, overrides database.path")
	cmd.PersistentFlags().StringP("output", "o", "json", "Output format (json|yaml)")
	cmd.PersistentFlags().Bool("live", false, "Ask the BI service for the live workspace list")

	cmd.AddCommand(newCmdSummary())
	cmd.AddCommand(newCmdPerformance())
	return cmd
}

func main() {
	root := newRootCmd()
	if err := root.ExecuteContext(context.Background()); err != nil {
		logrus.WithError(err).Error("perfreport failed")
		os.Exit(1)
	}
}
