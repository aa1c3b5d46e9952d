package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadspider-cli/internal/report"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Build the lead report from persisted observations",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		table, err := env.Pipeline.BuildReport(ctx)
		if err != nil {
			if eris.Is(err, report.ErrNoGeneralInfo) {
				return eris.Wrap(err, "nothing crawled yet, run `leadspider crawl` first")
			}
			return err
		}

		if err := env.Pipeline.WriteReport(table); err != nil {
			return err
		}

		zap.L().Info("report built",
			zap.Int("companies", table.Len()),
			zap.Int("columns", len(table.Columns())+1))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
}
