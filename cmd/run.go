package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	runURLs   []string
	runXLSX   string
	runSheet  string
	runColumn string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Crawl and build the report end to end",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		startURLs, err := resolveStartURLs(runURLs, runXLSX, runSheet, runColumn)
		if err != nil {
			return err
		}

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.Pipeline.Run(ctx, startURLs); err != nil {
			return eris.Wrap(err, "pipeline run")
		}

		zap.L().Info("run complete", zap.String("report", cfg.Report.OutputPath))
		return nil
	},
}

func init() {
	runCmd.Flags().StringArrayVar(&runURLs, "url", nil, "company website URL (repeatable)")
	runCmd.Flags().StringVar(&runXLSX, "xlsx", "", "xlsx worksheet with start URLs")
	runCmd.Flags().StringVar(&runSheet, "sheet", "", "worksheet name (default first sheet)")
	runCmd.Flags().StringVar(&runColumn, "column", "company_url", "URL column header")
	rootCmd.AddCommand(runCmd)
}
