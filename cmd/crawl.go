package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadspider-cli/internal/store"
)

var (
	crawlURLs   []string
	crawlXLSX   string
	crawlSheet  string
	crawlColumn string
)

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Crawl company websites and persist observations",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		startURLs, err := resolveStartURLs(crawlURLs, crawlXLSX, crawlSheet, crawlColumn)
		if err != nil {
			return err
		}

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		var runID string
		runStore, tracked := env.Store.(store.Store)
		if tracked {
			run, createErr := runStore.CreateRun(ctx, startURLs)
			if createErr != nil {
				return eris.Wrap(createErr, "create run")
			}
			runID = run.ID
		}

		companies, err := env.Pipeline.Crawl(ctx, startURLs)
		if tracked {
			status := store.RunStatusComplete
			if err != nil {
				status = store.RunStatusFailed
			}
			if finishErr := runStore.FinishRun(ctx, runID, status, companies); finishErr != nil {
				zap.L().Warn("finish run", zap.Error(finishErr))
			}
		}
		if err != nil {
			return eris.Wrap(err, "crawl")
		}

		zap.L().Info("crawl complete",
			zap.Int("start_urls", len(startURLs)),
			zap.Int("companies", companies))
		return nil
	},
}

func init() {
	crawlCmd.Flags().StringArrayVar(&crawlURLs, "url", nil, "company website URL (repeatable)")
	crawlCmd.Flags().StringVar(&crawlXLSX, "xlsx", "", "xlsx worksheet with start URLs")
	crawlCmd.Flags().StringVar(&crawlSheet, "sheet", "", "worksheet name (default first sheet)")
	crawlCmd.Flags().StringVar(&crawlColumn, "column", "company_url", "URL column header")
	rootCmd.AddCommand(crawlCmd)
}
