package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "csvdir", cfg.Store.Driver)
	assert.Equal(t, "scraped_results", cfg.Store.Dir)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 4, cfg.Crawl.Parallelism)
	assert.Equal(t, 30, cfg.Crawl.TimeoutSecs)
	assert.Equal(t, 20, cfg.Crawl.MaxSubPages)
	assert.Contains(t, cfg.Crawl.UserAgent, "Googlebot")
	assert.InDelta(t, 2.0, cfg.Fingerprint.RatePerSec, 0.001)
	assert.Equal(t, 256, cfg.Fingerprint.CacheSize)
	assert.Equal(t, "scraped_results/leadspider_report.csv", cfg.Report.OutputPath)
	assert.Equal(t, "report", cfg.Report.SheetName)
}

func TestLoadDefaultLexicon(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Contains(t, cfg.Lexicon.B2BKeywords, "b2b")
	assert.Contains(t, cfg.Lexicon.B2BKeywords, "großkunde")
	assert.Contains(t, cfg.Lexicon.WebshopSystems, "shopify")
	assert.Contains(t, cfg.Lexicon.PaymentKeywords, "visa")
	assert.Contains(t, cfg.Lexicon.CurrencySymbols, "€")
	assert.Equal(t, []string{"43", "49"}, cfg.Lexicon.PhoneCountryCodes)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: sqlite
  database_url: leads.db
log:
  level: debug
  format: console
crawl:
  parallelism: 8
report:
  output_path: out/report.csv
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "leads.db", cfg.Store.DatabaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 8, cfg.Crawl.Parallelism)
	assert.Equal(t, "out/report.csv", cfg.Report.OutputPath)
	// Defaults still apply for unset values
	assert.Equal(t, 30, cfg.Crawl.TimeoutSecs)
}

func TestLoadEnvOverrides(t *testing.T) {
	chdirTemp(t)
	t.Setenv("LEADSPIDER_STORE_DRIVER", "postgres")
	t.Setenv("LEADSPIDER_SERVER_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestLexiconFileOverride(t *testing.T) {
	dir := chdirTemp(t)

	lexPath := filepath.Join(dir, "lexicon.yaml")
	require.NoError(t, os.WriteFile(lexPath, []byte(`
b2b_keywords:
  - wholesale
currency_symbols:
  - "£"
`), 0o644))
	t.Setenv("LEADSPIDER_LEXICON_FILE", lexPath)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"wholesale"}, cfg.Lexicon.B2BKeywords)
	assert.Equal(t, []string{"£"}, cfg.Lexicon.CurrencySymbols)
	// Lists the file does not mention keep their defaults.
	assert.Contains(t, cfg.Lexicon.WebshopSystems, "shopify")
}

func TestLexiconFileMissing(t *testing.T) {
	chdirTemp(t)
	t.Setenv("LEADSPIDER_LEXICON_FILE", "does-not-exist.yaml")

	_, err := Load()
	require.Error(t, err)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "json"}))
	assert.NotNil(t, zap.L())

	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "console"}))

	err := InitLogger(LogConfig{Level: "shouting", Format: "json"})
	require.Error(t, err)
}
