package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store       StoreConfig       `yaml:"store" mapstructure:"store"`
	Crawl       CrawlConfig       `yaml:"crawl" mapstructure:"crawl"`
	Fingerprint FingerprintConfig `yaml:"fingerprint" mapstructure:"fingerprint"`
	Lexicon     LexiconConfig     `yaml:"lexicon" mapstructure:"lexicon"`
	Report      ReportConfig      `yaml:"report" mapstructure:"report"`
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the observation store backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"` // sqlite, postgres or csvdir
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	Dir         string `yaml:"dir" mapstructure:"dir"` // csvdir table directory
}

// CrawlConfig configures the crawl glue around the extraction core.
type CrawlConfig struct {
	StartURLs   []string `yaml:"start_urls" mapstructure:"start_urls"`
	UserAgent   string   `yaml:"user_agent" mapstructure:"user_agent"`
	Parallelism int      `yaml:"parallelism" mapstructure:"parallelism"`
	TimeoutSecs int      `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxSubPages int      `yaml:"max_sub_pages" mapstructure:"max_sub_pages"`
}

// FingerprintConfig holds the technology fingerprinting service settings.
type FingerprintConfig struct {
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	Key         string  `yaml:"key" mapstructure:"key"`
	RatePerSec  float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	CacheSize   int     `yaml:"cache_size" mapstructure:"cache_size"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// LexiconConfig carries the keyword lists and patterns the extractors
// classify page bodies with. It is always passed into extractor calls
// explicitly; nothing reads it from ambient state.
type LexiconConfig struct {
	File              string   `yaml:"file" mapstructure:"file"` // optional YAML override, see lexicon.go
	PaymentKeywords   []string `yaml:"payment_keywords" mapstructure:"payment_keywords"`
	B2BKeywords       []string `yaml:"b2b_keywords" mapstructure:"b2b_keywords"`
	WebshopSystems    []string `yaml:"webshop_systems" mapstructure:"webshop_systems"`
	WebshopLinkWords  []string `yaml:"webshop_link_words" mapstructure:"webshop_link_words"`
	CurrencySymbols   []string `yaml:"currency_symbols" mapstructure:"currency_symbols"`
	PhoneCountryCodes []string `yaml:"phone_country_codes" mapstructure:"phone_country_codes"`
}

// ReportConfig configures report output.
type ReportConfig struct {
	OutputPath string `yaml:"output_path" mapstructure:"output_path"`
	XLSXPath   string `yaml:"xlsx_path" mapstructure:"xlsx_path"`
	SheetName  string `yaml:"sheet_name" mapstructure:"sheet_name"`
}

// ServerConfig configures serve mode.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from config.yaml (optional) and
// LEADSPIDER_-prefixed environment variables, applying defaults.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LEADSPIDER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "csvdir")
	v.SetDefault("store.dir", "scraped_results")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("crawl.user_agent", "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)")
	v.SetDefault("crawl.parallelism", 4)
	v.SetDefault("crawl.timeout_secs", 30)
	v.SetDefault("crawl.max_sub_pages", 20)
	v.SetDefault("fingerprint.rate_per_sec", 2.0)
	v.SetDefault("fingerprint.cache_size", 256)
	v.SetDefault("fingerprint.timeout_secs", 15)
	v.SetDefault("report.output_path", "scraped_results/leadspider_report.csv")
	v.SetDefault("report.sheet_name", "report")
	v.SetDefault("lexicon.payment_keywords", defaultPaymentKeywords)
	v.SetDefault("lexicon.b2b_keywords", defaultB2BKeywords)
	v.SetDefault("lexicon.webshop_systems", defaultWebshopSystems)
	v.SetDefault("lexicon.webshop_link_words", defaultWebshopLinkWords)
	v.SetDefault("lexicon.currency_symbols", defaultCurrencySymbols)
	v.SetDefault("lexicon.phone_country_codes", defaultPhoneCountryCodes)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	// External lexicon file overrides the built-in lists.
	if cfg.Lexicon.File != "" {
		if err := cfg.Lexicon.applyFile(cfg.Lexicon.File); err != nil {
			return nil, err
		}
	}

	return &cfg, nil
}

// InitLogger builds the global zap logger from config.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
