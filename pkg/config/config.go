package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"

	"github.com/yurifrl/finsight/pkg/analytics"
	"github.com/yurifrl/finsight/pkg/category"
	"github.com/yurifrl/finsight/pkg/format"
	"github.com/yurifrl/finsight/pkg/normalize"
)

const (
	EnvPrefix = "FINSIGHT"
	FileName  = "finsight"
)

type Config struct {
	Log         LogConfig         `mapstructure:"log"`
	Ingest      IngestConfig      `mapstructure:"ingest"`
	Analytics   AnalyticsConfig   `mapstructure:"analytics"`
	Categorizer CategorizerConfig `mapstructure:"categorizer"`
	Server      ServerConfig      `mapstructure:"server"`
	Format      FormatConfig      `mapstructure:"format"`
	Categories  CategoriesConfig  `mapstructure:"categories"`
}

type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error fatal"`
}

type IngestConfig struct {
	RequireCategory bool     `mapstructure:"require_category"`
	DateLayouts     []string `mapstructure:"date_layouts"`
}

type AnalyticsConfig struct {
	OpsPerMonth      int      `mapstructure:"ops_per_month" validate:"gt=0"`
	Months           int      `mapstructure:"months" validate:"gte=0"`
	RecentLimit      int      `mapstructure:"recent_limit" validate:"gt=0"`
	OverloadShare    float64  `mapstructure:"overload_share" validate:"gt=0,lte=1"`
	AnomalyThreshold float64  `mapstructure:"anomaly_threshold" validate:"gt=0"`
	RentCategories   []string `mapstructure:"rent_categories" validate:"dive,required"`
}

type CategorizerConfig struct {
	URL     string        `mapstructure:"url" validate:"omitempty,url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type ServerConfig struct {
	Port       int           `mapstructure:"port" validate:"gt=0,lte=65535"`
	SessionTTL time.Duration `mapstructure:"session_ttl"`
}

type FormatConfig struct {
	Locale   string `mapstructure:"locale" validate:"required"`
	Currency string `mapstructure:"currency"`
}

type CategoriesConfig struct {
	Rules []category.Synonym `mapstructure:"rules" validate:"dive"`
}

var defaults = map[string]any{
	"log.level":                   "info",
	"ingest.require_category":     false,
	"ingest.date_layouts":         []string{},
	"analytics.ops_per_month":     analytics.DefaultOpsPerMonth,
	"analytics.months":            0,
	"analytics.recent_limit":      analytics.DefaultRecentLimit,
	"analytics.overload_share":    analytics.DefaultOverloadShare,
	"analytics.anomaly_threshold": analytics.DefaultAnomalyThreshold,
	"analytics.rent_categories":   analytics.DefaultRentCategories,
	"categorizer.url":             "",
	"categorizer.timeout":         30 * time.Second,
	"server.port":                 3000,
	"server.session_ttl":          30 * time.Minute,
	"format.locale":               format.DefaultLocale,
	"format.currency":             format.DefaultCurrency,
}

// flagKeys maps command-line flags onto config keys. Flags that a binary
// does not define are skipped.
var flagKeys = map[string]string{
	"log-level":        "log.level",
	"require-category": "ingest.require_category",
	"months":           "analytics.months",
	"threshold":        "analytics.anomaly_threshold",
	"categorizer-url":  "categorizer.url",
	"port":             "server.port",
	"session-ttl":      "server.session_ttl",
	"locale":           "format.locale",
	"currency":         "format.currency",
}

// Default returns the configuration with no file, env or flags applied.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("config defaults do not decode: %v", err))
	}
	return &cfg
}

// Build layers defaults, the config file, FINSIGHT_* env vars (a .env file
// in the working directory included) and flags, in increasing priority.
// An empty cfgFile looks for finsight.yaml in the working directory and
// tolerates its absence.
func Build(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	if err := gotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
}

var validate = validator.New()

// Validate checks every field and joins all failures into one error.
func (c *Config) Validate() error {
	var errs []error
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("invalid config: %w", err)
		}
		for _, fe := range verrs {
			errs = append(errs, fmt.Errorf("%s: failed %q (value %v)", fe.Namespace(), fe.ActualTag(), fe.Value()))
		}
	}
	if c.Server.SessionTTL <= 0 {
		errs = append(errs, errors.New("Config.Server.SessionTTL: must be positive"))
	}
	if c.Categorizer.Timeout < 0 {
		errs = append(errs, errors.New("Config.Categorizer.Timeout: must not be negative"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

func (c *Config) Level() log.Level {
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

func (c *Config) AnalyticsOptions() analytics.Options {
	return analytics.Options{
		OpsPerMonth:      c.Analytics.OpsPerMonth,
		Months:           c.Analytics.Months,
		RecentLimit:      c.Analytics.RecentLimit,
		OverloadShare:    c.Analytics.OverloadShare,
		AnomalyThreshold: c.Analytics.AnomalyThreshold,
		RentCategories:   c.Analytics.RentCategories,
	}
}

func (c *Config) NormalizeOptions() normalize.Options {
	return normalize.Options{
		RequireCategory: c.Ingest.RequireCategory,
		DateLayouts:     c.Ingest.DateLayouts,
	}
}

func (c *Config) Resolver() *category.Resolver {
	return category.New(c.Categories.Rules...)
}

func (c *Config) Formatter() *format.Formatter {
	return format.New(c.Format.Locale, c.Format.Currency)
}
