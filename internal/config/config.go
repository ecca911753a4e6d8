// Package config loads configuration from an optional config.yaml and the
// documented environment variables, and owns logger setup.
package config

import (
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Google    GoogleConfig
	Search    SearchConfig
	Output    OutputConfig
	Supabase  SupabaseConfig
	RateLimit RateLimitConfig
	Store     StoreConfig
	Log       LogConfig

	// invalid collects numeric options that failed to parse at load time;
	// surfaced by Validate.
	invalid []error
}

// GoogleConfig holds the Maps API credential.
type GoogleConfig struct {
	APIKey string
}

// SearchConfig describes what to search for.
type SearchConfig struct {
	Location     string
	Query        string
	NumResults   int
	RadiusMeters int
}

// OutputConfig selects local output files.
type OutputConfig struct {
	FileStem string
	CSV      bool
	JSON     bool
	XLSX     bool
}

// SupabaseConfig configures the optional remote sync.
type SupabaseConfig struct {
	Enabled bool
	URL     string
	Key     string
	Table   string
	// DBURL, when set, switches sync to a direct Postgres connection.
	DBURL string
}

// RateLimitConfig bounds outbound provider calls per rolling window.
type RateLimitConfig struct {
	MaxCalls   int
	PeriodSecs int
}

// StoreConfig locates the local run-history database.
type StoreConfig struct {
	Path string
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string
	Format string
}

// envBindings maps viper keys to their environment variable names. The env
// names are part of the tool's contract and are bound verbatim rather than
// through a prefix.
var envBindings = map[string]string{
	"google.api_key":       "GOOGLE_MAPS_API_KEY",
	"search.location":      "SEARCH_LOCATION",
	"search.query":         "SEARCH_QUERY",
	"search.num_results":   "NUM_RESULTS",
	"search.radius_meters": "SEARCH_RADIUS",
	"output.file":          "OUTPUT_FILE",
	"output.csv":           "OUTPUT_CSV",
	"output.json":          "OUTPUT_JSON",
	"output.xlsx":          "OUTPUT_XLSX",
	"supabase.enabled":     "USE_SUPABASE",
	"supabase.url":         "SUPABASE_URL",
	"supabase.key":         "SUPABASE_KEY",
	"supabase.table":       "SUPABASE_TABLE_NAME",
	"supabase.db_url":      "SUPABASE_DB_URL",
	"ratelimit.max_calls":  "RATE_LIMIT",
	"ratelimit.period":     "RATE_LIMIT_PERIOD_SECS",
	"store.path":           "RUN_DB_PATH",
	"log.level":            "LOG_LEVEL",
	"log.format":           "LOG_FORMAT",
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, eris.Wrapf(err, "config: bind %s", env)
		}
	}

	// Defaults
	v.SetDefault("search.num_results", 100)
	v.SetDefault("search.radius_meters", 50000)
	v.SetDefault("output.file", "output")
	v.SetDefault("output.csv", true)
	v.SetDefault("output.json", true)
	v.SetDefault("output.xlsx", false)
	v.SetDefault("supabase.enabled", false)
	v.SetDefault("ratelimit.max_calls", 10)
	v.SetDefault("ratelimit.period", 1)
	v.SetDefault("store.path", "mapleads.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	cfg := &Config{
		Google: GoogleConfig{
			APIKey: v.GetString("google.api_key"),
		},
		Search: SearchConfig{
			Location: v.GetString("search.location"),
			Query:    v.GetString("search.query"),
		},
		Output: OutputConfig{
			FileStem: v.GetString("output.file"),
			CSV:      v.GetBool("output.csv"),
			JSON:     v.GetBool("output.json"),
			XLSX:     v.GetBool("output.xlsx"),
		},
		Supabase: SupabaseConfig{
			Enabled: v.GetBool("supabase.enabled"),
			URL:     v.GetString("supabase.url"),
			Key:     v.GetString("supabase.key"),
			Table:   v.GetString("supabase.table"),
			DBURL:   v.GetString("supabase.db_url"),
		},
		Store: StoreConfig{
			Path: v.GetString("store.path"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
	}

	// Numerics are read as strings so a malformed value surfaces as a
	// validation error instead of a silent zero.
	cfg.Search.NumResults = cfg.parseInt(v, "search.num_results", "NUM_RESULTS")
	cfg.Search.RadiusMeters = cfg.parseInt(v, "search.radius_meters", "SEARCH_RADIUS")
	cfg.RateLimit.MaxCalls = cfg.parseInt(v, "ratelimit.max_calls", "RATE_LIMIT")
	cfg.RateLimit.PeriodSecs = cfg.parseInt(v, "ratelimit.period", "RATE_LIMIT_PERIOD_SECS")

	return cfg, nil
}

func (c *Config) parseInt(v *viper.Viper, key, option string) int {
	raw := v.GetString(key)
	n, err := strconv.Atoi(raw)
	if err != nil {
		c.invalid = append(c.invalid, eris.Errorf("invalid %s: %q is not an integer", option, raw))
		return 0
	}
	if n <= 0 {
		c.invalid = append(c.invalid, eris.Errorf("invalid %s: must be positive, got %d", option, n))
		return 0
	}
	return n
}

// Validate returns one error per missing or malformed required option. An
// empty slice means the configuration is runnable. Supabase options are
// deliberately not checked here: an incomplete sync configuration skips the
// sync step at sync time instead of failing the whole run.
func (c *Config) Validate() []error {
	errs := append([]error(nil), c.invalid...)

	if c.Google.APIKey == "" {
		errs = append(errs, eris.New("missing required option GOOGLE_MAPS_API_KEY"))
	}
	if c.Search.Location == "" {
		errs = append(errs, eris.New("missing required option SEARCH_LOCATION"))
	}
	if c.Search.Query == "" {
		errs = append(errs, eris.New("missing required option SEARCH_QUERY"))
	}

	return errs
}

// SupabaseMissing lists the sync options still required when sync is enabled.
func (c *Config) SupabaseMissing() []string {
	var missing []string
	if c.Supabase.URL == "" {
		missing = append(missing, "SUPABASE_URL")
	}
	if c.Supabase.Key == "" {
		missing = append(missing, "SUPABASE_KEY")
	}
	if c.Supabase.Table == "" {
		missing = append(missing, "SUPABASE_TABLE_NAME")
	}
	return missing
}

// LogFields renders the configuration for startup logging with credentials
// redacted.
func (c *Config) LogFields() []zap.Field {
	return []zap.Field{
		zap.String("location", c.Search.Location),
		zap.String("query", c.Search.Query),
		zap.Int("num_results", c.Search.NumResults),
		zap.Int("radius_meters", c.Search.RadiusMeters),
		zap.String("output_file", c.Output.FileStem),
		zap.Bool("output_csv", c.Output.CSV),
		zap.Bool("output_json", c.Output.JSON),
		zap.Bool("output_xlsx", c.Output.XLSX),
		zap.Bool("use_supabase", c.Supabase.Enabled),
		zap.String("supabase_table", c.Supabase.Table),
	}
}

// InitLogger initializes the global zap logger.
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
