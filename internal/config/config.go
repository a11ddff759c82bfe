package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the full run configuration. It is built once by Load and passed
// by value into every stage; nothing in the pipeline mutates it.
type Config struct {
	StatCan   StatCanConfig `yaml:"statcan"`
	Grain     GrainConfig   `yaml:"grain"`
	CPI       CPIConfig     `yaml:"cpi"`
	OutputDir string        `yaml:"output_dir"`
	CacheDir  string        `yaml:"cache_dir"`
	LogLevel  string        `yaml:"log_level"`
}

// StatCanConfig holds Web Data Service connection settings.
type StatCanConfig struct {
	BaseURL         string        `yaml:"base_url"`
	Language        string        `yaml:"language"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	DownloadTimeout time.Duration `yaml:"download_timeout"`
	CacheTTL        time.Duration `yaml:"cache_ttl"`
}

// GrainConfig drives the production-growth decomposition.
type GrainConfig struct {
	TableID               string     `yaml:"table_id"`
	Geography             string     `yaml:"geography"`
	ProductionDisposition string     `yaml:"production_disposition"`
	AreaDisposition       string     `yaml:"area_disposition"`
	Groups                CropGroups `yaml:"crop_groupings"`

	// CutoffYear splits the extreme within-yield counts into before and
	// at-or-after.
	CutoffYear         int     `yaml:"cutoff_year"`
	WithinThreshold    float64 `yaml:"within_threshold"`
	PlausibilityMargin float64 `yaml:"plausibility_margin"`
	BarSpread          float64 `yaml:"bar_spread"`

	// BaseYear is reported as first/last year when a series is empty.
	BaseYear int `yaml:"base_year"`
}

// CPIConfig selects the consumer price index series.
type CPIConfig struct {
	TableID   string `yaml:"table_id"`
	Geography string `yaml:"geography"`
	Product   string `yaml:"product"`
	UOM       string `yaml:"uom"`
	Years     int    `yaml:"years"`
}

// AllCrops returns every crop label across all groups, in group order.
func (g GrainConfig) AllCrops() []string {
	var crops []string
	for _, group := range g.Groups {
		crops = append(crops, group.Crops...)
	}
	return crops
}

// Default returns the built-in configuration for Statistics Canada
// table 32-10-0359 and the All-items CPI.
func Default() Config {
	return Config{
		StatCan: StatCanConfig{
			BaseURL:         "https://www150.statcan.gc.ca/t1/wds/rest",
			Language:        "en",
			RequestTimeout:  30 * time.Second,
			DownloadTimeout: 120 * time.Second,
			CacheTTL:        24 * time.Hour,
		},
		Grain: GrainConfig{
			TableID:               "32100359",
			Geography:             "Canada",
			ProductionDisposition: "Production (metric tonnes)",
			AreaDisposition:       "Seeded area (hectares)",
			Groups:                DefaultCropGroups(),
			CutoffYear:            1960,
			WithinThreshold:       0.15,
			PlausibilityMargin:    0.25,
			BarSpread:             0.25,
			BaseYear:              1908,
		},
		CPI: CPIConfig{
			TableID:   "18100004",
			Geography: "Canada",
			Product:   "All-items",
			UOM:       "2002=100",
			Years:     10,
		},
		OutputDir: "public/data",
		LogLevel:  "info",
	}
}

// Load builds the effective configuration: defaults, then the YAML file at
// path (if non-empty), then environment overrides (including a .env file in
// the working directory).
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config YAML: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}
	cfg = applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg Config) Config {
	cfg.StatCan.BaseURL = getEnvOrDefault("STATCAN_BASE_URL", cfg.StatCan.BaseURL)
	cfg.StatCan.Language = getEnvOrDefault("STATCAN_LANGUAGE", cfg.StatCan.Language)
	cfg.OutputDir = getEnvOrDefault("CROPSTATS_OUTPUT_DIR", cfg.OutputDir)
	cfg.CacheDir = getEnvOrDefault("CROPSTATS_CACHE_DIR", cfg.CacheDir)
	cfg.LogLevel = getEnvOrDefault("CROPSTATS_LOG_LEVEL", cfg.LogLevel)
	cfg.Grain.CutoffYear = getEnvInt("CROPSTATS_CUTOFF_YEAR", cfg.Grain.CutoffYear)
	cfg.CPI.Years = getEnvInt("CROPSTATS_CPI_YEARS", cfg.CPI.Years)
	return cfg
}

// Validate rejects configurations the pipeline cannot run with.
func (c Config) Validate() error {
	var errs []error

	if c.StatCan.BaseURL == "" {
		errs = append(errs, errors.New("statcan.base_url is empty"))
	}
	if c.Grain.Geography == "" {
		errs = append(errs, errors.New("grain.geography is empty"))
	}
	if c.Grain.ProductionDisposition == "" || c.Grain.AreaDisposition == "" {
		errs = append(errs, errors.New("grain dispositions must both be set"))
	}
	if c.Grain.ProductionDisposition == c.Grain.AreaDisposition {
		errs = append(errs, errors.New("grain production and area dispositions must differ"))
	}
	if len(c.Grain.Groups) == 0 {
		errs = append(errs, errors.New("grain.crop_groupings is empty"))
	}

	seen := make(map[string]string)
	for _, group := range c.Grain.Groups {
		if len(group.Crops) == 0 {
			errs = append(errs, fmt.Errorf("crop group %q has no crops", group.Name))
		}
		for _, crop := range group.Crops {
			if other, dup := seen[crop]; dup {
				errs = append(errs, fmt.Errorf("crop %q listed in both %q and %q", crop, other, group.Name))
				continue
			}
			seen[crop] = group.Name
		}
	}

	if c.Grain.WithinThreshold <= 0 {
		errs = append(errs, errors.New("grain.within_threshold must be positive"))
	}
	if c.Grain.BarSpread <= 0 || c.Grain.BarSpread >= 0.5 {
		errs = append(errs, errors.New("grain.bar_spread must be in (0, 0.5)"))
	}
	if c.CPI.Years <= 0 {
		errs = append(errs, errors.New("cpi.years must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// SlogLevel maps LogLevel onto a slog level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
