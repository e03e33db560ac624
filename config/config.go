package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"airbnb-report/report"
	"airbnb-report/utils"
)

// Config holds all application-level configuration
type Config struct {
	// Input tables
	SummaryCSV string `yaml:"summary_csv"`
	DetailsCSV string `yaml:"details_csv"`

	// Output
	OutputPath   string `yaml:"output"`
	HistoryDir   string `yaml:"history_dir"`
	Title        string `yaml:"title"`
	Note         string `yaml:"note"`
	DetailsLimit int    `yaml:"details_limit"` // per-day rows in the listing view, 0 = all
	ListingView  bool   `yaml:"listing_view"`

	// Search link reconstruction
	Search Search `yaml:"search"`

	// Optional sinks, disabled when empty
	ArchiveDSN      string `yaml:"archive_dsn"`
	SnapshotPath    string `yaml:"snapshot_path"`
	SnapshotTimeout int    `yaml:"snapshot_timeout_sec"`
	ChartPNGPath    string `yaml:"chart_png_path"`
	MetricsTextfile string `yaml:"metrics_textfile"`
	ExportDir       string `yaml:"export_dir"`

	LogLevel string `yaml:"log_level"`
}

// Search holds the fixed search conditions of the scraper
type Search struct {
	BaseURL     string `yaml:"base_url"`
	Destination string `yaml:"destination"`
	Adults      int    `yaml:"adults"`
	Children    int    `yaml:"children"`
	Infants     int    `yaml:"infants"`
	Pets        int    `yaml:"pets"`
	PriceMin    string `yaml:"price_min"`
	PriceMax    string `yaml:"price_max"`
}

// Defaults returns the configuration used when nothing is overridden
func Defaults() *Config {
	sp := report.DefaultSearchParams()
	return &Config{
		SummaryCSV:   "data/konohana_daily_avg.csv",
		DetailsCSV:   "data/konohana_daily_details.csv",
		OutputPath:   "docs/index.html",
		HistoryDir:   "html",
		Title:        "Airbnb価格レポート",
		DetailsLimit: 50,
		Search: Search{
			BaseURL:     sp.BaseURL,
			Destination: sp.Destination,
			Adults:      sp.Adults,
			Children:    sp.Children,
			Infants:     sp.Infants,
			Pets:        sp.Pets,
		},
		SnapshotTimeout: 30,
		LogLevel:        "info",
	}
}

// Load builds the configuration from defaults, then the YAML file at path
// (skipped when path is empty), then environment variables. The result is not
// validated: callers apply command-line overrides first, then call Validate.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.SummaryCSV = getEnv("SUMMARY_CSV_PATH", c.SummaryCSV)
	c.DetailsCSV = getEnv("DETAILS_CSV_PATH", c.DetailsCSV)
	c.OutputPath = getEnv("REPORT_OUTPUT_PATH", c.OutputPath)
	c.HistoryDir = getEnv("REPORT_HISTORY_DIR", c.HistoryDir)
	c.Title = getEnv("REPORT_TITLE", c.Title)
	c.Note = getEnv("REPORT_NOTE", c.Note)
	c.DetailsLimit = getEnvInt("DETAILS_LIMIT", c.DetailsLimit)
	c.ListingView = getEnvBool("REPORT_LISTING_VIEW", c.ListingView)

	c.Search.BaseURL = getEnv("AIRBNB_URL", c.Search.BaseURL)
	c.Search.Destination = getEnv("AIRBNB_DESTINATION", c.Search.Destination)
	c.Search.Adults = getEnvInt("AIRBNB_ADULTS", c.Search.Adults)
	c.Search.Children = getEnvInt("AIRBNB_CHILDREN", c.Search.Children)
	c.Search.Infants = getEnvInt("AIRBNB_INFANTS", c.Search.Infants)
	c.Search.Pets = getEnvInt("AIRBNB_PETS", c.Search.Pets)
	c.Search.PriceMin = getEnv("AIRBNB_PRICE_MIN", c.Search.PriceMin)
	c.Search.PriceMax = getEnv("AIRBNB_PRICE_MAX", c.Search.PriceMax)

	c.ArchiveDSN = getEnv("ARCHIVE_DSN", c.ArchiveDSN)
	c.SnapshotPath = getEnv("SNAPSHOT_PATH", c.SnapshotPath)
	c.SnapshotTimeout = getEnvInt("SNAPSHOT_TIMEOUT_SEC", c.SnapshotTimeout)
	c.ChartPNGPath = getEnv("CHART_PNG_PATH", c.ChartPNGPath)
	c.MetricsTextfile = getEnv("METRICS_TEXTFILE", c.MetricsTextfile)
	c.ExportDir = getEnv("EXPORT_DIR", c.ExportDir)

	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
}

// Validate checks the configuration for correctness
func (c *Config) Validate() error {
	var errs []error
	if c.SummaryCSV == "" {
		errs = append(errs, errors.New("summary_csv is required"))
	}
	if c.DetailsCSV == "" {
		errs = append(errs, errors.New("details_csv is required"))
	}
	if c.OutputPath == "" {
		errs = append(errs, errors.New("output is required"))
	}
	if c.HistoryDir == "" {
		errs = append(errs, errors.New("history_dir is required"))
	}
	if c.DetailsLimit < 0 {
		errs = append(errs, fmt.Errorf("details_limit must be >= 0, got %d", c.DetailsLimit))
	}
	if c.Search.Adults < 1 {
		errs = append(errs, fmt.Errorf("search adults must be >= 1, got %d", c.Search.Adults))
	}
	if c.Search.Children < 0 || c.Search.Infants < 0 || c.Search.Pets < 0 {
		errs = append(errs, errors.New("search children, infants and pets must be >= 0"))
	}
	if c.SnapshotTimeout <= 0 {
		errs = append(errs, fmt.Errorf("snapshot_timeout_sec must be > 0, got %d", c.SnapshotTimeout))
	}
	if _, err := utils.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// SearchParams converts the search block for the report renderer
func (c *Config) SearchParams() report.SearchParams {
	return report.SearchParams{
		BaseURL:     c.Search.BaseURL,
		Destination: c.Search.Destination,
		Adults:      c.Search.Adults,
		Children:    c.Search.Children,
		Infants:     c.Search.Infants,
		Pets:        c.Search.Pets,
		PriceMin:    c.Search.PriceMin,
		PriceMax:    c.Search.PriceMax,
	}
}

// SnapshotTimeoutDuration is the per-attempt browser timeout
func (c *Config) SnapshotTimeoutDuration() time.Duration {
	return time.Duration(c.SnapshotTimeout) * time.Second
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(val)); err == nil {
			return b
		}
	}
	return defaultVal
}
