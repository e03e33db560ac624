package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"airbnb-report/chart"
	"airbnb-report/config"
	"airbnb-report/holiday"
	"airbnb-report/metrics"
	"airbnb-report/models"
	"airbnb-report/report"
	"airbnb-report/services"
	"airbnb-report/snapshot"
	"airbnb-report/stats"
	"airbnb-report/storage"
	"airbnb-report/utils"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "airbnb-report",
	Short: "Build the nightly-rate HTML report from scraped CSV tables",
	Long: `airbnb-report reads the daily average table and the per-listing detail table,
computes per-day price statistics and writes a single self-contained HTML report
with a price chart and per-day drill-down.

The previous report is moved into the history directory before it is replaced.

Configuration is read from defaults, then the --config YAML file, then environment
variables, then flags given on the command line.

Examples:
  airbnb-report
  airbnb-report --config report.yaml
  airbnb-report --out docs/index.html --details-limit 0 --listing-view`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd.Flags())
		if err != nil {
			return err
		}
		level, _ := utils.ParseLevel(cfg.LogLevel)
		return run(cmd.Context(), cfg, utils.NewLogger(level))
	},
}

func init() {
	f := rootCmd.Flags()
	f.StringVar(&configPath, "config", "", "Path to YAML config file")
	f.String("summary", "", "Daily average CSV path")
	f.String("details", "", "Per-listing detail CSV path")
	f.String("out", "", "Report output path")
	f.String("title", "", "Report title")
	f.String("history-dir", "", "Directory that receives the previous report")
	f.Int("details-limit", 0, "Rows per day in the listing view (0 = all)")
	f.Bool("listing-view", false, "Include the per-day listing tables")
}

// loadConfig layers explicitly set flags over file and env values, then validates once
func loadConfig(fs *pflag.FlagSet) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	applyFlags(fs, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyFlags overrides config values with flags the user actually set
func applyFlags(fs *pflag.FlagSet, cfg *config.Config) {
	strFlags := map[string]*string{
		"summary":     &cfg.SummaryCSV,
		"details":     &cfg.DetailsCSV,
		"out":         &cfg.OutputPath,
		"title":       &cfg.Title,
		"history-dir": &cfg.HistoryDir,
	}
	for name, dst := range strFlags {
		if fs.Changed(name) {
			*dst, _ = fs.GetString(name)
		}
	}
	if fs.Changed("details-limit") {
		cfg.DetailsLimit, _ = fs.GetInt("details-limit")
	}
	if fs.Changed("listing-view") {
		cfg.ListingView, _ = fs.GetBool("listing-view")
	}
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *utils.Logger) error {
	// ================== Bootstrap ====================
	started := time.Now()
	runMetrics := metrics.NewRun(started)

	logger.Info("Airbnb Price Report")
	logger.Info("Summary: %s | Details: %s", cfg.SummaryCSV, cfg.DetailsCSV)
	logger.Info("Output: %s | History: %s", cfg.OutputPath, cfg.HistoryDir)

	// =============== Load tables ===================================
	reader := storage.NewCSVReader(logger)
	rawSummary, err := reader.ReadFile(cfg.SummaryCSV)
	if err != nil {
		return fmt.Errorf("failed to load summary table: %w", err)
	}
	rawDetails, err := reader.ReadFile(cfg.DetailsCSV)
	if err != nil {
		return fmt.Errorf("failed to load details table: %w", err)
	}

	// =========== Data Cleaning ======================
	cleaner := services.NewRecordCleaner(logger)
	summary, summaryStats := cleaner.CleanSummary(rawSummary)
	details, detailStats := cleaner.CleanDetails(rawDetails)
	observeClean(runMetrics, "summary", summaryStats)
	observeClean(runMetrics, "details", detailStats)

	if len(summary) == 0 && len(details) == 0 {
		logger.Warn("No usable rows in either table, writing an empty report")
	}

	// ========= CSV: export clean tables ===========================
	if cfg.ExportDir != "" {
		if err := exportTables(cfg, summary, details, logger); err != nil {
			logger.Error("Failed to export CSV: %v", err)
			// Non-fatal: continue to the report
		}
	}

	// ==== Statistics & holidays ============================
	dayStats := stats.ByDay(details)
	hols := holidaysFor(summary, details)
	runMetrics.Days.Set(float64(len(summary)))
	runMetrics.Listings.Set(float64(len(details)))
	runMetrics.Holidays.Set(float64(len(hols)))

	insights := services.NewInsightService(logger).Generate(summary, details, dayStats)

	// ==== Render ============================
	chartRenderer := chart.NewRenderer(chart.DefaultOptions())
	pageRenderer, err := report.NewRenderer(chartRenderer)
	if err != nil {
		return err
	}
	generatedAt := time.Now()
	html, err := pageRenderer.Render(&report.Data{
		Title:        cfg.Title,
		Note:         cfg.Note,
		GeneratedAt:  generatedAt,
		Summary:      summary,
		Details:      details,
		Stats:        dayStats,
		Holidays:     hols,
		Insights:     insights,
		Search:       cfg.SearchParams(),
		ListingView:  cfg.ListingView,
		DetailsLimit: cfg.DetailsLimit,
	})
	if err != nil {
		return err
	}

	// ==== Write report ============================
	writer := storage.NewReportWriter(cfg.OutputPath, cfg.HistoryDir, logger)
	if _, err := writer.Write(html); err != nil {
		return err
	}

	// ==== Optional sinks ============================
	if cfg.ArchiveDSN != "" {
		if err := archiveRun(ctx, cfg.ArchiveDSN, generatedAt, summary, dayStats, logger); err != nil {
			logger.Error("Failed to archive run: %v", err)
		}
	}

	if cfg.ChartPNGPath != "" {
		in := chart.Input{Rows: summary, Stats: dayStats, Holidays: hols}
		if err := chartRenderer.WritePreview(in, cfg.ChartPNGPath); err != nil {
			logger.Error("Failed to write chart preview: %v", err)
		} else {
			logger.Info("Chart preview saved to: %s", cfg.ChartPNGPath)
		}
	}

	if cfg.SnapshotPath != "" {
		capturer := snapshot.NewCapturer(snapshot.Options{Timeout: cfg.SnapshotTimeoutDuration()}, logger)
		// one payload entry per date with details
		if err := capturer.Capture(ctx, writer.Path(), cfg.SnapshotPath, len(dayStats)); err != nil {
			logger.Error("Failed to capture snapshot: %v", err)
		}
	}

	runMetrics.Finish(time.Now(), len(html))
	if cfg.MetricsTextfile != "" {
		if err := runMetrics.WriteTextfile(cfg.MetricsTextfile); err != nil {
			logger.Error("Failed to write metrics: %v", err)
		}
	}

	// ==== Insights ============================
	services.PrintInsightReport(os.Stdout, insights)
	logger.Info("Done in %s", time.Since(started).Round(time.Millisecond))
	return nil
}

func observeClean(m *metrics.Run, table string, st services.CleanStats) {
	dropped := make(map[string]int, len(st.Dropped))
	for reason, n := range st.Dropped {
		dropped[string(reason)] = n
	}
	m.ObserveTable(table, st.Read, dropped)
}

// holidaysFor covers the summary date span, falling back to the details span
func holidaysFor(summary []models.SummaryRow, details []models.DetailRow) holiday.Set {
	var first, last civil.Date
	switch {
	case len(summary) > 0:
		first, last = summary[0].CheckIn, summary[len(summary)-1].CheckIn
	case len(details) > 0:
		first, last = details[0].CheckIn, details[len(details)-1].CheckIn
	default:
		return holiday.Set{}
	}
	return holiday.ForRange(first, last)
}

func exportTables(cfg *config.Config, summary []models.SummaryRow, details []models.DetailRow, logger *utils.Logger) error {
	summaryOut := storage.NewCSVWriter(filepath.Join(cfg.ExportDir, filepath.Base(cfg.SummaryCSV)), logger)
	if err := summaryOut.WriteSummaryRows(summary); err != nil {
		return err
	}
	detailsOut := storage.NewCSVWriter(filepath.Join(cfg.ExportDir, filepath.Base(cfg.DetailsCSV)), logger)
	return detailsOut.WriteDetailRows(details)
}

func archiveRun(ctx context.Context, dsn string, generatedAt time.Time, summary []models.SummaryRow, dayStats map[civil.Date]models.DayStats, logger *utils.Logger) error {
	w, err := storage.NewArchiveWriter(ctx, dsn, logger)
	if err != nil {
		return err
	}
	var archive storage.ReportArchive = w
	defer archive.Close()

	if err := archive.CreateTable(ctx); err != nil {
		return err
	}
	return archive.SaveRun(ctx, storage.ArchiveRun{
		ID:          uuid.NewString(),
		GeneratedAt: generatedAt,
		Summary:     summary,
		Stats:       dayStats,
	})
}
