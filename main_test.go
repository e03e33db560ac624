package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"airbnb-report/config"
	"airbnb-report/models"
	"airbnb-report/utils"
)

func TestApplyFlagsOnlyChanged(t *testing.T) {
	cfg := config.Defaults()
	fs := rootCmd.Flags()
	t.Cleanup(func() {
		fs.Visit(func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		})
	})

	require.NoError(t, fs.Parse([]string{"--out", "site/report.html", "--details-limit", "0", "--listing-view"}))
	applyFlags(fs, cfg)

	assert.Equal(t, "site/report.html", cfg.OutputPath)
	assert.Equal(t, 0, cfg.DetailsLimit)
	assert.True(t, cfg.ListingView)
	assert.Equal(t, "Airbnb価格レポート", cfg.Title, "unset flags keep config values")
	assert.Equal(t, "data/konohana_daily_avg.csv", cfg.SummaryCSV)
}

func TestLoadConfigFlagFixesEnvValue(t *testing.T) {
	t.Setenv("DETAILS_LIMIT", "-1")
	fs := rootCmd.Flags()
	t.Cleanup(func() {
		fs.Visit(func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		})
	})

	require.NoError(t, fs.Parse([]string{"--details-limit", "-1"}))
	_, err := loadConfig(fs)
	assert.ErrorContains(t, err, "details_limit must be >= 0")

	require.NoError(t, fs.Parse([]string{"--details-limit", "5"}))
	cfg, err := loadConfig(fs)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.DetailsLimit)
}

func TestHolidaysForUsesSummarySpan(t *testing.T) {
	summary := []models.SummaryRow{
		{CheckIn: civil.Date{Year: 2026, Month: time.January, Day: 10}},
		{CheckIn: civil.Date{Year: 2026, Month: time.January, Day: 20}},
	}
	details := []models.DetailRow{
		{CheckIn: civil.Date{Year: 2026, Month: time.January, Day: 1}},
	}

	hols := holidaysFor(summary, details)
	assert.True(t, hols.Contains(civil.Date{Year: 2026, Month: time.January, Day: 12}), "成人の日")
	assert.False(t, hols.Contains(civil.Date{Year: 2026, Month: time.January, Day: 1}))

	hols = holidaysFor(nil, details)
	assert.True(t, hols.Contains(civil.Date{Year: 2026, Month: time.January, Day: 1}))

	assert.Empty(t, holidaysFor(nil, nil))
}

func TestRunWritesReportAndSinks(t *testing.T) {
	dir := t.TempDir()
	summaryCSV := filepath.Join(dir, "avg.csv")
	detailsCSV := filepath.Join(dir, "details.csv")
	require.NoError(t, os.WriteFile(summaryCSV, []byte(
		"checkin,avg_price_yen,count,url\n"+
			"2026-01-24,12000,2,\n"+
			"2026-01-25,,0,\n"+
			"2026-01-26,15000,1,\n"), 0644))
	require.NoError(t, os.WriteFile(detailsCSV, []byte(
		"checkin,price_yen,listing_url,label,title\n"+
			"2026-01-24,10000,https://www.airbnb.jp/rooms/1,A,Room A\n"+
			"2026-01-24,14000,https://www.airbnb.jp/rooms/2,B,Room B\n"+
			"2026-01-26,15000,https://www.airbnb.jp/rooms/1,A,Room A\n"), 0644))

	cfg := config.Defaults()
	cfg.SummaryCSV = summaryCSV
	cfg.DetailsCSV = detailsCSV
	cfg.OutputPath = filepath.Join(dir, "docs", "index.html")
	cfg.HistoryDir = filepath.Join(dir, "html")
	cfg.ExportDir = filepath.Join(dir, "export")
	cfg.ArchiveDSN = "sqlite://" + filepath.Join(dir, "archive.db")
	cfg.ChartPNGPath = filepath.Join(dir, "chart.png")
	cfg.MetricsTextfile = filepath.Join(dir, "metrics", "report.prom")

	var logs bytes.Buffer
	logger := utils.NewLoggerTo(&logs, utils.LevelInfo)
	require.NoError(t, run(context.Background(), cfg, logger))
	require.NoError(t, run(context.Background(), cfg, logger))

	assert.Equal(t, 2, strings.Count(logs.String(), "Report written to"), "one line per run")
	assert.Equal(t, 1, strings.Count(logs.String(), "Previous report moved to"))

	html, err := os.ReadFile(cfg.OutputPath)
	require.NoError(t, err)
	assert.Contains(t, string(html), `id="day-details-data"`)

	history, err := os.ReadDir(cfg.HistoryDir)
	require.NoError(t, err)
	assert.Len(t, history, 1, "second run rotates the first report")

	for _, p := range []string{
		filepath.Join(cfg.ExportDir, "avg.csv"),
		filepath.Join(cfg.ExportDir, "details.csv"),
		cfg.ChartPNGPath,
		filepath.Join(dir, "archive.db"),
	} {
		assert.FileExists(t, p)
	}

	prom, err := os.ReadFile(cfg.MetricsTextfile)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(prom), `pricereport_rows_total{table="details"} 3`))
}

func TestRunMissingTablesStillWritesReport(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Defaults()
	cfg.SummaryCSV = filepath.Join(dir, "missing_avg.csv")
	cfg.DetailsCSV = filepath.Join(dir, "missing_details.csv")
	cfg.OutputPath = filepath.Join(dir, "index.html")
	cfg.HistoryDir = filepath.Join(dir, "html")

	require.NoError(t, run(context.Background(), cfg, utils.NewLoggerTo(io.Discard, utils.LevelError)))

	html, err := os.ReadFile(cfg.OutputPath)
	require.NoError(t, err)
	assert.Contains(t, string(html), "平均CSVが見つからないか、読み込めませんでした。")
	assert.NoDirExists(t, cfg.HistoryDir)
}
