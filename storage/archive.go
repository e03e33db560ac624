package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"

	"airbnb-report/models"
	"airbnb-report/utils"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// ArchiveRun is one report run's daily figures
type ArchiveRun struct {
	ID          string
	GeneratedAt time.Time
	Summary     []models.SummaryRow
	Stats       map[civil.Date]models.DayStats
}

// ArchiveWriter stores daily figures of every run in PostgreSQL or SQLite
type ArchiveWriter struct {
	db      *sql.DB
	dialect string
	logger  *utils.Logger
}

var _ ReportArchive = (*ArchiveWriter)(nil)

// NewArchiveWriter opens the database named by dsn and pings it.
// postgres:// and postgresql:// use lib/pq; sqlite://path opens a SQLite file.
func NewArchiveWriter(ctx context.Context, dsn string, logger *utils.Logger) (*ArchiveWriter, error) {
	driver, source, err := parseArchiveDSN(dsn)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, source)
	if err != nil {
		return nil, fmt.Errorf("failed to open DB: %w", err)
	}

	if driver == "sqlite" {
		// one writer at a time
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(5)
		db.SetMaxIdleConns(2)
		db.SetConnMaxLifetime(time.Minute * 5)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}

	logger.Info("Connected to %s archive", driver)
	return &ArchiveWriter{db: db, dialect: driver, logger: logger}, nil
}

func parseArchiveDSN(dsn string) (driver, source string, err error) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return "postgres", dsn, nil
	case strings.HasPrefix(dsn, "sqlite://"):
		path := strings.TrimPrefix(dsn, "sqlite://")
		if path == "" {
			return "", "", fmt.Errorf("sqlite archive DSN has no path")
		}
		return "sqlite", path, nil
	}
	return "", "", fmt.Errorf("unsupported archive DSN %q (want postgres:// or sqlite://)", dsn)
}

// CreateTable creates the daily_prices table if it doesn't exist, with indexes
func (w *ArchiveWriter) CreateTable(ctx context.Context) error {
	dateType, tsType := "DATE", "TIMESTAMPTZ"
	if w.dialect == "sqlite" {
		dateType, tsType = "TEXT", "TEXT"
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS daily_prices (
			run_id        TEXT    NOT NULL,
			generated_at  ` + tsType + ` NOT NULL,
			checkin       ` + dateType + ` NOT NULL,
			avg_price     INTEGER,
			listing_count INTEGER NOT NULL DEFAULT 0,
			min_price     INTEGER,
			max_price     INTEGER,
			median_price  INTEGER,
			p25_price     INTEGER,
			p75_price     INTEGER,
			PRIMARY KEY (run_id, checkin)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_daily_prices_checkin ON daily_prices (checkin)`,
		`CREATE INDEX IF NOT EXISTS idx_daily_prices_generated_at ON daily_prices (generated_at)`,
	}
	for _, stmt := range stmts {
		if _, err := w.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	w.logger.Info("Table 'daily_prices' is ready")
	return nil
}

// SaveRun inserts one row per summary date in a single transaction
func (w *ArchiveWriter) SaveRun(ctx context.Context, run ArchiveRun) (err error) {
	if len(run.Summary) == 0 {
		return nil
	}

	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, w.rebind(`
		INSERT INTO daily_prices (run_id, generated_at, checkin, avg_price, listing_count,
			min_price, max_price, median_price, p25_price, p75_price)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (run_id, checkin) DO NOTHING
	`))
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	generatedAt := w.timeValue(run.GeneratedAt)
	for _, row := range run.Summary {
		var median, p25, p75 *int
		if st, ok := run.Stats[row.CheckIn]; ok {
			median, p25, p75 = &st.Median, &st.P25, &st.P75
		}
		if _, err = stmt.ExecContext(ctx,
			run.ID,
			generatedAt,
			row.CheckIn.String(),
			nullInt(row.AvgPrice),
			row.Count,
			nullInt(row.MinPrice),
			nullInt(row.MaxPrice),
			nullInt(median),
			nullInt(p25),
			nullInt(p75),
		); err != nil {
			return fmt.Errorf("failed to insert %s: %w", row.CheckIn, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	w.logger.Info("Archived %d days for run %s", len(run.Summary), run.ID)
	return nil
}

// Close closes the database connection
func (w *ArchiveWriter) Close() error {
	if w.db == nil {
		return nil
	}
	return w.db.Close()
}

// rebind turns ? placeholders into $1, $2, ... for PostgreSQL
func (w *ArchiveWriter) rebind(query string) string {
	if w.dialect != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (w *ArchiveWriter) timeValue(t time.Time) any {
	if w.dialect == "sqlite" {
		return t.UTC().Format(time.RFC3339)
	}
	return t
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
