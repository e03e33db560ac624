package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"airbnb-report/models"
	"airbnb-report/utils"
)

// SummaryHeader is the column order of the daily summary table
var SummaryHeader = []string{"checkin", "avg_price_yen", "count", "min_price_yen", "max_price_yen", "url"}

// DetailHeader is the column order of the per-listing detail table
var DetailHeader = []string{
	"checkin", "price_yen", "listing_url", "raw_label", "title",
	"guests", "bedrooms", "beds", "reviews_count", "rating", "subtitle",
}

// CSVWriter writes typed rows back out in the canonical table layout
type CSVWriter struct {
	filePath string
	logger   *utils.Logger
}

// NewCSVWriter creates a new CSVWriter
func NewCSVWriter(filePath string, logger *utils.Logger) *CSVWriter {
	return &CSVWriter{filePath: filePath, logger: logger}
}

// WriteSummaryRows writes the daily summary table
func (w *CSVWriter) WriteSummaryRows(rows []models.SummaryRow) error {
	err := w.writeFile(func(out io.Writer) error { return EncodeSummaryRows(out, rows) })
	if err != nil {
		return err
	}
	w.logger.Info("Summary rows written to: %s (%d rows)", w.filePath, len(rows))
	return nil
}

// WriteDetailRows writes the detail table
func (w *CSVWriter) WriteDetailRows(rows []models.DetailRow) error {
	err := w.writeFile(func(out io.Writer) error { return EncodeDetailRows(out, rows) })
	if err != nil {
		return err
	}
	w.logger.Info("Detail rows written to: %s (%d rows)", w.filePath, len(rows))
	return nil
}

func (w *CSVWriter) writeFile(encode func(io.Writer) error) error {
	// Ensure output directory exists
	dir := filepath.Dir(w.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(w.filePath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	if err := encode(file); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close CSV file: %w", err)
	}
	return nil
}

// EncodeSummaryRows writes header and rows to out
func EncodeSummaryRows(out io.Writer, rows []models.SummaryRow) error {
	writer := csv.NewWriter(out)
	if err := writer.Write(SummaryHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, r := range rows {
		record := []string{
			r.CheckIn.String(),
			formatOptInt(r.AvgPrice),
			strconv.Itoa(r.Count),
			formatOptInt(r.MinPrice),
			formatOptInt(r.MaxPrice),
			r.URL,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row for %s: %w", r.CheckIn, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// EncodeDetailRows writes header and rows to out
func EncodeDetailRows(out io.Writer, rows []models.DetailRow) error {
	writer := csv.NewWriter(out)
	if err := writer.Write(DetailHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, r := range rows {
		subtitle := ""
		if r.Subtitle != nil {
			subtitle = *r.Subtitle
		}
		rating := ""
		if r.Rating != nil {
			rating = strconv.FormatFloat(*r.Rating, 'f', -1, 64)
		}
		record := []string{
			r.CheckIn.String(),
			strconv.Itoa(r.Price),
			r.ListingURL,
			r.RawLabel,
			r.Title,
			formatOptInt(r.Guests),
			formatOptInt(r.Bedrooms),
			formatOptInt(r.Beds),
			formatOptInt(r.ReviewsCount),
			rating,
			subtitle,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row for %s: %w", r.CheckIn, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatOptInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
