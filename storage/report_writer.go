package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"airbnb-report/utils"
)

const historyStampFormat = "20060102_150405"

// ReportWriter writes the report to a stable path, first moving any previous
// report into a history directory named after that file's own modification time.
// Overlapping runs against the same path are not supported.
type ReportWriter struct {
	path       string
	historyDir string
	logger     *utils.Logger
}

// NewReportWriter creates a new ReportWriter
func NewReportWriter(path, historyDir string, logger *utils.Logger) *ReportWriter {
	return &ReportWriter{path: path, historyDir: historyDir, logger: logger}
}

// Path is where the report is written
func (w *ReportWriter) Path() string {
	return w.path
}

// Write rotates the existing report (if any) and writes content.
// It returns the history path of the rotated file, or "" when nothing was rotated.
func (w *ReportWriter) Write(content []byte) (string, error) {
	if err := os.MkdirAll(filepath.Dir(w.path), 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	rotated, err := w.rotate()
	if err != nil {
		return "", err
	}

	if err := writeAtomic(w.path, content); err != nil {
		return rotated, err
	}
	w.logger.Info("Report written to: %s (%d bytes)", w.path, len(content))
	return rotated, nil
}

func (w *ReportWriter) rotate() (string, error) {
	info, err := os.Stat(w.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to stat previous report: %w", err)
	}

	if err := os.MkdirAll(w.historyDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create history directory: %w", err)
	}

	dest, err := historyPath(w.historyDir, w.path, info.ModTime().Format(historyStampFormat))
	if err != nil {
		return "", err
	}
	if err := os.Rename(w.path, dest); err != nil {
		return "", fmt.Errorf("failed to move previous report to history: %w", err)
	}
	w.logger.Info("Previous report moved to history: %s", dest)
	return dest, nil
}

// historyPath picks <stem><stamp><ext> in dir, adding _2, _3, ... until the name is free
func historyPath(dir, reportPath, stamp string) (string, error) {
	base := filepath.Base(reportPath)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if strings.EqualFold(base, "index.html") {
		stem = "index"
	}

	candidate := filepath.Join(dir, stem+stamp+ext)
	for i := 2; ; i++ {
		_, err := os.Stat(candidate)
		if errors.Is(err, fs.ErrNotExist) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("failed to check history file %s: %w", candidate, err)
		}
		candidate = filepath.Join(dir, stem+stamp+"_"+strconv.Itoa(i)+ext)
	}
}

// writeAtomic writes through a temp file in the same directory so readers never see a partial report
func writeAtomic(path string, content []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set report permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close report: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to move report into place: %w", err)
	}
	return nil
}
