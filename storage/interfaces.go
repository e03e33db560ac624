package storage

import "context"

// ReportArchive keeps the daily figures of every report run
type ReportArchive interface {
	CreateTable(ctx context.Context) error
	SaveRun(ctx context.Context, run ArchiveRun) error
	Close() error
}
