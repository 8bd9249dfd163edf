// Package store persists fraud reports and their evidence documents.
//
// Evidence bytes live in the same row as the report so a committed report
// and its document become visible together, but they are only read through
// FindEvidence so searches never drag attachment bytes along.
package store

import (
	"context"

	"olhopix/internal/report/models"
	id "olhopix/pkg/domain"
)

type Store interface {
	// Insert writes one report row together with its evidence bytes.
	Insert(ctx context.Context, report *models.Report, evidence []byte) error
	// Search returns the reports matching the filter, newest first.
	Search(ctx context.Context, filter models.SearchFilter) ([]*models.Report, error)
	// FindEvidence returns the stored evidence bytes for one report.
	// Returns sentinel.ErrNotFound for unknown identifiers.
	FindEvidence(ctx context.Context, reportID id.ReportID) ([]byte, error)
}
