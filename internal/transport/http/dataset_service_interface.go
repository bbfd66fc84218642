package http

import (
	"context"

	"clinicpulse/internal/dataset"
)

// DatasetServiceInterface defines what the dataset handler needs from the
// service layer. Kept small so tests can substitute a mock.
type DatasetServiceInterface interface {
	Variant() dataset.Variant
	Current(ctx context.Context) (*dataset.Dataset, error)
	Upload(ctx context.Context, filename string, content []byte) (*dataset.Dataset, error)
	Range(ctx context.Context, from, to string) ([]dataset.ObservationRecord, error)
	Summary(ctx context.Context, from, to string) (dataset.SummaryMetrics, error)
}
