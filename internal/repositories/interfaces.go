package repositories

import (
	"context"

	"github.com/geosim/trafficdatasim/internal/models"
)

type TraceRepository interface {
	BulkCreateSamples(ctx context.Context, records []models.TraceRecord) error
	BulkCreateDrivers(ctx context.Context, drivers []models.Driver) error
	Close()
}
