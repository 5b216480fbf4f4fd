package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/geosim/trafficdatasim/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TraceRepository struct {
	pool *pgxpool.Pool
}

func NewTraceRepository(ctx context.Context, config *models.DatabaseConfig) (*TraceRepository, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode,
	)

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("error pinging database: %w", err)
	}

	return &TraceRepository{pool: pool}, nil
}

func (r *TraceRepository) BulkCreateSamples(ctx context.Context, records []models.TraceRecord) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	stmt := `
        INSERT INTO gps_samples (
            driver_id, location, recorded_at
        ) VALUES (
            $1, ST_SetSRID(ST_MakePoint($2, $3), 4326), $4
        )`

	for _, rec := range records {
		recordedAt, err := time.Parse(models.TimestampLayout, rec.Timestamp)
		if err != nil {
			return fmt.Errorf("malformed sample timestamp %q: %w", rec.Timestamp, err)
		}
		_, err = tx.Exec(ctx, stmt,
			rec.DriverID,
			rec.Longitude,
			rec.Latitude,
			recordedAt,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *TraceRepository) BulkCreateDrivers(ctx context.Context, drivers []models.Driver) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	stmt := `
        INSERT INTO drivers (
            id, name, join_date, home, work
        ) VALUES (
            $1, $2, $3,
            ST_SetSRID(ST_MakePoint($4, $5), 4326),
            ST_SetSRID(ST_MakePoint($6, $7), 4326)
        )`

	for _, driver := range drivers {
		_, err = tx.Exec(ctx, stmt,
			driver.ID,
			driver.Name,
			driver.JoinDate,
			driver.Home.Lon,
			driver.Home.Lat,
			driver.Work.Lon,
			driver.Work.Lat,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *TraceRepository) Close() {
	r.pool.Close()
}
