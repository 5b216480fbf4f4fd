package simulator

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/geosim/trafficdatasim/internal/factories"
	"github.com/geosim/trafficdatasim/internal/models"
	"github.com/lucsky/cuid"
	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"
)

// Simulator generates synthetic GPS traces for a fleet of commuting
// drivers. All randomness flows through Rng, so a fixed seed reproduces
// the full dataset.
type Simulator struct {
	Config  *models.Config
	Drivers []models.Driver
	Rng     *rand.Rand

	log *logrus.Logger
}

func NewSimulator(config *models.Config, log *logrus.Logger) *Simulator {
	if log == nil {
		log = logrus.New()
	}
	return &Simulator{
		Config: config,
		Rng:    rand.New(rand.NewSource(int64(config.Seed))),
		log:    log,
	}
}

func (s *Simulator) initializeDrivers() {
	driverFactory := factories.NewDriverFactory(s.Rng)
	s.Drivers = make([]models.Driver, s.Config.NumDrivers)
	for i := 0; i < s.Config.NumDrivers; i++ {
		s.Drivers[i] = driverFactory.CreateDriver(s.Config, i)
	}
}

// GenerateRoutes simulates every driver over every configured day and
// returns one route per (driver, day). Fails fast on non-positive driver
// or day counts; no partial output.
func (s *Simulator) GenerateRoutes(ctx context.Context) ([]models.DriverRoute, error) {
	if s.Config.NumDrivers <= 0 {
		return nil, fmt.Errorf("invalid driver count: %d", s.Config.NumDrivers)
	}
	if s.Config.SimulationDays <= 0 {
		return nil, fmt.Errorf("invalid simulation day count: %d", s.Config.SimulationDays)
	}

	if s.Drivers == nil {
		s.initializeDrivers()
	}

	s.log.WithFields(logrus.Fields{
		"drivers": s.Config.NumDrivers,
		"days":    s.Config.SimulationDays,
	}).Info("simulating traffic data")

	bar := progressbar.Default(int64(s.Config.NumDrivers*s.Config.SimulationDays), "simulating routes")

	routes := make([]models.DriverRoute, 0, s.Config.NumDrivers*s.Config.SimulationDays)
	for day := 0; day < s.Config.SimulationDays; day++ {
		dayStart := s.Config.StartDate.AddDate(0, 0, day)
		for _, driver := range s.Drivers {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			routes = append(routes, s.GenerateRoute(driver, dayStart))
			_ = bar.Add(1)
		}
	}
	_ = bar.Finish()

	return routes, nil
}

// GenerateDataset runs the simulation and pools all routes into a single
// dataset with derived metadata.
func (s *Simulator) GenerateDataset(ctx context.Context) (*models.TrafficDataset, error) {
	routes, err := s.GenerateRoutes(ctx)
	if err != nil {
		return nil, err
	}
	dataset := models.NewTrafficDataset(routes)
	dataset.ID = cuid.New()

	s.log.WithFields(logrus.Fields{
		"dataset_id":   dataset.ID,
		"total_points": dataset.Metadata.TotalPoints,
		"num_drivers":  dataset.Metadata.NumDrivers,
	}).Info("traffic dataset generated")

	return dataset, nil
}

// Run generates the dataset and hands it to the configured output
// destination. Streaming destinations receive the pooled samples replayed
// in global chronological order.
func (s *Simulator) Run(ctx context.Context) error {
	started := time.Now()

	output, err := s.determineOutputDestination()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := output.Close(); cerr != nil {
			s.log.WithError(cerr).Warn("failed to close output")
		}
	}()

	routes, err := s.GenerateRoutes(ctx)
	if err != nil {
		return err
	}
	dataset := models.NewTrafficDataset(routes)
	dataset.ID = cuid.New()

	if drw, ok := output.(DriverWriter); ok {
		if err := drw.WriteDrivers(s.Drivers); err != nil {
			return fmt.Errorf("failed to write driver roster: %w", err)
		}
	}

	if dw, ok := output.(DatasetWriter); ok {
		if err := dw.WriteDataset(dataset); err != nil {
			return fmt.Errorf("failed to write dataset: %w", err)
		}
	}

	if sw, ok := output.(SampleWriter); ok {
		queue := models.NewSampleQueue()
		for _, route := range routes {
			queue.EnqueueRoute(route)
		}
		for {
			sample, ok := queue.Dequeue()
			if !ok {
				break
			}
			if err := sw.WriteSample(sample.Record()); err != nil {
				return fmt.Errorf("failed to write sample: %w", err)
			}
		}
	}

	s.log.WithFields(logrus.Fields{
		"dataset_id":   dataset.ID,
		"total_points": dataset.Metadata.TotalPoints,
		"elapsed":      time.Since(started).Round(time.Millisecond),
	}).Info("simulation completed")

	return nil
}
