package simulator

import (
	"context"
	"testing"
	"time"

	"github.com/geosim/trafficdatasim/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *models.Config {
	return &models.Config{
		Seed:           42,
		StartDate:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		NumDrivers:     3,
		SimulationDays: 1,
		HomeBase:       models.Location{Lat: 40.7128, Lon: -74.0060},
		HomeJitter:     0.05,
		WorkBase:       models.Location{Lat: 40.7589, Lon: -73.9851},
		WorkJitter:     0.02,

		MorningStartHour: 7,
		MorningCommute: models.CommuteConfig{
			Duration:    2 * time.Hour,
			Points:      20,
			WindowStart: 0.3,
			WindowEnd:   0.7,
			Multiplier:  1.5,
		},
		EveningCommute: models.CommuteConfig{
			Duration:    2 * time.Hour,
			Points:      20,
			WindowStart: 0.2,
			WindowEnd:   0.8,
			Multiplier:  1.3,
		},
		WorkdayHours:    8,
		WorkdayInterval: 15 * time.Minute,
		WorkdayJitter:   0.005,
		RouteNoise:      0.001,

		GridSize:     10,
		HotspotRatio: 0.7,
	}
}

func testDriver() models.Driver {
	return models.Driver{
		ID:   7,
		Home: models.Location{Lat: 40.7128, Lon: -74.0060},
		Work: models.Location{Lat: 40.7589, Lon: -73.9851},
	}
}

func TestGenerateRouteShape(t *testing.T) {
	cfg := testConfig()
	sim := NewSimulator(cfg, nil)
	dayStart := cfg.StartDate

	route := sim.GenerateRoute(testDriver(), dayStart)

	// 20 morning + 32 workday + 20 evening
	require.Len(t, route, 72)

	morningStart := time.Date(2024, 1, 1, 7, 0, 0, 0, time.UTC)
	assert.True(t, route[0].Timestamp.Equal(morningStart), "route starts at the morning commute start")

	for i := 1; i < len(route); i++ {
		assert.True(t, route[i].Timestamp.After(route[i-1].Timestamp),
			"timestamps must be strictly increasing at index %d", i)
	}

	for _, sample := range route {
		assert.Equal(t, 7, sample.DriverID)
	}

	// Congestion dilation stretches the day beyond the nominal 12 hours.
	total := route[len(route)-1].Timestamp.Sub(route[0].Timestamp)
	assert.Greater(t, total, 12*time.Hour)
	assert.Less(t, total, 13*time.Hour)
}

func assertLegDilation(t *testing.T, leg models.CommuteConfig, samples models.DriverRoute) {
	t.Helper()

	baseStep := leg.Duration / time.Duration(leg.Points-1)
	dilatedStep := time.Duration(float64(baseStep) * leg.Multiplier)

	for i := 1; i < leg.Points; i++ {
		delta := samples[i].Timestamp.Sub(samples[i-1].Timestamp)
		progress := float64(i) / float64(leg.Points-1)
		if progress > leg.WindowStart && progress < leg.WindowEnd {
			assert.Equal(t, dilatedStep, delta, "in-window step at i=%d", i)
		} else {
			assert.Equal(t, baseStep, delta, "out-of-window step at i=%d", i)
		}
	}
}

func TestCongestionWindowDilatesTimeSteps(t *testing.T) {
	cfg := testConfig()
	sim := NewSimulator(cfg, nil)

	route := sim.GenerateRoute(testDriver(), cfg.StartDate)

	morning := route[:cfg.MorningCommute.Points]
	assertLegDilation(t, cfg.MorningCommute, morning)

	evening := route[len(route)-cfg.EveningCommute.Points:]
	assertLegDilation(t, cfg.EveningCommute, evening)
}

func TestGenerateRouteSinglePointCommute(t *testing.T) {
	cfg := testConfig()
	cfg.MorningCommute.Points = 1
	sim := NewSimulator(cfg, nil)

	route := sim.GenerateRoute(testDriver(), cfg.StartDate)
	require.Len(t, route, 1+32+20)

	for i := 1; i < len(route); i++ {
		assert.True(t, route[i].Timestamp.After(route[i-1].Timestamp))
	}

	// The single morning fix still consumes the nominal leg duration.
	workdayFirst := route[1].Timestamp
	assert.True(t, workdayFirst.Equal(route[0].Timestamp.Add(cfg.MorningCommute.Duration)))
}

func TestGenerateRoutesDeterministicUnderSeed(t *testing.T) {
	cfg := testConfig()

	first, err := NewSimulator(cfg, nil).GenerateRoutes(context.Background())
	require.NoError(t, err)
	second, err := NewSimulator(cfg, nil).GenerateRoutes(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestGenerateRoutesRejectsInvalidCounts(t *testing.T) {
	cfg := testConfig()
	cfg.NumDrivers = 0
	_, err := NewSimulator(cfg, nil).GenerateRoutes(context.Background())
	assert.Error(t, err)

	cfg = testConfig()
	cfg.SimulationDays = -1
	_, err = NewSimulator(cfg, nil).GenerateRoutes(context.Background())
	assert.Error(t, err)
}

func TestGenerateDatasetMetadata(t *testing.T) {
	cfg := testConfig()
	sim := NewSimulator(cfg, nil)

	dataset, err := sim.GenerateDataset(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, dataset.ID)
	assert.Equal(t, cfg.NumDrivers, dataset.Metadata.NumDrivers)
	assert.Equal(t, cfg.NumDrivers*72, dataset.Metadata.TotalPoints)
	assert.Equal(t, "2024-01-01 07:00:00", dataset.Metadata.DateRange.Start)

	end, err := time.Parse(models.TimestampLayout, dataset.Metadata.DateRange.End)
	require.NoError(t, err)
	assert.True(t, end.After(time.Date(2024, 1, 1, 19, 0, 0, 0, time.UTC)))
}
