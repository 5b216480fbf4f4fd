package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTrafficDatasetMetadata(t *testing.T) {
	day := time.Date(2024, 1, 1, 7, 0, 0, 0, time.UTC)
	routes := []DriverRoute{
		{
			{DriverID: 0, Latitude: 40.0, Longitude: -74.0, Timestamp: day},
			{DriverID: 0, Latitude: 40.1, Longitude: -74.1, Timestamp: day.Add(time.Hour)},
		},
		{
			{DriverID: 1, Latitude: 40.2, Longitude: -74.2, Timestamp: day.Add(30 * time.Minute)},
		},
	}

	ds := NewTrafficDataset(routes)

	assert.Equal(t, 2, ds.Metadata.NumDrivers)
	assert.Equal(t, 3, ds.Metadata.TotalPoints)
	assert.Equal(t, "2024-01-01 07:00:00", ds.Metadata.DateRange.Start)
	assert.Equal(t, "2024-01-01 08:00:00", ds.Metadata.DateRange.End)
	require.Len(t, ds.Drivers, 3)
	assert.Equal(t, "2024-01-01 07:30:00", ds.Drivers[2].Timestamp)
}

func TestNewTrafficDatasetEmpty(t *testing.T) {
	ds := NewTrafficDataset(nil)
	assert.Equal(t, 0, ds.Metadata.NumDrivers)
	assert.Equal(t, 0, ds.Metadata.TotalPoints)
	assert.Empty(t, ds.Metadata.DateRange.Start)

	// An empty dataset serializes with an empty drivers list, not null.
	assert.NotNil(t, ds.Drivers)
	data, err := json.Marshal(ds)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"drivers":[]`)
}

func TestDatasetPoints(t *testing.T) {
	ds := &TrafficDataset{
		Drivers: []TraceRecord{
			{DriverID: 0, Latitude: 40.0, Longitude: -74.0, Timestamp: "2024-01-01 07:00:00"},
		},
	}
	points := ds.Points()
	require.Len(t, points, 1)
	// orb orders coordinates (lon, lat).
	assert.Equal(t, orb.Point{-74.0, 40.0}, points[0])
}

func TestSampleQueueChronologicalOrder(t *testing.T) {
	day := time.Date(2024, 1, 1, 7, 0, 0, 0, time.UTC)
	queue := NewSampleQueue()
	queue.EnqueueRoute(DriverRoute{
		{DriverID: 0, Timestamp: day.Add(2 * time.Hour)},
		{DriverID: 0, Timestamp: day.Add(3 * time.Hour)},
	})
	queue.EnqueueRoute(DriverRoute{
		{DriverID: 1, Timestamp: day},
		{DriverID: 1, Timestamp: day.Add(150 * time.Minute)},
	})

	require.Equal(t, 4, queue.Len())

	var last time.Time
	for {
		sample, ok := queue.Dequeue()
		if !ok {
			break
		}
		assert.False(t, sample.Timestamp.Before(last), "samples must drain in chronological order")
		last = sample.Timestamp
	}
	assert.Equal(t, 0, queue.Len())
}

func TestGpsSampleRecordFormat(t *testing.T) {
	sample := GpsSample{
		DriverID:  5,
		Latitude:  40.5,
		Longitude: -73.9,
		Timestamp: time.Date(2024, 1, 2, 17, 45, 9, 0, time.UTC),
	}
	rec := sample.Record()
	assert.Equal(t, int64(5), rec.DriverID)
	assert.Equal(t, "2024-01-02 17:45:09", rec.Timestamp)
}
