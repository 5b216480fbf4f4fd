package simulator

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/geosim/trafficdatasim/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONOutputRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "traffic_data.json")

	dataset := &models.TrafficDataset{
		ID: "test",
		Drivers: []models.TraceRecord{
			{DriverID: 0, Latitude: 40.0, Longitude: -74.0, Timestamp: "2024-01-01 07:00:00"},
		},
		Metadata: models.DatasetMetadata{
			NumDrivers:  1,
			TotalPoints: 1,
			DateRange:   models.DateRange{Start: "2024-01-01 07:00:00", End: "2024-01-01 07:00:00"},
		},
	}

	out := NewJSONOutput(path)
	require.NoError(t, out.WriteDataset(dataset))
	require.NoError(t, out.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var loaded models.TrafficDataset
	require.NoError(t, json.Unmarshal(data, &loaded))
	assert.Equal(t, dataset, &loaded)
}

func TestCSVOutputColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "traffic_data.csv")

	out, err := NewCSVOutput(path)
	require.NoError(t, err)
	require.NoError(t, out.WriteSample(models.TraceRecord{
		DriverID: 3, Latitude: 40.5, Longitude: -73.9, Timestamp: "2024-01-01 07:00:00",
	}))
	require.NoError(t, out.Close())

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"driver_id", "latitude", "longitude", "timestamp"}, rows[0])
	assert.Equal(t, []string{"3", "40.5", "-73.9", "2024-01-01 07:00:00"}, rows[1])
}
