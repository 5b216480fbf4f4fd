package models

import (
	"time"

	"github.com/paulmach/orb"
)

// TimestampLayout is the fixed wire format for GPS timestamps.
const TimestampLayout = "2006-01-02 15:04:05"

// GpsSample is a single positional fix. Samples are immutable once
// generated.
type GpsSample struct {
	DriverID  int       `json:"driver_id"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Timestamp time.Time `json:"timestamp"`
}

// Point converts to an orb.Point, which orders coordinates (lon, lat).
func (s GpsSample) Point() orb.Point {
	return orb.Point{s.Longitude, s.Latitude}
}

func (s GpsSample) Record() TraceRecord {
	return TraceRecord{
		DriverID:  int64(s.DriverID),
		Latitude:  s.Latitude,
		Longitude: s.Longitude,
		Timestamp: s.Timestamp.Format(TimestampLayout),
	}
}

// TraceRecord is the serialized form of a GpsSample, shared by the JSON
// dataset file, the CSV/Parquet writers and the Kafka topic.
type TraceRecord struct {
	DriverID  int64   `json:"driver_id" parquet:"name=driver_id,type=INT64"`
	Latitude  float64 `json:"latitude" parquet:"name=latitude,type=DOUBLE"`
	Longitude float64 `json:"longitude" parquet:"name=longitude,type=DOUBLE"`
	Timestamp string  `json:"timestamp" parquet:"name=timestamp,type=BYTE_ARRAY,convertedtype=UTF8"`
}

// DriverRoute is one driver's trace for a day, chronologically increasing.
type DriverRoute []GpsSample

// Driver carries the per-driver coordinates fixed for the whole simulation.
// Name and JoinDate are decoration for the persisted driver roster; they
// never appear in the GPS samples themselves.
type Driver struct {
	ID       int       `json:"id"`
	Name     string    `json:"name"`
	JoinDate time.Time `json:"join_date"`
	Home     Location  `json:"home"`
	Work     Location  `json:"work"`
}

type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type DatasetMetadata struct {
	NumDrivers  int       `json:"num_drivers"`
	TotalPoints int       `json:"total_points"`
	DateRange   DateRange `json:"date_range"`
}

// TrafficDataset is the pooled output of a simulation run, in the shape
// consumed by the congestion analysis.
type TrafficDataset struct {
	ID       string          `json:"id,omitempty"`
	Drivers  []TraceRecord   `json:"drivers"`
	Metadata DatasetMetadata `json:"metadata"`
}

// NewTrafficDataset pools routes into a dataset and derives its metadata.
// Samples keep generation order: per driver, per day, chronological.
func NewTrafficDataset(routes []DriverRoute) *TrafficDataset {
	ds := &TrafficDataset{Drivers: []TraceRecord{}}
	seen := make(map[int]struct{})
	var start, end time.Time

	for _, route := range routes {
		for _, sample := range route {
			ds.Drivers = append(ds.Drivers, sample.Record())
			seen[sample.DriverID] = struct{}{}
			if start.IsZero() || sample.Timestamp.Before(start) {
				start = sample.Timestamp
			}
			if end.IsZero() || sample.Timestamp.After(end) {
				end = sample.Timestamp
			}
		}
	}

	ds.Metadata = DatasetMetadata{
		NumDrivers:  len(seen),
		TotalPoints: len(ds.Drivers),
	}
	if !start.IsZero() {
		ds.Metadata.DateRange = DateRange{
			Start: start.Format(TimestampLayout),
			End:   end.Format(TimestampLayout),
		}
	}
	return ds
}

// Points flattens the dataset into the bare coordinates handed to the
// congestion analysis. Driver identity and timestamps are dropped here.
func (d *TrafficDataset) Points() []orb.Point {
	points := make([]orb.Point, len(d.Drivers))
	for i, rec := range d.Drivers {
		points[i] = orb.Point{rec.Longitude, rec.Latitude}
	}
	return points
}
