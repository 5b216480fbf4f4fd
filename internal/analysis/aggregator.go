package analysis

import (
	"fmt"
	"math"

	"github.com/geosim/trafficdatasim/internal/models"
	"github.com/paulmach/orb"
)

// Aggregator bins pooled GPS coordinates into a fixed-resolution grid and
// reports the densest cells as congestion hotspots. It only ever returns
// aggregates, which is what makes it suitable for submission to a
// privacy-preserving computation domain.
type Aggregator struct {
	// GridSize is the number of bins per axis.
	GridSize int
	// HotspotRatio is the fraction of the maximum cell count a cell must
	// reach to be reported as a hotspot.
	HotspotRatio float64
}

func NewAggregator(config *models.Config) *Aggregator {
	return &Aggregator{
		GridSize:     config.GridSize,
		HotspotRatio: config.HotspotRatio,
	}
}

// Aggregate bins every point into the grid and derives the hotspot list.
// An empty input is valid and yields a zero grid with no hotspots.
// Points with NaN or infinite coordinates are rejected outright.
func (a *Aggregator) Aggregate(points []orb.Point) (*models.CongestionReport, error) {
	report := &models.CongestionReport{
		TotalGpsPoints: len(points),
		CongestionGrid: models.NewCongestionGrid(a.GridSize),
		Hotspots:       []models.Hotspot{},
	}
	if len(points) == 0 {
		return report, nil
	}

	var latSum, lonSum float64
	for _, p := range points {
		if !finite(p.Lat()) || !finite(p.Lon()) {
			return nil, fmt.Errorf("malformed point (%v, %v): coordinates must be finite", p.Lat(), p.Lon())
		}
		latSum += p.Lat()
		lonSum += p.Lon()
	}
	report.AverageLocation = models.Location{
		Lat: latSum / float64(len(points)),
		Lon: lonSum / float64(len(points)),
	}

	bound := orb.MultiPoint(points).Bound()
	report.GridBounds = models.GridBounds{
		LatMin: bound.Min.Lat(),
		LatMax: bound.Max.Lat(),
		LonMin: bound.Min.Lon(),
		LonMax: bound.Max.Lon(),
	}

	for _, p := range points {
		latIdx := a.binIndex(p.Lat(), bound.Min.Lat(), bound.Max.Lat())
		lonIdx := a.binIndex(p.Lon(), bound.Min.Lon(), bound.Max.Lon())
		report.CongestionGrid[latIdx][lonIdx]++
	}

	report.Hotspots = a.findHotspots(report.CongestionGrid, report.GridBounds)
	return report, nil
}

// binIndex maps a coordinate to its bin among GridSize+1 evenly spaced
// edges across [min, max]. A degenerate extent puts everything in bin 0;
// the clamp absorbs points exactly on the maximum edge.
func (a *Aggregator) binIndex(v, min, max float64) int {
	if max == min {
		return 0
	}
	idx := int(float64(a.GridSize) * (v - min) / (max - min))
	if idx < 0 {
		idx = 0
	}
	if idx > a.GridSize-1 {
		idx = a.GridSize - 1
	}
	return idx
}

// findHotspots reports every cell whose count reaches HotspotRatio of the
// maximum, positioned at the midpoint of its bin edges.
func (a *Aggregator) findHotspots(grid models.CongestionGrid, bounds models.GridBounds) []models.Hotspot {
	maxCount := grid.Max()
	if maxCount == 0 {
		return []models.Hotspot{}
	}
	threshold := float64(maxCount) * a.HotspotRatio

	hotspots := []models.Hotspot{}
	for i := 0; i < a.GridSize; i++ {
		for j := 0; j < a.GridSize; j++ {
			if float64(grid[i][j]) >= threshold {
				hotspots = append(hotspots, models.Hotspot{
					Latitude:        a.binMidpoint(i, bounds.LatMin, bounds.LatMax),
					Longitude:       a.binMidpoint(j, bounds.LonMin, bounds.LonMax),
					CongestionLevel: float64(grid[i][j]),
				})
			}
		}
	}
	return hotspots
}

func (a *Aggregator) binMidpoint(idx int, min, max float64) float64 {
	width := (max - min) / float64(a.GridSize)
	return min + (float64(idx)+0.5)*width
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
