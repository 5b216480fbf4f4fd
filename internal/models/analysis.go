package models

// CongestionGrid holds per-cell sample counts, indexed [latBin][lonBin].
// It is rebuilt for every analysis and never persisted.
type CongestionGrid [][]int

// NewCongestionGrid returns a zeroed size×size grid.
func NewCongestionGrid(size int) CongestionGrid {
	grid := make(CongestionGrid, size)
	for i := range grid {
		grid[i] = make([]int, size)
	}
	return grid
}

// Max returns the highest cell count in the grid.
func (g CongestionGrid) Max() int {
	max := 0
	for _, row := range g {
		for _, count := range row {
			if count > max {
				max = count
			}
		}
	}
	return max
}

// Sum returns the total count across all cells.
func (g CongestionGrid) Sum() int {
	sum := 0
	for _, row := range g {
		for _, count := range row {
			sum += count
		}
	}
	return sum
}

// Hotspot is a grid cell whose density is within the configured ratio of
// the maximum. Its coordinate is the midpoint of the cell's bin edges.
type Hotspot struct {
	Latitude        float64 `json:"latitude"`
	Longitude       float64 `json:"longitude"`
	CongestionLevel float64 `json:"congestion_level"`
}

type GridBounds struct {
	LatMin float64 `json:"lat_min"`
	LatMax float64 `json:"lat_max"`
	LonMin float64 `json:"lon_min"`
	LonMax float64 `json:"lon_max"`
}

// CongestionReport is the aggregate-only result of a congestion analysis.
// It is the full extent of what leaves the analysis: no raw coordinates
// with driver identity attached.
type CongestionReport struct {
	TotalGpsPoints  int            `json:"total_gps_points"`
	AverageLocation Location       `json:"average_location"`
	CongestionGrid  CongestionGrid `json:"congestion_grid"`
	Hotspots        []Hotspot      `json:"hotspots"`
	GridBounds      GridBounds     `json:"grid_bounds"`
}
