package simulator

import (
	"time"

	"github.com/geosim/trafficdatasim/internal/models"
)

// GenerateRoute simulates one driver's day of driving: a morning commute
// from home to work, a workday of small movements around the workplace,
// and an evening commute back home. Samples are strictly chronological by
// construction; each segment starts where the previous one ended.
func (s *Simulator) GenerateRoute(driver models.Driver, dayStart time.Time) models.DriverRoute {
	cfg := s.Config
	morningStart := time.Date(
		dayStart.Year(), dayStart.Month(), dayStart.Day(),
		cfg.MorningStartHour, 0, 0, 0, dayStart.Location(),
	)

	capacity := cfg.MorningCommute.Points + s.workdayPoints() + cfg.EveningCommute.Points
	route := make(models.DriverRoute, 0, capacity)

	workStart := s.commuteSegment(&route, driver.ID, driver.Home, driver.Work, morningStart, cfg.MorningCommute)
	eveningStart := s.workdaySegment(&route, driver.ID, driver.Work, workStart)
	s.commuteSegment(&route, driver.ID, driver.Work, driver.Home, eveningStart, cfg.EveningCommute)

	return route
}

// commuteSegment appends samples linearly interpolated between from and to,
// with independent positional noise per sample. Time advances by a uniform
// step, scaled by the congestion multiplier for samples whose normalized
// progress falls strictly inside the congestion window. This yields
// non-uniform temporal spacing over uniform positional spacing, and keeps
// timestamps monotonic regardless of window shape. Returns the segment end.
func (s *Simulator) commuteSegment(route *models.DriverRoute, driverID int, from, to models.Location, start time.Time, leg models.CommuteConfig) time.Time {
	n := leg.Points
	if n == 1 {
		// Single fix at the departure point; the leg still consumes its
		// nominal duration.
		*route = append(*route, s.sample(driverID, from.Lat, from.Lon, s.Config.RouteNoise, start))
		return start.Add(leg.Duration)
	}

	step := leg.Duration / time.Duration(n-1)
	ts := start

	for i := 0; i < n; i++ {
		t := float64(i) / float64(n-1)
		if i > 0 {
			dt := step
			if t > leg.WindowStart && t < leg.WindowEnd {
				dt = time.Duration(float64(step) * leg.Multiplier)
			}
			ts = ts.Add(dt)
		}
		lat := from.Lat + t*(to.Lat-from.Lat)
		lon := from.Lon + t*(to.Lon-from.Lon)
		*route = append(*route, s.sample(driverID, lat, lon, s.Config.RouteNoise, ts))
	}

	return ts
}

// workdaySegment appends one sample per interval across the workday,
// clustered tightly around the workplace. Returns the workday end, which
// lands after the last sample so the evening commute cannot overlap it.
func (s *Simulator) workdaySegment(route *models.DriverRoute, driverID int, work models.Location, start time.Time) time.Time {
	for k := 0; k < s.workdayPoints(); k++ {
		ts := start.Add(time.Duration(k) * s.Config.WorkdayInterval)
		*route = append(*route, s.sample(driverID, work.Lat, work.Lon, s.Config.WorkdayJitter, ts))
	}
	return start.Add(time.Duration(s.Config.WorkdayHours) * time.Hour)
}

func (s *Simulator) workdayPoints() int {
	return int(time.Duration(s.Config.WorkdayHours) * time.Hour / s.Config.WorkdayInterval)
}

func (s *Simulator) sample(driverID int, lat, lon, noise float64, ts time.Time) models.GpsSample {
	return models.GpsSample{
		DriverID:  driverID,
		Latitude:  lat + s.uniform(noise),
		Longitude: lon + s.uniform(noise),
		Timestamp: ts,
	}
}

// uniform draws from [-spread, spread).
func (s *Simulator) uniform(spread float64) float64 {
	return (s.Rng.Float64()*2 - 1) * spread
}
