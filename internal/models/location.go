package models

import (
	"fmt"

	"github.com/paulmach/orb"
)

type Location struct {
	Lat float64 `json:"lat" mapstructure:"lat" parquet:"name=lat,type=DOUBLE"`
	Lon float64 `json:"lon" mapstructure:"lon" parquet:"name=lon,type=DOUBLE"`
}

// Point converts to an orb.Point, which orders coordinates (lon, lat).
func (l Location) Point() orb.Point {
	return orb.Point{l.Lon, l.Lat}
}

func (l *Location) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		_, err := fmt.Sscanf(string(v), "POINT(%f %f)", &l.Lon, &l.Lat)
		return err
	case string:
		_, err := fmt.Sscanf(v, "POINT(%f %f)", &l.Lon, &l.Lat)
		return err
	default:
		return fmt.Errorf("unsupported type for Location: %T", value)
	}
}
