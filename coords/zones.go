package coords

import (
	"errors"
	"fmt"

	"github.com/golang/geo/r1"
	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

// ErrInvalidZone is returned when a zone's bounds are unordered or out of range.
var ErrInvalidZone = errors.New("invalid zone")

// Point is a latitude/longitude pair in degrees.
type Point struct {
	Lat float64
	Lon float64
}

// Zone is a rectangular latitude/longitude bound verified to lie on land.
type Zone struct {
	Name   string  `yaml:"name"`
	LatMin float64 `yaml:"lat_min"`
	LatMax float64 `yaml:"lat_max"`
	LonMin float64 `yaml:"lon_min"`
	LonMax float64 `yaml:"lon_max"`
}

// Rect returns the zone as an s2.Rect.
func (z Zone) Rect() s2.Rect {
	lo := s2.LatLngFromDegrees(z.LatMin, z.LonMin)
	hi := s2.LatLngFromDegrees(z.LatMax, z.LonMax)
	return s2.Rect{
		Lat: r1.Interval{Lo: lo.Lat.Radians(), Hi: hi.Lat.Radians()},
		Lng: s1.Interval{Lo: lo.Lng.Radians(), Hi: hi.Lng.Radians()},
	}
}

// Contains reports whether p lies within the zone, bounds included.
func (z Zone) Contains(p Point) bool {
	return z.Rect().ContainsLatLng(s2.LatLngFromDegrees(p.Lat, p.Lon))
}

// Validate checks the bounds are ordered and on the globe.
func (z Zone) Validate() error {
	switch {
	case z.LatMin > z.LatMax || z.LonMin > z.LonMax:
		return fmt.Errorf("%w %q: unordered bounds", ErrInvalidZone, z.Name)
	case z.LatMin < -90 || z.LatMax > 90:
		return fmt.Errorf("%w %q: latitude out of range", ErrInvalidZone, z.Name)
	case z.LonMin < -180 || z.LonMax > 180:
		return fmt.Errorf("%w %q: longitude out of range", ErrInvalidZone, z.Name)
	}
	return nil
}

// MiamiDadeLandZones are manually verified on-land rectangles in Miami-Dade
// County. No coastline dataset backs them, so they must be kept in sync with
// real-world boundaries by hand.
var MiamiDadeLandZones = []Zone{
	{"Downtown Miami / Brickell", 25.758, 25.780, -80.210, -80.188},
	{"Little Havana / Flagler", 25.760, 25.780, -80.230, -80.210},
	{"Wynwood / Design District", 25.790, 25.810, -80.205, -80.185},
	{"Coral Gables", 25.715, 25.755, -80.290, -80.250},
	{"Coconut Grove", 25.710, 25.735, -80.250, -80.225},
	{"Kendall", 25.670, 25.700, -80.360, -80.310},
	{"Doral", 25.800, 25.830, -80.370, -80.330},
	{"Hialeah", 25.850, 25.880, -80.310, -80.270},
	{"Miami Gardens", 25.930, 25.960, -80.260, -80.220},
	{"Aventura / North Miami Beach", 25.930, 25.960, -80.160, -80.130},
	{"Homestead", 25.450, 25.490, -80.490, -80.440},
	{"Cutler Bay", 25.560, 25.590, -80.360, -80.330},
	{"Palmetto Bay", 25.620, 25.650, -80.340, -80.310},
	{"Pinecrest", 25.655, 25.680, -80.310, -80.280},
	{"Sweetwater / FIU", 25.750, 25.770, -80.390, -80.360},
	{"Opa-locka", 25.890, 25.910, -80.270, -80.240},
	{"North Miami", 25.880, 25.910, -80.200, -80.170},
	{"Westchester", 25.730, 25.755, -80.330, -80.300},
	{"Tamiami", 25.740, 25.760, -80.360, -80.330},
	{"Olympia Heights", 25.720, 25.740, -80.360, -80.330},
}

// MiamiBoundingBox is the single naive box used by the bounding-box
// generator. Points drawn from it may fall over water.
var MiamiBoundingBox = Zone{
	Name:   "Miami bounding box",
	LatMin: 25.70, LatMax: 25.85,
	LonMin: -80.30, LonMax: -80.15,
}
