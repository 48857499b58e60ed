package coords

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/shopspring/decimal"
)

// Precision is the number of decimal digits kept on generated coordinates.
const Precision = 6

const (
	StrategyLand        = "land"
	StrategyBoundingBox = "bbox"
)

// Generator produces synthetic coordinates for listings that have none.
type Generator interface {
	Generate() Point
}

// LandZoneGenerator picks a zone uniformly at random and draws a point
// uniformly inside it.
type LandZoneGenerator struct {
	zones []Zone

	mu  sync.Mutex
	rng *rand.Rand
}

// NewLandZoneGenerator returns a generator over zones using rng.
func NewLandZoneGenerator(zones []Zone, rng *rand.Rand) (*LandZoneGenerator, error) {
	if len(zones) == 0 {
		return nil, fmt.Errorf("coords: %w: empty zone table", ErrInvalidZone)
	}
	for _, z := range zones {
		if err := z.Validate(); err != nil {
			return nil, fmt.Errorf("coords: %w", err)
		}
	}
	return &LandZoneGenerator{zones: zones, rng: rng}, nil
}

// Generate returns a point inside one of the zones.
func (g *LandZoneGenerator) Generate() Point {
	_, p := g.GenerateInZone()
	return p
}

// GenerateInZone is Generate but also reports the chosen zone.
func (g *LandZoneGenerator) GenerateInZone() (Zone, Point) {
	g.mu.Lock()
	defer g.mu.Unlock()

	z := g.zones[g.rng.Intn(len(g.zones))]
	return z, drawIn(g.rng, z)
}

// BoundingBoxGenerator draws uniformly from a single box.
type BoundingBoxGenerator struct {
	box Zone

	mu  sync.Mutex
	rng *rand.Rand
}

// NewBoundingBoxGenerator returns a generator over box using rng.
func NewBoundingBoxGenerator(box Zone, rng *rand.Rand) (*BoundingBoxGenerator, error) {
	if err := box.Validate(); err != nil {
		return nil, fmt.Errorf("coords: %w", err)
	}
	return &BoundingBoxGenerator{box: box, rng: rng}, nil
}

func (g *BoundingBoxGenerator) Generate() Point {
	g.mu.Lock()
	defer g.mu.Unlock()
	return drawIn(g.rng, g.box)
}

// New builds the generator named by strategy.
func New(strategy string, zones []Zone, rng *rand.Rand) (Generator, error) {
	switch strategy {
	case StrategyLand, "":
		return NewLandZoneGenerator(zones, rng)
	case StrategyBoundingBox:
		return NewBoundingBoxGenerator(MiamiBoundingBox, rng)
	default:
		return nil, fmt.Errorf("coords: unknown strategy %q", strategy)
	}
}

func drawIn(rng *rand.Rand, z Zone) Point {
	lat := z.LatMin + rng.Float64()*(z.LatMax-z.LatMin)
	lon := z.LonMin + rng.Float64()*(z.LonMax-z.LonMin)
	return Point{Lat: Round(lat), Lon: Round(lon)}
}

// Round rounds v to Precision decimal places.
func Round(v float64) float64 {
	return decimal.NewFromFloat(v).Round(Precision).InexactFloat64()
}
