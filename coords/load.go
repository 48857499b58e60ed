package coords

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

type zoneFile struct {
	Zones []Zone `yaml:"zones"`
}

// LoadZones reads a zone table from a YAML file of the form
//
//	zones:
//	  - name: Doral
//	    lat_min: 25.800
//	    lat_max: 25.830
//	    lon_min: -80.370
//	    lon_max: -80.330
func LoadZones(path string) ([]Zone, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("coords: read zones %q: %w", path, err)
	}
	return ParseZones(data)
}

// ParseZones decodes and validates a YAML zone table.
func ParseZones(data []byte) ([]Zone, error) {
	var f zoneFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("coords: decode zones: %w", err)
	}
	if len(f.Zones) == 0 {
		return nil, fmt.Errorf("coords: %w: no zones defined", ErrInvalidZone)
	}
	for _, z := range f.Zones {
		if err := z.Validate(); err != nil {
			return nil, fmt.Errorf("coords: %w", err)
		}
	}
	return f.Zones, nil
}
