// Package configio is a thin convenience loader that turns a JSON file
// into a decoder.SensorConfig for cmd/ tools. It is intentionally not
// imported by internal/lidar/decoder itself: application-layer
// configuration parsing is out of scope for the decoder core (spec
// §1), so this loader lives one layer up, the way the reference
// repo's own internal/config stays a cmd-only concern separate from
// the packages it configures.
package configio

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/banshee-data/lidar-decoder/internal/lidar/decoder"
)

// overrides mirrors decoder.SensorConfig with every field optional, so
// a partial JSON document only overrides the fields it names. Nil
// fields keep whatever base value the caller supplied.
type overrides struct {
	CloudMinAngleDeg             *float64 `json:"cloud_min_angle_deg,omitempty"`
	CloudMaxAngleDeg             *float64 `json:"cloud_max_angle_deg,omitempty"`
	CutAngleDeg                  *float64 `json:"cut_angle_deg,omitempty"`
	MinRangeM                    *float64 `json:"min_range_m,omitempty"`
	MaxRangeM                    *float64 `json:"max_range_m,omitempty"`
	DualReturnDistanceThresholdM *float64 `json:"dual_return_distance_threshold_m,omitempty"`
}

// Load reads a JSON document at path and applies it on top of base,
// returning the merged SensorConfig. base.PointFilters is preserved
// unchanged since filters are installed in code, not configuration.
func Load(path string, base decoder.SensorConfig) (decoder.SensorConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return decoder.SensorConfig{}, fmt.Errorf("configio: open %q: %w", path, err)
	}
	defer f.Close()

	var ov overrides
	if err := json.NewDecoder(f).Decode(&ov); err != nil {
		return decoder.SensorConfig{}, fmt.Errorf("configio: decode %q: %w", path, err)
	}

	cfg := base
	if ov.CloudMinAngleDeg != nil {
		cfg.CloudMinAngleDeg = *ov.CloudMinAngleDeg
	}
	if ov.CloudMaxAngleDeg != nil {
		cfg.CloudMaxAngleDeg = *ov.CloudMaxAngleDeg
	}
	if ov.CutAngleDeg != nil {
		cfg.CutAngleDeg = *ov.CutAngleDeg
	}
	if ov.MinRangeM != nil {
		cfg.MinRangeM = *ov.MinRangeM
	}
	if ov.MaxRangeM != nil {
		cfg.MaxRangeM = *ov.MaxRangeM
	}
	if ov.DualReturnDistanceThresholdM != nil {
		cfg.DualReturnDistanceThresholdM = *ov.DualReturnDistanceThresholdM
	}
	return cfg, nil
}
