package decoder

import "github.com/banshee-data/lidar-decoder/internal/lidar/points"

// PointFilter is a single predicate a caller can install to reject
// points beyond range/FoV clipping. The decoder applies filters in
// order and short-circuits on the first rejection, per the
// "Polymorphic point filters" design note.
type PointFilter interface {
	Excluded(p points.Point) bool
}

// SensorConfig is the operator-supplied configuration for one decoder
// instance. It is treated as immutable for the decoder's lifetime
// (spec §5) and is never parsed here from a file — application-layer
// configuration parsing is explicitly out of scope (spec §1); see
// internal/lidar/configio for an optional convenience loader used only
// by cmd/ tools.
type SensorConfig struct {
	// CloudMinAngleDeg/CloudMaxAngleDeg bound the field of view.
	CloudMinAngleDeg float64
	CloudMaxAngleDeg float64
	// CutAngleDeg is the azimuth at which one scan ends and the next begins.
	CutAngleDeg float64

	// MinRangeM/MaxRangeM are additional, operator-configured range
	// limits applied on top of the sensor model's own limits.
	MinRangeM float64
	MaxRangeM float64

	// DualReturnDistanceThresholdM is the distance below which two
	// returns in the same group are treated as duplicates.
	DualReturnDistanceThresholdM float64

	// PointFilters is applied, in order, to every candidate point.
	PointFilters []PointFilter
}
