package calib

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// CalibrationReport summarizes a loaded calibration for diagnostics. It
// is never consulted by the decode hot path.
type CalibrationReport struct {
	NumLasers            int
	VertSpacingMean      float64
	VertSpacingStdDev    float64
	VertSpacingP50       float64
	RingCoverageFraction float64
}

// Report computes summary statistics over the calibration's vertical
// angle spacing and ring coverage.
func Report(c *Calibration) CalibrationReport {
	angles := make([]float64, 0, len(c.Channels))
	assignedRings := make(map[int]bool, len(c.Channels))
	for _, ch := range c.Channels {
		angles = append(angles, ch.VertCorrection)
		assignedRings[ch.LaserRing] = true
	}
	sort.Float64s(angles)

	spacings := make([]float64, 0, len(angles))
	for i := 1; i < len(angles); i++ {
		spacings = append(spacings, angles[i]-angles[i-1])
	}

	rep := CalibrationReport{NumLasers: c.NumLasers}
	if len(spacings) > 0 {
		rep.VertSpacingMean, rep.VertSpacingStdDev = stat.MeanStdDev(spacings, nil)
		sorted := append([]float64(nil), spacings...)
		sort.Float64s(sorted)
		rep.VertSpacingP50 = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	}
	if c.NumLasers > 0 {
		rep.RingCoverageFraction = float64(len(assignedRings)) / float64(c.NumLasers)
	}
	return rep
}
