// Package anglecorr maps (raw azimuth, channel) pairs to corrected
// azimuth/elevation angles with cached sin/cos, and detects the
// field-of-view, cut-angle and emit-angle crossings the decoder uses to
// drive scan segmentation. Grounded on the angle-crossing design note
// (signed normalized deltas on a 2pi circle) and on the original Hesai
// decoder's isInsideFoV/isInsideOverlap/passedTimestampResetAngle/
// passedEmitAngle split, which all reduce to the same sweep-crossing
// predicate applied to different thresholds.
package anglecorr

import "math"

// degreeSubdivisions is the number of lookup-table entries per degree,
// matching the 0.01-degree raw azimuth resolution carried in the
// packet (so a raw azimuth value is usable as a table index directly).
const degreeSubdivisions = 100

const tableSize = degreeSubdivisions * 360

// ChannelGeometry is the subset of a channel's calibration the angle
// corrector needs. It decouples this package from calib's concrete
// struct so it can be constructed from either a full Calibration or a
// synthetic one in tests.
type ChannelGeometry struct {
	RotCorrection  float64 // radians
	CosRot         float64
	SinRot         float64
	VertCorrection float64 // radians
	CosVert        float64
	SinVert        float64
}

// CorrectedAngle is the result of resolving a (raw azimuth, channel) pair.
type CorrectedAngle struct {
	AzimuthRad   float64
	ElevationRad float64
	SinAzimuth   float64
	CosAzimuth   float64
	SinElevation float64
	CosElevation float64
}

// Corrector holds precomputed per-raw-azimuth trig tables and the
// configured FoV/cut-angle thresholds.
type Corrector struct {
	channels []ChannelGeometry

	sinTable [tableSize]float64
	cosTable [tableSize]float64

	fovMinDeg      float64
	fovMaxDeg      float64
	fovFullCircle  bool // fov_max - fov_min >= 360: every azimuth accepted
	cutAngleDeg    float64
	emitOverlapDeg float64 // see Open Question (a): the 20-degree overlap window
}

// New builds a Corrector for the given channel geometries (indexed by
// channel/laser id) and FoV/cut angle configuration, all in degrees. A
// span of 360 degrees or more (the common "no FoV restriction" config,
// e.g. [0, 360]) is treated as accept-all rather than normalized down
// to the degenerate [0, 0] a naive mod-360 would produce.
func New(channels []ChannelGeometry, fovMinDeg, fovMaxDeg, cutAngleDeg float64) *Corrector {
	c := &Corrector{
		channels:       channels,
		fovMinDeg:      normalizeDeg(fovMinDeg),
		fovMaxDeg:      normalizeDeg(fovMaxDeg),
		fovFullCircle:  fovMaxDeg-fovMinDeg >= 360,
		cutAngleDeg:    normalizeDeg(cutAngleDeg),
		emitOverlapDeg: 20.0,
	}
	for i := 0; i < tableSize; i++ {
		rad := float64(i) / degreeSubdivisions * math.Pi / 180
		c.sinTable[i] = math.Sin(rad)
		c.cosTable[i] = math.Cos(rad)
	}
	return c
}

// CutAngleDeg returns the configured cut angle, used by callers that
// need to reproduce the Scan Segmenter's cut_angle == cloud_max_angle
// comparison.
func (c *Corrector) CutAngleDeg() float64 { return c.cutAngleDeg }

// Corrected resolves the raw azimuth (hundredths of a degree, as read
// from the packet) and channel id into a corrected angle with cached
// trig values. The raw-azimuth term is read from the lookup table; the
// per-channel rot_correction is applied via the angle-sum identity
// using the channel's cached CosRot/SinRot, rather than a second table
// lookup or a full re-computation of sin/cos from scratch.
func (c *Corrector) Corrected(rawAz uint16, channel int) CorrectedAngle {
	// rawAz is assumed to already be in [0, tableSize), matching the
	// sensor's 0.01-degree azimuth encoding over a full turn; the mod
	// is a defensive bound, not a wraparound a caller should rely on.
	idx := int(rawAz) % tableSize
	sinRaw := c.sinTable[idx]
	cosRaw := c.cosTable[idx]

	g := c.channels[channel]
	sinAz := sinRaw*g.CosRot + cosRaw*g.SinRot
	cosAz := cosRaw*g.CosRot - sinRaw*g.SinRot
	azimuth := math.Atan2(sinAz, cosAz)
	if azimuth < 0 {
		azimuth += 2 * math.Pi
	}

	return CorrectedAngle{
		AzimuthRad:   azimuth,
		ElevationRad: g.VertCorrection,
		SinAzimuth:   sinAz,
		CosAzimuth:   cosAz,
		SinElevation: g.SinVert,
		CosElevation: g.CosVert,
	}
}

// normalizeDeg reduces x to [0, 360).
func normalizeDeg(x float64) float64 {
	x = math.Mod(x, 360)
	if x < 0 {
		x += 360
	}
	return x
}

func rawToDeg(raw uint16) float64 {
	return float64(raw) / degreeSubdivisions
}

// sweepCrossed reports whether the forward sweep from prevDeg
// (exclusive) to curDeg (inclusive) passes thetaDeg, per the
// angle-crossing design note: passing a threshold is a sign change of
// (cur - theta) mod 2pi - pi relative to prev. Implemented directly in
// degrees: rel is theta's forward offset from prev, and delta is the
// sweep's forward length; theta was passed iff 0 < rel <= delta.
func sweepCrossed(prevDeg, curDeg, thetaDeg float64) bool {
	prevDeg = normalizeDeg(prevDeg)
	curDeg = normalizeDeg(curDeg)
	thetaDeg = normalizeDeg(thetaDeg)

	delta := normalizeDeg(curDeg - prevDeg)
	if delta == 0 {
		// No motion: nothing was swept, so nothing was crossed. This also
		// covers the decoder's startup state (last_azimuth initialized to
		// 0) so a first block that happens to land exactly on a threshold
		// does not spuriously report a crossing.
		return false
	}
	rel := normalizeDeg(thetaDeg - prevDeg)
	if rel == 0 {
		// theta coincides with prev, which is excluded (open at prev).
		return false
	}
	return rel <= delta
}

// intervalContains reports whether x lies in the closed interval
// [lo, hi] on the circle, wrapping when lo > hi.
func intervalContains(lo, hi, x float64) bool {
	if lo <= hi {
		return x >= lo && x <= hi
	}
	return x >= lo || x <= hi
}

// sweepOverlapsInterval reports whether the forward sweep from prevDeg
// to curDeg overlaps the closed interval [lo, hi]: either endpoint of
// the sweep lies inside the interval, or the sweep crosses one of the
// interval's boundaries.
func sweepOverlapsInterval(prevDeg, curDeg, lo, hi float64) bool {
	p := normalizeDeg(prevDeg)
	q := normalizeDeg(curDeg)
	if intervalContains(lo, hi, p) || intervalContains(lo, hi, q) {
		return true
	}
	return sweepCrossed(prevDeg, curDeg, lo) || sweepCrossed(prevDeg, curDeg, hi)
}

// IsInsideFoV reports whether the sweep from prevRawAz to curRawAz
// overlaps the configured [fov_min, fov_max] interval.
func (c *Corrector) IsInsideFoV(prevRawAz, curRawAz uint16) bool {
	if c.fovFullCircle {
		return true
	}
	return sweepOverlapsInterval(rawToDeg(prevRawAz), rawToDeg(curRawAz), c.fovMinDeg, c.fovMaxDeg)
}

// IsInsideOverlap reports whether the sweep crossed the cut angle
// within this block transition.
func (c *Corrector) IsInsideOverlap(prevRawAz, curRawAz uint16) bool {
	return sweepCrossed(rawToDeg(prevRawAz), rawToDeg(curRawAz), c.cutAngleDeg)
}

// PassedTimestampResetAngle reports whether the sweep crossed the cut
// angle; semantically identical to IsInsideOverlap, used to rebase scan
// timestamps (spec 4.C).
func (c *Corrector) PassedTimestampResetAngle(prevRawAz, curRawAz uint16) bool {
	return c.IsInsideOverlap(prevRawAz, curRawAz)
}

// PassedEmitAngle reports whether the sweep crossed the emit
// (cut) angle, used to trigger the decode/output buffer swap.
func (c *Corrector) PassedEmitAngle(prevRawAz, curRawAz uint16) bool {
	return sweepCrossed(rawToDeg(prevRawAz), rawToDeg(curRawAz), c.cutAngleDeg)
}

// EmitOverlapUpperBoundDeg returns emit_angle + the overlap window used
// to decide whether a point belongs to the scan that is ending or the
// one that is starting (spec 4.F step 4.d "in_current_scan").
func (c *Corrector) EmitOverlapUpperBoundDeg() float64 {
	return c.cutAngleDeg + c.emitOverlapDeg
}

// EmitAngleRad returns the configured cut/emit angle in radians.
func (c *Corrector) EmitAngleRad() float64 {
	return c.cutAngleDeg * math.Pi / 180
}

// EmitOverlapUpperBoundRad returns EmitOverlapUpperBoundDeg in radians.
func (c *Corrector) EmitOverlapUpperBoundRad() float64 {
	return c.EmitOverlapUpperBoundDeg() * math.Pi / 180
}

// AzimuthInFoV reports whether a corrected azimuth (radians) lies
// within the configured [fov_min, fov_max] interval. Unlike IsInsideFoV
// this checks a single resolved angle, not a sweep; it is used on the
// per-point corrected azimuth per spec 4.F step 4.d.
func (c *Corrector) AzimuthInFoV(azimuthRad float64) bool {
	if c.fovFullCircle {
		return true
	}
	deg := normalizeDeg(azimuthRad * 180 / math.Pi)
	return intervalContains(c.fovMinDeg, c.fovMaxDeg, deg)
}

// AzimuthInEmitOverlap reports whether a corrected azimuth (radians)
// lies within [emit_angle, emit_angle + 20 degrees], the window spec
// 4.F uses to decide whether a point crossing the overlap region
// belongs to the scan that just ended or the one just starting.
func (c *Corrector) AzimuthInEmitOverlap(azimuthRad float64) bool {
	deg := normalizeDeg(azimuthRad * 180 / math.Pi)
	lo := normalizeDeg(c.cutAngleDeg)
	hi := normalizeDeg(c.cutAngleDeg + c.emitOverlapDeg)
	return intervalContains(lo, hi, deg)
}
