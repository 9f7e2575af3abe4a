// Package calib loads, validates and represents the per-channel
// geometric calibration shared by every decoder instance for a given
// sensor. Ring assignment and the YAML document shape are grounded on
// the Velodyne/Hesai calibration schema (num_lasers, distance_resolution,
// lasers[] with laser_id/rot_correction/vert_correction/...).
package calib

import (
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/banshee-data/lidar-decoder/internal/lidar/lidarerrors"
	"gopkg.in/yaml.v3"
)

// ChannelCorrection holds the geometric correction for one physical
// laser plus its derived, precomputed trigonometric values.
type ChannelCorrection struct {
	LaserID                  int
	RotCorrection            float64 // radians
	VertCorrection           float64 // radians
	DistCorrection           float64 // meters
	TwoPtCorrectionAvailable bool
	DistCorrectionX          float64 // meters
	DistCorrectionY          float64 // meters
	VertOffsetCorrection     float64 // meters
	HorizOffsetCorrection    float64 // meters
	FocalDistance            float64
	FocalSlope               float64
	MaxIntensity             uint8
	MinIntensity             uint8

	// Derived at load time.
	CosRot  float64
	SinRot  float64
	CosVert float64
	SinVert float64
	// LaserRing is the 0-based rank of this channel by ascending
	// vertical angle, assigned by Load.
	LaserRing int
}

// Calibration is the immutable, shared per-sensor calibration table.
type Calibration struct {
	NumLasers          int
	DistanceResolution float64 // meters per raw distance unit

	// Channels is indexed by LaserID; len(Channels) >= NumLasers.
	Channels []ChannelCorrection
}

// ChannelByID returns the correction for the given laser id, or false
// if it is out of range.
func (c *Calibration) ChannelByID(id int) (ChannelCorrection, bool) {
	if id < 0 || id >= len(c.Channels) {
		return ChannelCorrection{}, false
	}
	return c.Channels[id], true
}

// document mirrors the on-disk YAML shape. Required numeric fields are
// pointers so a missing key can be distinguished from an explicit zero
// value (e.g. rot_correction: 0 is legitimate; an absent key is not).
type document struct {
	NumLasers          *int       `yaml:"num_lasers"`
	DistanceResolution *float64   `yaml:"distance_resolution"`
	Lasers             []laserDoc `yaml:"lasers"`
}

type laserDoc struct {
	LaserID                  *int     `yaml:"laser_id"`
	RotCorrection            *float64 `yaml:"rot_correction"`
	VertCorrection           *float64 `yaml:"vert_correction"`
	DistCorrection           *float64 `yaml:"dist_correction"`
	TwoPtCorrectionAvailable *bool    `yaml:"two_pt_correction_available,omitempty"`
	DistCorrectionX          *float64 `yaml:"dist_correction_x"`
	DistCorrectionY          *float64 `yaml:"dist_correction_y"`
	VertOffsetCorrection     *float64 `yaml:"vert_offset_correction"`
	HorizOffsetCorrection    *float64 `yaml:"horiz_offset_correction,omitempty"`
	FocalDistance            *float64 `yaml:"focal_distance"`
	FocalSlope               *float64 `yaml:"focal_slope"`
	MaxIntensity             *int     `yaml:"max_intensity,omitempty"`
	MinIntensity             *int     `yaml:"min_intensity,omitempty"`
}

func requireFloat(f *float64, field string) (float64, error) {
	if f == nil {
		return 0, fmt.Errorf("calib: missing required field %q: %w", field, lidarerrors.ErrMalformedCalibration)
	}
	return *f, nil
}

func requireInt(i *int, field string) (int, error) {
	if i == nil {
		return 0, fmt.Errorf("calib: missing required field %q: %w", field, lidarerrors.ErrMalformedCalibration)
	}
	return *i, nil
}

// Load parses a calibration document, validates it, computes derived
// trig values and assigns ring indices.
func Load(r io.Reader) (*Calibration, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("calib: decode yaml: %w: %v", lidarerrors.ErrMalformedCalibration, err)
	}

	numLasers, err := requireInt(doc.NumLasers, "num_lasers")
	if err != nil {
		return nil, err
	}
	distRes, err := requireFloat(doc.DistanceResolution, "distance_resolution")
	if err != nil {
		return nil, err
	}
	if numLasers <= 0 {
		return nil, fmt.Errorf("calib: num_lasers %d must be positive: %w", numLasers, lidarerrors.ErrInvalidCalibration)
	}
	if distRes <= 0 {
		return nil, fmt.Errorf("calib: distance_resolution %v must be positive: %w", distRes, lidarerrors.ErrInvalidCalibration)
	}

	channels := make([]ChannelCorrection, numLasers)
	seen := make(map[int]bool, numLasers)
	for i, ld := range doc.Lasers {
		laserID, err := requireInt(ld.LaserID, "laser_id")
		if err != nil {
			return nil, err
		}
		if seen[laserID] {
			return nil, fmt.Errorf("calib: duplicate laser_id %d: %w", laserID, lidarerrors.ErrInvalidCalibration)
		}
		seen[laserID] = true

		rot, err := requireFloat(ld.RotCorrection, "rot_correction")
		if err != nil {
			return nil, err
		}
		vert, err := requireFloat(ld.VertCorrection, "vert_correction")
		if err != nil {
			return nil, err
		}
		dist, err := requireFloat(ld.DistCorrection, "dist_correction")
		if err != nil {
			return nil, err
		}
		distX, err := requireFloat(ld.DistCorrectionX, "dist_correction_x")
		if err != nil {
			return nil, err
		}
		distY, err := requireFloat(ld.DistCorrectionY, "dist_correction_y")
		if err != nil {
			return nil, err
		}
		vertOff, err := requireFloat(ld.VertOffsetCorrection, "vert_offset_correction")
		if err != nil {
			return nil, err
		}
		focalDist, err := requireFloat(ld.FocalDistance, "focal_distance")
		if err != nil {
			return nil, err
		}
		focalSlope, err := requireFloat(ld.FocalSlope, "focal_slope")
		if err != nil {
			return nil, err
		}

		twoPt := false
		if ld.TwoPtCorrectionAvailable != nil {
			twoPt = *ld.TwoPtCorrectionAvailable
		}
		horizOff := 0.0
		if ld.HorizOffsetCorrection != nil {
			horizOff = *ld.HorizOffsetCorrection
		}
		maxIntensity := 255
		if ld.MaxIntensity != nil {
			maxIntensity = *ld.MaxIntensity
		}
		minIntensity := 0
		if ld.MinIntensity != nil {
			minIntensity = *ld.MinIntensity
		}
		if minIntensity > maxIntensity {
			return nil, fmt.Errorf("calib: laser %d min_intensity %d > max_intensity %d: %w", laserID, minIntensity, maxIntensity, lidarerrors.ErrInvalidCalibration)
		}

		cc := ChannelCorrection{
			LaserID:                  laserID,
			RotCorrection:            rot,
			VertCorrection:           vert,
			DistCorrection:           dist,
			TwoPtCorrectionAvailable: twoPt,
			DistCorrectionX:          distX,
			DistCorrectionY:          distY,
			VertOffsetCorrection:     vertOff,
			HorizOffsetCorrection:    horizOff,
			FocalDistance:            focalDist,
			FocalSlope:               focalSlope,
			MaxIntensity:             uint8(maxIntensity),
			MinIntensity:             uint8(minIntensity),
			CosRot:                   math.Cos(rot),
			SinRot:                   math.Sin(rot),
			CosVert:                  math.Cos(vert),
			SinVert:                  math.Sin(vert),
		}

		if laserID >= len(channels) {
			grown := make([]ChannelCorrection, laserID+1)
			copy(grown, channels)
			channels = grown
		}
		channels[laserID] = cc
		_ = i
	}

	if err := assignRings(channels); err != nil {
		opsf("ring assignment ambiguous for %d lasers: %v", numLasers, err)
	}

	diagf("loaded calibration: %d lasers, distance_resolution=%v", numLasers, distRes)

	return &Calibration{
		NumLasers:          numLasers,
		DistanceResolution: distRes,
		Channels:           channels,
	}, nil
}

// assignRings implements the ring-assignment rule: repeatedly select the
// channel with the smallest vert_correction strictly greater than the
// last assigned angle, assigning ring 0, 1, 2, ... Ties are broken by
// first-seen (lower) laser_id. Channels that cannot be ranked (e.g. a
// gap left by a malformed/sparse set) retain ring 0 and the condition
// is reported via ErrRingAssignmentAmbiguous through the caller-visible
// return — callers that need the warning should call AssignRings
// directly and inspect its error.
func assignRings(channels []ChannelCorrection) error {
	n := len(channels)
	assigned := make([]bool, n)
	nextAngle := math.Inf(-1)
	ambiguous := false

	for ring := 0; ring < n; ring++ {
		minSeen := math.Inf(1)
		nextIndex := -1
		for j := 0; j < n; j++ {
			if assigned[j] {
				continue
			}
			angle := channels[j].VertCorrection
			if nextAngle < angle && angle < minSeen {
				minSeen = angle
				nextIndex = j
			} else if nextAngle < angle && angle == minSeen && nextIndex >= 0 && channels[j].LaserID < channels[nextIndex].LaserID {
				nextIndex = j
			}
		}
		if nextIndex < 0 {
			ambiguous = true
			continue
		}
		channels[nextIndex].LaserRing = ring
		assigned[nextIndex] = true
		nextAngle = minSeen
	}

	if ambiguous {
		return lidarerrors.ErrRingAssignmentAmbiguous
	}
	return nil
}

// AssignRings re-derives ring indices for an already-loaded calibration
// (e.g. after a manual edit) and reports ambiguity instead of silently
// dropping it.
func AssignRings(c *Calibration) error {
	return assignRings(c.Channels)
}

// Save writes the calibration as a YAML document, fields ordered by
// laser_id ascending. Derived fields are omitted.
func Save(w io.Writer, c *Calibration) error {
	doc := document{
		NumLasers:          &c.NumLasers,
		DistanceResolution: &c.DistanceResolution,
	}
	ids := make([]int, 0, len(c.Channels))
	for i := range c.Channels {
		ids = append(ids, i)
	}
	sort.Ints(ids)

	for _, id := range ids {
		cc := c.Channels[id]
		ld := laserDoc{
			LaserID:                  &cc.LaserID,
			RotCorrection:            &cc.RotCorrection,
			VertCorrection:           &cc.VertCorrection,
			DistCorrection:           &cc.DistCorrection,
			TwoPtCorrectionAvailable: &cc.TwoPtCorrectionAvailable,
			DistCorrectionX:          &cc.DistCorrectionX,
			DistCorrectionY:          &cc.DistCorrectionY,
			VertOffsetCorrection:     &cc.VertOffsetCorrection,
			HorizOffsetCorrection:    &cc.HorizOffsetCorrection,
			FocalDistance:            &cc.FocalDistance,
			FocalSlope:               &cc.FocalSlope,
		}
		maxI := int(cc.MaxIntensity)
		minI := int(cc.MinIntensity)
		ld.MaxIntensity = &maxI
		ld.MinIntensity = &minI
		doc.Lasers = append(doc.Lasers, ld)
	}

	enc := yaml.NewEncoder(w)
	defer enc.Close()
	if err := enc.Encode(&doc); err != nil {
		return err
	}
	diagf("saved calibration: %d lasers, distance_resolution=%v", c.NumLasers, c.DistanceResolution)
	return nil
}
