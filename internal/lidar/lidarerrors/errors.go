// Package lidarerrors defines the sentinel errors shared across the
// decoder pipeline (layout, calibration, angle correction, return
// resolution). Callers use errors.Is against these sentinels; packages
// wrap them with context via fmt.Errorf("...: %w", ...).
package lidarerrors

import "errors"

var (
	// ErrPacketTooShort is returned when a packet buffer is smaller than
	// the sensor layout requires to extract a field or block.
	ErrPacketTooShort = errors.New("lidar: packet too short")

	// ErrMalformedCalibration is returned when a calibration document is
	// missing a required field or cannot be parsed as YAML.
	ErrMalformedCalibration = errors.New("lidar: malformed calibration document")

	// ErrInvalidCalibration is returned when a calibration document parses
	// but fails a semantic check (non-positive num_lasers or
	// distance_resolution, duplicate laser_id, min_intensity above
	// max_intensity), or when a decoder is given an empty calibration.
	ErrInvalidCalibration = errors.New("lidar: invalid calibration")

	// ErrRingAssignmentAmbiguous is returned (non-fatally logged, never
	// panics) when two or more channels share a vertical angle and ring
	// order cannot be determined unambiguously.
	ErrRingAssignmentAmbiguous = errors.New("lidar: ring assignment ambiguous")
)
