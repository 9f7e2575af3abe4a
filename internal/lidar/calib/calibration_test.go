package calib

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleDoc = `
num_lasers: 2
distance_resolution: 0.004
lasers:
  - laser_id: 0
    rot_correction: 0.0
    vert_correction: -0.1
    dist_correction: 0.0
    dist_correction_x: 0.0
    dist_correction_y: 0.0
    vert_offset_correction: 0.0
    focal_distance: 0.0
    focal_slope: 0.0
  - laser_id: 1
    rot_correction: 0.0
    vert_correction: 0.1
    dist_correction: 0.0
    dist_correction_x: 0.0
    dist_correction_y: 0.0
    vert_offset_correction: 0.0
    focal_distance: 0.0
    focal_slope: 0.0
`

func TestLoad_AssignsRingsByAscendingVerticalAngle(t *testing.T) {
	c, err := Load(strings.NewReader(sampleDoc))
	require.NoError(t, err)
	require.Equal(t, 2, c.NumLasers)

	ch0, ok := c.ChannelByID(0)
	require.True(t, ok)
	require.Equal(t, 0, ch0.LaserRing)

	ch1, ok := c.ChannelByID(1)
	require.True(t, ok)
	require.Equal(t, 1, ch1.LaserRing)
}

func TestLoad_MissingRequiredFieldFails(t *testing.T) {
	doc := `
num_lasers: 1
distance_resolution: 0.004
lasers:
  - laser_id: 0
    vert_correction: 0.0
`
	_, err := Load(strings.NewReader(doc))
	require.Error(t, err)
}

func TestLoad_InvalidNumLasersFails(t *testing.T) {
	doc := `
num_lasers: 0
distance_resolution: 0.004
lasers: []
`
	_, err := Load(strings.NewReader(doc))
	require.Error(t, err)
}

func TestLoad_DuplicateLaserIDFails(t *testing.T) {
	doc := `
num_lasers: 2
distance_resolution: 0.004
lasers:
  - laser_id: 0
    rot_correction: 0.0
    vert_correction: 0.0
    dist_correction: 0.0
    dist_correction_x: 0.0
    dist_correction_y: 0.0
    vert_offset_correction: 0.0
    focal_distance: 0.0
    focal_slope: 0.0
  - laser_id: 0
    rot_correction: 0.0
    vert_correction: 0.1
    dist_correction: 0.0
    dist_correction_x: 0.0
    dist_correction_y: 0.0
    vert_offset_correction: 0.0
    focal_distance: 0.0
    focal_slope: 0.0
`
	_, err := Load(strings.NewReader(doc))
	require.Error(t, err)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	c, err := Load(strings.NewReader(sampleDoc))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Save(&buf, c))

	c2, err := Load(&buf)
	require.NoError(t, err)

	require.Equal(t, c.NumLasers, c2.NumLasers)
	require.Equal(t, c.DistanceResolution, c2.DistanceResolution)
	for id := range c.Channels {
		orig, _ := c.ChannelByID(id)
		rt, _ := c2.ChannelByID(id)
		require.Equal(t, orig.RotCorrection, rt.RotCorrection)
		require.Equal(t, orig.VertCorrection, rt.VertCorrection)
		require.Equal(t, orig.MaxIntensity, rt.MaxIntensity)
		require.Equal(t, orig.MinIntensity, rt.MinIntensity)
	}
}

func TestReport_ComputesSpacingStats(t *testing.T) {
	c, err := Load(strings.NewReader(sampleDoc))
	require.NoError(t, err)
	rep := Report(c)
	require.Equal(t, 2, rep.NumLasers)
	require.InDelta(t, 0.2, rep.VertSpacingMean, 1e-9)
	require.Equal(t, 1.0, rep.RingCoverageFraction)
}
