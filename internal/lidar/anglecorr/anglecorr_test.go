package anglecorr

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func flatChannel(vert float64) ChannelGeometry {
	return ChannelGeometry{
		CosRot:         1,
		SinRot:         0,
		VertCorrection: vert,
		CosVert:        math.Cos(vert),
		SinVert:        math.Sin(vert),
	}
}

func TestCorrected_ZeroCorrectionMatchesRawAzimuth(t *testing.T) {
	c := New([]ChannelGeometry{flatChannel(0)}, 0, 360, 0)
	got := c.Corrected(9000, 0) // 90.00 degrees
	require.InDelta(t, math.Pi/2, got.AzimuthRad, 1e-6)
	require.InDelta(t, 0, got.ElevationRad, 1e-9)
}

func TestPassedEmitAngle_CrossingDetected(t *testing.T) {
	c := New([]ChannelGeometry{flatChannel(0)}, 0, 360, 0)
	// sweep from 359 degrees to 1 degree crosses 0.
	require.True(t, c.PassedEmitAngle(35900, 100))
}

func TestPassedEmitAngle_NoCrossingWhenSweepDoesNotReachAngle(t *testing.T) {
	c := New([]ChannelGeometry{flatChannel(0)}, 0, 360, 180)
	require.False(t, c.PassedEmitAngle(10000, 15000)) // 100 -> 150 degrees, never reaches 180
}

func TestPassedEmitAngle_ExactlyOnEmitAngleCounts(t *testing.T) {
	c := New([]ChannelGeometry{flatChannel(0)}, 0, 360, 180)
	require.True(t, c.PassedEmitAngle(17900, 18000))
}

func TestIsInsideFoV_SweepOutsideRangeIsExcluded(t *testing.T) {
	c := New([]ChannelGeometry{flatChannel(0)}, 90, 270, 0)
	require.False(t, c.IsInsideFoV(4400, 4600)) // 44 -> 46 degrees, outside [90,270]
}

func TestIsInsideFoV_SweepInsideRangeIsIncluded(t *testing.T) {
	c := New([]ChannelGeometry{flatChannel(0)}, 90, 270, 0)
	require.True(t, c.IsInsideFoV(9900, 10100)) // 99 -> 101 degrees
}

func TestIsInsideFoV_FullCircleAcceptsEverySweep(t *testing.T) {
	c := New([]ChannelGeometry{flatChannel(0)}, 0, 360, 0)
	require.True(t, c.IsInsideFoV(18000, 18100)) // 180 -> 181 degrees, nowhere near 0
}

func TestAzimuthInFoV_FullCircleAcceptsEveryAzimuth(t *testing.T) {
	c := New([]ChannelGeometry{flatChannel(0)}, 0, 360, 0)
	require.True(t, c.AzimuthInFoV(math.Pi)) // 180 degrees
}
