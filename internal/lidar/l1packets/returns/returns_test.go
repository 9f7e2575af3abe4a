package returns

import (
	"testing"

	"github.com/banshee-data/lidar-decoder/internal/lidar/points"
	"github.com/stretchr/testify/require"
)

func TestNReturns_SingleAndDualModes(t *testing.T) {
	n, err := NReturns(uint8(ModeSingleStrongest))
	require.NoError(t, err)
	require.Equal(t, 1, n)

	n, err = NReturns(uint8(ModeDualFirstLast))
	require.NoError(t, err)
	require.Equal(t, 2, n)
}

func TestNReturns_UnknownCodeFails(t *testing.T) {
	_, err := NReturns(0xAA)
	require.Error(t, err)
}

func TestClassifyGroup_SingleLast(t *testing.T) {
	types, err := ClassifyGroup(uint8(ModeSingleLast), []uint16{500})
	require.NoError(t, err)
	require.Equal(t, []points.ReturnType{points.ReturnLast}, types)
}

func TestClassifyGroup_IdenticalDistancesOverrideMode(t *testing.T) {
	types, err := ClassifyGroup(uint8(ModeDualFirstLast), []uint16{500, 500})
	require.NoError(t, err)
	require.Equal(t, points.ReturnIdentical, types[0])
	require.Equal(t, points.ReturnIdentical, types[1])
}

func TestClassifyGroup_DistinctDistancesKeepModeTypes(t *testing.T) {
	types, err := ClassifyGroup(uint8(ModeDualFirstLast), []uint16{500, 900})
	require.NoError(t, err)
	require.Equal(t, points.ReturnFirst, types[0])
	require.Equal(t, points.ReturnLast, types[1])
}

func TestIsDualReturnDuplicate_WithinThreshold(t *testing.T) {
	dists := []float64{10.0, 10.005}
	require.True(t, IsDualReturnDuplicate(dists, 0, 0.01))
	require.False(t, IsDualReturnDuplicate(dists, 0, 0.001))
}
