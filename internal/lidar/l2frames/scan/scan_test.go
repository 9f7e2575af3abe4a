package scan

import (
	"testing"

	"github.com/banshee-data/lidar-decoder/internal/lidar/points"
	"github.com/stretchr/testify/require"
)

func TestAppend_RoutesToDecodeOrOutput(t *testing.T) {
	b := NewBuffers(4)
	b.Append(points.Point{X: 1}, true)
	b.Append(points.Point{X: 2}, false)

	decodeOut, _ := b.TakeOutput()
	require.Len(t, decodeOut, 1)
	require.Equal(t, 2.0, decodeOut[0].X)
}

func TestOnEmitCrossing_SwapsBuffersAndTimestamps(t *testing.T) {
	b := NewBuffers(4)
	b.SetDecodeScanTsNs(100)
	b.SetOutputScanTsNs(0)
	b.Append(points.Point{X: 1}, true)

	require.False(t, b.HasScanned())
	b.OnEmitCrossing()
	require.True(t, b.HasScanned())

	out, tsSeconds := b.TakeOutput()
	require.Len(t, out, 1)
	require.Equal(t, 1.0, out[0].X)
	require.InDelta(t, 100e-9, tsSeconds, 1e-15)
	require.Equal(t, uint64(0), b.DecodeScanTsNs())
}

func TestClearOutput_EmptiesBufferAndClearsFlag(t *testing.T) {
	b := NewBuffers(4)
	b.Append(points.Point{X: 1}, true)
	b.OnEmitCrossing()
	require.True(t, b.HasScanned())

	b.ClearOutput()
	require.False(t, b.HasScanned())
	out, _ := b.TakeOutput()
	require.Len(t, out, 0)
}

func TestOnTimestampCross_DecodeVsOutputBranch(t *testing.T) {
	b := NewBuffers(4)
	b.OnTimestampCross(true, 42)
	require.Equal(t, uint64(42), b.DecodeScanTsNs())

	b.OnTimestampCross(false, 7)
	require.Equal(t, uint64(7), b.OutputScanTsNs())
}
