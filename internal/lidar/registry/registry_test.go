package registry

import (
	"testing"

	"github.com/banshee-data/lidar-decoder/internal/lidar/calib"
	"github.com/banshee-data/lidar-decoder/internal/lidar/decoder"
	"github.com/stretchr/testify/require"
)

func newTestDecoder(t *testing.T) *decoder.Decoder {
	t.Helper()
	model := decoder.NewPandar40PSensorModel()
	cal := &calib.Calibration{
		NumLasers: model.Layout.NChannels,
		Channels:  make([]calib.ChannelCorrection, model.Layout.NChannels),
	}
	for i := range cal.Channels {
		cal.Channels[i] = calib.ChannelCorrection{LaserID: i, CosRot: 1, CosVert: 1}
	}
	d, err := decoder.New(model, cal, decoder.SensorConfig{CloudMaxAngleDeg: 360, MaxRangeM: 200})
	require.NoError(t, err)
	return d
}

func TestRegisterAndGet_Roundtrips(t *testing.T) {
	id := NewSensorID()
	d := newTestDecoder(t)
	Register(id, d)
	t.Cleanup(func() { Unregister(id) })

	got, ok := Get(id)
	require.True(t, ok)
	require.Same(t, d, got)
}

func TestGet_UnknownSensorReturnsFalse(t *testing.T) {
	_, ok := Get("never-registered")
	require.False(t, ok)
}

func TestUnregister_RemovesEntry(t *testing.T) {
	id := NewSensorID()
	Register(id, newTestDecoder(t))
	Unregister(id)
	_, ok := Get(id)
	require.False(t, ok)
}

func TestMustGet_PanicsWhenMissing(t *testing.T) {
	require.Panics(t, func() { MustGet("missing-sensor-id") })
}
