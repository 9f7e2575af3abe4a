package calibstore

import (
	"os"
	"testing"

	"github.com/banshee-data/lidar-decoder/internal/lidar/calib"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	fname := t.TempDir() + "/calib_test.db"
	db, err := Open(fname)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close(); os.Remove(fname) })
	return db
}

func sampleCalibration() *calib.Calibration {
	return &calib.Calibration{
		NumLasers:          2,
		DistanceResolution: 0.004,
		Channels: []calib.ChannelCorrection{
			{LaserID: 0, VertCorrection: 0.1, MaxIntensity: 255},
			{LaserID: 1, VertCorrection: -0.1, MaxIntensity: 255},
		},
	}
}

func TestSaveAndLoadVersion_RoundTrips(t *testing.T) {
	db := openTestDB(t)
	cal := sampleCalibration()

	id, err := db.SaveVersion("sensor-a", cal, 1000)
	require.NoError(t, err)
	require.NotZero(t, id)

	v, err := db.GetVersion(id)
	require.NoError(t, err)
	require.Equal(t, "sensor-a", v.SensorID)
	require.Equal(t, 2, v.NumLasers)

	reloaded, err := v.LoadCalibration()
	require.NoError(t, err)
	require.Equal(t, cal.NumLasers, reloaded.NumLasers)
	require.InDelta(t, cal.Channels[0].VertCorrection, reloaded.Channels[0].VertCorrection, 1e-9)
}

func TestLatestVersion_ReturnsMostRecent(t *testing.T) {
	db := openTestDB(t)
	cal := sampleCalibration()

	_, err := db.SaveVersion("sensor-b", cal, 1000)
	require.NoError(t, err)
	second, err := db.SaveVersion("sensor-b", cal, 2000)
	require.NoError(t, err)

	latest, ok, err := db.LatestVersion("sensor-b")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, second, latest.VersionID)
}

func TestLatestVersion_NoneRecordedReturnsFalse(t *testing.T) {
	db := openTestDB(t)
	_, ok, err := db.LatestVersion("unknown-sensor")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestListVersions_OrdersMostRecentFirst(t *testing.T) {
	db := openTestDB(t)
	cal := sampleCalibration()

	first, err := db.SaveVersion("sensor-c", cal, 1000)
	require.NoError(t, err)
	second, err := db.SaveVersion("sensor-c", cal, 2000)
	require.NoError(t, err)

	versions, err := db.ListVersions("sensor-c")
	require.NoError(t, err)
	require.Len(t, versions, 2)
	require.Equal(t, second, versions[0].VersionID)
	require.Equal(t, first, versions[1].VersionID)
}
