package configio

import (
	"os"
	"testing"

	"github.com/banshee-data/lidar-decoder/internal/lidar/decoder"
	"github.com/stretchr/testify/require"
)

func TestLoad_OverridesOnlyNamedFields(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/config.json"
	require.NoError(t, os.WriteFile(path, []byte(`{"cut_angle_deg": 45, "max_range_m": 120}`), 0o644))

	base := decoder.SensorConfig{
		CloudMinAngleDeg: 0,
		CloudMaxAngleDeg: 360,
		CutAngleDeg:      0,
		MinRangeM:        0.3,
		MaxRangeM:        200,
	}

	cfg, err := Load(path, base)
	require.NoError(t, err)
	require.Equal(t, 45.0, cfg.CutAngleDeg)
	require.Equal(t, 120.0, cfg.MaxRangeM)
	require.Equal(t, 0.3, cfg.MinRangeM) // unreferenced field keeps base value
	require.Equal(t, 360.0, cfg.CloudMaxAngleDeg)
}

func TestLoad_MissingFileReturnsError(t *testing.T) {
	_, err := Load("/nonexistent/config.json", decoder.SensorConfig{})
	require.Error(t, err)
}
