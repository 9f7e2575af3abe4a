package calibstore

import (
	"bytes"
	"database/sql"
	"fmt"

	"github.com/banshee-data/lidar-decoder/internal/lidar/calib"
)

// Version is one recorded calibration document for a sensor.
type Version struct {
	VersionID          int64
	SensorID           string
	LoadedUnixNanos    int64
	NumLasers          int
	DistanceResolution float64
	DocumentYAML       string
}

// SaveVersion serializes cal back to YAML and records it as a new
// version for sensorID. loadedUnixNanos is supplied by the caller
// (cmd/lidar-replay passes the time it recorded the calibration)
// rather than computed here.
func (db *DB) SaveVersion(sensorID string, cal *calib.Calibration, loadedUnixNanos int64) (int64, error) {
	var buf bytes.Buffer
	if err := calib.Save(&buf, cal); err != nil {
		return 0, fmt.Errorf("calibstore: serialize calibration: %w", err)
	}

	res, err := db.Exec(
		`INSERT INTO calibration_versions (sensor_id, loaded_unix_nanos, num_lasers, distance_resolution, document_yaml)
		 VALUES (?, ?, ?, ?, ?)`,
		sensorID, loadedUnixNanos, cal.NumLasers, cal.DistanceResolution, buf.String(),
	)
	if err != nil {
		return 0, fmt.Errorf("calibstore: insert version: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("calibstore: last insert id: %w", err)
	}
	diagf("recorded calibration version %d for sensor %q (%d lasers)", id, sensorID, cal.NumLasers)
	return id, nil
}

// LatestVersion returns the most recently recorded version for
// sensorID, or (Version{}, false, nil) if none exists.
func (db *DB) LatestVersion(sensorID string) (Version, bool, error) {
	row := db.QueryRow(
		`SELECT version_id, sensor_id, loaded_unix_nanos, num_lasers, distance_resolution, document_yaml
		 FROM calibration_versions WHERE sensor_id = ? ORDER BY version_id DESC LIMIT 1`,
		sensorID,
	)
	v, err := scanVersion(row)
	if err == sql.ErrNoRows {
		return Version{}, false, nil
	}
	if err != nil {
		return Version{}, false, fmt.Errorf("calibstore: latest version: %w", err)
	}
	return v, true, nil
}

// GetVersion returns a specific recorded version by id.
func (db *DB) GetVersion(versionID int64) (Version, error) {
	row := db.QueryRow(
		`SELECT version_id, sensor_id, loaded_unix_nanos, num_lasers, distance_resolution, document_yaml
		 FROM calibration_versions WHERE version_id = ?`,
		versionID,
	)
	v, err := scanVersion(row)
	if err != nil {
		return Version{}, fmt.Errorf("calibstore: get version %d: %w", versionID, err)
	}
	return v, nil
}

// ListVersions returns every recorded version for sensorID, most
// recent first.
func (db *DB) ListVersions(sensorID string) ([]Version, error) {
	rows, err := db.Query(
		`SELECT version_id, sensor_id, loaded_unix_nanos, num_lasers, distance_resolution, document_yaml
		 FROM calibration_versions WHERE sensor_id = ? ORDER BY version_id DESC`,
		sensorID,
	)
	if err != nil {
		return nil, fmt.Errorf("calibstore: list versions: %w", err)
	}
	defer rows.Close()

	var out []Version
	for rows.Next() {
		var v Version
		if err := rows.Scan(&v.VersionID, &v.SensorID, &v.LoadedUnixNanos, &v.NumLasers, &v.DistanceResolution, &v.DocumentYAML); err != nil {
			return nil, fmt.Errorf("calibstore: scan version row: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func scanVersion(row *sql.Row) (Version, error) {
	var v Version
	err := row.Scan(&v.VersionID, &v.SensorID, &v.LoadedUnixNanos, &v.NumLasers, &v.DistanceResolution, &v.DocumentYAML)
	return v, err
}

// LoadCalibration re-parses a recorded version's YAML document back
// into a usable Calibration, e.g. to roll back to it.
func (v Version) LoadCalibration() (*calib.Calibration, error) {
	return calib.Load(bytes.NewBufferString(v.DocumentYAML))
}
