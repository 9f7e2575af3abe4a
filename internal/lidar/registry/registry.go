// Package registry provides a process-wide, concurrency-safe lookup of
// decoders by sensor id, for deployments decoding more than one sensor
// at once. It is safe for concurrent registration/lookup even though
// the Decoder it wraps is not — the registry sits above, not inside,
// the per-decoder hot path, mirroring the split between a
// mutex-guarded registry and single-threaded per-sensor workers used
// throughout the reference frame-builder registry.
package registry

import (
	"fmt"
	"sync"

	"github.com/banshee-data/lidar-decoder/internal/lidar/decoder"
	"github.com/google/uuid"
)

var (
	mu       sync.RWMutex
	decoders = make(map[string]*decoder.Decoder)
)

// NewSensorID returns a random v4 UUID for callers that do not have a
// natural sensor identifier of their own.
func NewSensorID() string {
	return uuid.NewString()
}

// Register associates a sensor id with a decoder instance. It replaces
// any decoder previously registered under the same id.
func Register(sensorID string, d *decoder.Decoder) {
	mu.Lock()
	defer mu.Unlock()
	decoders[sensorID] = d
}

// Get returns the decoder registered for sensorID, if any.
func Get(sensorID string) (*decoder.Decoder, bool) {
	mu.RLock()
	defer mu.RUnlock()
	d, ok := decoders[sensorID]
	return d, ok
}

// Unregister removes a sensor's decoder from the registry.
func Unregister(sensorID string) {
	mu.Lock()
	defer mu.Unlock()
	delete(decoders, sensorID)
}

// MustGet returns the decoder registered for sensorID or panics. It is
// intended for cmd/ tools and tests where a missing sensor id is a
// programming error, not a runtime condition to handle gracefully.
func MustGet(sensorID string) *decoder.Decoder {
	d, ok := Get(sensorID)
	if !ok {
		panic(fmt.Sprintf("registry: no decoder registered for sensor %q", sensorID))
	}
	return d
}

// Len reports the number of currently registered decoders.
func Len() int {
	mu.RLock()
	defer mu.RUnlock()
	return len(decoders)
}
