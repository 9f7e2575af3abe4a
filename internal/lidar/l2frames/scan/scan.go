// Package scan implements the Scan Segmenter: two point buffers
// ("decode", the scan currently being filled, and "output", the most
// recently completed scan) plus their start timestamps, swapped on an
// emit-angle crossing. The swap is a pointer/index exchange, never a
// copy, per the "Shared buffers" design note. This replaces the
// teacher's heuristic, coverage/point-count-driven frame detector with
// the exact cut-angle-crossing rule the decoder drives it with.
package scan

import "github.com/banshee-data/lidar-decoder/internal/lidar/points"

// Buffers holds the decoder's double-buffered scan state.
type Buffers struct {
	decode []points.Point
	output []points.Point

	decodeScanTsNs uint64
	outputScanTsNs uint64

	hasScanned bool
}

// NewBuffers preallocates both buffers to the given per-revolution
// point capacity.
func NewBuffers(capacity int) *Buffers {
	return &Buffers{
		decode: make([]points.Point, 0, capacity),
		output: make([]points.Point, 0, capacity),
	}
}

// DecodeScanTsNs returns the start timestamp of the scan currently
// being decoded.
func (b *Buffers) DecodeScanTsNs() uint64 { return b.decodeScanTsNs }

// OutputScanTsNs returns the start timestamp of the most recently
// completed scan.
func (b *Buffers) OutputScanTsNs() uint64 { return b.outputScanTsNs }

// SetDecodeScanTsNs lazily initializes or rebases the decode scan's
// start timestamp.
func (b *Buffers) SetDecodeScanTsNs(ts uint64) { b.decodeScanTsNs = ts }

// SetOutputScanTsNs sets the just-completed scan's timestamp directly.
// OnTimestampCross rebases the same field itself when cut_angle !=
// cloud_max_angle (spec 4.E).
func (b *Buffers) SetOutputScanTsNs(ts uint64) { b.outputScanTsNs = ts }

// HasScanned reports whether a scan has completed and not yet been
// drained by the caller.
func (b *Buffers) HasScanned() bool { return b.hasScanned }

// Append routes a point into the decode or output buffer.
func (b *Buffers) Append(p points.Point, inCurrentScan bool) {
	if inCurrentScan {
		b.decode = append(b.decode, p)
	} else {
		b.output = append(b.output, p)
	}
}

// OnTimestampCross applies spec 4.E's on_cut rule: if the configured
// cut_angle equals cloud_max_angle, the newly starting scan is the
// decode scan, so the decode timestamp is rebased; otherwise the
// just-completed scan's output timestamp is rebased. See Open Question
// (b) in the design notes — this asymmetry is preserved verbatim.
func (b *Buffers) OnTimestampCross(cutAngleEqualsCloudMaxAngle bool, ts uint64) {
	if cutAngleEqualsCloudMaxAngle {
		b.decodeScanTsNs = ts
	} else {
		b.outputScanTsNs = ts
	}
}

// OnEmitCrossing swaps the decode and output buffers and their
// timestamps, and marks a scan complete.
func (b *Buffers) OnEmitCrossing() {
	b.decode, b.output = b.output, b.decode
	b.decodeScanTsNs, b.outputScanTsNs = b.outputScanTsNs, b.decodeScanTsNs
	b.hasScanned = true
}

// ClearOutput empties the output buffer and clears the has-scanned
// flag; called once the caller has had the opportunity to poll it.
func (b *Buffers) ClearOutput() {
	b.output = b.output[:0]
	b.hasScanned = false
}

// TakeOutput returns the output buffer and its start timestamp as
// floating-point seconds. The caller must not retain the returned
// slice past the next push/clear.
func (b *Buffers) TakeOutput() ([]points.Point, float64) {
	return b.output, float64(b.outputScanTsNs) * 1e-9
}
