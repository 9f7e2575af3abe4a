package decoder

import "github.com/banshee-data/lidar-decoder/internal/lidar/l1packets/layout"

// SensorModel is the capability set the spec's "Compile-time sensor
// specialization" design note asks for: everything the decoder needs
// that is fixed by firmware/hardware rather than by the operator's
// configuration — packet shape, sensor-level range limits and the
// per-block/channel firing schedule used to compute relative point
// timestamps.
type SensorModel struct {
	Layout layout.Layout

	// MinRangeM/MaxRangeM are the sensor's own hard range limits,
	// independent of any operator-configured clipping.
	MinRangeM float64
	MaxRangeM float64

	// BlockPeriodNs is the firing interval between consecutive blocks
	// within a packet.
	BlockPeriodNs uint32
	// FiretimeOffsetsNs holds, per channel, that channel's firing delay
	// relative to the start of its block.
	FiretimeOffsetsNs []uint32
}

// PointOffsetNs returns the firing-time offset of a given block/channel
// relative to the start of the packet.
func (m SensorModel) PointOffsetNs(blockID, channel int) uint32 {
	return uint32(blockID)*m.BlockPeriodNs + m.FiretimeOffsetsNs[channel]
}

// EarliestPointOffsetForBlock returns the smallest point offset within
// a block, used to (re)base a scan's start timestamp.
func (m SensorModel) EarliestPointOffsetForBlock(blockID int) uint32 {
	min := m.FiretimeOffsetsNs[0]
	for _, v := range m.FiretimeOffsetsNs[1:] {
		if v < min {
			min = v
		}
	}
	return uint32(blockID)*m.BlockPeriodNs + min
}

// NewPandar40PSensorModel returns the capability set for the Pandar40P
// packet shape (internal/lidar/l1packets/layout.NewPandar40PLayout),
// with a representative firing schedule: a 55.56us block period and a
// 1us-per-channel firetime stagger across its 40 channels.
func NewPandar40PSensorModel() SensorModel {
	l := layout.NewPandar40PLayout()
	firetimes := make([]uint32, l.NChannels)
	for ch := range firetimes {
		firetimes[ch] = uint32(ch) * 1000
	}
	return SensorModel{
		Layout:            l,
		MinRangeM:         0.3,
		MaxRangeM:         200.0,
		BlockPeriodNs:     55560,
		FiretimeOffsetsNs: firetimes,
	}
}
