// Package layout describes the fixed binary shape of a sensor's UDP
// packet payload and provides bounds-checked, little-endian accessors
// over it. It replaces a per-sensor hardcoded struct cast with a single
// descriptor type shared by every sensor model, per the "Binary layout"
// design note: typed accessors that bounds-check instead of
// reinterpreting raw memory.
package layout

import (
	"encoding/binary"
	"fmt"

	"github.com/banshee-data/lidar-decoder/internal/lidar/lidarerrors"
)

// Layout is the per-sensor-model descriptor: field widths, offsets and
// counts needed to walk a packet payload. All offsets are byte offsets
// from the start of the packet; all multi-byte integers are
// little-endian.
type Layout struct {
	// PacketSize is the exact payload length this layout expects.
	PacketSize int

	// NBlocks and NChannels size the body grid.
	NBlocks   int
	NChannels int

	// BodyOffset is where the first block begins.
	BodyOffset int
	// BlockStride is the byte size of one block (azimuth + N channel units).
	BlockStride int
	// ChannelStride is the byte size of one channel unit within a block.
	ChannelStride int
	// AzimuthSize is the width, in bytes, of the per-block azimuth field (2).
	AzimuthSize int

	// TailOffset is where the packet tail begins.
	TailOffset int
	// TailSize is the byte size of the tail.
	TailSize int
	// TimestampSecOffset/TimestampNsOffset are offsets within the tail.
	TimestampSecOffset int
	TimestampNsOffset  int
	// ReturnModeOffset is the offset, within the tail, of the return-mode byte.
	ReturnModeOffset int
	// DisUnitOffset is the offset, within the tail, of the distance-unit byte.
	DisUnitOffset int

	// AzimuthResolution converts a raw azimuth integer to degrees
	// (hundredths of a degree per count, sensor-specific).
	AzimuthResolution float64

	// DisUnitTable maps the tail's distance-unit identifier byte to
	// meters-per-raw-count. A sensor with a single fixed resolution
	// populates it with one entry.
	DisUnitTable map[uint8]float64
}

// NewPandar40PLayout returns the descriptor for the Pandar40P packet
// shape: 10 blocks of 40 channels, a 22-byte tail starting at byte 1240,
// a 1262-byte payload, 0.01-degree azimuth resolution and a fixed
// 4mm distance unit.
func NewPandar40PLayout() Layout {
	const (
		nBlocks       = 10
		nChannels     = 40
		channelStride = 3 // distance u16 + reflectivity u8
		azimuthSize   = 2
		blockStride   = azimuthSize + nChannels*channelStride
		tailOffset    = 1240
		tailSize      = 22
		packetSize    = 1262
	)
	return Layout{
		PacketSize:         packetSize,
		NBlocks:            nBlocks,
		NChannels:          nChannels,
		BodyOffset:         0,
		BlockStride:        blockStride,
		ChannelStride:      channelStride,
		AzimuthSize:        azimuthSize,
		TailOffset:         tailOffset,
		TailSize:           tailSize,
		TimestampSecOffset: 10,
		TimestampNsOffset:  6,
		ReturnModeOffset:   18,
		DisUnitOffset:      19,
		AzimuthResolution:  0.01,
		DisUnitTable:       map[uint8]float64{0: 0.004, 1: 0.004},
	}
}

// blockOffset returns the byte offset of block i's azimuth field.
func (l Layout) blockOffset(i int) int {
	return l.BodyOffset + i*l.BlockStride
}

func (l Layout) channelOffset(block, channel int) int {
	return l.blockOffset(block) + l.AzimuthSize + channel*l.ChannelStride
}

// View is a read-only, bounds-checked interpretation of a single packet
// payload. It borrows the underlying byte slice for the lifetime of a
// single decode call; it must not be retained past that call.
type View struct {
	layout Layout
	raw    []byte
}

// Parse validates the buffer length against the layout and returns a
// View over it. It performs no further validation (no checksum is
// enforced at this layer).
func Parse(layout Layout, raw []byte) (*View, error) {
	if len(raw) < layout.PacketSize {
		return nil, fmt.Errorf("layout: payload length %d < expected %d: %w", len(raw), layout.PacketSize, lidarerrors.ErrPacketTooShort)
	}
	return &View{layout: layout, raw: raw}, nil
}

func (v *View) NBlocks() int   { return v.layout.NBlocks }
func (v *View) NChannels() int { return v.layout.NChannels }

// BlockAzimuth returns the raw azimuth (hundredths of a degree) for block i.
func (v *View) BlockAzimuth(i int) (uint16, error) {
	off := v.blockOffset(i)
	if off+2 > len(v.raw) {
		return 0, fmt.Errorf("layout: block %d azimuth out of range: %w", i, lidarerrors.ErrPacketTooShort)
	}
	return binary.LittleEndian.Uint16(v.raw[off : off+2]), nil
}

func (v *View) blockOffset(i int) int { return v.layout.blockOffset(i) }

// ChannelUnit returns the raw distance and reflectivity for the given
// block/channel pair.
func (v *View) ChannelUnit(block, channel int) (distance uint16, reflectivity uint8, err error) {
	off := v.layout.channelOffset(block, channel)
	if off+3 > len(v.raw) {
		return 0, 0, fmt.Errorf("layout: block %d channel %d out of range: %w", block, channel, lidarerrors.ErrPacketTooShort)
	}
	distance = binary.LittleEndian.Uint16(v.raw[off : off+2])
	reflectivity = v.raw[off+2]
	return distance, reflectivity, nil
}

// ReturnMode returns the tail's return-mode identifier byte.
func (v *View) ReturnMode() (uint8, error) {
	off := v.layout.TailOffset + v.layout.ReturnModeOffset
	if off >= len(v.raw) {
		return 0, fmt.Errorf("layout: return mode offset out of range: %w", lidarerrors.ErrPacketTooShort)
	}
	return v.raw[off], nil
}

// DisUnit returns the meters-per-raw-count for this packet, resolved
// through the layout's DisUnitTable from the tail's unit identifier byte.
func (v *View) DisUnit() (float64, error) {
	off := v.layout.TailOffset + v.layout.DisUnitOffset
	if off >= len(v.raw) {
		return 0, fmt.Errorf("layout: dis-unit offset out of range: %w", lidarerrors.ErrPacketTooShort)
	}
	id := v.raw[off]
	unit, ok := v.layout.DisUnitTable[id]
	if !ok {
		return 0, fmt.Errorf("layout: unknown dis-unit identifier %d", id)
	}
	return unit, nil
}

// TimestampNs returns the packet tail timestamp composed from its
// seconds and nanoseconds fields (spec §6).
func (v *View) TimestampNs() (uint64, error) {
	secOff := v.layout.TailOffset + v.layout.TimestampSecOffset
	nsOff := v.layout.TailOffset + v.layout.TimestampNsOffset
	if secOff+4 > len(v.raw) || nsOff+4 > len(v.raw) {
		return 0, fmt.Errorf("layout: timestamp offset out of range: %w", lidarerrors.ErrPacketTooShort)
	}
	sec := binary.LittleEndian.Uint32(v.raw[secOff : secOff+4])
	ns := binary.LittleEndian.Uint32(v.raw[nsOff : nsOff+4])
	return uint64(sec)*1e9 + uint64(ns), nil
}

// AzimuthDegrees converts a raw azimuth count to degrees using the
// layout's AzimuthResolution (degrees per count, e.g. 0.01).
func (l Layout) AzimuthDegrees(raw uint16) float64 {
	return float64(raw) * l.AzimuthResolution
}
