// Package decoder implements the Point Emitter: it orchestrates the
// packet layout, calibration, angle corrector, return resolver and
// scan segmenter into the push_packet/poll_scan/has_scanned API surface
// (spec 4.F). Grounded step-for-step on hesai_decoder.hpp's
// unpack()/convertReturns()/getPointcloud(), the clearest 1:1 source
// for this algorithm in the retrieved corpus.
package decoder

import (
	"fmt"

	"github.com/banshee-data/lidar-decoder/internal/lidar/anglecorr"
	"github.com/banshee-data/lidar-decoder/internal/lidar/calib"
	"github.com/banshee-data/lidar-decoder/internal/lidar/l1packets/layout"
	"github.com/banshee-data/lidar-decoder/internal/lidar/l1packets/returns"
	"github.com/banshee-data/lidar-decoder/internal/lidar/l2frames/scan"
	"github.com/banshee-data/lidar-decoder/internal/lidar/lidarerrors"
	"github.com/banshee-data/lidar-decoder/internal/lidar/points"
)

// Decoder is the per-packet decoder core. It is not internally
// synchronized: PushPacket and PollScan must be serialized by the
// caller (spec §5).
type Decoder struct {
	model SensorModel
	cal   *calib.Calibration
	cfg   SensorConfig
	corr  *anglecorr.Corrector

	buffers     *scan.Buffers
	lastAzimuth uint16
}

// New constructs a Decoder for the given sensor model and calibration.
// Construction fails with ErrInvalidCalibration if the calibration is
// empty, matching the spec's boundary case.
func New(model SensorModel, cal *calib.Calibration, cfg SensorConfig) (*Decoder, error) {
	if cal == nil || len(cal.Channels) == 0 {
		return nil, fmt.Errorf("decoder: empty calibration: %w", lidarerrors.ErrInvalidCalibration)
	}
	if len(cal.Channels) < model.Layout.NChannels {
		return nil, fmt.Errorf("decoder: calibration has %d channels, sensor model needs %d: %w", len(cal.Channels), model.Layout.NChannels, lidarerrors.ErrInvalidCalibration)
	}

	geoms := make([]anglecorr.ChannelGeometry, model.Layout.NChannels)
	for i := 0; i < model.Layout.NChannels; i++ {
		ch := cal.Channels[i]
		geoms[i] = anglecorr.ChannelGeometry{
			RotCorrection:  ch.RotCorrection,
			CosRot:         ch.CosRot,
			SinRot:         ch.SinRot,
			VertCorrection: ch.VertCorrection,
			CosVert:        ch.CosVert,
			SinVert:        ch.SinVert,
		}
	}
	corr := anglecorr.New(geoms, cfg.CloudMinAngleDeg, cfg.CloudMaxAngleDeg, cfg.CutAngleDeg)

	capacity := model.Layout.NBlocks * model.Layout.NChannels * 20

	d := &Decoder{
		model:   model,
		cal:     cal,
		cfg:     cfg,
		corr:    corr,
		buffers: scan.NewBuffers(capacity),
	}
	diagf("decoder constructed: %d channels, fov=[%v,%v], cut=%v", model.Layout.NChannels, cfg.CloudMinAngleDeg, cfg.CloudMaxAngleDeg, cfg.CutAngleDeg)
	return d, nil
}

// PushPacket parses and decodes one UDP payload, returning the last raw
// azimuth observed in the packet, or -1 if the packet could not be
// parsed. A failed parse leaves all decoder state unchanged (spec 4.F
// step 1).
func (d *Decoder) PushPacket(raw []byte) (int32, error) {
	v, err := layout.Parse(d.model.Layout, raw)
	if err != nil {
		opsf("dropping packet: %v", err)
		return -1, err
	}
	packetTsNs, err := v.TimestampNs()
	if err != nil {
		opsf("dropping packet: %v", err)
		return -1, err
	}
	disUnit, err := v.DisUnit()
	if err != nil {
		opsf("dropping packet: %v", err)
		return -1, err
	}
	modeByte, err := v.ReturnMode()
	if err != nil {
		opsf("dropping packet: %v", err)
		return -1, err
	}
	nReturns, err := returns.NReturns(modeByte)
	if err != nil {
		opsf("dropping packet: %v", err)
		return -1, err
	}

	if d.buffers.DecodeScanTsNs() == 0 {
		d.buffers.SetDecodeScanTsNs(packetTsNs + uint64(d.model.EarliestPointOffsetForBlock(0)))
	}

	if d.buffers.HasScanned() {
		d.buffers.ClearOutput()
	}

	nBlocks := v.NBlocks()
	for blockID := 0; blockID < nBlocks; blockID += nReturns {
		blockAzimuth, err := v.BlockAzimuth(blockID)
		if err != nil {
			break
		}

		if d.corr.PassedTimestampResetAngle(d.lastAzimuth, blockAzimuth) {
			ts := packetTsNs + uint64(d.model.EarliestPointOffsetForBlock(blockID))
			d.buffers.OnTimestampCross(d.cfg.CutAngleDeg == d.cfg.CloudMaxAngleDeg, ts)
		}

		if d.corr.IsInsideFoV(d.lastAzimuth, blockAzimuth) {
			d.convertReturns(v, blockID, nReturns, modeByte, blockAzimuth, packetTsNs, disUnit)
		}

		if d.corr.PassedEmitAngle(d.lastAzimuth, blockAzimuth) {
			d.buffers.OnEmitCrossing()
			tracef("scan complete at azimuth=%d", blockAzimuth)
		}

		d.lastAzimuth = blockAzimuth
	}

	return int32(d.lastAzimuth), nil
}

// convertReturns implements spec 4.F step 4.d for one block group.
func (d *Decoder) convertReturns(v *layout.View, blockID, nReturns int, modeByte uint8, blockAzimuth uint16, packetTsNs uint64, disUnit float64) {
	rawDistances := make([]uint16, nReturns)
	reflectivities := make([]uint8, nReturns)

	for channel := 0; channel < v.NChannels(); channel++ {
		for bo := 0; bo < nReturns; bo++ {
			dist, refl, err := v.ChannelUnit(blockID+bo, channel)
			if err != nil {
				rawDistances[bo] = 0
				continue
			}
			rawDistances[bo] = dist
			reflectivities[bo] = refl
		}

		types, err := returns.ClassifyGroup(modeByte, rawDistances)
		if err != nil {
			continue
		}

		distancesM := make([]float64, nReturns)
		for bo := range rawDistances {
			distancesM[bo] = float64(rawDistances[bo]) * disUnit
		}

		for bo := 0; bo < nReturns; bo++ {
			if rawDistances[bo] == 0 {
				continue
			}
			distance := distancesM[bo]
			if distance < d.model.MinRangeM || distance > d.model.MaxRangeM {
				continue
			}
			if distance < d.cfg.MinRangeM || distance > d.cfg.MaxRangeM {
				continue
			}

			last := bo == nReturns-1
			rt := types[bo]
			if rt == points.ReturnIdentical && !last {
				continue
			}
			if !last && returns.IsDualReturnDuplicate(distancesM, bo, d.cfg.DualReturnDistanceThresholdM) {
				continue
			}

			corrected := d.corr.Corrected(blockAzimuth, channel)
			if !d.corr.AzimuthInFoV(corrected.AzimuthRad) {
				continue
			}

			inCurrentScan := true
			if d.corr.IsInsideOverlap(d.lastAzimuth, blockAzimuth) && d.corr.AzimuthInEmitOverlap(corrected.AzimuthRad) {
				inCurrentScan = false
			}

			scanTsNs := d.buffers.DecodeScanTsNs()
			if !inCurrentScan {
				scanTsNs = d.buffers.OutputScanTsNs()
			}

			offsetNs := d.model.PointOffsetNs(blockID+bo, channel)
			timeStamp := uint32(packetTsNs-scanTsNs) + offsetNs

			xy := distance * corrected.CosElevation
			p := points.Point{
				X:          xy * corrected.SinAzimuth,
				Y:          xy * corrected.CosAzimuth,
				Z:          distance * corrected.SinElevation,
				Intensity:  reflectivities[bo],
				TimeStamp:  timeStamp,
				ReturnType: rt,
				Channel:    uint8(channel),
				Azimuth:    corrected.AzimuthRad,
				Elevation:  corrected.ElevationRad,
				Distance:   distance,
			}

			excluded := false
			for _, f := range d.cfg.PointFilters {
				if f.Excluded(p) {
					excluded = true
					break
				}
			}
			if excluded {
				continue
			}

			d.buffers.Append(p, inCurrentScan)
		}
	}
}

// HasScanned reports whether a scan has completed and is ready to poll.
func (d *Decoder) HasScanned() bool { return d.buffers.HasScanned() }

// PollScan returns the most recently completed scan's points and its
// start timestamp in floating-point seconds.
func (d *Decoder) PollScan() ([]points.Point, float64) {
	return d.buffers.TakeOutput()
}
