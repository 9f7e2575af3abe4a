// Package returns classifies LiDAR echoes within a block group
// (single/strongest/last/first/dual) and detects duplicate returns so
// the Point Emitter can deduplicate multi-return groups. Grounded on
// the return-mode handling in hesai_decoder.hpp's convertReturns and
// hesai_packet.hpp's return-mode table (Hesai firmware identifies the
// active mode with a single tail byte).
package returns

import (
	"fmt"

	"github.com/banshee-data/lidar-decoder/internal/lidar/points"
)

// Mode is the packet tail's return-mode identifier byte.
type Mode uint8

// Known Hesai Pandar return-mode codes.
const (
	ModeSingleFirst        Mode = 0x33
	ModeSingleStrongest    Mode = 0x37
	ModeSingleLast         Mode = 0x38
	ModeDualLastStrongest  Mode = 0x39
	ModeDualFirstLast      Mode = 0x3B
	ModeDualFirstStrongest Mode = 0x3C
)

// modeTable maps a return-mode code to the base return type of each
// block offset within a group (length == n_returns for that mode).
var modeTable = map[Mode][]points.ReturnType{
	ModeSingleFirst:        {points.ReturnFirst},
	ModeSingleStrongest:    {points.ReturnStrongest},
	ModeSingleLast:         {points.ReturnLast},
	ModeDualLastStrongest:  {points.ReturnStrongest, points.ReturnLast},
	ModeDualFirstLast:      {points.ReturnFirst, points.ReturnLast},
	ModeDualFirstStrongest: {points.ReturnFirst, points.ReturnStrongest},
}

// NReturns returns the number of returns (block stride) for the given
// mode code.
func NReturns(code uint8) (int, error) {
	types, ok := modeTable[Mode(code)]
	if !ok {
		return 0, fmt.Errorf("returns: unknown return-mode code 0x%02x", code)
	}
	return len(types), nil
}

// ClassifyGroup returns the return type for each block offset in a
// same-channel return group, given their raw distances. A return whose
// raw distance exactly matches another return's in the same group is
// classified IDENTICAL regardless of the mode table, per spec 4.D's
// dedup rule; otherwise the mode table's base type applies.
func ClassifyGroup(code uint8, rawDistances []uint16) ([]points.ReturnType, error) {
	base, ok := modeTable[Mode(code)]
	if !ok {
		return nil, fmt.Errorf("returns: unknown return-mode code 0x%02x", code)
	}
	if len(rawDistances) != len(base) {
		return nil, fmt.Errorf("returns: group size %d does not match mode 0x%02x (expected %d)", len(rawDistances), code, len(base))
	}

	out := make([]points.ReturnType, len(rawDistances))
	copy(out, base)
	for i := range rawDistances {
		if rawDistances[i] == 0 {
			continue
		}
		for j := range rawDistances {
			if i == j || rawDistances[j] == 0 {
				continue
			}
			if rawDistances[i] == rawDistances[j] {
				out[i] = points.ReturnIdentical
				break
			}
		}
	}
	return out, nil
}

// IsDualReturnDuplicate reports whether the return at idx should be
// dropped because another return in the group (at a different index)
// lies within distanceThresholdM of it. The decoder only calls this for
// indices that are not the last in the group, matching spec 4.D rule 2.
func IsDualReturnDuplicate(distancesM []float64, idx int, distanceThresholdM float64) bool {
	d := distancesM[idx]
	for j := range distancesM {
		if j == idx {
			continue
		}
		diff := distancesM[j] - d
		if diff < 0 {
			diff = -diff
		}
		if diff < distanceThresholdM {
			return true
		}
	}
	return false
}
