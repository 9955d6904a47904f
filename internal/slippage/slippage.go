// Package slippage computes the scheduled fill timestamp for an order
// under the host's selected slippage model.
package slippage

import (
	"github.com/backforge/backforge/internal/manifest"
	"github.com/backforge/backforge/pkg/models"
)

// ScheduleFillTime computes the nanosecond timestamp at which an order
// should fill, given the current bar's timestamp and volume.
//
//   - none: the current bar timestamp (fill this bar).
//   - time_based: now + slippage_ms * 1e6 ns.
//   - time_volume_based: now + slippage * (order.qty / bar.volume) * 1e9 ns,
//     falling back to now if the bar's volume is zero (unknown).
func ScheduleFillTime(model manifest.SlippageModel, slippage float64, order models.Order, barTsNs int64, barVolume int64) int64 {
	switch model {
	case manifest.SlippageTimeBased:
		return barTsNs + int64(slippage*1e6)
	case manifest.SlippageTimeVolumeBased:
		if barVolume <= 0 {
			return barTsNs
		}
		delaySec := slippage * (order.Quantity / float64(barVolume))
		return barTsNs + int64(delaySec*1e9)
	case manifest.SlippageNone:
		return barTsNs
	default:
		return barTsNs
	}
}
