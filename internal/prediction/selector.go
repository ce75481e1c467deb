package prediction

import (
	"time"

	"seasidebeacon/internal/types"
)

// SelectNearest returns the forecast record whose timestamp is closest to
// target. The scan is linear and stable: the first record with the smallest
// absolute difference wins, so ties resolve deterministically by input
// order. No interpolation or extrapolation occurs even when every record is
// hours from the target.
//
// Precondition: records is non-empty. The second return is false when the
// precondition is violated.
func SelectNearest(records []types.HourlyForecast, target time.Time) (types.HourlyForecast, bool) {
	if len(records) == 0 {
		return types.HourlyForecast{}, false
	}

	best := records[0]
	bestDiff := absDuration(records[0].Timestamp.Sub(target))

	for _, rec := range records[1:] {
		diff := absDuration(rec.Timestamp.Sub(target))
		if diff < bestDiff {
			bestDiff = diff
			best = rec
		}
	}

	return best, true
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
