// Package prediction implements the sunrise prediction pipeline: the
// availability window gate, the target-instant resolver, the
// nearest-forecast selector, and the visibility scoring engine, composed by
// the Service.
//
// All civil-time reasoning uses India Standard Time as a fixed UTC+5:30
// offset. IST has no daylight saving, so the conversion is exact constant
// arithmetic; no locale or zone-database lookups are involved.
package prediction

import (
	"time"

	"seasidebeacon/internal/types"
)

// IST is India Standard Time, a fixed UTC+5:30 offset (19800 seconds).
var IST = time.FixedZone("IST", 5*3600+30*60)

// Availability window boundaries, in IST civil hours. Predictions are served
// from 18:00 (inclusive) through 05:59; between 06:00 and 17:59 the pipeline
// is gated closed.
const (
	windowOpenHour  = 18
	windowCloseHour = 6
)

// TargetHourIST is the civil hour of the sunrise forecast target (6:00 AM).
const TargetHourIST = 6

// Available reports whether predictions may be served at the given instant.
// The window is [18:00, 24:00) ∪ [00:00, 06:00) in IST civil time: hour 18
// exactly is open, hour 6 exactly is closed.
func Available(now time.Time) bool {
	h := now.In(IST).Hour()
	return h >= windowOpenHour || h < windowCloseHour
}

// UntilAvailable returns the remaining wait before the window opens at 6 PM
// IST. The second return is false when predictions are already available
// (zero wait).
func UntilAvailable(now time.Time) (types.Wait, bool) {
	ist := now.In(IST)
	if Available(now) {
		return types.Wait{}, false
	}
	return types.Wait{
		Hours:   windowOpenHour - ist.Hour() - 1,
		Minutes: 60 - ist.Minute(),
	}, true
}
