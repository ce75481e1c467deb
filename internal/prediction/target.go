package prediction

import "time"

// ResolveTarget computes the absolute instant of the sunrise forecast
// target: the next occurrence of 6:00 AM IST relative to now.
//
// Policy ("next-occurrence"): if the current IST civil hour is before 6 AM,
// today's 6:00 AM is still ahead and is the target; otherwise the target is
// tomorrow's 6:00 AM. The alternative "tomorrow-fixed" policy would, between
// midnight and 6 AM, skip the sunrise the caller can still shoot, so it is
// not used.
//
// The returned instant is UTC, directly comparable to upstream forecast
// timestamps. time.Date with the fixed IST zone performs exact ±5h30m
// offset arithmetic; there is no DST or locale parsing involved.
func ResolveTarget(now time.Time) time.Time {
	ist := now.In(IST)

	day := ist.Day()
	if ist.Hour() >= TargetHourIST {
		day++ // time.Date normalizes day overflow across month/year ends
	}

	target := time.Date(ist.Year(), ist.Month(), day, TargetHourIST, 0, 0, 0, IST)
	return target.UTC()
}
