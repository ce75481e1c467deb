package prediction

import (
	"testing"
	"time"
)

// istTime builds an instant from IST civil components and returns it in UTC,
// the form callers actually pass around.
func istTime(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, IST).UTC()
}

func TestAvailable(t *testing.T) {
	cases := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"window opens at 6 PM exactly", istTime(2026, 1, 14, 18, 0), true},
		{"late evening", istTime(2026, 1, 14, 22, 15), true},
		{"just before midnight", istTime(2026, 1, 14, 23, 59), true},
		{"midnight", istTime(2026, 1, 15, 0, 0), true},
		{"pre-dawn", istTime(2026, 1, 15, 4, 30), true},
		{"last open minute", istTime(2026, 1, 15, 5, 59), true},
		{"window closes at 6 AM exactly", istTime(2026, 1, 15, 6, 0), false},
		{"mid-morning", istTime(2026, 1, 15, 10, 30), false},
		{"noon", istTime(2026, 1, 15, 12, 0), false},
		{"last closed minute", istTime(2026, 1, 15, 17, 59), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Available(tc.now); got != tc.want {
				t.Errorf("Available(%v) = %v, want %v", tc.now.In(IST), got, tc.want)
			}
		})
	}
}

func TestAvailable_ZoneIndependent(t *testing.T) {
	// The same instant expressed in a different zone must gate identically.
	inUTC := istTime(2026, 1, 14, 19, 0)
	inNY := inUTC.In(time.FixedZone("EST", -5*3600))

	if Available(inUTC) != Available(inNY) {
		t.Error("expected gating to depend on the instant, not its zone representation")
	}
}

func TestUntilAvailable_OpenWindow(t *testing.T) {
	wait, gated := UntilAvailable(istTime(2026, 1, 14, 19, 0))
	if gated {
		t.Error("expected no wait during the open window")
	}
	if wait.Hours != 0 || wait.Minutes != 0 {
		t.Errorf("expected zero wait, got %+v", wait)
	}
}

func TestUntilAvailable_ClosedWindow(t *testing.T) {
	// 10:30 AM IST: 7h30m until the 6 PM opening.
	wait, gated := UntilAvailable(istTime(2026, 1, 15, 10, 30))
	if !gated {
		t.Fatal("expected gated wait at mid-morning")
	}
	if wait.Hours != 7 || wait.Minutes != 30 {
		t.Errorf("expected 7h30m, got %+v", wait)
	}
}

func TestUntilAvailable_JustAfterClose(t *testing.T) {
	// 6:01 AM IST: 11h59m until 6 PM.
	wait, gated := UntilAvailable(istTime(2026, 1, 15, 6, 1))
	if !gated {
		t.Fatal("expected gated wait just after close")
	}
	if wait.Hours != 11 || wait.Minutes != 59 {
		t.Errorf("expected 11h59m, got %+v", wait)
	}
}
