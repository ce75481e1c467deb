package prediction

import (
	"testing"
	"time"
)

func TestResolveTarget_EveningPicksTomorrow(t *testing.T) {
	// 7:30 PM IST on Jan 14: the next 6 AM is Jan 15.
	now := istTime(2026, 1, 14, 19, 30)
	want := istTime(2026, 1, 15, 6, 0)

	if got := ResolveTarget(now); !got.Equal(want) {
		t.Errorf("ResolveTarget = %v, want %v", got, want)
	}
}

func TestResolveTarget_PreDawnPicksToday(t *testing.T) {
	// 4 AM IST on Jan 15: today's 6 AM is still ahead.
	now := istTime(2026, 1, 15, 4, 0)
	want := istTime(2026, 1, 15, 6, 0)

	if got := ResolveTarget(now); !got.Equal(want) {
		t.Errorf("ResolveTarget = %v, want %v", got, want)
	}
}

func TestResolveTarget_ExactlySixAMPicksTomorrow(t *testing.T) {
	now := istTime(2026, 1, 15, 6, 0)
	want := istTime(2026, 1, 16, 6, 0)

	if got := ResolveTarget(now); !got.Equal(want) {
		t.Errorf("ResolveTarget = %v, want %v", got, want)
	}
}

func TestResolveTarget_MonthRollover(t *testing.T) {
	now := istTime(2026, 1, 31, 20, 30)
	want := istTime(2026, 2, 1, 6, 0)

	if got := ResolveTarget(now); !got.Equal(want) {
		t.Errorf("ResolveTarget = %v, want %v", got, want)
	}
}

func TestResolveTarget_YearRollover(t *testing.T) {
	now := istTime(2026, 12, 31, 22, 0)
	want := istTime(2027, 1, 1, 6, 0)

	if got := ResolveTarget(now); !got.Equal(want) {
		t.Errorf("ResolveTarget = %v, want %v", got, want)
	}
}

func TestResolveTarget_ReturnsUTC(t *testing.T) {
	got := ResolveTarget(istTime(2026, 1, 14, 19, 0))
	if got.Location() != time.UTC {
		t.Errorf("expected UTC instant, got zone %v", got.Location())
	}
	// 6 AM IST is 00:30 UTC.
	if got.Hour() != 0 || got.Minute() != 30 {
		t.Errorf("expected 00:30 UTC, got %02d:%02d", got.Hour(), got.Minute())
	}
}
