package workers

import (
	"testing"
	"time"

	"go.uber.org/zap"
)

func mustLoc(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Fatalf("LoadLocation(%s): %v", name, err)
	}
	return loc
}

func TestEventCleanup_Cutoff(t *testing.T) {
	loc := mustLoc(t, "Asia/Kolkata")
	w := &EventCleanup{loc: loc}

	// 2026-03-10 18:30 UTC is 2026-03-11 00:00 IST, so the boundary is
	// already the 11th in local terms.
	now := time.Date(2026, 3, 10, 18, 30, 0, 0, time.UTC)
	cutoff := w.Cutoff(now)

	want := time.Date(2026, 3, 11, 0, 0, 0, 0, loc)
	if !cutoff.Equal(want) {
		t.Errorf("Cutoff: got %v, want %v", cutoff, want)
	}

	// An event earlier the same local day is past the boundary; one later
	// local the same day is not.
	pastEvent := time.Date(2026, 3, 10, 23, 0, 0, 0, loc)
	if !pastEvent.Before(cutoff) {
		t.Error("event before local midnight should fall past the cutoff")
	}
	todayEvent := time.Date(2026, 3, 11, 9, 0, 0, 0, loc)
	if todayEvent.Before(cutoff) {
		t.Error("event on the current local day must survive")
	}
}

func TestEventCleanup_NextMidnight(t *testing.T) {
	loc := mustLoc(t, "Asia/Kolkata")
	w := &EventCleanup{loc: loc}

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, loc)
	next := w.nextMidnight(now)

	want := time.Date(2026, 3, 11, 0, 0, 0, 0, loc)
	if !next.Equal(want) {
		t.Errorf("nextMidnight: got %v, want %v", next, want)
	}
	if !next.After(now) {
		t.Error("next midnight must be in the future")
	}

	// Just before midnight still rolls to the next day, never fires twice
	// for the same boundary.
	late := time.Date(2026, 3, 10, 23, 59, 59, 0, loc)
	if got := w.nextMidnight(late); !got.Equal(want) {
		t.Errorf("nextMidnight near boundary: got %v, want %v", got, want)
	}
}

func TestEventCleanup_StartStop(t *testing.T) {
	loc := mustLoc(t, "UTC")
	w := NewEventCleanup(nil, nil, zap.NewNop(), loc)
	w.Start()
	w.Stop()
}
