package sched

import (
	"testing"
	"time"
)

func TestAfterRunsOnceWhenDue(t *testing.T) {
	s := New()
	runs := 0
	s.After(1, "expire", 5*time.Second, func() { runs++ })

	s.Advance(4 * time.Second)
	if runs != 0 {
		t.Fatalf("ran early")
	}
	s.Advance(time.Second)
	if runs != 1 {
		t.Fatalf("runs: got=%d want=1", runs)
	}
	s.Advance(10 * time.Second)
	if runs != 1 || s.Len() != 0 {
		t.Fatalf("one-shot repeated: runs=%d pending=%d", runs, s.Len())
	}
}

func TestEveryRepeatsUntilFalse(t *testing.T) {
	s := New()
	var elapsed []time.Duration
	s.Every(1, "watchdog", 500*time.Millisecond, func(dt time.Duration) bool {
		elapsed = append(elapsed, dt)
		return len(elapsed) < 3
	})

	for i := 0; i < 10; i++ {
		s.Advance(250 * time.Millisecond)
	}
	if len(elapsed) != 3 {
		t.Fatalf("runs: got=%d want=3", len(elapsed))
	}
	for _, dt := range elapsed {
		if dt != 500*time.Millisecond {
			t.Fatalf("dt: got=%v want=500ms", dt)
		}
	}
	if s.Scheduled(1, "watchdog") {
		t.Fatalf("stopped task still scheduled")
	}
}

func TestZeroPeriodRunsOncePerAdvance(t *testing.T) {
	s := New()
	runs := 0
	s.Every(1, "fade", 0, func(time.Duration) bool {
		runs++
		return true
	})
	s.Advance(16 * time.Millisecond)
	s.Advance(16 * time.Millisecond)
	if runs != 2 {
		t.Fatalf("runs: got=%d want=2", runs)
	}
}

func TestCancelOwnerStopsAllTasks(t *testing.T) {
	s := New()
	ran := false
	s.After(7, "a", time.Second, func() { ran = true })
	s.Every(7, "b", time.Second, func(time.Duration) bool { ran = true; return true })
	s.After(8, "a", time.Second, func() {})

	s.CancelOwner(7)
	if s.Pending(7) != 0 || s.Pending(8) != 1 {
		t.Fatalf("pending: owner7=%d owner8=%d", s.Pending(7), s.Pending(8))
	}
	s.Advance(2 * time.Second)
	if ran {
		t.Fatalf("cancelled task ran")
	}
}

func TestScheduleSameKeyReplaces(t *testing.T) {
	s := New()
	first, second := 0, 0
	s.After(1, "expire", time.Second, func() { first++ })
	s.After(1, "expire", 2*time.Second, func() { second++ })

	s.Advance(3 * time.Second)
	if first != 0 || second != 1 {
		t.Fatalf("first=%d second=%d", first, second)
	}
}

func TestCancelFromInsideRepeatingTask(t *testing.T) {
	s := New()
	runs := 0
	s.Every(1, "watchdog", time.Second, func(time.Duration) bool {
		runs++
		s.CancelOwner(1)
		return true
	})
	s.Advance(time.Second)
	s.Advance(time.Second)
	if runs != 1 {
		t.Fatalf("runs: got=%d want=1", runs)
	}
}

func TestReplacementDuringRunIsKept(t *testing.T) {
	s := New()
	oldRuns, newRuns := 0, 0
	s.Every(1, "watchdog", time.Second, func(time.Duration) bool {
		oldRuns++
		s.Every(1, "watchdog", time.Second, func(time.Duration) bool {
			newRuns++
			return true
		})
		return false
	})

	s.Advance(time.Second)
	if !s.Scheduled(1, "watchdog") {
		t.Fatalf("replacement dropped when the old task stopped")
	}
	s.Advance(time.Second)
	if oldRuns != 1 || newRuns != 1 {
		t.Fatalf("old=%d new=%d", oldRuns, newRuns)
	}
}

func TestTasksRunInDueOrder(t *testing.T) {
	s := New()
	var order []string
	s.After(1, "late", 300*time.Millisecond, func() { order = append(order, "late") })
	s.After(2, "early", 100*time.Millisecond, func() { order = append(order, "early") })
	s.After(3, "tie", 100*time.Millisecond, func() { order = append(order, "tie") })

	s.Advance(time.Second)
	want := []string{"early", "tie", "late"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order: got=%v want=%v", order, want)
		}
	}
}
