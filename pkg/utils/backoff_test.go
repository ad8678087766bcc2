package utils

import (
	"testing"
	"time"
)

func TestConstantBackoff(t *testing.T) {
	cb := NewConstantBackoff(100 * time.Millisecond)
	for attempt := 0; attempt < 5; attempt++ {
		if got := cb.NextDelay(attempt); got != 100*time.Millisecond {
			t.Fatalf("attempt %d: delay = %v, want 100ms", attempt, got)
		}
	}
}

func TestExponentialBackoff(t *testing.T) {
	eb := NewExponentialBackoff(100*time.Millisecond, 1*time.Second, 2.0)

	if got := eb.NextDelay(0); got != 100*time.Millisecond {
		t.Fatalf("attempt 0: delay = %v, want 100ms", got)
	}
	if got := eb.NextDelay(1); got != 200*time.Millisecond {
		t.Fatalf("attempt 1: delay = %v, want 200ms", got)
	}
	if got := eb.NextDelay(10); got != 1*time.Second {
		t.Fatalf("attempt 10: delay = %v, want cap 1s", got)
	}
}

func TestExponentialBackoffDefaultMultiplier(t *testing.T) {
	eb := NewExponentialBackoff(50*time.Millisecond, 1*time.Second, 0)
	if eb.Multiplier != 2.0 {
		t.Fatalf("multiplier = %f, want default 2.0", eb.Multiplier)
	}
}
