package retry

import (
	"testing"
	"time"
)

func fixedJitter(v float64) func() float64 {
	return func() float64 { return v }
}

func TestExponentialBackoff_GrowsAndCaps(t *testing.T) {
	b := NewExponentialBackoff(5,
		WithInitialDelay(100*time.Millisecond),
		WithMaxDelay(1*time.Second),
		WithMultiplier(2.0),
		WithJitter(0), // deterministic
	)

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 100 * time.Millisecond},
		{1, 200 * time.Millisecond},
		{2, 400 * time.Millisecond},
		{3, 800 * time.Millisecond},
		{4, 1 * time.Second}, // capped
		{10, 1 * time.Second},
	}

	for _, tt := range tests {
		if got := b.NextDelay(tt.attempt); got != tt.want {
			t.Errorf("NextDelay(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestExponentialBackoff_JitterBounds(t *testing.T) {
	base := 100 * time.Millisecond

	low := NewExponentialBackoff(3,
		WithInitialDelay(base),
		WithJitter(0.1),
		WithJitterFunc(fixedJitter(0)), // lowest end of the jitter window
	)
	if got := low.NextDelay(0); got != 90*time.Millisecond {
		t.Errorf("low jitter NextDelay(0) = %v, want 90ms", got)
	}

	high := NewExponentialBackoff(3,
		WithInitialDelay(base),
		WithJitter(0.1),
		WithJitterFunc(fixedJitter(1)), // highest end
	)
	if got := high.NextDelay(0); got != 110*time.Millisecond {
		t.Errorf("high jitter NextDelay(0) = %v, want 110ms", got)
	}
}

func TestExponentialBackoff_NegativeAttemptClamped(t *testing.T) {
	b := NewExponentialBackoff(3, WithInitialDelay(50*time.Millisecond), WithJitter(0))
	if got := b.NextDelay(-5); got != 50*time.Millisecond {
		t.Errorf("NextDelay(-5) = %v, want 50ms", got)
	}
}

func TestExponentialBackoff_MaxAttempts(t *testing.T) {
	if got := NewExponentialBackoff(7).MaxAttempts(); got != 7 {
		t.Errorf("MaxAttempts() = %d, want 7", got)
	}
	if got := NewExponentialBackoff(-1).MaxAttempts(); got != -1 {
		t.Errorf("MaxAttempts() = %d, want -1", got)
	}
}
