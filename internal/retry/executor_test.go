package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

type stubClassifier struct{ transient bool }

func (c *stubClassifier) IsTransient(err error) bool { return c.transient }

type stubStrategy struct {
	delay       time.Duration
	maxAttempts int
}

func (s *stubStrategy) NextDelay(attempt int) time.Duration { return s.delay }
func (s *stubStrategy) MaxAttempts() int                    { return s.maxAttempts }

func TestExecutor_SuccessOnFirstAttempt(t *testing.T) {
	executor := NewExecutor(&stubClassifier{transient: true}, &stubStrategy{maxAttempts: 3})

	calls := 0
	err := executor.Execute(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	})

	if err != nil {
		t.Fatalf("Execute() = %v, want nil", err)
	}
	if calls != 1 {
		t.Errorf("operation called %d times, want 1", calls)
	}
}

func TestExecutor_FatalErrorNotRetried(t *testing.T) {
	executor := NewExecutor(&stubClassifier{transient: false}, &stubStrategy{maxAttempts: 3})

	fatal := errors.New("syntax error")
	calls := 0
	err := executor.Execute(context.Background(), func(ctx context.Context) error {
		calls++
		return fatal
	})

	if !errors.Is(err, fatal) {
		t.Fatalf("Execute() = %v, want %v", err, fatal)
	}
	if calls != 1 {
		t.Errorf("operation called %d times, want 1", calls)
	}
}

func TestExecutor_TransientErrorRetriedUntilSuccess(t *testing.T) {
	executor := NewExecutor(&stubClassifier{transient: true}, &stubStrategy{maxAttempts: 5})

	calls := 0
	err := executor.Execute(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("Execute() = %v, want nil", err)
	}
	if calls != 3 {
		t.Errorf("operation called %d times, want 3", calls)
	}
}

func TestExecutor_ExhaustsAttempts(t *testing.T) {
	executor := NewExecutor(&stubClassifier{transient: true}, &stubStrategy{maxAttempts: 2})

	transient := errors.New("connection refused")
	calls := 0
	err := executor.Execute(context.Background(), func(ctx context.Context) error {
		calls++
		return transient
	})

	if !errors.Is(err, transient) {
		t.Fatalf("Execute() = %v, want %v", err, transient)
	}
	// Initial attempt plus two retries.
	if calls != 3 {
		t.Errorf("operation called %d times, want 3", calls)
	}
}

func TestExecutor_ContextCancellationStopsRetries(t *testing.T) {
	executor := NewExecutor(
		&stubClassifier{transient: true},
		&stubStrategy{maxAttempts: 10, delay: 10 * time.Second},
	)

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	go func() {
		// Cancel while the executor waits out the first backoff delay.
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	err := executor.Execute(ctx, func(ctx context.Context) error {
		calls++
		return errors.New("connection refused")
	})

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Execute() = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("operation called %d times, want 1", calls)
	}
}

func TestExecutor_OnRetryCallback(t *testing.T) {
	base := NewExecutor(&stubClassifier{transient: true}, &stubStrategy{maxAttempts: 2})

	var attempts []int
	executor := base.WithOnRetry(func(attempt int, err error, delay time.Duration) {
		attempts = append(attempts, attempt)
	})

	executor.Execute(context.Background(), func(ctx context.Context) error {
		return errors.New("connection refused")
	})

	if len(attempts) != 2 || attempts[0] != 0 || attempts[1] != 1 {
		t.Errorf("onRetry attempts = %v, want [0 1]", attempts)
	}
}

func TestNewExecutor_PanicsOnNilDependencies(t *testing.T) {
	assertPanics := func(name string, fn func()) {
		defer func() {
			if recover() == nil {
				t.Errorf("%s: expected panic", name)
			}
		}()
		fn()
	}

	assertPanics("nil classifier", func() { NewExecutor(nil, &stubStrategy{}) })
	assertPanics("nil strategy", func() { NewExecutor(&stubClassifier{}, nil) })
}
