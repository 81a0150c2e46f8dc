package request

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestProviderBackoff_ExponentialDelay(t *testing.T) {
	tests := []struct {
		name      string
		failures  int
		baseDelay time.Duration
		maxDelay  time.Duration
		wantMinMs int64
		wantMaxMs int64
	}{
		{"First failure", 1, 1 * time.Second, 60 * time.Second, 950, 1200},
		{"Second failure", 2, 1 * time.Second, 60 * time.Second, 1950, 2400},
		{"Third failure", 3, 1 * time.Second, 60 * time.Second, 3950, 4800},
		{"Max cap hit", 10, 1 * time.Second, 60 * time.Second, 59950, 66000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewProviderBackoff(tt.baseDelay, tt.maxDelay)

			for i := 0; i < tt.failures; i++ {
				b.RecordFailure("wikipedia")
			}

			fc, nextAllowed := b.GetState("wikipedia")
			if fc != tt.failures {
				t.Errorf("failureCount = %d, want %d", fc, tt.failures)
			}

			// Allow some tolerance for jitter and timing
			delayMs := time.Until(nextAllowed).Milliseconds()
			if delayMs < tt.wantMinMs || delayMs > tt.wantMaxMs {
				t.Errorf("delay = %dms, want between %dms and %dms", delayMs, tt.wantMinMs, tt.wantMaxMs)
			}
		})
	}
}

func TestProviderBackoff_GradualRecovery(t *testing.T) {
	b := NewProviderBackoff(1*time.Second, 60*time.Second)

	b.RecordFailure("wikipedia")
	b.RecordFailure("wikipedia")
	b.RecordFailure("wikipedia")

	fc, _ := b.GetState("wikipedia")
	if fc != 3 {
		t.Errorf("after 3 failures, count = %d, want 3", fc)
	}

	b.RecordSuccess("wikipedia")
	fc, _ = b.GetState("wikipedia")
	if fc != 2 {
		t.Errorf("after 1 success, count = %d, want 2", fc)
	}

	b.RecordSuccess("wikipedia")
	b.RecordSuccess("wikipedia")
	fc, next := b.GetState("wikipedia")
	if fc != 0 || !next.IsZero() {
		t.Errorf("after full recovery, count = %d next = %v, want 0 and zero time", fc, next)
	}
}

func TestProviderBackoff_IsolatedProviders(t *testing.T) {
	b := NewProviderBackoff(1*time.Second, 60*time.Second)

	b.RecordFailure("wikimedia")
	b.RecordFailure("wikimedia")

	fc1, _ := b.GetState("wikimedia")
	fc2, _ := b.GetState("wikipedia")

	if fc1 != 2 {
		t.Errorf("wikimedia failures = %d, want 2", fc1)
	}
	if fc2 != 0 {
		t.Errorf("wikipedia failures = %d, want 0 (isolated)", fc2)
	}
}

func TestProviderBackoff_Wait(t *testing.T) {
	b := NewProviderBackoff(30*time.Millisecond, time.Second)

	// No state: immediate.
	start := time.Now()
	if err := b.Wait(context.Background(), "wikipedia"); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if time.Since(start) > 20*time.Millisecond {
		t.Error("Wait without backoff state should not block")
	}

	b.RecordFailure("wikipedia")
	start = time.Now()
	if err := b.Wait(context.Background(), "wikipedia"); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if time.Since(start) < 20*time.Millisecond {
		t.Error("Wait returned before the backoff window passed")
	}
}

func TestProviderBackoff_WaitCanceled(t *testing.T) {
	b := NewProviderBackoff(time.Minute, time.Hour)
	b.RecordFailure("wikipedia")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := b.Wait(ctx, "wikipedia"); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait() error = %v, want deadline exceeded", err)
	}
}
