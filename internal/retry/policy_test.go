package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

// TestDefaultPolicy verifies the baseline default values.
func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	if p.Mode != BackoffLinear {
		t.Fatalf("expected linear default mode got %s", p.Mode)
	}
	if p.Initial != time.Second {
		t.Fatalf("expected initial 1s got %v", p.Initial)
	}
	if p.Max != 30*time.Second {
		t.Fatalf("expected max 30s got %v", p.Max)
	}
	if p.MaxRetries != 2 {
		t.Fatalf("expected max retries 2 got %d", p.MaxRetries)
	}
}

// TestNewPolicyOverrides checks override precedence and clamping when initial > max.
func TestNewPolicyOverrides(t *testing.T) {
	p := NewPolicy(BackoffFixed, 5*time.Second, 2*time.Second, 5)
	if p.Initial != 2*time.Second {
		t.Fatalf("expected clamped initial 2s got %v", p.Initial)
	}
	if p.Max != 2*time.Second {
		t.Fatalf("expected max 2s got %v", p.Max)
	}
	if p.Mode != BackoffFixed {
		t.Fatalf("expected fixed mode got %s", p.Mode)
	}
	if p.MaxRetries != 5 {
		t.Fatalf("expected maxRetries 5 got %d", p.MaxRetries)
	}
}

// TestDelayModes ensures fixed, linear, exponential behave and respect cap.
func TestDelayModes(t *testing.T) {
	fixed := NewPolicy(BackoffFixed, time.Second, 10*time.Second, 3)
	for i := 1; i <= 3; i++ {
		if d := fixed.Delay(i); d != time.Second {
			t.Fatalf("fixed delay attempt %d = %v", i, d)
		}
	}

	linear := NewPolicy(BackoffLinear, time.Second, 2*time.Second, 3)
	if d := linear.Delay(1); d != time.Second {
		t.Fatalf("linear delay 1 = %v", d)
	}
	if d := linear.Delay(5); d != 2*time.Second {
		t.Fatalf("linear delay not capped: %v", d)
	}

	exp := NewPolicy(BackoffExponential, time.Second, 3*time.Second, 5)
	if d := exp.Delay(1); d != time.Second {
		t.Fatalf("exp delay 1 = %v", d)
	}
	if d := exp.Delay(2); d != 2*time.Second {
		t.Fatalf("exp delay 2 = %v", d)
	}
	if d := exp.Delay(4); d != 3*time.Second {
		t.Fatalf("exp delay not capped: %v", d)
	}

	if d := exp.Delay(0); d != 0 {
		t.Fatalf("delay for attempt 0 = %v", d)
	}
}

// TestDoRetriesUntilSuccess exercises the retry loop.
func TestDoRetriesUntilSuccess(t *testing.T) {
	p := NewPolicy(BackoffFixed, time.Millisecond, time.Millisecond, 3)

	attempts := 0
	err := p.Do(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if attempts != 3 {
		t.Fatalf("attempts = %d, want 3", attempts)
	}
}

// TestDoGivesUpAfterMaxRetries verifies the last error surfaces.
func TestDoGivesUpAfterMaxRetries(t *testing.T) {
	p := NewPolicy(BackoffFixed, time.Millisecond, time.Millisecond, 2)

	boom := errors.New("boom")
	attempts := 0
	err := p.Do(context.Background(), func() error {
		attempts++
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Do error = %v, want boom", err)
	}
	if attempts != 3 {
		t.Fatalf("attempts = %d, want initial try plus 2 retries", attempts)
	}
}
