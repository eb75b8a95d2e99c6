package ratelimit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func newTestLimiter(limit int, window time.Duration, failOpen bool) (*Limiter, *time.Time) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	l := NewLimiter(NewMemoryCounter(), limit, window, failOpen)
	l.now = func() time.Time { return now }
	return l, &now
}

func TestCheck_AdmitsUpToLimitThenRejects(t *testing.T) {
	const n = 5
	l, now := newTestLimiter(n, time.Minute, false)
	ctx := context.Background()

	for i := 1; i <= n; i++ {
		d := l.Check(ctx, "invite_ratelimit", "1.2.3.4")
		if !d.Allowed {
			t.Fatalf("request %d rejected, want admitted", i)
		}
		if d.Remaining != n-i {
			t.Fatalf("request %d: remaining = %d, want %d", i, d.Remaining, n-i)
		}
		*now = now.Add(time.Second)
	}

	d := l.Check(ctx, "invite_ratelimit", "1.2.3.4")
	if d.Allowed {
		t.Fatal("request over limit admitted")
	}
	if d.Remaining != 0 {
		t.Fatalf("rejected remaining = %d, want 0", d.Remaining)
	}
	if d.Limit != n {
		t.Fatalf("limit = %d, want %d", d.Limit, n)
	}
}

func TestCheck_WindowElapseResetsCounter(t *testing.T) {
	const n = 3
	l, now := newTestLimiter(n, time.Minute, false)
	ctx := context.Background()

	for i := 0; i < n; i++ {
		if d := l.Check(ctx, "s", "k"); !d.Allowed {
			t.Fatalf("fill request %d rejected", i+1)
		}
	}
	if d := l.Check(ctx, "s", "k"); d.Allowed {
		t.Fatal("over-limit request admitted before window elapsed")
	}

	*now = now.Add(time.Minute + time.Second)
	for i := 0; i < n; i++ {
		if d := l.Check(ctx, "s", "k"); !d.Allowed {
			t.Fatalf("post-reset request %d rejected", i+1)
		}
	}
}

func TestCheck_ResetAtTracksOldestHit(t *testing.T) {
	l, now := newTestLimiter(2, time.Minute, false)
	ctx := context.Background()
	start := *now

	l.Check(ctx, "s", "k")
	*now = now.Add(10 * time.Second)
	d := l.Check(ctx, "s", "k")

	want := start.Add(time.Minute)
	if !d.ResetAt.Equal(want) {
		t.Fatalf("resetAt = %v, want %v", d.ResetAt, want)
	}
}

func TestCheck_KeysAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(1, time.Minute, false)
	ctx := context.Background()

	if d := l.Check(ctx, "s", "1.1.1.1"); !d.Allowed {
		t.Fatal("first key rejected")
	}
	if d := l.Check(ctx, "s", "2.2.2.2"); !d.Allowed {
		t.Fatal("second key rejected; keys not independent")
	}
}

func TestCheck_ConcurrentLastSlotAdmitsExactlyOne(t *testing.T) {
	const n = 5
	l, _ := newTestLimiter(n, time.Minute, false)
	l.now = time.Now
	ctx := context.Background()

	// Fill all but one slot.
	for i := 0; i < n-1; i++ {
		if d := l.Check(ctx, "s", "k"); !d.Allowed {
			t.Fatalf("fill request %d rejected", i+1)
		}
	}

	var wg sync.WaitGroup
	results := make([]bool, 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = l.Check(ctx, "s", "k").Allowed
		}(i)
	}
	wg.Wait()

	admitted := 0
	for _, ok := range results {
		if ok {
			admitted++
		}
	}
	if admitted != 1 {
		t.Fatalf("admitted %d of 2 racing requests for the last slot, want exactly 1", admitted)
	}
}

type failingCounter struct{}

func (failingCounter) Hit(context.Context, string, time.Time, time.Duration) (int64, time.Time, error) {
	return 0, time.Time{}, errors.New("store down")
}

func TestCheck_CounterFailurePolicy(t *testing.T) {
	ctx := context.Background()

	closed := NewLimiter(failingCounter{}, 5, time.Minute, false)
	if d := closed.Check(ctx, "s", "k"); d.Allowed {
		t.Fatal("fail-closed limiter admitted during outage")
	}

	open := NewLimiter(failingCounter{}, 5, time.Minute, true)
	if d := open.Check(ctx, "s", "k"); !d.Allowed {
		t.Fatal("fail-open limiter rejected during outage")
	}
}

func TestKey_AbsentClientTokenIsDeterministic(t *testing.T) {
	if Key("invite_ratelimit", "") != "invite_ratelimit_unknown" {
		t.Fatalf("unexpected key for absent token: %q", Key("invite_ratelimit", ""))
	}
	if Key("invite_ratelimit", "1.2.3.4") != "invite_ratelimit_1.2.3.4" {
		t.Fatalf("unexpected key: %q", Key("invite_ratelimit", "1.2.3.4"))
	}
}
