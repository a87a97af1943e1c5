package tokengate

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestRefreshConcurrencySingleWinner(t *testing.T) {
	engine, _, done := newTestEngine(t, testConfig())
	defer done()

	pair, err := engine.Login(context.Background(), "alice", "correct-password-123")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	const n = 16
	var wg sync.WaitGroup
	wg.Add(n)

	results := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := engine.Refresh(context.Background(), pair.RefreshToken)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	success := 0
	fail := 0
	for err := range results {
		if err == nil {
			success++
			continue
		}
		if errors.Is(err, ErrRevoked) {
			fail++
			continue
		}
		t.Fatalf("unexpected refresh error: %v", err)
	}

	if success != 1 {
		t.Fatalf("expected exactly one refresh success, got %d", success)
	}
	if fail != n-1 {
		t.Fatalf("expected %d refresh failures, got %d", n-1, fail)
	}

	snap := engine.MetricsSnapshot()
	if got := snap.Counters[MetricRefreshSuccess]; got != 1 {
		t.Fatalf("expected 1 refresh success counter, got %d", got)
	}
	if got := snap.Counters[MetricRefreshReuseDetected]; got != n-1 {
		t.Fatalf("expected %d reuse detections, got %d", n-1, got)
	}
}

func TestSequentialRefreshChain(t *testing.T) {
	engine, _, done := newTestEngine(t, testConfig())
	defer done()

	pair, err := engine.Login(context.Background(), "alice", "correct-password-123")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	current := pair.RefreshToken
	seen := map[string]bool{current: true}

	for i := 0; i < 5; i++ {
		next, err := engine.Refresh(context.Background(), current)
		if err != nil {
			t.Fatalf("refresh %d failed: %v", i, err)
		}
		if seen[next.RefreshToken] {
			t.Fatalf("refresh %d returned a previously seen token", i)
		}
		seen[next.RefreshToken] = true

		// The predecessor is spent.
		if _, err := engine.Refresh(context.Background(), current); !errors.Is(err, ErrRevoked) {
			t.Fatalf("expected ErrRevoked for spent token at step %d, got %v", i, err)
		}
		current = next.RefreshToken
	}
}
