package tokengate

import (
	"context"
	"strings"
	"testing"
	"time"
)

func auditTestConfig() Config {
	cfg := testConfig()
	cfg.Audit.Enabled = true
	cfg.Audit.BufferSize = 32
	cfg.Audit.DropIfFull = false
	return cfg
}

func collectEvents(t *testing.T, sink *ChannelSink, want int) []AuditEvent {
	t.Helper()

	events := make([]AuditEvent, 0, want)
	timeout := time.After(2 * time.Second)
	for len(events) < want {
		select {
		case event := <-sink.Events():
			events = append(events, event)
		case <-timeout:
			t.Fatalf("timed out after %d of %d events", len(events), want)
		}
	}
	return events
}

func TestAuditEventsForLoginFlows(t *testing.T) {
	cfg := auditTestConfig()
	sink := NewChannelSink(32)

	us := newTestUserStore(t, cfg)
	engine, err := New().WithConfig(cfg).WithUserStore(us).WithAuditSink(sink).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer engine.Close()

	ctx := WithClientIP(context.Background(), "203.0.113.9")

	if _, err := engine.Login(ctx, "alice", "correct-password-123"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	_, _ = engine.Login(ctx, "alice", "wrong-password")

	events := collectEvents(t, sink, 2)

	success, failure := events[0], events[1]
	if success.EventType != "login.success" || !success.Success {
		t.Fatalf("unexpected first event: %+v", success)
	}
	if success.SubjectID != "user-alice" {
		t.Fatalf("expected subject in success event, got %+v", success)
	}
	if success.IP != "203.0.113.9" {
		t.Fatalf("expected client IP in event, got %q", success.IP)
	}

	if failure.EventType != "login.failure" || failure.Success {
		t.Fatalf("unexpected second event: %+v", failure)
	}
	if failure.Error == "" {
		t.Fatal("failure event must carry an error string")
	}
}

func TestAuditNeverLeaksSecrets(t *testing.T) {
	cfg := auditTestConfig()
	sink := NewChannelSink(32)

	us := newTestUserStore(t, cfg)
	engine, err := New().WithConfig(cfg).WithUserStore(us).WithAuditSink(sink).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer engine.Close()

	const secret = "correct-password-123"

	pair, err := engine.Login(context.Background(), "alice", secret)
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if _, err := engine.Refresh(context.Background(), pair.RefreshToken); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	for _, event := range collectEvents(t, sink, 2) {
		for _, leak := range []string{secret, pair.AccessToken, pair.RefreshToken} {
			if strings.Contains(event.Error, leak) {
				t.Fatalf("event error leaks secret material: %+v", event)
			}
			for _, v := range event.Metadata {
				if strings.Contains(v, leak) {
					t.Fatalf("event metadata leaks secret material: %+v", event)
				}
			}
		}
	}
}

func TestRefreshReuseIsAudited(t *testing.T) {
	cfg := auditTestConfig()
	sink := NewChannelSink(32)

	us := newTestUserStore(t, cfg)
	engine, err := New().WithConfig(cfg).WithUserStore(us).WithAuditSink(sink).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer engine.Close()

	pair, err := engine.Login(context.Background(), "alice", "correct-password-123")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if _, err := engine.Refresh(context.Background(), pair.RefreshToken); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if _, err := engine.Refresh(context.Background(), pair.RefreshToken); err == nil {
		t.Fatal("expected replay to fail")
	}

	events := collectEvents(t, sink, 3)
	last := events[2]
	if last.EventType != "refresh.reuse" {
		t.Fatalf("expected refresh.reuse event, got %+v", last)
	}
	if last.SubjectID != "user-alice" || last.TokenID == "" {
		t.Fatalf("reuse event must name subject and token ID, got %+v", last)
	}
}
