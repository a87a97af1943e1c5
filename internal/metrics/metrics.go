package metrics

import "sync/atomic"

// MetricID indexes a single counter slot.
type MetricID int

const (
	MetricLoginSuccess MetricID = iota
	MetricLoginFailure
	MetricRefreshSuccess
	MetricRefreshFailure
	MetricRefreshReuseDetected
	MetricAuthorizeSuccess
	MetricAuthorizeDenied
	MetricTokenRevoked
	MetricLogout

	MetricIDCount
)

// Def describes one counter for exporters.
type Def struct {
	ID   MetricID
	Name string
	Help string
}

// CounterDefs is the stable export order for all counters.
var CounterDefs = []Def{
	{MetricLoginSuccess, "tokengate_login_success_total", "Successful logins."},
	{MetricLoginFailure, "tokengate_login_failure_total", "Failed logins."},
	{MetricRefreshSuccess, "tokengate_refresh_success_total", "Successful refresh rotations."},
	{MetricRefreshFailure, "tokengate_refresh_failure_total", "Failed refresh attempts."},
	{MetricRefreshReuseDetected, "tokengate_refresh_reuse_detected_total", "Refresh attempts that lost the rotation race or replayed a used token."},
	{MetricAuthorizeSuccess, "tokengate_authorize_success_total", "Authorized protected requests."},
	{MetricAuthorizeDenied, "tokengate_authorize_denied_total", "Denied protected requests."},
	{MetricTokenRevoked, "tokengate_token_revoked_total", "Explicit token revocations."},
	{MetricLogout, "tokengate_logout_total", "Logouts."},
}

// Config controls metric collection.
type Config struct {
	Enabled bool
}

// slot is cache-line padded so adjacent counters do not false-share.
type slot struct {
	value uint64
	_     [7]uint64
}

// Metrics holds lock-free counters. A nil or disabled Metrics makes all
// operations no-ops.
type Metrics struct {
	enabled bool
	slots   [MetricIDCount]slot
}

func New(cfg Config) *Metrics {
	return &Metrics{enabled: cfg.Enabled}
}

func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id < 0 || id >= MetricIDCount {
		return
	}
	atomic.AddUint64(&m.slots[id].value, 1)
}

// Snapshot is a point-in-time copy of all counters.
type Snapshot struct {
	Counters map[MetricID]uint64
}

func (m *Metrics) Snapshot() Snapshot {
	snap := Snapshot{Counters: make(map[MetricID]uint64, MetricIDCount)}
	if m == nil || !m.enabled {
		return snap
	}
	for id := MetricID(0); id < MetricIDCount; id++ {
		snap.Counters[id] = atomic.LoadUint64(&m.slots[id].value)
	}
	return snap
}
