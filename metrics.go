package tokengate

import (
	internalmetrics "github.com/veslind/tokengate/internal/metrics"
)

// MetricID identifies a specific counter in the in-process metrics
// system.
type MetricID = internalmetrics.MetricID

const (
	MetricLoginSuccess         = internalmetrics.MetricLoginSuccess
	MetricLoginFailure         = internalmetrics.MetricLoginFailure
	MetricRefreshSuccess       = internalmetrics.MetricRefreshSuccess
	MetricRefreshFailure       = internalmetrics.MetricRefreshFailure
	MetricRefreshReuseDetected = internalmetrics.MetricRefreshReuseDetected
	MetricAuthorizeSuccess     = internalmetrics.MetricAuthorizeSuccess
	MetricAuthorizeDenied      = internalmetrics.MetricAuthorizeDenied
	MetricTokenRevoked         = internalmetrics.MetricTokenRevoked
	MetricLogout               = internalmetrics.MetricLogout
)

// Metrics holds the engine's atomic counters.
type Metrics = internalmetrics.Metrics

// MetricsSnapshot is a point-in-time copy of all counters.
type MetricsSnapshot = internalmetrics.Snapshot
