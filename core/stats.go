package core

import (
	"sync/atomic"

	"github.com/tinyserv/tiny-server/core/http"
)

// Stats holds the server's tick counters.
type Stats struct {
	accepted  atomic.Uint64
	timeouts  atomic.Uint64
	requests  atomic.Uint64
	responses atomic.Uint64
	errors    atomic.Uint64
}

// StatsSnapshot is a point-in-time copy of the counters.
type StatsSnapshot struct {
	Accepted  uint64 `json:"accepted"`
	Timeouts  uint64 `json:"timeouts"`
	Requests  uint64 `json:"requests"`
	Responses uint64 `json:"responses"`
	Errors    uint64 `json:"errors"`
	BytesSent uint64 `json:"bytes_sent"`
}

// Snapshot returns a consistent-enough copy for reporting.
func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		Accepted:  s.accepted.Load(),
		Timeouts:  s.timeouts.Load(),
		Requests:  s.requests.Load(),
		Responses: s.responses.Load(),
		Errors:    s.errors.Load(),
		BytesSent: http.BytesSent(),
	}
}
