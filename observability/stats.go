package observability

import (
	"sync/atomic"
	"time"
)

// ServerStats is a point in time view of the relay.
type ServerStats struct {
	StartedAt        time.Time
	TotalConnections uint64
	TotalMessages    uint64
	FailedLogins     uint64
	Online           int
	RegisteredUsers  int
}

func (s ServerStats) Uptime(now time.Time) time.Duration {
	if s.StartedAt.IsZero() {
		return 0
	}
	return now.Sub(s.StartedAt).Truncate(time.Second)
}

// Counters are updated from handler goroutines without locking.
type Counters struct {
	connections  atomic.Uint64
	messages     atomic.Uint64
	failedLogins atomic.Uint64
}

func (c *Counters) IncrConnections()  { c.connections.Add(1) }
func (c *Counters) IncrMessages()     { c.messages.Add(1) }
func (c *Counters) IncrFailedLogins() { c.failedLogins.Add(1) }

func (c *Counters) Connections() uint64  { return c.connections.Load() }
func (c *Counters) Messages() uint64     { return c.messages.Load() }
func (c *Counters) FailedLogins() uint64 { return c.failedLogins.Load() }
