package metrics

import (
	"sync/atomic"
	"time"
)

// Collector counts HTTP traffic and workflow decisions with atomics; it
// is shared by the logging middleware and the request handlers.
type Collector struct {
	totalRequests   uint64
	errorRequests   uint64
	rateLimited     uint64
	totalDurationMs uint64

	requestsCreated  uint64
	requestsApproved uint64
	requestsRejected uint64
}

func New() *Collector {
	return &Collector{}
}

func (c *Collector) Record(status int, duration time.Duration) {
	atomic.AddUint64(&c.totalRequests, 1)
	if status >= 500 {
		atomic.AddUint64(&c.errorRequests, 1)
	}
	if status == 429 {
		atomic.AddUint64(&c.rateLimited, 1)
	}
	atomic.AddUint64(&c.totalDurationMs, uint64(duration.Milliseconds()))
}

func (c *Collector) RecordCreated() {
	atomic.AddUint64(&c.requestsCreated, 1)
}

func (c *Collector) RecordDecision(approved bool) {
	if approved {
		atomic.AddUint64(&c.requestsApproved, 1)
	} else {
		atomic.AddUint64(&c.requestsRejected, 1)
	}
}

func (c *Collector) Snapshot() map[string]any {
	total := atomic.LoadUint64(&c.totalRequests)
	errs := atomic.LoadUint64(&c.errorRequests)
	limited := atomic.LoadUint64(&c.rateLimited)
	totalMs := atomic.LoadUint64(&c.totalDurationMs)
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}
	return map[string]any{
		"requestsTotal":          total,
		"errorsTotal":            errs,
		"rateLimitedTotal":       limited,
		"avgDurationMs":          avg,
		"totalDurationMs":        totalMs,
		"changeRequestsCreated":  atomic.LoadUint64(&c.requestsCreated),
		"changeRequestsApproved": atomic.LoadUint64(&c.requestsApproved),
		"changeRequestsRejected": atomic.LoadUint64(&c.requestsRejected),
	}
}
