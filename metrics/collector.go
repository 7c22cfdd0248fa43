// Package metrics provides per-transfer metrics collection.
//
// The Collector accumulates counters during a single transfer. It is a
// leaf package with no internal dependencies.
package metrics

import "sync"

// Snapshot is an immutable point-in-time view of transfer counters.
// Returned by Collector.Snapshot(). Safe to read concurrently after creation.
type Snapshot struct {
	// Outbound
	FramesPublished int64
	PublishFailures int64

	// Acknowledgement lifecycle
	ChunksAcked    int64
	Retries        int64
	RetryOverflows int64
	Violations     int64

	// Dimensions (informational, set at construction)
	Bus      string
	Topic    byte
	Transfer string
}

// Collector accumulates metrics during a single transfer.
// Thread-safe via sync.Mutex. All increment methods are nil-receiver safe.
type Collector struct {
	mu sync.Mutex

	framesPublished int64
	publishFailures int64
	chunksAcked     int64
	retries         int64
	retryOverflows  int64
	violations      int64

	// Dimensions
	bus      string
	topic    byte
	transfer string
}

// NewCollector creates a Collector with dimension labels: the bus adapter
// name, the payload topic tag, and an optional transfer identifier.
func NewCollector(bus string, topic byte, transfer string) *Collector {
	return &Collector{
		bus:      bus,
		topic:    topic,
		transfer: transfer,
	}
}

// IncFramePublished records a successfully published frame.
func (c *Collector) IncFramePublished() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.framesPublished++
	c.mu.Unlock()
}

// IncPublishFailure records a failed publish attempt.
func (c *Collector) IncPublishFailure() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.publishFailures++
	c.mu.Unlock()
}

// IncChunkAcked records a chunk acknowledged by the peer.
func (c *Collector) IncChunkAcked() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.chunksAcked++
	c.mu.Unlock()
}

// IncRetry records a chunk retransmission.
func (c *Collector) IncRetry() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.retries++
	c.mu.Unlock()
}

// IncRetryOverflow records a retry counter that reached its ceiling.
func (c *Collector) IncRetryOverflow() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.retryOverflows++
	c.mu.Unlock()
}

// IncViolation records an acknowledgement that named the wrong chunk.
func (c *Collector) IncViolation() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.violations++
	c.mu.Unlock()
}

// Snapshot returns an immutable point-in-time view of all counters.
// The returned Snapshot is safe to read concurrently; the Collector can
// continue to be mutated independently.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	return Snapshot{
		FramesPublished: c.framesPublished,
		PublishFailures: c.publishFailures,
		ChunksAcked:     c.chunksAcked,
		Retries:         c.retries,
		RetryOverflows:  c.retryOverflows,
		Violations:      c.violations,

		Bus:      c.bus,
		Topic:    c.topic,
		Transfer: c.transfer,
	}
}
