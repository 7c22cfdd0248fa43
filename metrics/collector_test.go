package metrics

import (
	"sync"
	"testing"
)

func TestCollector_Counters(t *testing.T) {
	c := NewCollector("loopback", 0x10, "t-001")

	c.IncFramePublished()
	c.IncFramePublished()
	c.IncPublishFailure()
	c.IncChunkAcked()
	c.IncRetry()
	c.IncRetry()
	c.IncRetry()
	c.IncRetryOverflow()
	c.IncViolation()

	snap := c.Snapshot()
	if snap.FramesPublished != 2 {
		t.Errorf("FramesPublished = %d, want 2", snap.FramesPublished)
	}
	if snap.PublishFailures != 1 {
		t.Errorf("PublishFailures = %d, want 1", snap.PublishFailures)
	}
	if snap.ChunksAcked != 1 {
		t.Errorf("ChunksAcked = %d, want 1", snap.ChunksAcked)
	}
	if snap.Retries != 3 {
		t.Errorf("Retries = %d, want 3", snap.Retries)
	}
	if snap.RetryOverflows != 1 {
		t.Errorf("RetryOverflows = %d, want 1", snap.RetryOverflows)
	}
	if snap.Violations != 1 {
		t.Errorf("Violations = %d, want 1", snap.Violations)
	}
}

func TestCollector_Dimensions(t *testing.T) {
	c := NewCollector("redis", 0x42, "t-xyz")
	snap := c.Snapshot()

	if snap.Bus != "redis" {
		t.Errorf("Bus = %q, want redis", snap.Bus)
	}
	if snap.Topic != 0x42 {
		t.Errorf("Topic = %#x, want 0x42", snap.Topic)
	}
	if snap.Transfer != "t-xyz" {
		t.Errorf("Transfer = %q, want t-xyz", snap.Transfer)
	}
}

func TestCollector_NilSafe(t *testing.T) {
	var c *Collector

	// Must not panic.
	c.IncFramePublished()
	c.IncPublishFailure()
	c.IncChunkAcked()
	c.IncRetry()
	c.IncRetryOverflow()
	c.IncViolation()

	if snap := c.Snapshot(); snap != (Snapshot{}) {
		t.Errorf("nil collector snapshot = %+v, want zero value", snap)
	}
}

func TestCollector_SnapshotIsolation(t *testing.T) {
	c := NewCollector("loopback", 0x01, "")

	c.IncFramePublished()
	snap := c.Snapshot()
	c.IncFramePublished()

	if snap.FramesPublished != 1 {
		t.Errorf("snapshot mutated after creation: FramesPublished = %d", snap.FramesPublished)
	}
}

func TestCollector_ConcurrentIncrements(t *testing.T) {
	c := NewCollector("loopback", 0x01, "")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.IncFramePublished()
			}
		}()
	}
	wg.Wait()

	if got := c.Snapshot().FramesPublished; got != 800 {
		t.Errorf("FramesPublished = %d, want 800", got)
	}
}
