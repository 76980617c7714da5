// Package metrics provides per-session counters for the answer pipeline.
//
// The Collector accumulates counters across the queries of one interactive
// session. It is a leaf package with no internal dependencies. All increment
// methods are nil-receiver safe so components may run without a collector.
package metrics

import (
	"maps"
	"sync"
)

// Snapshot is an immutable point-in-time view of the session counters.
// Returned by Collector.Snapshot(). Safe to read concurrently after creation.
type Snapshot struct {
	// Queries
	QueriesStarted   int64
	QueriesCompleted int64
	QueriesFailed    int64

	// Decoding
	BlocksSeen        int64
	BlocksSkipped     int64
	TokenEvents       int64
	MalformedPayloads int64
	DoneEvents        int64
	IgnoredByType     map[string]int64

	// Rendering
	SegmentsByKind     map[string]int64
	RenderFallbacks    int64
	PlainTextFallbacks int64

	// Side outputs
	ArchiveWriteSuccess int64
	ArchiveWriteFailure int64
	PublishSuccess      int64
	PublishFailure      int64

	// Dimensions (informational, set at construction)
	SessionID string
	Theme     string
}

// Collector accumulates metrics during a session.
// Thread-safe via sync.Mutex.
type Collector struct {
	mu sync.Mutex

	queriesStarted   int64
	queriesCompleted int64
	queriesFailed    int64

	blocksSeen        int64
	blocksSkipped     int64
	tokenEvents       int64
	malformedPayloads int64
	doneEvents        int64
	ignoredByType     map[string]int64

	segmentsByKind     map[string]int64
	renderFallbacks    int64
	plainTextFallbacks int64

	archiveWriteSuccess int64
	archiveWriteFailure int64
	publishSuccess      int64
	publishFailure      int64

	sessionID string
	theme     string
}

// NewCollector creates a Collector with dimension labels.
func NewCollector(sessionID, theme string) *Collector {
	return &Collector{
		ignoredByType:  make(map[string]int64),
		segmentsByKind: make(map[string]int64),
		sessionID:      sessionID,
		theme:          theme,
	}
}

// add increments one counter under the lock.
func (c *Collector) add(field *int64) {
	c.mu.Lock()
	*field++
	c.mu.Unlock()
}

// --- Queries ---

// IncQueryStarted records an outbound search.
func (c *Collector) IncQueryStarted() {
	if c == nil {
		return
	}
	c.add(&c.queriesStarted)
}

// IncQueryCompleted records a query whose answer was rendered.
func (c *Collector) IncQueryCompleted() {
	if c == nil {
		return
	}
	c.add(&c.queriesCompleted)
}

// IncQueryFailed records a query that ended in a network failure.
func (c *Collector) IncQueryFailed() {
	if c == nil {
		return
	}
	c.add(&c.queriesFailed)
}

// --- Decoding ---

// IncBlockSeen records a non-empty block of the response body.
func (c *Collector) IncBlockSeen() {
	if c == nil {
		return
	}
	c.add(&c.blocksSeen)
}

// IncBlockSkipped records a block without an event line.
func (c *Collector) IncBlockSkipped() {
	if c == nil {
		return
	}
	c.add(&c.blocksSkipped)
}

// IncTokenEvent records a youChatToken event. Every such event counts,
// including empty and malformed payloads.
func (c *Collector) IncTokenEvent() {
	if c == nil {
		return
	}
	c.add(&c.tokenEvents)
}

// IncMalformedPayload records a token event whose payload did not parse.
func (c *Collector) IncMalformedPayload() {
	if c == nil {
		return
	}
	c.add(&c.malformedPayloads)
}

// IncDoneEvent records a terminal event.
func (c *Collector) IncDoneEvent() {
	if c == nil {
		return
	}
	c.add(&c.doneEvents)
}

// IncIgnoredEvent records an event of a type the accumulator does not use.
func (c *Collector) IncIgnoredEvent(eventType string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.ignoredByType[eventType]++
	c.mu.Unlock()
}

// --- Rendering ---

// IncSegment records one transformed segment of the given kind.
func (c *Collector) IncSegment(kind string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.segmentsByKind[kind]++
	c.mu.Unlock()
}

// IncRenderFallback records a segment that was printed as raw text
// because its formatter failed.
func (c *Collector) IncRenderFallback() {
	if c == nil {
		return
	}
	c.add(&c.renderFallbacks)
}

// IncPlainTextFallback records an answer printed verbatim because rich
// rendering was disabled.
func (c *Collector) IncPlainTextFallback() {
	if c == nil {
		return
	}
	c.add(&c.plainTextFallbacks)
}

// --- Side outputs ---
// Archive and publish counters are per-answer, not per-attempt.

// IncArchiveWriteSuccess records a successful archive append.
func (c *Collector) IncArchiveWriteSuccess() {
	if c == nil {
		return
	}
	c.add(&c.archiveWriteSuccess)
}

// IncArchiveWriteFailure records a failed archive append.
func (c *Collector) IncArchiveWriteFailure() {
	if c == nil {
		return
	}
	c.add(&c.archiveWriteFailure)
}

// IncPublishSuccess records a delivered answer-completed notification.
func (c *Collector) IncPublishSuccess() {
	if c == nil {
		return
	}
	c.add(&c.publishSuccess)
}

// IncPublishFailure records an undeliverable answer-completed notification.
func (c *Collector) IncPublishFailure() {
	if c == nil {
		return
	}
	c.add(&c.publishFailure)
}

// --- Snapshot ---

// Snapshot returns an immutable point-in-time view of all metrics.
// The returned Snapshot is safe to read concurrently; the Collector can
// continue to be mutated independently.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	return Snapshot{
		QueriesStarted:   c.queriesStarted,
		QueriesCompleted: c.queriesCompleted,
		QueriesFailed:    c.queriesFailed,

		BlocksSeen:        c.blocksSeen,
		BlocksSkipped:     c.blocksSkipped,
		TokenEvents:       c.tokenEvents,
		MalformedPayloads: c.malformedPayloads,
		DoneEvents:        c.doneEvents,
		IgnoredByType:     maps.Clone(c.ignoredByType),

		SegmentsByKind:     maps.Clone(c.segmentsByKind),
		RenderFallbacks:    c.renderFallbacks,
		PlainTextFallbacks: c.plainTextFallbacks,

		ArchiveWriteSuccess: c.archiveWriteSuccess,
		ArchiveWriteFailure: c.archiveWriteFailure,
		PublishSuccess:      c.publishSuccess,
		PublishFailure:      c.publishFailure,

		SessionID: c.sessionID,
		Theme:     c.theme,
	}
}
