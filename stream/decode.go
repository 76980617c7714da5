package stream

import (
	"iter"
	"strings"

	"github.com/ousax/scrap/types"
)

const (
	blockSeparator = "\n\n"
	eventPrefix    = "event:"
	dataPrefix     = "data:"
)

// Decode splits a complete response body into events, lazily and in block
// order. Breaking out of the range stops decoding.
func Decode(body string, opts ...Option) iter.Seq[types.Event] {
	o := newOptions(opts)
	return func(yield func(types.Event) bool) {
		rest := body
		for rest != "" {
			block, tail, _ := strings.Cut(rest, blockSeparator)
			rest = tail
			ev, ok := o.parseBlock(block)
			if !ok {
				continue
			}
			if !yield(ev) {
				return
			}
		}
	}
}

// parseBlock extracts the event from one block. It reports false for empty
// blocks and for blocks that carry no event line.
func (o options) parseBlock(block string) (types.Event, bool) {
	if strings.TrimSpace(block) == "" {
		return types.Event{}, false
	}
	o.collector.IncBlockSeen()

	var (
		ev       types.Event
		hasEvent bool
	)
	for line := range strings.SplitSeq(block, "\n") {
		switch {
		case strings.HasPrefix(line, eventPrefix):
			ev.Type = types.EventType(strings.TrimSpace(line[len(eventPrefix):]))
			hasEvent = true
		case strings.HasPrefix(line, dataPrefix):
			// later data lines replace earlier ones
			ev.Payload = strings.TrimSpace(line[len(dataPrefix):])
			ev.HasPayload = true
		}
	}
	if !hasEvent {
		o.collector.IncBlockSkipped()
		o.logger.Debug("block without event line skipped", map[string]any{
			"bytes": len(block),
		})
		return types.Event{}, false
	}
	return ev, true
}
