package stream

import (
	"encoding/json"
	"iter"
	"strings"

	"github.com/ousax/scrap/types"
)

// Result is the outcome of folding an event sequence.
type Result struct {
	// Answer is the concatenation of all token fragments, trimmed of
	// surrounding whitespace.
	Answer string
	// Done reports whether a done event ended the stream. False means the
	// stream ended early and Answer is partial.
	Done bool
	// Tokens is the number of fragments appended.
	Tokens int
	// Malformed is the number of token payloads that failed to parse.
	// Token events with an empty payload are skipped without counting.
	Malformed int
}

// Accumulate folds token events into an answer. It stops consuming events
// at the first done event.
func Accumulate(events iter.Seq[types.Event], opts ...Option) Result {
	o := newOptions(opts)

	var (
		b   strings.Builder
		res Result
	)
	for ev := range events {
		switch {
		case ev.Type.IsTerminal():
			o.collector.IncDoneEvent()
			res.Done = true
		case ev.Type == types.EventTypeToken:
			o.collector.IncTokenEvent()
			if ev.Payload == "" {
				continue
			}
			fragment, ok := o.parseToken(ev)
			if !ok {
				res.Malformed++
				continue
			}
			if fragment != nil {
				b.WriteString(*fragment)
				res.Tokens++
			}
		default:
			o.collector.IncIgnoredEvent(string(ev.Type))
		}
		if res.Done {
			break
		}
	}

	res.Answer = strings.TrimSpace(b.String())
	return res
}

// parseToken returns the token text of a youChatToken payload, or nil when
// the payload has no token field. ok is false for unparseable payloads.
func (o options) parseToken(ev types.Event) (fragment *string, ok bool) {
	var payload types.TokenPayload
	if err := json.Unmarshal([]byte(ev.Payload), &payload); err != nil {
		o.collector.IncMalformedPayload()
		o.logger.Debug("malformed token payload skipped", map[string]any{
			"error": err.Error(),
			"bytes": len(ev.Payload),
		})
		return nil, false
	}
	return payload.YouChatToken, true
}
