// Package stream decodes the search endpoint's event stream and folds token
// events into a single answer.
//
// The wire format is a sequence of blank-line separated blocks:
//
//	event: youChatToken
//	data: {"youChatToken": "Hel"}
//
//	event: done
//	data: I'm done
//
// Decoding never fails. Blocks without an event line are skipped, payloads
// that are not valid JSON are skipped, and a stream that ends without a done
// event yields whatever was accumulated so far.
package stream

import (
	"github.com/ousax/scrap/log"
	"github.com/ousax/scrap/metrics"
)

// Option configures Decode, NewReader and Accumulate.
type Option func(*options)

type options struct {
	collector *metrics.Collector
	logger    *log.Logger
}

// WithCollector reports decoder and accumulator counters to c.
// A nil collector is allowed.
func WithCollector(c *metrics.Collector) Option {
	return func(o *options) { o.collector = c }
}

// WithLogger logs skipped blocks and payloads at debug level.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func newOptions(opts []Option) options {
	o := options{logger: log.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
