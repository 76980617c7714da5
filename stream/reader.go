package stream

import (
	"bufio"
	"bytes"
	"io"
	"iter"

	"github.com/ousax/scrap/types"
)

const (
	initialBufferSize = 64 * 1024
	// MaxBlockSize bounds a single event block read from a live body.
	MaxBlockSize = 4 * 1024 * 1024
)

// Reader decodes events from a live response body without buffering the
// whole body. For identical input it yields the same events as Decode.
type Reader struct {
	scanner *bufio.Scanner
	opts    options
	err     error
}

// NewReader creates a Reader over r.
func NewReader(r io.Reader, opts ...Option) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, initialBufferSize), MaxBlockSize)
	scanner.Split(splitBlocks)
	return &Reader{scanner: scanner, opts: newOptions(opts)}
}

// Events returns the event sequence. It may be ranged over once.
func (r *Reader) Events() iter.Seq[types.Event] {
	return func(yield func(types.Event) bool) {
		for r.scanner.Scan() {
			ev, ok := r.opts.parseBlock(r.scanner.Text())
			if !ok {
				continue
			}
			if !yield(ev) {
				return
			}
		}
		r.err = r.scanner.Err()
	}
}

// Err returns the first read error encountered by Events, if any.
// A stream truncated by the server is not an error.
func (r *Reader) Err() error {
	return r.err
}

// splitBlocks is a bufio.SplitFunc yielding the text between blank-line
// separators, matching strings.Split(body, "\n\n").
func splitBlocks(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.Index(data, []byte(blockSeparator)); i >= 0 {
		return i + len(blockSeparator), data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
