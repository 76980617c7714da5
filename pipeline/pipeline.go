// Package pipeline runs one query end to end: fetch the event stream,
// accumulate the answer, transform and render it, then record it.
//
// A Session is used by one goroutine at a time; queries never overlap.
// Recording (history, archive, publish) happens after rendering and never
// changes the returned answer: archive and publish failures are logged and
// counted only.
package pipeline

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ousax/scrap/adapter"
	"github.com/ousax/scrap/archive"
	"github.com/ousax/scrap/cli/render"
	"github.com/ousax/scrap/cli/tui"
	"github.com/ousax/scrap/client"
	"github.com/ousax/scrap/history"
	"github.com/ousax/scrap/iox"
	"github.com/ousax/scrap/log"
	"github.com/ousax/scrap/markup"
	"github.com/ousax/scrap/metrics"
	"github.com/ousax/scrap/stream"
	"github.com/ousax/scrap/types"
)

// timeoutMessage replaces the transport detail when the server stalls.
const timeoutMessage = "Network request timed out - the server stopped responding"

// DefaultRecordTimeout bounds archive writes and publishes.
const DefaultRecordTimeout = 10 * time.Second

// ErrEmptyPrompt is returned by Ask for a blank prompt.
var ErrEmptyPrompt = errors.New("please enter a valid prompt")

// Opener opens the streaming response for a query. *client.Client
// implements it.
type Opener interface {
	Open(ctx context.Context, q client.Query) (*client.Response, error)
}

// Archiver appends answered queries to durable storage. *archive.Archive
// implements it.
type Archiver interface {
	Append(ctx context.Context, rec archive.Record) error
}

// Config wires a Session. Client and Renderer are required.
type Config struct {
	Client   Opener
	Renderer *render.AnswerRenderer
	// History receives (prompt, rendered answer) pairs. Optional.
	History *history.Store
	// Archive and Adapter are optional side outputs.
	Archive   Archiver
	Adapter   adapter.Adapter
	Collector *metrics.Collector
	Logger    *log.Logger
	SessionID string
	// Page and Count are sent with every query (default 1).
	Page  int
	Count int
	// Spinner animates while the request is in flight.
	Spinner       tui.SpinnerConfig
	RecordTimeout time.Duration
}

// Answer is the outcome of one query.
type Answer struct {
	QueryID string
	Prompt  string
	// Text is the accumulated answer before transformation.
	Text string
	// Segments is nil when rich rendering is disabled.
	Segments []types.Segment
	// Rendered is the printable answer.
	Rendered string
	Tokens   int
	// Malformed counts token payloads that could not be parsed.
	Malformed int
	// Done reports whether the stream carried a done event.
	Done     bool
	Duration time.Duration
	At       time.Time
}

// Session runs queries with a fixed set of collaborators.
type Session struct {
	config   Config
	renderer *render.AnswerRenderer
	logger   *log.Logger
	now      func() time.Time
}

// New creates a Session.
func New(cfg Config) (*Session, error) {
	if cfg.Client == nil {
		return nil, errors.New("pipeline requires a client")
	}
	if cfg.Renderer == nil {
		return nil, errors.New("pipeline requires a renderer")
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Nop()
	}
	if cfg.Page < 1 {
		cfg.Page = 1
	}
	if cfg.Count < 1 {
		cfg.Count = 1
	}
	if cfg.RecordTimeout <= 0 {
		cfg.RecordTimeout = DefaultRecordTimeout
	}
	return &Session{
		config:   cfg,
		renderer: cfg.Renderer,
		logger:   cfg.Logger,
		now:      time.Now,
	}, nil
}

// SetRenderer replaces the renderer used for later queries, for example
// after a theme change.
func (s *Session) SetRenderer(r *render.AnswerRenderer) {
	if r != nil {
		s.renderer = r
	}
}

// Renderer returns the current renderer.
func (s *Session) Renderer() *render.AnswerRenderer {
	return s.renderer
}

// Ask sends prompt and returns the rendered answer. Network failures are
// returned as *client.NetworkError.
func (s *Session) Ask(ctx context.Context, prompt string) (*Answer, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, ErrEmptyPrompt
	}

	collector := s.config.Collector
	collector.IncQueryStarted()
	start := s.now()
	ans := &Answer{
		QueryID: uuid.NewString(),
		Prompt:  prompt,
		At:      start,
	}
	logger := s.logger.With("query_id", ans.QueryID)
	logger.Debug("query started", map[string]any{
		"page":  s.config.Page,
		"count": s.config.Count,
	})

	q := client.Query{Prompt: prompt, Page: s.config.Page, Count: s.config.Count}
	res, err := tui.WithSpinner(ctx, s.config.Spinner, func(ctx context.Context) (stream.Result, error) {
		return s.fetch(ctx, q, logger)
	})
	if err != nil {
		collector.IncQueryFailed()
		logger.Warn("query failed", map[string]any{"error": err.Error()})
		return nil, err
	}

	ans.Text = res.Answer
	ans.Tokens = res.Tokens
	ans.Malformed = res.Malformed
	ans.Done = res.Done
	if s.renderer.Rich() {
		ans.Segments = markup.Transform(res.Answer)
		ans.Rendered = s.renderer.Render(ans.Segments)
	} else {
		ans.Rendered = s.renderer.RenderAnswer(res.Answer)
	}
	ans.Duration = s.now().Sub(start)
	collector.IncQueryCompleted()

	logger.Info("query completed", map[string]any{
		"tokens":      ans.Tokens,
		"malformed":   ans.Malformed,
		"done":        ans.Done,
		"segments":    len(ans.Segments),
		"duration_ms": ans.Duration.Milliseconds(),
	})

	s.record(ctx, ans, logger)
	return ans, nil
}

// fetch opens the stream and folds it into a Result. The body is closed
// as soon as the done event is seen.
func (s *Session) fetch(ctx context.Context, q client.Query, logger *log.Logger) (stream.Result, error) {
	resp, err := s.config.Client.Open(ctx, q)
	if err != nil {
		return stream.Result{}, err
	}
	defer iox.DiscardClose(resp.Body)

	opts := []stream.Option{
		stream.WithCollector(s.config.Collector),
		stream.WithLogger(logger),
	}
	reader := stream.NewReader(resp.Body, opts...)
	res := stream.Accumulate(reader.Events(), opts...)
	if err := reader.Err(); err != nil && !res.Done {
		return res, &client.NetworkError{Op: "read", Err: err}
	}
	return res, nil
}

// record appends the answer to history and the optional side outputs.
func (s *Session) record(ctx context.Context, ans *Answer, logger *log.Logger) {
	plain := render.PlainText(ans.Rendered)
	if h := s.config.History; h != nil {
		if _, err := h.Add(ans.Prompt, plain); err != nil {
			logger.Warn("history write failed", map[string]any{"error": err.Error()})
		}
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.config.RecordTimeout)
	defer cancel()

	kinds := segmentKinds(ans.Segments)
	collector := s.config.Collector

	if a := s.config.Archive; a != nil {
		err := a.Append(ctx, archive.Record{
			Timestamp: ans.At,
			SessionID: s.config.SessionID,
			QueryID:   ans.QueryID,
			Prompt:    ans.Prompt,
			Answer:    ans.Text,
			Response:  plain,
			Segments:  kinds,
			Done:      ans.Done,
		})
		if err != nil {
			collector.IncArchiveWriteFailure()
			logger.Warn("archive write failed", map[string]any{"error": err.Error()})
		} else {
			collector.IncArchiveWriteSuccess()
		}
	}

	if a := s.config.Adapter; a != nil {
		ev := adapter.NewAnswerCompletedEvent(s.config.SessionID, ans.Prompt, ans.At)
		ev.QueryID = ans.QueryID
		ev.AnswerLength = len(ans.Text)
		ev.Segments = kinds
		ev.Tokens = ans.Tokens
		ev.Done = ans.Done
		ev.DurationMs = ans.Duration.Milliseconds()
		if err := a.Publish(ctx, ev); err != nil {
			collector.IncPublishFailure()
			logger.Warn("publish failed", map[string]any{"error": err.Error()})
		} else {
			collector.IncPublishSuccess()
		}
	}
}

func segmentKinds(segments []types.Segment) []string {
	kinds := make([]string, len(segments))
	for i, seg := range segments {
		kinds[i] = string(seg.Kind())
	}
	return kinds
}

// Error formats err as the single error line shown to the user.
func Error(err error) string {
	if client.IsTimeout(err) {
		return "Error: " + timeoutMessage
	}
	return "Error: " + err.Error()
}
