package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/ousax/scrap/adapter"
	"github.com/ousax/scrap/adapter/redis"
	"github.com/ousax/scrap/adapter/webhook"
	"github.com/ousax/scrap/archive"
	"github.com/ousax/scrap/cli/config"
	"github.com/ousax/scrap/cli/render"
	"github.com/ousax/scrap/cli/tui"
	"github.com/ousax/scrap/client"
	"github.com/ousax/scrap/history"
	"github.com/ousax/scrap/iox"
	"github.com/ousax/scrap/pipeline"
	"github.com/ousax/scrap/proxy"
)

// session bundles a pipeline session with the resources it owns.
type session struct {
	*pipeline.Session
	history *history.Store
	archive *archive.Archive
	closers []func() error
}

// Close releases the client and adapter.
func (s *session) Close() {
	for _, fn := range s.closers {
		iox.DiscardErr(fn)
	}
}

// plain reports whether answers are printed without formatting.
func plain(c *cli.Context, cfg *config.Config) bool {
	return c.Bool("plain") || !cfg.Rich
}

// queryParams resolves page and count: flags win over config.
func queryParams(c *cli.Context, cfg *config.Config) (page, count int) {
	page, count = cfg.Page, cfg.Count
	if c.IsSet("page") {
		page = c.Int("page")
	}
	if c.IsSet("results") {
		count = c.Int("results")
	}
	return page, count
}

// newAnswerRenderer builds the renderer for the configured theme.
func newAnswerRenderer(c *cli.Context, e *env, theme render.Theme) (*render.AnswerRenderer, error) {
	tty := render.IsTerminal(os.Stdout)
	return render.NewAnswerRenderer(theme, render.Options{
		Rich:      !plain(c, e.cfg),
		Color:     tty && !c.Bool("plain"),
		Width:     render.TerminalWidth(os.Stdout),
		Logger:    e.logger,
		Collector: e.collector,
	})
}

// newSession wires the client, renderer, history and the optional archive
// and adapter from the config.
func newSession(ctx context.Context, c *cli.Context, e *env) (*session, error) {
	transport, err := buildTransport(e)
	if err != nil {
		return nil, cli.Exit(fmt.Sprintf("invalid proxy config: %v", err), exitConfigError)
	}
	cl, err := client.New(client.Config{
		Endpoint:    e.cfg.Endpoint,
		Timeout:     e.cfg.Timeout.Duration,
		MinInterval: e.cfg.MinInterval.Duration,
		Transport:   transport,
	})
	if err != nil {
		return nil, cli.Exit(fmt.Sprintf("invalid client config: %v", err), exitConfigError)
	}
	s := &session{closers: []func() error{cl.Close}}

	theme := render.ThemeOrDefault(e.cfg.Theme)
	renderer, err := newAnswerRenderer(c, e, theme)
	if err != nil {
		s.Close()
		return nil, err
	}

	s.history = history.Open(e.historyPath(), e.cfg.MaxHistory, e.logger)

	var archiver pipeline.Archiver
	s.archive, err = buildArchive(ctx, e)
	if err != nil {
		// The archive is a side output; queries still work without it.
		e.logger.Warn("archive disabled", map[string]any{"error": err.Error()})
	} else if s.archive != nil {
		archiver = s.archive
	}

	pub, err := buildAdapter(e.cfg.Adapter)
	if err != nil {
		e.logger.Warn("adapter disabled", map[string]any{"error": err.Error()})
		pub = nil
	} else if pub != nil {
		s.closers = append(s.closers, pub.Close)
	}

	page, count := queryParams(c, e.cfg)
	spinnerOn := !c.Bool("plain") && render.IsTerminal(os.Stdin) && render.IsTerminal(os.Stderr)

	cfg := pipeline.Config{
		Client:    cl,
		Renderer:  renderer,
		History:   s.history,
		Archive:   archiver,
		Collector: e.collector,
		Logger:    e.logger,
		SessionID: e.sessionID,
		Page:      page,
		Count:     count,
		Spinner: tui.SpinnerConfig{
			Enabled: spinnerOn,
			Theme:   theme,
			Input:   os.Stdin,
			Output:  os.Stderr,
		},
	}
	if pub != nil {
		cfg.Adapter = pub
	}
	s.Session, err = pipeline.New(cfg)
	if err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// buildArchive opens the configured archive, or returns nil when none is
// configured.
func buildArchive(ctx context.Context, e *env) (*archive.Archive, error) {
	ac := e.cfg.Archive
	cfg := archive.Config{SessionID: e.sessionID}
	switch ac.Backend {
	case "":
		return nil, nil
	case config.BackendFS:
		return archive.NewFS(cfg, ac.Path)
	case config.BackendS3:
		bucket, prefix := archive.ParseS3Path(ac.Path)
		return archive.NewS3(ctx, cfg, archive.S3Config{
			Bucket:       bucket,
			Prefix:       prefix,
			Region:       ac.Region,
			Endpoint:     ac.Endpoint,
			UsePathStyle: ac.S3PathStyle,
		})
	default:
		return nil, fmt.Errorf("unknown archive backend: %s (must be fs or s3)", ac.Backend)
	}
}

// buildAdapter creates the configured adapter, or returns nil when none is
// configured.
func buildAdapter(ac config.AdapterConfig) (adapter.Adapter, error) {
	switch ac.Type {
	case "":
		return nil, nil
	case config.AdapterWebhook:
		retries := webhook.DefaultRetries
		if ac.Retries != nil {
			retries = *ac.Retries
		}
		a, err := webhook.New(webhook.Config{
			URL:     ac.URL,
			Headers: ac.Headers,
			Timeout: ac.Timeout.Duration,
			Retries: retries,
		})
		if err != nil {
			return nil, err
		}
		return a, nil
	case config.AdapterRedis:
		retries := redis.DefaultRetries
		if ac.Retries != nil {
			retries = *ac.Retries
		}
		a, err := redis.New(redis.Config{
			URL:     ac.URL,
			Channel: ac.Channel,
			Timeout: ac.Timeout.Duration,
			Retries: retries,
		})
		if err != nil {
			return nil, err
		}
		return a, nil
	default:
		return nil, fmt.Errorf("unknown adapter type: %s (must be webhook or redis)", ac.Type)
	}
}

// buildTransport returns a proxying transport when proxy endpoints are
// configured, nil otherwise. Sticky pools pin one proxy per session.
func buildTransport(e *env) (http.RoundTripper, error) {
	pc := e.cfg.Proxy
	if len(pc.Endpoints) == 0 {
		return nil, nil
	}
	pool, err := proxy.NewPool(pc.Endpoints, proxy.Strategy(pc.Strategy), pc.StickyTTL.Duration)
	if err != nil {
		return nil, err
	}
	e.logger.Info("routing searches through proxy pool", map[string]any{
		"endpoints": pool.Len(),
		"strategy":  string(pool.Strategy()),
	})
	return pool.Transport(e.sessionID), nil
}
