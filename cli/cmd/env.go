package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap/zapcore"

	"github.com/ousax/scrap/cli/config"
	"github.com/ousax/scrap/history"
	"github.com/ousax/scrap/iox"
	"github.com/ousax/scrap/log"
	"github.com/ousax/scrap/metrics"
)

// LogFileName is the log file inside the data directory.
const LogFileName = "scrap.log"

// env is the state shared by every command of one invocation.
type env struct {
	cfg       *config.Config
	cfgPath   string
	dataDir   string
	sessionID string
	logger    *log.Logger
	collector *metrics.Collector
	closeLog  func() error
}

// newEnv loads the config and opens the logger. A config file named with
// --config must load; the default file falls back to defaults.
func newEnv(c *cli.Context) (*env, error) {
	cfgPath := config.ResolvePath(c.String("config"))
	cfg, loadErr := config.Load(cfgPath)
	if loadErr != nil {
		if c.IsSet("config") {
			return nil, cli.Exit(loadErr.Error(), exitConfigError)
		}
		cfg = config.Default()
	}

	e := &env{
		cfg:       cfg,
		cfgPath:   cfgPath,
		dataDir:   filepath.Dir(cfgPath),
		sessionID: uuid.NewString(),
		closeLog:  func() error { return nil },
	}

	level := log.ParseLevel(cfg.LogLevel)
	if c.Bool("verbose") {
		level = zapcore.DebugLevel
	}
	if c.Bool("log-stderr") {
		e.logger = log.NewLogger(c.App.ErrWriter, level, e.sessionID)
	} else {
		logger, closeLog, err := log.NewFileLogger(filepath.Join(e.dataDir, LogFileName), level, e.sessionID)
		if err != nil {
			fmt.Fprintf(c.App.ErrWriter, "warning: %v\n", err)
			logger = log.Nop()
		} else {
			e.closeLog = closeLog
		}
		e.logger = logger
	}

	if loadErr != nil && !errors.Is(loadErr, os.ErrNotExist) {
		e.logger.Warn("config unusable, using defaults", map[string]any{
			"path":  cfgPath,
			"error": loadErr.Error(),
		})
	}

	e.collector = metrics.NewCollector(e.sessionID, cfg.Theme)
	e.logger.Sugar().Debugf("session started with config %s", cfgPath)
	return e, nil
}

// close flushes and closes the logger.
func (e *env) close() {
	iox.DiscardErr(e.logger.Sync)
	iox.DiscardErr(e.closeLog)
}

// historyPath is where the history file lives.
func (e *env) historyPath() string {
	return filepath.Join(e.dataDir, history.StoreFile)
}
