// Package archive appends answered queries to a lode dataset so that a
// session log survives beyond the bounded local history file.
//
// Records are written as JSONL under a Hive layout partitioned by day:
//
//	<dataset>/day=2026-10-18/...
package archive

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/justapithecus/lode/lode"
)

// DefaultDataset is the dataset id used when Config.Dataset is empty.
const DefaultDataset = "scrap"

// dayLayout formats the day partition value.
const dayLayout = "2006-01-02"

// ErrNoEntries is returned when the archive holds no records.
var ErrNoEntries = errors.New("no archived entries found")

// Config identifies the dataset and the session writing to it.
type Config struct {
	Dataset   string
	SessionID string
}

// Record is one archived answer.
type Record struct {
	Timestamp time.Time
	SessionID string
	QueryID   string
	Prompt    string
	// Answer is the accumulated answer text before rendering.
	Answer string
	// Response is the rendered answer with styling removed.
	Response string
	// Segments lists the segment kinds the answer was transformed into.
	Segments []string
	Done     bool
}

// Archive writes and reads Records through a lode dataset.
type Archive struct {
	dataset lode.Dataset
	config  Config
	now     func() time.Time
}

// NewFS creates an archive stored under root on the local filesystem.
func NewFS(cfg Config, root string) (*Archive, error) {
	return NewWithFactory(cfg, lode.NewFSFactory(root))
}

// NewWithFactory creates an archive with a custom store factory.
// Use lode.NewMemoryFactory() for testing.
func NewWithFactory(cfg Config, factory lode.StoreFactory) (*Archive, error) {
	if cfg.Dataset == "" {
		cfg.Dataset = DefaultDataset
	}
	ds, err := lode.NewDataset(
		lode.DatasetID(cfg.Dataset),
		factory,
		lode.WithHiveLayout("day"),
		lode.WithCodec(lode.NewJSONLCodec()),
	)
	if err != nil {
		return nil, WrapInitError(err, cfg.Dataset)
	}
	return &Archive{dataset: ds, config: cfg, now: time.Now}, nil
}

// Dataset returns the dataset id.
func (a *Archive) Dataset() string {
	return a.config.Dataset
}

// Append writes one record. A zero Timestamp is set to the current time
// and an empty SessionID to the archive's session.
func (a *Archive) Append(ctx context.Context, rec Record) error {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = a.now()
	}
	if rec.SessionID == "" {
		rec.SessionID = a.config.SessionID
	}
	day := rec.Timestamp.UTC().Format(dayLayout)
	if _, err := a.dataset.Write(ctx, []any{toRecordMap(rec)}, lode.Metadata{}); err != nil {
		return WrapWriteError(err, fmt.Sprintf("%s/day=%s", a.config.Dataset, day))
	}
	return nil
}

// Recent returns up to limit records, newest first. A limit <= 0 returns
// every record. ErrNoEntries is returned when nothing has been archived.
func (a *Archive) Recent(ctx context.Context, limit int) ([]Record, error) {
	snapshots, err := a.dataset.Snapshots(ctx)
	if err != nil {
		return nil, WrapReadError(err, a.config.Dataset+"/snapshots")
	}

	var out []Record
	// Snapshots are ordered by creation time.
	for i := len(snapshots) - 1; i >= 0; i-- {
		snap := snapshots[i]
		data, err := a.dataset.Read(ctx, snap.ID)
		if err != nil {
			return nil, WrapReadError(err, fmt.Sprintf("%s/snapshot/%s", a.config.Dataset, snap.ID))
		}
		for j := len(data) - 1; j >= 0; j-- {
			m, ok := data[j].(map[string]any)
			if !ok {
				continue
			}
			out = append(out, fromRecordMap(m))
			if limit > 0 && len(out) == limit {
				return out, nil
			}
		}
	}
	if len(out) == 0 {
		return nil, ErrNoEntries
	}
	return out, nil
}

// Day returns the records archived on the given UTC day, oldest first.
func (a *Archive) Day(ctx context.Context, day time.Time) ([]Record, error) {
	value := day.UTC().Format(dayLayout)
	snapshots, err := a.dataset.Snapshots(ctx)
	if err != nil {
		return nil, WrapReadError(err, a.config.Dataset+"/snapshots")
	}

	var out []Record
	for _, snap := range snapshots {
		if !snapshotInPartition(snap, "day", value) {
			continue
		}
		data, err := a.dataset.Read(ctx, snap.ID)
		if err != nil {
			return nil, WrapReadError(err, fmt.Sprintf("%s/snapshot/%s", a.config.Dataset, snap.ID))
		}
		for _, item := range data {
			m, ok := item.(map[string]any)
			if !ok || toString(m["day"]) != value {
				continue
			}
			out = append(out, fromRecordMap(m))
		}
	}
	if len(out) == 0 {
		return nil, ErrNoEntries
	}
	return out, nil
}
