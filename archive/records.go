package archive

import (
	"strings"
	"time"

	"github.com/justapithecus/lode/lode"
)

// toRecordMap converts a Record to the map written to lode. The "day" key
// is the partition column.
func toRecordMap(r Record) map[string]any {
	segments := make([]any, len(r.Segments))
	for i, s := range r.Segments {
		segments[i] = s
	}
	return map[string]any{
		"day":        r.Timestamp.UTC().Format(dayLayout),
		"timestamp":  r.Timestamp.UTC().Format(time.RFC3339Nano),
		"session_id": r.SessionID,
		"query_id":   r.QueryID,
		"prompt":     r.Prompt,
		"answer":     r.Answer,
		"response":   r.Response,
		"segments":   segments,
		"done":       r.Done,
	}
}

// fromRecordMap is the inverse of toRecordMap. Unknown or mistyped fields
// are left at their zero value.
func fromRecordMap(m map[string]any) Record {
	r := Record{
		SessionID: toString(m["session_id"]),
		QueryID:   toString(m["query_id"]),
		Prompt:    toString(m["prompt"]),
		Answer:    toString(m["answer"]),
		Response:  toString(m["response"]),
	}
	if ts, err := time.Parse(time.RFC3339Nano, toString(m["timestamp"])); err == nil {
		r.Timestamp = ts
	}
	if done, ok := m["done"].(bool); ok {
		r.Done = done
	}
	if segs, ok := m["segments"].([]any); ok {
		for _, s := range segs {
			if str, ok := s.(string); ok {
				r.Segments = append(r.Segments, str)
			}
		}
	}
	return r
}

// snapshotInPartition reports whether any file of the snapshot lives in the
// key=value partition.
func snapshotInPartition(snap *lode.DatasetSnapshot, key, value string) bool {
	for _, f := range snap.Manifest.Files {
		if matchesPartitionValue(f.Path, key, value) {
			return true
		}
	}
	return false
}

// matchesPartitionValue checks for an exact key=value path segment, so that
// day=2026-10-1 does not match day=2026-10-18.
func matchesPartitionValue(path, key, value string) bool {
	segment := key + "=" + value
	for part := range strings.SplitSeq(path, "/") {
		if part == segment {
			return true
		}
	}
	return false
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
