package archive

import (
	"errors"
	"testing"
)

type timeoutError struct{}

func (timeoutError) Error() string   { return "boom" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return false }

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind error
	}{
		{"typed timeout", timeoutError{}, ErrTimeout},
		{"deadline exceeded", errors.New("context deadline exceeded"), ErrTimeout},
		{"AccessDenied", errors.New("AccessDenied: you do not have access"), ErrAccessDenied},
		{"HTTP 403", errors.New("received status 403"), ErrAccessDenied},
		{"permission denied", errors.New("open /data: permission denied"), ErrPermissionDenied},
		{"ENOENT", errors.New("stat /x: no such file or directory"), ErrNotFound},
		{"NoSuchKey", errors.New("NoSuchKey: missing"), ErrNotFound},
		{"disk full", errors.New("write: no space left on device"), ErrDiskFull},
		{"SlowDown", errors.New("SlowDown: reduce your request rate"), ErrThrottled},
		{"credentials", errors.New("failed to retrieve credentials"), ErrAuth},
		{"connection refused", errors.New("dial tcp 127.0.0.1:9000: connect: connection refused"), ErrNetwork},
		{"unknown", errors.New("something odd"), ErrUnclassified},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyError(tt.err); got != tt.wantKind {
				t.Errorf("classifyError(%q) = %v, want %v", tt.err, got, tt.wantKind)
			}
		})
	}
}

func TestStorageError_Chain(t *testing.T) {
	cause := errors.New("open /data: permission denied")
	err := WrapWriteError(cause, "scrap/day=2026-10-18")

	if !errors.Is(err, ErrPermissionDenied) {
		t.Error("errors.Is(err, ErrPermissionDenied) = false, want true")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
	var se *StorageError
	if !errors.As(err, &se) {
		t.Fatal("errors.As(*StorageError) = false")
	}
	if se.Op != "write" {
		t.Errorf("Op = %q, want %q", se.Op, "write")
	}
	want := "archive write scrap/day=2026-10-18: permission denied: open /data: permission denied"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestWrap_Nil(t *testing.T) {
	if err := WrapReadError(nil, "x"); err != nil {
		t.Errorf("WrapReadError(nil) = %v, want nil", err)
	}
}
