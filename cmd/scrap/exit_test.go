package main

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/urfave/cli/v2"
)

// capture replaces osExit and stderr for the duration of the test.
func capture(t *testing.T) (codes *[]int, out *bytes.Buffer) {
	t.Helper()
	var got []int
	var buf bytes.Buffer
	prevExit, prevStderr := osExit, stderr
	osExit = func(code int) { got = append(got, code) }
	stderr = &buf
	t.Cleanup(func() {
		osExit, stderr = prevExit, prevStderr
	})
	return &got, &buf
}

func TestExitErrHandler_NilError(t *testing.T) {
	codes, out := capture(t)
	exitErrHandler(nil, nil)
	if len(*codes) != 0 || out.Len() != 0 {
		t.Errorf("nil error exited %v with output %q", *codes, out.String())
	}
}

func TestExitErrHandler_ExitCoder(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantOut  string
	}{
		{"exit code 0 no message", cli.Exit("", 0), 0, ""},
		{"query error", cli.Exit("Error: API request failed with status code 500", 1), 1,
			"Error: API request failed with status code 500\n"},
		{"config error", cli.Exit("invalid config", 2), 2, "invalid config\n"},
		{"wrapped", fmt.Errorf("context: %w", cli.Exit("inner", 2)), 2, "inner\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codes, out := capture(t)
			exitErrHandler(nil, tt.err)
			if len(*codes) != 1 || (*codes)[0] != tt.wantCode {
				t.Errorf("exit codes = %v, want [%d]", *codes, tt.wantCode)
			}
			if out.String() != tt.wantOut {
				t.Errorf("stderr = %q, want %q", out.String(), tt.wantOut)
			}
		})
	}
}

func TestExitErrHandler_RegularError(t *testing.T) {
	codes, out := capture(t)
	exitErrHandler(nil, errors.New("regular error"))
	if len(*codes) != 1 || (*codes)[0] != 1 {
		t.Errorf("exit codes = %v, want [1]", *codes)
	}
	if out.String() != "Error: regular error\n" {
		t.Errorf("stderr = %q", out.String())
	}
}
