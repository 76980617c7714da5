package config

import (
	"errors"
	"strings"
	"testing"
)

func TestExpandEnv(t *testing.T) {
	t.Setenv("TEST_VAR", "hello")
	t.Setenv("EMPTY_VAR", "")
	t.Setenv("USER_A", "alice")
	t.Setenv("USER_B", "bob")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"set var", "value: ${TEST_VAR}", "value: hello"},
		{"unset var", "value: ${UNSET_VAR_12345}", "value: "},
		{"default when unset", "value: ${UNSET_VAR_12345:-fallback}", "value: fallback"},
		{"default ignored when set", "value: ${TEST_VAR:-fallback}", "value: hello"},
		{"default when empty", "value: ${EMPTY_VAR:-fallback}", "value: fallback"},
		{"required when set", "value: ${TEST_VAR:?needed}", "value: hello"},
		{"multiple vars", "${USER_A}:${USER_B}", "alice:bob"},
		{"no vars", "no variables here", "no variables here"},
		{"bare dollar untouched", "price: $5", "price: $5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExpandEnv(tt.input)
			if err != nil {
				t.Fatalf("ExpandEnv(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ExpandEnv(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestExpandEnv_Required(t *testing.T) {
	t.Setenv("EMPTY_VAR", "")

	_, err := ExpandEnv("a: ${UNSET_VAR_12345:?webhook token}\nb: ${EMPTY_VAR:?}")
	if !errors.Is(err, ErrRequiredVar) {
		t.Fatalf("err = %v, want ErrRequiredVar", err)
	}
	for _, want := range []string{"UNSET_VAR_12345: webhook token", "EMPTY_VAR: must be set"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q should mention %q", err, want)
		}
	}
}

func TestExpandEnv_NestedInYAML(t *testing.T) {
	t.Setenv("HOOK_TOKEN", "secret")

	input := `adapter:
  type: webhook
  headers:
    Authorization: Bearer ${HOOK_TOKEN}`

	got, err := ExpandEnv(input)
	if err != nil {
		t.Fatalf("ExpandEnv: %v", err)
	}
	want := `adapter:
  type: webhook
  headers:
    Authorization: Bearer secret`

	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}
