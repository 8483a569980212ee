package log

import (
	"testing"
	"time"
)

func TestKVHelpers(t *testing.T) {
	cases := []struct {
		name  string
		pair  any
		key   string
		value any
	}{
		{"Str", Str("engine", "mysql"), "engine", "mysql"},
		{"Int", Int("keys", 5), "keys", 5},
		{"Bool", Bool("debug", true), "debug", true},
		{"Dur", Dur("elapsed", time.Second), "elapsed", time.Second},
		{"Any", Any("value", 3.5), "value", 3.5},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			slice, ok := tc.pair.([]any)
			if !ok {
				t.Fatalf("%s should return []any, got %T", tc.name, tc.pair)
			}
			if len(slice) != 2 {
				t.Fatalf("%s should return 2 elements, got %d", tc.name, len(slice))
			}
			if slice[0] != tc.key || slice[1] != tc.value {
				t.Fatalf("%s returned %v, want [%v %v]", tc.name, slice, tc.key, tc.value)
			}
		})
	}
}

func TestDiscard(t *testing.T) {
	logger := Discard()

	// Must never panic and With must keep returning a usable logger.
	logger.Debug("debug")
	logger.Info("info", Str("k", "v"))
	logger.Warn("warn")
	logger.Error(nil, "error")

	child := logger.With(Str("component", "config"))
	if child == nil {
		t.Fatal("With should return a non-nil logger")
	}
	child.Info("still fine")
}
