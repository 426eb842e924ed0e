package tracer

import (
	"strings"
	"testing"
)

func TestNewTraceIDFormat(t *testing.T) {
	id := NewTraceID()
	if !strings.HasPrefix(id, "c-") {
		t.Errorf("expected c- prefix, got %q", id)
	}
	if len(id) != len("c-")+12 {
		t.Errorf("expected 12 hex chars, got %q", id)
	}
}

func TestNewTraceIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewTraceID()
		if seen[id] {
			t.Fatalf("duplicate trace id %q", id)
		}
		seen[id] = true
	}
}
