package util

import (
	"strings"
	"testing"
)

func TestNewID(t *testing.T) {
	id := NewID("scr")
	if !strings.HasPrefix(id, "scr_") {
		t.Fatalf("expected scr_ prefix, got %q", id)
	}
	if len(id) != len("scr_")+32 {
		t.Fatalf("unexpected id length %d", len(id))
	}
	if NewID("") == NewID("") {
		t.Fatal("ids must be unique")
	}
}
