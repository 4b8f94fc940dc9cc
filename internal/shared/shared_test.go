package shared

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestGenerateID(t *testing.T) {
	seen := make(map[string]bool)
	for range 100 {
		id := GenerateID()
		if id == "" {
			t.Fatal("GenerateID() returned empty string")
		}
		if seen[id] {
			t.Fatalf("GenerateID() returned duplicate %q", id)
		}
		seen[id] = true
	}
}

func TestGenerateState(t *testing.T) {
	if GenerateState() == GenerateState() {
		t.Error("GenerateState() should not repeat")
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf)

	logger.Info("hello", "key", "value")

	out := buf.String()
	if !strings.Contains(out, "hello") || !strings.Contains(out, "key") {
		t.Errorf("logger output = %q", out)
	}

	if NewLogger(nil) == nil {
		t.Error("NewLogger(nil) should fall back to stderr")
	}
}

func TestWithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := WithLogger(NewLogger(&buf), "component", "test")

	logger.Info("tagged")

	if !strings.Contains(buf.String(), "component") {
		t.Errorf("child logger output = %q", buf.String())
	}
}

func TestMarshalJSON(t *testing.T) {
	data := map[string]int{"n": 1}

	compact, err := MarshalJSON(data, false)
	if err != nil {
		t.Fatalf("MarshalJSON() error: %v", err)
	}
	if string(compact) != `{"n":1}` {
		t.Errorf("compact = %q", compact)
	}

	pretty, err := MarshalJSON(data, true)
	if err != nil {
		t.Fatalf("MarshalJSON() error: %v", err)
	}
	if !json.Valid(pretty) || !strings.Contains(string(pretty), "\n") {
		t.Errorf("pretty = %q", pretty)
	}

	if _, err := MarshalJSON(make(chan int), false); err == nil {
		t.Error("MarshalJSON() expected error for unsupported type")
	}
}
