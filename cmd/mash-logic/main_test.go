package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	logger, err := newLogger(&buf, "warn", "json")
	if err != nil {
		t.Fatalf("newLogger failed: %v", err)
	}
	logger.Info("hidden")
	logger.Warn("shown", "device", "inv")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info record passed a warn logger: %s", out)
	}
	if !strings.Contains(out, `"device":"inv"`) {
		t.Errorf("expected JSON attrs, got: %s", out)
	}

	if _, err := newLogger(&buf, "loud", "text"); err == nil {
		t.Error("expected error for invalid level")
	}
	if _, err := newLogger(&buf, "info", "xml"); err == nil {
		t.Error("expected error for invalid format")
	}
}
