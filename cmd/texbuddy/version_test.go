package main

import (
	"bytes"
	"strings"
	"testing"
)

// TestNewVersionCmd tests the version command output.
func TestNewVersionCmd(t *testing.T) {
	t.Parallel()

	cmd := NewVersionCmd()

	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.Run(cmd, nil)

	output := buf.String()
	if !strings.Contains(output, "texbuddy version") {
		t.Errorf("expected version line in output, got: %s", output)
	}
	if !strings.Contains(output, "commit:") {
		t.Errorf("expected commit line in output, got: %s", output)
	}
	if !strings.Contains(output, "built:") {
		t.Errorf("expected build date line in output, got: %s", output)
	}
}

// TestGetVersion tests the version fallback chain.
func TestGetVersion(t *testing.T) {
	t.Parallel()

	if got := getVersion(); got == "" {
		t.Error("expected non-empty version")
	}
}
