package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestSpinnerStartStop(t *testing.T) {
	var buf bytes.Buffer
	spinner := NewSpinner(&buf, "Applying migration", time.Millisecond, true)

	spinner.Start()
	spinner.Start()
	time.Sleep(20 * time.Millisecond)
	spinner.Stop()
	spinner.Stop()

	output := buf.String()
	if !strings.Contains(output, "Applying migration") {
		t.Errorf("expected spinner message in output, got %q", output)
	}
	if !strings.HasSuffix(output, "\r\033[K") {
		t.Errorf("expected the line to be cleared on stop, got %q", output)
	}
}

func TestSpinnerStopWithoutStart(t *testing.T) {
	var buf bytes.Buffer
	NewSpinner(&buf, "idle", 0, true).Stop()

	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestSpinnerDefaultInterval(t *testing.T) {
	spinner := NewSpinner(&bytes.Buffer{}, "x", 0, true)
	if spinner.interval != 100*time.Millisecond {
		t.Errorf("expected default interval 100ms, got %v", spinner.interval)
	}
}

func TestWithSpinner(t *testing.T) {
	var buf bytes.Buffer
	called := false

	err := WithSpinner(&buf, "Applying migration", true, func() error {
		called = true
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Error("expected the function to run")
	}
	if !strings.Contains(buf.String(), "✓ Applying migration") {
		t.Errorf("expected success line, got %q", buf.String())
	}
}

func TestWithSpinnerError(t *testing.T) {
	var buf bytes.Buffer
	want := errors.New("connection refused")

	err := WithSpinner(&buf, "Applying migration", true, func() error { return want })
	if !errors.Is(err, want) {
		t.Fatalf("expected the function error, got %v", err)
	}
	if !strings.Contains(buf.String(), "❌ Applying migration failed") {
		t.Errorf("expected failure line, got %q", buf.String())
	}
}
