package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestFormatError(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	tests := []struct {
		name     string
		opts     ErrorOptions
		contains []string
	}{
		{
			name: "basic error",
			opts: ErrorOptions{
				Level:   ErrorLevelError,
				Context: "binding failed: Ticket",
				Problem: "1 attribute could not be resolved.",
			},
			contains: []string{
				"❌",
				"BINDING FAILED: TICKET",
				"1 attribute could not be resolved.",
			},
		},
		{
			name: "error with details",
			opts: ErrorOptions{
				Level:   ErrorLevelError,
				Problem: "bad mapping",
				Details: []string{"Ticket.a: boom", "Ticket.b: bang"},
			},
			contains: []string{
				"- Ticket.a: boom",
				"- Ticket.b: bang",
			},
		},
		{
			name: "error with suggestions",
			opts: ErrorOptions{
				Level:       ErrorLevelError,
				Context:     "CONVERTER NOT FOUND",
				Problem:     "unknown converter",
				Suggestions: []string{"yes_no", "true_false"},
			},
			contains: []string{
				"Did you mean: yes_no, true_false?",
			},
		},
		{
			name: "error with help commands",
			opts: ErrorOptions{
				Level:        ErrorLevelError,
				Problem:      "failed",
				HelpCommands: []string{"Get help: typebind --help"},
			},
			contains: []string{
				"→ Get help: typebind --help",
			},
		},
		{
			name: "warning message",
			opts: ErrorOptions{
				Level:   ErrorLevelWarning,
				Problem: "Mapping declares no resources",
			},
			contains: []string{
				"⚠️",
				"Mapping declares no resources",
			},
		},
		{
			name: "info message",
			opts: ErrorOptions{
				Level:   ErrorLevelInfo,
				Problem: "Resolved 3 resources",
			},
			contains: []string{
				"ℹ️",
				"Resolved 3 resources",
			},
		},
		{
			name: "error with consequence",
			opts: ErrorOptions{
				Level:       ErrorLevelError,
				Context:     "BINDING FAILED",
				Problem:     "conflict",
				Consequence: "No columns were bound",
			},
			contains: []string{
				"conflict",
				"No columns were bound",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FormatError(tt.opts)

			for _, expected := range tt.contains {
				if !strings.Contains(result, expected) {
					t.Errorf("FormatError() output missing expected string:\nExpected to contain: %q\nGot: %q", expected, result)
				}
			}
		})
	}
}

func TestBindingError(t *testing.T) {
	result := BindingError("Ticket", []string{
		"Ticket.quantity: conflicting type mapping",
		"Ticket.status: invalid enum descriptor",
	}, true)

	expected := []string{
		"BINDING FAILED: TICKET",
		"2 attributes could not be resolved.",
		"- Ticket.quantity: conflicting type mapping",
		"- Ticket.status: invalid enum descriptor",
		"typebind resolve <mapping.yaml> --dump",
	}

	for _, exp := range expected {
		if !strings.Contains(result, exp) {
			t.Errorf("BindingError() missing expected string: %q", exp)
		}
	}

	single := BindingError("Ticket", []string{"Ticket.a: x"}, true)
	if !strings.Contains(single, "1 attribute could not be resolved.") {
		t.Errorf("BindingError() should use the singular form, got %q", single)
	}
}

func TestConverterNotFoundError(t *testing.T) {
	result := ConverterNotFoundError("Ticket.id", "uuid_txt", []string{"uuid_text"}, true)

	expected := []string{
		"CONVERTER NOT FOUND",
		"Ticket.id references converter 'uuid_txt'",
		"Did you mean: uuid_text?",
	}

	for _, exp := range expected {
		if !strings.Contains(result, exp) {
			t.Errorf("ConverterNotFoundError() missing expected string: %q", exp)
		}
	}
}

func TestConfigError(t *testing.T) {
	result := ConfigError("mapping.concurrency must be positive", true)

	expected := []string{
		"CONFIGURATION ERROR",
		"mapping.concurrency must be positive",
		"cat typebind.yml",
	}

	for _, exp := range expected {
		if !strings.Contains(result, exp) {
			t.Errorf("ConfigError() missing expected string: %q", exp)
		}
	}
}

func TestWriteError(t *testing.T) {
	var buf bytes.Buffer
	WriteError(&buf, ErrorOptions{
		Level:   ErrorLevelError,
		Context: "TEST ERROR",
		Problem: "This is a test",
		NoColor: true,
	})

	if !strings.Contains(buf.String(), "TEST ERROR") {
		t.Errorf("WriteError() did not write to buffer correctly")
	}
}

func TestWriteSuccess(t *testing.T) {
	var buf bytes.Buffer
	WriteSuccess(&buf, "Resolved 2 resources", true)

	output := buf.String()
	if !strings.Contains(output, "✓") {
		t.Errorf("WriteSuccess() missing checkmark")
	}
	if !strings.Contains(output, "Resolved 2 resources") {
		t.Errorf("WriteSuccess() missing message")
	}
}

func TestWarning(t *testing.T) {
	result := Warning("Mapping declares no resources", true)

	if !strings.Contains(result, "⚠️") || !strings.Contains(result, "Mapping declares no resources") {
		t.Errorf("Warning() unexpected output: %q", result)
	}
}
