package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestTable(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	var buf bytes.Buffer
	table := NewTable(&buf, []string{"Attribute", "Store type", "Converter"}, &TableOptions{NoColor: true})

	table.AddRow("id", "uuid", "-")
	table.AddRow("status", "tinyint", "builtin:ordinal:Status")
	table.AddRow("active", "varchar(255)", "yes_no")

	table.Render()

	output := buf.String()

	for _, want := range []string{"Attribute", "Store type", "Converter", "status", "tinyint", "yes_no", "─"} {
		if !strings.Contains(output, want) {
			t.Errorf("Table output missing %q", want)
		}
	}

	if table.Len() != 3 {
		t.Errorf("expected 3 rows, got %d", table.Len())
	}
}

func TestTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, []string{}, &TableOptions{NoColor: true})

	table.Render()

	if buf.String() != "" {
		t.Errorf("Expected empty output for table with no headers, got: %q", buf.String())
	}
}

func TestTableRaggedRows(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, []string{"A", "B"}, &TableOptions{NoColor: true})

	table.AddRow("only")
	table.AddRow("x", "y", "dropped")
	table.Render()

	output := buf.String()
	if strings.Contains(output, "dropped") {
		t.Errorf("expected extra cells to be dropped, got %q", output)
	}
	if !strings.Contains(output, "only") {
		t.Errorf("expected short row to render, got %q", output)
	}
}

func TestTableAlignment(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, []string{"Name", "Value"}, &TableOptions{NoColor: true})

	table.AddRow("ÅNGSTRÖM", "1")
	table.AddRow("x", "2")
	table.Render()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d: %q", len(lines), buf.String())
	}

	// The value column starts at the same rune offset on every row
	want := strings.Index(lines[0], "Value")
	for _, line := range lines[2:] {
		runes := []rune(line)
		col := len([]rune(lines[0][:want]))
		if col >= len(runes) || runes[col] == ' ' {
			t.Errorf("misaligned row %q", line)
		}
	}
}

func TestKeyValueTable(t *testing.T) {
	var buf bytes.Buffer
	kvTable := NewKeyValueTable(&buf, true)

	kvTable.AddRow("Resource", "Ticket")
	kvTable.AddRow("Table", "ticket")
	kvTable.AddRow("Attributes", "6")

	kvTable.Render()

	output := buf.String()
	for _, exp := range []string{"Resource:", "Ticket", "Table:", "ticket", "Attributes:", "6"} {
		if !strings.Contains(output, exp) {
			t.Errorf("KeyValueTable output missing: %q", exp)
		}
	}
}

func TestKeyValueTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	NewKeyValueTable(&buf, true).Render()

	if buf.String() != "" {
		t.Errorf("Expected empty output for empty KeyValueTable, got: %q", buf.String())
	}
}

func TestSection(t *testing.T) {
	var buf bytes.Buffer
	section := NewSection(&buf, "DDL", true)

	section.AddLine("CREATE TABLE \"ticket\" (\n  \"id\" UUID NOT NULL\n);")
	section.Render()

	output := buf.String()
	if !strings.HasPrefix(output, "DDL\n") {
		t.Errorf("Section output missing title: %q", output)
	}
	if !strings.Contains(output, "  CREATE TABLE") || !strings.Contains(output, "    \"id\" UUID NOT NULL") {
		t.Errorf("Section lines not indented: %q", output)
	}
}

func TestHeader(t *testing.T) {
	var buf bytes.Buffer
	Header(&buf, "Ticket", true)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 || lines[0] != "Ticket" {
		t.Fatalf("unexpected header output: %q", buf.String())
	}
	if lines[1] != strings.Repeat("─", 6) {
		t.Errorf("expected divider as wide as the title, got %q", lines[1])
	}
}

func TestDividerDefaultWidth(t *testing.T) {
	var buf bytes.Buffer
	Divider(&buf, 0, true)

	if got := strings.TrimRight(buf.String(), "\n"); got != strings.Repeat("─", 80) {
		t.Errorf("expected 80 wide divider, got %d runes", len([]rune(got)))
	}
}

func TestPadRight(t *testing.T) {
	tests := []struct {
		input    string
		width    int
		expected string
	}{
		{"test", 10, "test      "},
		{"test", 4, "test"},
		{"test", 2, "test"},
		{"", 5, "     "},
		{"ÅÖ", 4, "ÅÖ  "},
	}

	for _, tt := range tests {
		result := padRight(tt.input, tt.width)
		if result != tt.expected {
			t.Errorf("padRight(%q, %d) = %q; want %q", tt.input, tt.width, result, tt.expected)
		}
	}
}
