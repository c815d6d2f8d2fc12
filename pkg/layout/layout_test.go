package layout

import (
	"testing"
	"time"

	"github.com/OpenTraceLab/OpenTraceKeypad/pkg/keypad"
)

func mustParse(t *testing.T, input string) *File {
	t.Helper()
	parser, err := NewParser()
	if err != nil {
		t.Fatalf("Failed to create parser: %v", err)
	}
	file, err := parser.ParseString(input)
	if err != nil {
		t.Fatalf("Failed to parse: %v", err)
	}
	return file
}

func TestLayoutsValid(t *testing.T) {
	file := mustParse(t, `
keypad "panel" {
  rows 5 6 7 8
  cols 9 10 11
  keys {
    "123"
    "456"
    "789"
    "*0#"
  }
  debounce 25
  hold 750
  settle_us 20
}
`)

	layouts, err := Layouts(file)
	if err != nil {
		t.Fatalf("Layouts returned error: %v", err)
	}
	if len(layouts) != 1 {
		t.Fatalf("got %d layouts, want 1", len(layouts))
	}

	l := layouts[0]
	if l.Name != "panel" {
		t.Errorf("name = %q, want %q", l.Name, "panel")
	}
	if len(l.RowLines) != 4 || len(l.ColLines) != 3 {
		t.Errorf("matrix = %dx%d lines, want 4x3", len(l.RowLines), len(l.ColLines))
	}
	if l.Keymap[3][0] != '*' || l.Keymap[1][1] != '5' {
		t.Errorf("keymap = %q, symbols misplaced", l.Keymap)
	}
	if l.Debounce != 25 || l.Hold != 750 {
		t.Errorf("timings = %d/%d ms, want 25/750", l.Debounce, l.Hold)
	}
	if l.Settle != 20*time.Microsecond {
		t.Errorf("settle = %v, want 20µs", l.Settle)
	}
}

func TestLayoutsValidation(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{
			"no keypads",
			`-- empty file`,
		},
		{
			"missing rows",
			`keypad "p" { cols 1 2 keys { "ab" } }`,
		},
		{
			"missing cols",
			`keypad "p" { rows 1 2 keys { "ab" } }`,
		},
		{
			"missing keys",
			`keypad "p" { rows 1 2 cols 3 4 }`,
		},
		{
			"keys row count mismatch",
			`keypad "p" { rows 1 2 cols 3 4 keys { "ab" } }`,
		},
		{
			"keys row width mismatch",
			`keypad "p" { rows 1 2 cols 3 4 keys { "ab" "c" } }`,
		},
		{
			"line out of range",
			`keypad "p" { rows 1 300 cols 3 4 keys { "ab" "cd" } }`,
		},
		{
			"line assigned twice",
			`keypad "p" { rows 1 2 cols 2 3 keys { "ab" "cd" } }`,
		},
		{
			"rows given twice",
			`keypad "p" { rows 1 2 rows 5 6 cols 3 4 keys { "ab" "cd" } }`,
		},
		{
			"duplicate keypad name",
			`keypad "p" { rows 1 2 cols 3 4 keys { "ab" "cd" } }
			 keypad "p" { rows 5 6 cols 7 8 keys { "ab" "cd" } }`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file := mustParse(t, tt.input)
			if _, err := Layouts(file); err == nil {
				t.Errorf("expected validation error")
			}
		})
	}
}

func TestBuildScansThroughDriver(t *testing.T) {
	file := mustParse(t, `
keypad "p" {
  rows 5 6
  cols 9 10
  keys {
    "12"
    "34"
  }
  debounce 5
}
`)
	layouts, err := Layouts(file)
	if err != nil {
		t.Fatalf("Layouts returned error: %v", err)
	}

	sim := keypad.NewSimDriver(keypad.DriverInfo{Name: "sim"})
	kp, err := layouts[0].Build(sim)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	sim.Advance(100)
	sim.Close(6, 10) // row line 6, column line 10 -> '4'
	if got := kp.GetKey(); got != '4' {
		t.Errorf("GetKey() = %q, want '4'", got)
	}
	if kp.State() != keypad.StatePressed {
		t.Errorf("State() = %v, want PRESSED", kp.State())
	}
	if !sim.OutputsIdle() {
		t.Errorf("column left driven after scan")
	}
}
