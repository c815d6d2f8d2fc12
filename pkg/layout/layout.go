package layout

import (
	"fmt"
	"time"

	"github.com/OpenTraceLab/OpenTraceKeypad/pkg/keypad"
)

// Layout is a semantically validated keypad definition, ready to build a
// driver-backed keypad from. Zero timing values mean "use the package
// defaults".
type Layout struct {
	Name     string
	RowLines []uint8
	ColLines []uint8
	Keymap   [][]rune
	Debounce uint32 // milliseconds
	Hold     uint32 // milliseconds
	Settle   time.Duration
}

// Layouts validates every keypad block in the file and returns them in
// declaration order.
func Layouts(f *File) ([]*Layout, error) {
	if len(f.Keypads) == 0 {
		return nil, fmt.Errorf("layout: file defines no keypads")
	}

	var out []*Layout
	seen := make(map[string]bool)
	for _, def := range f.Keypads {
		if seen[def.Name] {
			return nil, fmt.Errorf("layout: duplicate keypad %q", def.Name)
		}
		seen[def.Name] = true

		l, err := validate(def)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

// validate turns one parsed block into a Layout, checking everything the
// keypad constructor cannot: line number range, duplicate line assignments,
// keymap shape against the line lists, and sane timing values.
func validate(def *KeypadDef) (*Layout, error) {
	l := &Layout{Name: def.Name}

	var keys *Keys
	for _, f := range def.Fields {
		switch {
		case f.Rows != nil:
			if l.RowLines != nil {
				return nil, fmt.Errorf("layout %q: rows given twice", def.Name)
			}
			lines, err := lineList(def.Name, "rows", f.Rows)
			if err != nil {
				return nil, err
			}
			l.RowLines = lines
		case f.Cols != nil:
			if l.ColLines != nil {
				return nil, fmt.Errorf("layout %q: cols given twice", def.Name)
			}
			lines, err := lineList(def.Name, "cols", f.Cols)
			if err != nil {
				return nil, err
			}
			l.ColLines = lines
		case f.Keys != nil:
			if keys != nil {
				return nil, fmt.Errorf("layout %q: keys given twice", def.Name)
			}
			keys = f.Keys
		case f.Debounce != nil:
			l.Debounce = uint32(*f.Debounce)
		case f.Hold != nil:
			l.Hold = uint32(*f.Hold)
		case f.Settle != nil:
			l.Settle = time.Duration(*f.Settle) * time.Microsecond
		}
	}

	if l.RowLines == nil {
		return nil, fmt.Errorf("layout %q: missing rows", def.Name)
	}
	if l.ColLines == nil {
		return nil, fmt.Errorf("layout %q: missing cols", def.Name)
	}
	if keys == nil {
		return nil, fmt.Errorf("layout %q: missing keys", def.Name)
	}

	used := make(map[uint8]bool)
	for _, line := range append(append([]uint8{}, l.RowLines...), l.ColLines...) {
		if used[line] {
			return nil, fmt.Errorf("layout %q: line %d assigned twice", def.Name, line)
		}
		used[line] = true
	}

	if len(keys.Rows) != len(l.RowLines) {
		return nil, fmt.Errorf("layout %q: keys has %d rows, rows lists %d lines",
			def.Name, len(keys.Rows), len(l.RowLines))
	}
	for i, row := range keys.Rows {
		runes := []rune(row)
		if len(runes) != len(l.ColLines) {
			return nil, fmt.Errorf("layout %q: keys row %d has %d symbols, cols lists %d lines",
				def.Name, i, len(runes), len(l.ColLines))
		}
		l.Keymap = append(l.Keymap, runes)
	}

	return l, nil
}

func lineList(name, field string, values []int) ([]uint8, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("layout %q: empty %s", name, field)
	}
	lines := make([]uint8, len(values))
	for i, v := range values {
		if v < 0 || v > 255 {
			return nil, fmt.Errorf("layout %q: %s line %d out of range", name, field, v)
		}
		lines[i] = uint8(v)
	}
	return lines, nil
}

// Build constructs a keypad over drv, applies the layout's timing overrides
// and configures the matrix lines.
func (l *Layout) Build(drv keypad.LineDriver) (*keypad.Keypad, error) {
	kp, err := keypad.New(drv, l.Keymap, l.RowLines, l.ColLines)
	if err != nil {
		return nil, err
	}
	if l.Debounce != 0 {
		kp.SetDebounceTime(l.Debounce)
	}
	if l.Hold != 0 {
		kp.SetHoldTime(l.Hold)
	}
	if l.Settle != 0 {
		kp.SetSettleTime(l.Settle)
	}
	if err := kp.Begin(); err != nil {
		return nil, err
	}
	return kp, nil
}
