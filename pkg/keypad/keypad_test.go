package keypad

import "testing"

var (
	testKeymap = [][]rune{
		{'1', '2', '3'},
		{'4', '5', '6'},
		{'7', '8', '9'},
		{'*', '0', '#'},
	}
	testRows = []uint8{5, 6, 7, 8}
	testCols = []uint8{9, 10, 11}
)

// newTestKeypad builds a configured 4x3 keypad on a simulator and advances
// the virtual clock past the power-on debounce window so the first commit is
// not suppressed.
func newTestKeypad(t *testing.T) (*Keypad, *SimDriver) {
	t.Helper()

	sim := NewSimDriver(DriverInfo{Name: "sim"})
	kp, err := New(sim, testKeymap, testRows, testCols)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if err := kp.Begin(); err != nil {
		t.Fatalf("Begin returned error: %v", err)
	}
	sim.Advance(1000)
	return kp, sim
}

func press(sim *SimDriver, row, col int) {
	sim.Close(testRows[row], testCols[col])
}

func release(sim *SimDriver, row, col int) {
	sim.Open(testRows[row], testCols[col])
}

func TestNewValidation(t *testing.T) {
	sim := NewSimDriver(DriverInfo{})

	tests := []struct {
		name    string
		drv     LineDriver
		keymap  [][]rune
		rows    []uint8
		cols    []uint8
		wantErr bool
	}{
		{"valid", sim, testKeymap, testRows, testCols, false},
		{"nil driver", nil, testKeymap, testRows, testCols, true},
		{"row count mismatch", sim, testKeymap, []uint8{5, 6}, testCols, true},
		{"ragged keymap row", sim, [][]rune{{'1', '2', '3'}, {'4', '5'}}, []uint8{5, 6}, testCols, true},
		{"empty matrix", sim, nil, nil, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.drv, tt.keymap, tt.rows, tt.cols)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestBeginConfiguresLines(t *testing.T) {
	_, sim := newTestKeypad(t)

	for _, c := range testCols {
		if sim.Mode(c) != LineOutput {
			t.Errorf("column line %d mode = %v, want output", c, sim.Mode(c))
		}
	}
	for _, r := range testRows {
		if sim.Mode(r) != LineInput {
			t.Errorf("row line %d mode = %v, want input", r, sim.Mode(r))
		}
	}
	if !sim.OutputsIdle() {
		t.Errorf("columns not idle after Begin")
	}
}

func TestGetKeySingleClosure(t *testing.T) {
	for r := 0; r < len(testRows); r++ {
		for c := 0; c < len(testCols); c++ {
			kp, sim := newTestKeypad(t)
			press(sim, r, c)

			if got := kp.GetKey(); got != testKeymap[r][c] {
				t.Errorf("GetKey at (%d,%d) = %q, want %q", r, c, got, testKeymap[r][c])
			}
			if !sim.OutputsIdle() {
				t.Errorf("column left driven after scan at (%d,%d)", r, c)
			}
			if sim.PeakDriven() != 1 {
				t.Errorf("peak driven columns = %d, want 1", sim.PeakDriven())
			}
		}
	}
}

func TestGetKeyNoClosure(t *testing.T) {
	kp, sim := newTestKeypad(t)

	if got := kp.GetKey(); got != NoKey {
		t.Errorf("GetKey() = %q, want NoKey", got)
	}
	if kp.State() != StateReleased {
		t.Errorf("State() = %v, want RELEASED", kp.State())
	}
	if !sim.OutputsIdle() {
		t.Errorf("column left driven after empty scan")
	}
}

func TestGetKeyTieBreak(t *testing.T) {
	tests := []struct {
		name   string
		closed [][2]int // (row, col)
		want   rune
	}{
		{"lower column wins", [][2]int{{2, 1}, {1, 0}}, '4'},
		{"lower row wins within column", [][2]int{{2, 0}, {0, 0}}, '1'},
		{"corner cases", [][2]int{{3, 2}, {0, 2}, {0, 1}}, '2'},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kp, sim := newTestKeypad(t)
			for _, rc := range tt.closed {
				press(sim, rc[0], rc[1])
			}
			if got := kp.GetKey(); got != tt.want {
				t.Errorf("GetKey() = %q, want %q", got, tt.want)
			}
			if !sim.OutputsIdle() {
				t.Errorf("column left driven after tie-break scan")
			}
		})
	}
}

func TestGetKeysScanOrderAndTruncation(t *testing.T) {
	kp, sim := newTestKeypad(t)
	// Closed out of order; reported in ascending (column, row) order.
	press(sim, 3, 2) // '#'
	press(sim, 0, 0) // '1'
	press(sim, 1, 1) // '5'

	buf := make([]rune, 8)
	n := kp.GetKeys(buf)
	if n != 3 {
		t.Fatalf("GetKeys() count = %d, want 3", n)
	}
	if got := string(buf[:n]); got != "15#" {
		t.Errorf("GetKeys() = %q, want %q", got, "15#")
	}

	small := make([]rune, 2)
	if n := kp.GetKeys(small); n != 2 {
		t.Errorf("GetKeys() with capacity 2 = %d, want 2", n)
	}
	if string(small) != "15" {
		t.Errorf("truncated GetKeys() = %q, want %q", string(small), "15")
	}

	if n := kp.GetKeys(nil); n != 0 {
		t.Errorf("GetKeys(nil) = %d, want 0", n)
	}
	if !sim.OutputsIdle() {
		t.Errorf("column left driven after multi-key scan")
	}
}

func TestScanIdempotent(t *testing.T) {
	kp, sim := newTestKeypad(t)
	press(sim, 1, 2) // '6'

	for i := 0; i < 5; i++ {
		if got := kp.GetKey(); got != '6' {
			t.Fatalf("GetKey() iteration %d = %q, want '6'", i, got)
		}
	}
	buf := make([]rune, 4)
	for i := 0; i < 5; i++ {
		if n := kp.GetKeys(buf); n != 1 || buf[0] != '6' {
			t.Fatalf("GetKeys() iteration %d = %d/%q", i, n, buf[0])
		}
	}
	if !sim.OutputsIdle() {
		t.Errorf("residual driven line after repeated scans")
	}
}

func TestDebounceSuppressesFastToggle(t *testing.T) {
	kp, sim := newTestKeypad(t)

	var events []rune
	kp.AddEventListener(func(key rune) { events = append(events, key) })

	press(sim, 0, 0)
	if got := kp.GetKey(); got != '1' {
		t.Fatalf("GetKey() = %q, want '1'", got)
	}
	if kp.State() != StatePressed {
		t.Fatalf("State() = %v, want PRESSED", kp.State())
	}

	// Release 10 ms later, inside the 50 ms window: raw result changes but
	// no state commits.
	sim.Advance(10)
	release(sim, 0, 0)
	if got := kp.GetKey(); got != NoKey {
		t.Fatalf("GetKey() = %q, want NoKey", got)
	}
	if kp.State() != StatePressed {
		t.Errorf("State() after suppressed release = %v, want PRESSED", kp.State())
	}
	if kp.IsPressed('1') {
		t.Errorf("IsPressed('1') = true after raw release; lastKey must track the raw scan")
	}
	if len(events) != 1 || events[0] != '1' {
		t.Errorf("events = %q, want just the press", string(events))
	}
}

func TestDebounceBoundaryIsStrict(t *testing.T) {
	kp, sim := newTestKeypad(t)

	press(sim, 0, 0)
	kp.GetKey()

	// A change landing exactly debounce ms after the last commit is held
	// for one more cycle.
	sim.Advance(50)
	release(sim, 0, 0)
	kp.GetKey()
	if kp.State() != StatePressed {
		t.Errorf("State() at exact boundary = %v, want PRESSED", kp.State())
	}
}

func TestDebouncedReleaseCommits(t *testing.T) {
	kp, sim := newTestKeypad(t)

	var events []rune
	kp.AddEventListener(func(key rune) { events = append(events, key) })

	press(sim, 0, 0)
	kp.GetKey()

	sim.Advance(60)
	release(sim, 0, 0)
	if got := kp.GetKey(); got != NoKey {
		t.Fatalf("GetKey() = %q, want NoKey", got)
	}
	if kp.State() != StateReleased {
		t.Errorf("State() = %v, want RELEASED", kp.State())
	}
	// The listener sees the new raw key on release, i.e. NoKey, not the key
	// that was let go.
	if len(events) != 2 || events[1] != NoKey {
		t.Errorf("release event = %v, want NoKey", events)
	}
}

func TestHoldFiresOnce(t *testing.T) {
	kp, sim := newTestKeypad(t)

	var events []rune
	kp.AddEventListener(func(key rune) { events = append(events, key) })

	press(sim, 2, 1) // '8'
	kp.GetKey()

	sim.Advance(999)
	kp.GetKey()
	if kp.State() != StatePressed {
		t.Fatalf("State() at 999 ms = %v, want PRESSED", kp.State())
	}

	sim.Advance(1)
	kp.GetKey()
	if kp.State() != StateHold {
		t.Fatalf("State() at 1000 ms = %v, want HOLD", kp.State())
	}

	sim.Advance(500)
	kp.GetKey()
	kp.GetKey()
	if kp.State() != StateHold {
		t.Errorf("State() while still held = %v, want HOLD", kp.State())
	}

	want := []rune{'8', '8'} // press, then exactly one hold
	if string(events) != string(want) {
		t.Errorf("events = %q, want %q", string(events), string(want))
	}
}

func TestReleaseRepressRearmsHold(t *testing.T) {
	kp, sim := newTestKeypad(t)

	press(sim, 0, 0)
	kp.GetKey()
	sim.Advance(1000)
	kp.GetKey()
	if kp.State() != StateHold {
		t.Fatalf("State() = %v, want HOLD", kp.State())
	}

	sim.Advance(100)
	release(sim, 0, 0)
	kp.GetKey()
	if kp.State() != StateReleased {
		t.Fatalf("State() = %v, want RELEASED", kp.State())
	}

	sim.Advance(100)
	press(sim, 0, 0)
	kp.GetKey()
	if kp.State() != StatePressed {
		t.Fatalf("State() after re-press = %v, want PRESSED", kp.State())
	}

	// The hold timer restarts from the new press, not the old one.
	sim.Advance(999)
	kp.GetKey()
	if kp.State() != StatePressed {
		t.Errorf("State() 999 ms into re-press = %v, want PRESSED", kp.State())
	}
	sim.Advance(1)
	kp.GetKey()
	if kp.State() != StateHold {
		t.Errorf("State() 1000 ms into re-press = %v, want HOLD", kp.State())
	}
}

func TestIsPressedTracksRawScan(t *testing.T) {
	kp, sim := newTestKeypad(t)

	if kp.IsPressed('1') {
		t.Errorf("IsPressed('1') = true before any scan")
	}
	if !kp.IsPressed(NoKey) {
		t.Errorf("IsPressed(NoKey) = false before any scan")
	}

	press(sim, 0, 1) // '2'
	kp.GetKey()
	if !kp.IsPressed('2') {
		t.Errorf("IsPressed('2') = false while pressed")
	}
	if kp.IsPressed('1') {
		t.Errorf("IsPressed('1') = true while '2' pressed")
	}
}

func TestTransitionTo(t *testing.T) {
	kp, sim := newTestKeypad(t)

	var events []rune
	kp.AddEventListener(func(key rune) { events = append(events, key) })

	// No key down yet: state changes, listener stays quiet.
	kp.TransitionTo(StateHold)
	if kp.State() != StateHold {
		t.Fatalf("State() = %v, want HOLD", kp.State())
	}
	if len(events) != 0 {
		t.Fatalf("listener fired with no key down: %q", string(events))
	}

	// Same state again: no transition, no event.
	kp.TransitionTo(StateHold)
	if len(events) != 0 {
		t.Fatalf("listener fired on no-op transition")
	}

	press(sim, 0, 0)
	kp.GetKey() // commits PRESSED, one event
	kp.TransitionTo(StateReleased)
	if kp.State() != StateReleased {
		t.Errorf("State() = %v, want RELEASED", kp.State())
	}
	want := []rune{'1', '1'}
	if string(events) != string(want) {
		t.Errorf("events = %q, want %q", string(events), string(want))
	}
}

func TestListenerReplacement(t *testing.T) {
	kp, sim := newTestKeypad(t)

	firstCalls := 0
	secondCalls := 0
	kp.AddEventListener(func(rune) { firstCalls++ })
	kp.AddEventListener(func(rune) { secondCalls++ })

	press(sim, 0, 0)
	kp.GetKey()
	if firstCalls != 0 || secondCalls != 1 {
		t.Errorf("listener calls = %d/%d, want 0/1 (single slot, last writer wins)", firstCalls, secondCalls)
	}
}

func TestSetTimings(t *testing.T) {
	kp, sim := newTestKeypad(t)

	kp.SetDebounceTime(5)
	kp.SetHoldTime(100)

	press(sim, 0, 0)
	kp.GetKey()
	sim.Advance(10)
	release(sim, 0, 0)
	kp.GetKey()
	if kp.State() != StateReleased {
		t.Errorf("State() with 5 ms debounce = %v, want RELEASED", kp.State())
	}

	sim.Advance(10)
	press(sim, 0, 0)
	kp.GetKey()
	sim.Advance(100)
	kp.GetKey()
	if kp.State() != StateHold {
		t.Errorf("State() with 100 ms hold = %v, want HOLD", kp.State())
	}
}

func TestClockWraparound(t *testing.T) {
	kp, sim := newTestKeypad(t)

	// Park the clock just short of the 32-bit boundary, commit a press,
	// then let the counter wrap before the release.
	sim.Advance(0xFFFFFFF0 - sim.Now())
	press(sim, 0, 0)
	kp.GetKey()
	if kp.State() != StatePressed {
		t.Fatalf("State() before wrap = %v, want PRESSED", kp.State())
	}

	sim.Advance(60) // wraps to 0x0000002C
	release(sim, 0, 0)
	kp.GetKey()
	if kp.State() != StateReleased {
		t.Errorf("State() after wrap = %v, want RELEASED (modular subtraction must see 60 ms)", kp.State())
	}
}

func TestSettleAppliedPerColumn(t *testing.T) {
	kp, sim := newTestKeypad(t)

	kp.GetKey()
	if got, want := sim.SettleTotal(), 3*DefaultSettle; got != want {
		t.Errorf("settle total = %v, want %v (one pause per column)", got, want)
	}
}
