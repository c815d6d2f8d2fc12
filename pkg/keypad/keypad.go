// Package keypad scans a row/column switch matrix through an abstract line
// driver and classifies closures into a press/hold/release lifecycle with
// software debouncing. It replaces external debounce hardware for polled
// embedded control loops.
package keypad

import (
	"fmt"
	"time"
)

// KeyState is the externally visible lifecycle phase of the classifier.
type KeyState uint8

const (
	StateReleased KeyState = iota
	StatePressed
	StateHold
)

func (s KeyState) String() string {
	switch s {
	case StateReleased:
		return "RELEASED"
	case StatePressed:
		return "PRESSED"
	case StateHold:
		return "HOLD"
	}
	return fmt.Sprintf("KeyState(%d)", uint8(s))
}

// NoKey is the scan result when no switch in the matrix is closed.
const NoKey rune = 0

// EventListener receives the raw key on each committed press/release and on
// each hold transition. On release it receives NoKey, not the key that was
// released. It runs synchronously inside GetKey on the caller's goroutine;
// a listener that blocks stalls the poll loop, and one that re-enters the
// Keypad corrupts classifier state.
type EventListener func(key rune)

// Timing defaults, overridable per instance.
const (
	DefaultDebounce = 50   // milliseconds
	DefaultHold     = 1000 // milliseconds
	DefaultSettle   = 10 * time.Microsecond
)

// Keypad drives a switch matrix and owns one classifier's state. Instances
// are independent; nothing is shared between them. A Keypad is not safe for
// concurrent use: all methods must be called from a single goroutine, or the
// caller must serialize access externally.
type Keypad struct {
	drv      LineDriver
	keymap   [][]rune
	rowLines []uint8
	colLines []uint8

	debounce uint32 // ms
	hold     uint32 // ms
	settle   time.Duration

	lastKey    rune
	lastChange uint32
	pressStart uint32
	holding    bool
	state      KeyState
	listener   EventListener
}

// New constructs a Keypad over drv. The keymap is indexed [row][column] and
// must match the dimensions of the line lists; mismatches are rejected here
// and nowhere else. The keymap and line slices are retained, not copied, and
// must not be mutated afterwards.
func New(drv LineDriver, keymap [][]rune, rowLines, colLines []uint8) (*Keypad, error) {
	if drv == nil {
		return nil, fmt.Errorf("keypad: nil line driver")
	}
	if _, _, err := ValidateMatrix(keymap, rowLines, colLines); err != nil {
		return nil, err
	}
	return &Keypad{
		drv:      drv,
		keymap:   keymap,
		rowLines: rowLines,
		colLines: colLines,
		debounce: DefaultDebounce,
		hold:     DefaultHold,
		settle:   DefaultSettle,
	}, nil
}

// Begin configures the matrix lines: columns as outputs driven idle, rows as
// inputs. Call once before the first scan.
func (k *Keypad) Begin() error {
	for _, c := range k.colLines {
		if err := k.drv.ConfigureOutput(c); err != nil {
			return fmt.Errorf("keypad: configure column line %d: %w", c, err)
		}
		k.drv.SetLine(c, Low)
	}
	for _, r := range k.rowLines {
		if err := k.drv.ConfigureInput(r); err != nil {
			return fmt.Errorf("keypad: configure row line %d: %w", r, err)
		}
	}
	return nil
}

// scan performs one single-key sweep. Columns are driven active one at a
// time, never two at once, and every column is restored idle on every exit
// path so repeated scans leave no residual line state. With several switches
// closed the lowest (column, row) in scan order wins; that tie-break is the
// contract, not an error.
func (k *Keypad) scan() rune {
	for c, cl := range k.colLines {
		k.drv.SetLine(cl, High)
		k.drv.Delay(k.settle)

		for r, rl := range k.rowLines {
			if k.drv.ReadLine(rl) == High {
				k.drv.SetLine(cl, Low)
				return k.keymap[r][c]
			}
		}

		k.drv.SetLine(cl, Low)
	}
	return NoKey
}

// GetKey polls the matrix once and advances the classifier. The return value
// is the instantaneous raw reading, NoKey when nothing is closed; the
// debounced lifecycle lives in State. Call it at the application's own
// cadence, typically once per control loop iteration.
//
// A raw change is committed only when more than the debounce interval has
// elapsed since the last committed change. The comparison is strictly
// greater, so a change landing exactly on the boundary waits one more cycle.
// A continuous press longer than the hold interval transitions to StateHold
// exactly once; release and re-press re-arm it.
func (k *Keypad) GetKey() rune {
	key := k.scan()
	now := k.drv.Now()

	if key != k.lastKey {
		if now-k.lastChange > k.debounce {
			k.lastChange = now
			k.pressStart = now
			k.holding = false
			if key != NoKey {
				k.state = StatePressed
			} else {
				k.state = StateReleased
			}
			if k.listener != nil {
				k.listener(key)
			}
		}
	} else if key != NoKey && !k.holding && now-k.pressStart >= k.hold {
		k.state = StateHold
		k.holding = true
		if k.listener != nil {
			k.listener(key)
		}
	}

	k.lastKey = key
	return key
}

// GetKeys performs one full sweep and writes every closed key into buf in
// scan order, returning how many were stored. Detections beyond len(buf) are
// dropped silently. The sweep shares no state with the classifier, so
// interleaving it with GetKey does not disturb debounce timing; it does cost
// a second electrical sweep.
func (k *Keypad) GetKeys(buf []rune) int {
	count := 0

	for c, cl := range k.colLines {
		k.drv.SetLine(cl, High)
		k.drv.Delay(k.settle)

		for r, rl := range k.rowLines {
			if k.drv.ReadLine(rl) == High {
				if count < len(buf) {
					buf[count] = k.keymap[r][c]
					count++
				}
			}
		}

		k.drv.SetLine(cl, Low)
	}

	return count
}

// State returns the current lifecycle phase.
func (k *Keypad) State() KeyState {
	return k.state
}

// IsPressed reports whether key equals the most recent raw scan result. It
// reflects the raw reading, not the debounced state, and single-key scan
// semantics apply: it cannot distinguish two different keys held at once.
func (k *Keypad) IsPressed(key rune) bool {
	return k.lastKey == key
}

// TransitionTo forces the classifier into state without a fresh scan,
// notifying the listener with the last raw key when one is registered and a
// key is down. No internal path calls this; it exists for callers that need
// to inject a transition.
func (k *Keypad) TransitionTo(state KeyState) {
	if k.state != state {
		k.state = state
		if k.listener != nil && k.lastKey != NoKey {
			k.listener(k.lastKey)
		}
	}
}

// SetDebounceTime sets the minimum interval in milliseconds between
// committed raw-key changes. Takes effect on the next poll.
func (k *Keypad) SetDebounceTime(ms uint32) {
	k.debounce = ms
}

// SetHoldTime sets the continuous-press duration in milliseconds after which
// the classifier enters StateHold. Takes effect on the next poll.
func (k *Keypad) SetHoldTime(ms uint32) {
	k.hold = ms
}

// SetSettleTime sets the pause between driving a column and sampling the
// rows. The default suits direct wiring; slow pull networks may need more.
func (k *Keypad) SetSettleTime(d time.Duration) {
	k.settle = d
}

// AddEventListener registers fn as the event callback, replacing any
// previous one. A single slot, last writer wins; pass nil to remove.
func (k *Keypad) AddEventListener(fn EventListener) {
	k.listener = fn
}
