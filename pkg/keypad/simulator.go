package keypad

import "time"

// LineMode tracks how the simulator last saw a line configured.
type LineMode uint8

const (
	LineUnconfigured LineMode = iota
	LineInput
	LineOutput
)

// SetHook lets tests observe or override every SetLine the core issues.
type SetHook func(line uint8, level Level)

// junction is one closed switch bridging a row line and a column line.
type junction struct {
	row uint8
	col uint8
}

// SimDriver is an in-memory line driver modeling a switch matrix
// electrically: a row line reads High exactly when some closed junction
// connects it to a column line currently driven High. It carries a virtual
// millisecond clock and records enough of the traffic for tests to check
// scan hygiene. Useful both for unit tests and for exercising the CLI with
// no hardware connected.
type SimDriver struct {
	InfoData DriverInfo

	OnSet SetHook

	modes     map[uint8]LineMode
	levels    map[uint8]Level
	junctions map[junction]bool

	nowMS       uint32
	settleTotal time.Duration
	setOps      int
	peakDriven  int
}

// NewSimDriver constructs a simulator configured with the provided DriverInfo.
func NewSimDriver(info DriverInfo) *SimDriver {
	return &SimDriver{
		InfoData:  info,
		modes:     make(map[uint8]LineMode),
		levels:    make(map[uint8]Level),
		junctions: make(map[junction]bool),
	}
}

// Close closes the switch bridging rowLine and colLine. Closing an already
// closed junction is a no-op.
func (s *SimDriver) Close(rowLine, colLine uint8) {
	s.junctions[junction{row: rowLine, col: colLine}] = true
}

// Open opens the switch bridging rowLine and colLine.
func (s *SimDriver) Open(rowLine, colLine uint8) {
	delete(s.junctions, junction{row: rowLine, col: colLine})
}

// OpenAll releases every closed switch.
func (s *SimDriver) OpenAll() {
	s.junctions = make(map[junction]bool)
}

// Advance moves the virtual clock forward by ms milliseconds. The counter
// wraps modulo 2^32 like a real millisecond tick would.
func (s *SimDriver) Advance(ms uint32) {
	s.nowMS += ms
}

// OutputsIdle reports whether every line configured as an output is
// currently at the idle level. A well-behaved scan leaves this true.
func (s *SimDriver) OutputsIdle() bool {
	for line, mode := range s.modes {
		if mode == LineOutput && s.levels[line] == High {
			return false
		}
	}
	return true
}

// PeakDriven reports the largest number of outputs ever driven High at once.
// Matrix scanning must keep this at 1.
func (s *SimDriver) PeakDriven() int {
	return s.peakDriven
}

// SettleTotal reports the accumulated Delay time, SetOps the number of
// SetLine calls observed.
func (s *SimDriver) SettleTotal() time.Duration { return s.settleTotal }
func (s *SimDriver) SetOps() int                { return s.setOps }

// Mode returns how line was last configured.
func (s *SimDriver) Mode(line uint8) LineMode {
	return s.modes[line]
}

func (s *SimDriver) Info() (DriverInfo, error) {
	return s.InfoData, nil
}

func (s *SimDriver) ConfigureOutput(line uint8) error {
	s.modes[line] = LineOutput
	return nil
}

func (s *SimDriver) ConfigureInput(line uint8) error {
	s.modes[line] = LineInput
	return nil
}

func (s *SimDriver) SetLine(line uint8, level Level) {
	s.setOps++
	s.levels[line] = level

	driven := 0
	for l, mode := range s.modes {
		if mode == LineOutput && s.levels[l] == High {
			driven++
		}
	}
	if driven > s.peakDriven {
		s.peakDriven = driven
	}

	if s.OnSet != nil {
		s.OnSet(line, level)
	}
}

func (s *SimDriver) ReadLine(line uint8) Level {
	for j := range s.junctions {
		if j.row != line {
			continue
		}
		if s.modes[j.col] == LineOutput && s.levels[j.col] == High {
			return High
		}
	}
	return Low
}

func (s *SimDriver) Now() uint32 {
	return s.nowMS
}

func (s *SimDriver) Delay(d time.Duration) {
	s.settleTotal += d
}
