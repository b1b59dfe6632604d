package types

// Mode is the kind of survey a run performs
type Mode int

const (
	ModeNone Mode = iota
	ModePing
	ModeScan
	ModeSweep
	ModeTrace
	ModeWake
)

func (m Mode) String() string {
	switch m {
	case ModePing:
		return "ping"
	case ModeScan:
		return "scan"
	case ModeSweep:
		return "sweep"
	case ModeTrace:
		return "trace"
	case ModeWake:
		return "wake"
	default:
		return "unknown"
	}
}
