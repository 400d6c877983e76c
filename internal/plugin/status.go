package plugin

// Status represents the outcome of a check, ordered by increasing alert
// priority for downstream monitoring systems.
type Status int

const (
	StatusOK Status = iota
	StatusWarning
	StatusCritical
	StatusUnknown
)

// String returns the uppercase label used on the output line. Anything
// outside the known range reads as UNKNOWN.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusWarning:
		return "WARNING"
	case StatusCritical:
		return "CRITICAL"
	case StatusUnknown:
		return "UNKNOWN"
	default:
		return "UNKNOWN"
	}
}

// ExitCode returns the process exit code mandated for the status by the
// four-level monitoring contract.
func (s Status) ExitCode() int {
	switch s {
	case StatusOK:
		return 0
	case StatusWarning:
		return 1
	case StatusCritical:
		return 2
	case StatusUnknown:
		return 3
	default:
		return 3
	}
}
