package errcode

// Code is a stable, driver-facing error identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable).
const (
	OK            Code = "ok"
	InvalidParams Code = "invalid_params"

	// Parameter range checks.
	InvalidChannel Code = "invalid_channel"
	InvalidIndex   Code = "invalid_index"
	InvalidAddress Code = "invalid_address"

	// Bounded-poll exhaustion. Poll ceilings are iteration counts, not
	// wall-clock deadlines, so these are approximate timeouts.
	ConversionTimeout  Code = "conversion_timeout"
	ReadyTimeout       Code = "ready_timeout"
	CalibrationTimeout Code = "calibration_timeout"
	UnlockTimeout      Code = "unlock_timeout"
	LockTimeout        Code = "lock_timeout"
	WriteTimeout       Code = "write_timeout"
	OscReadyTimeout    Code = "osc_ready_timeout"
	ClockSwitchTimeout Code = "clock_switch_timeout"

	// Measurement validity.
	ZeroReference  Code = "zero_reference"
	OutOfRange     Code = "out_of_range"
	DelayUnderflow Code = "delay_underflow"
	DelayOverflow  Code = "delay_overflow"

	Error Code = "error" // generic fallback
)

// E keeps a code, the origin subsystem and a cause. Drivers use it when they
// propagate a collaborator failure (delay service, median filter, timer) so
// the caller can tell which subsystem produced the original error.
type E struct {
	C   Code
	Op  string
	Err error
}

func (e *E) Error() string {
	if e.Op != "" {
		return string(e.C) + ": " + e.Op
	}
	return string(e.C)
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Wrap tags err with a code and an origin subsystem. Returns nil for nil.
func Wrap(c Code, op string, err error) error {
	if err == nil {
		return nil
	}
	return &E{C: c, Op: op, Err: err}
}

// Of extracts a Code from an error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	if c, ok := err.(Code); ok {
		return c
	}
	type coder interface{ Code() Code }
	if x, ok := err.(coder); ok {
		return x.Code()
	}
	return Error
}
