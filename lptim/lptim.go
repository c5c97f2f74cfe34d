// Package lptim provides the blocking millisecond delay service used by the
// peripheral drivers. On the target the delay is produced by the low-power
// timer; on host a time.Sleep implementation is good enough, so Sleeper is
// provided here and works in both environments.
package lptim

import (
	"time"

	"boardcode-go/errcode"
)

// Delay range accepted by the timer, in milliseconds. The upper bound comes
// from the 16-bit auto-reload register at the lowest usable prescaler.
const (
	DelayMinMs = 1
	DelayMaxMs = 55000
)

// Delayer is the blocking delay service. stopMode requests the low-power
// wait variant on hardware; implementations may ignore it.
type Delayer interface {
	DelayMilliseconds(ms uint32, stopMode bool) error
}

// Sleeper implements Delayer with time.Sleep, keeping the range checks of
// the hardware timer so host behaviour matches the target.
type Sleeper struct{}

func (Sleeper) DelayMilliseconds(ms uint32, stopMode bool) error {
	if ms < DelayMinMs {
		return errcode.DelayUnderflow
	}
	if ms > DelayMaxMs {
		return errcode.DelayOverflow
	}
	time.Sleep(time.Duration(ms) * time.Millisecond)
	return nil
}
