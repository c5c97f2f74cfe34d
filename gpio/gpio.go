// Package gpio defines the pin services consumed by the peripheral drivers.
// Implementations live with the board support code; drivers only depend on
// the interfaces so they stay host-testable.
package gpio

// Pin identifies a pin by port and index. The EXTI driver uses both fields
// to route the line through SYSCFG.
type Pin struct {
	Port  uint8 // 0=A, 1=B, 2=C, ...
	Index uint8 // 0..15
}

type Mode uint8

const (
	ModeInput Mode = iota
	ModeOutput
	ModeAlternate
	ModeAnalog
)

type OutputType uint8

const (
	TypePushPull OutputType = iota
	TypeOpenDrain
)

type Speed uint8

const (
	SpeedLow Speed = iota
	SpeedMedium
	SpeedHigh
	SpeedVeryHigh
)

type Pull uint8

const (
	PullNone Pull = iota
	PullUp
	PullDown
)

// Configurer applies a full pin configuration. No failure is signalled;
// a bad configuration is a wiring bug, not a runtime condition.
type Configurer interface {
	Configure(p Pin, m Mode, t OutputType, s Speed, pull Pull)
}

// Writer drives a digital output level.
type Writer interface {
	Write(p Pin, level bool)
}
