package lptim

import (
	"boardcode-go/errcode"
	"boardcode-go/mmio"
	"boardcode-go/x/mathx"
)

const TimerBase uintptr = 0x40007C00

// Register offsets.
const (
	regISR  = 0x00 // status
	regICR  = 0x04 // flag clear
	regCFGR = 0x0C // configuration (prescaler)
	regCR   = 0x10 // control
	regARR  = 0x18 // auto-reload
)

const (
	isrARRM  = 1 << 1 // auto-reload match
	isrARROK = 1 << 4 // auto-reload write done

	crEnable  = 1 << 0
	crSngStrt = 1 << 1
)

// The counter runs from LSI through a /32 prescaler, which puts the 16-bit
// auto-reload ceiling at DelayMaxMs for the nominal LSI frequency.
const (
	prescaler    = 32
	cfgrPresc32  = 0b101 << 9
	defaultLsiHz = 38000
)

const defaultPollCeiling = 1000000

// ClockEnabler gates the timer clock. Implemented by the rcc driver.
type ClockEnabler interface {
	EnableLPTIMClock()
}

type Config struct {
	Clocks ClockEnabler
	// PollCeiling bounds the flag polls; default 1,000,000 iterations.
	PollCeiling uint32
}

// Timer is the low-power timer used as the blocking delay service on the
// target. Pass the measured LSI frequency to Init so tick length accounts
// for the RC oscillator spread.
type Timer struct {
	bus    mmio.Bus
	cfg    Config
	tickHz uint32
}

func NewTimer(bus mmio.Bus, cfg Config) *Timer {
	if cfg.PollCeiling == 0 {
		cfg.PollCeiling = defaultPollCeiling
	}
	return &Timer{bus: bus, cfg: cfg, tickHz: defaultLsiHz / prescaler}
}

// Init gates the timer clock on and programs the prescaler. lsiFreqHz is the
// effective LSI frequency; zero keeps the nominal value.
func (t *Timer) Init(lsiFreqHz uint32) {
	if t.cfg.Clocks != nil {
		t.cfg.Clocks.EnableLPTIMClock()
	}
	if lsiFreqHz != 0 {
		t.tickHz = lsiFreqHz / prescaler
	}
	// CFGR is writable only while the timer is disabled.
	mmio.ClearBits(t.bus, regCR, crEnable)
	t.bus.Write32(regCFGR, cfgrPresc32)
}

// DelayMilliseconds blocks for ms using a single-shot count. The stop-mode
// wait needs the interrupt path, so the polled build ignores stopMode.
func (t *Timer) DelayMilliseconds(ms uint32, stopMode bool) error {
	if ms < DelayMinMs {
		return errcode.DelayUnderflow
	}
	if ms > DelayMaxMs {
		return errcode.DelayOverflow
	}
	ticks := mathx.RoundDiv(ms*t.tickHz, 1000)
	if ticks > 0 {
		ticks-- // match fires when the counter reaches ARR
	}
	mmio.SetBits(t.bus, regCR, crEnable)
	defer mmio.ClearBits(t.bus, regCR, crEnable)
	t.bus.Write32(regICR, isrARROK|isrARRM)
	t.bus.Write32(regARR, ticks)
	for n := uint32(0); !mmio.HasBits(t.bus, regISR, isrARROK); n++ {
		if n > t.cfg.PollCeiling {
			return errcode.WriteTimeout
		}
	}
	mmio.SetBits(t.bus, regCR, crSngStrt)
	for n := uint32(0); !mmio.HasBits(t.bus, regISR, isrARRM); n++ {
		if n > t.cfg.PollCeiling {
			return errcode.ReadyTimeout
		}
	}
	return nil
}
