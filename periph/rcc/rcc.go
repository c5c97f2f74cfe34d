// Package rcc manages the clock tree: oscillator enable/switch sequencing,
// system clock bookkeeping and peripheral clock gating.
package rcc

import (
	"boardcode-go/errcode"
	"boardcode-go/mmio"
)

const Base uintptr = 0x40021000

// Register offsets.
const (
	regCR      = 0x00 // clock control
	regCFGR    = 0x0C // clock configuration
	regAHBENR  = 0x30 // AHB peripheral clock enable
	regAPB2ENR = 0x34 // APB2 peripheral clock enable
	regAPB1ENR = 0x38 // APB1 peripheral clock enable
	regCSR     = 0x50 // control/status (low-speed oscillators)
)

// CR bits.
const (
	crHSI16On  = 1 << 0
	crHSI16Rdy = 1 << 2
	crMSIOn    = 1 << 8
)

// CFGR system clock switch.
const (
	cfgrSwMask  = 0b11
	cfgrSwHSI   = 0b01
	cfgrSwsMask = 0b11 << 2
	cfgrSwsHSI  = 0b01 << 2
)

// CSR bits.
const (
	csrLSIOn  = 1 << 0
	csrLSIRdy = 1 << 1
	csrLSEOn  = 1 << 8
	csrLSERdy = 1 << 9
)

// Peripheral clock gates.
const (
	apb2SYSCFGEn = 1 << 0
	apb2ADCEn    = 1 << 9
	apb1LPTIMEn  = 1 << 31
	ahbMIFEn     = 1 << 8
)

const (
	// Reset clock is the 2.1 MHz MSI range; HSI is the 16 MHz internal RC.
	msiResetFrequencyKHz = 2100
	hsiFrequencyKHz      = 16000

	// LSI nominal and acceptance window.
	LsiDefaultHz  = 38000
	lsiFreqMinHz  = 26000
	lsiFreqMaxHz  = 56000
	lsiAveraging = 5

	// Bounded-poll ceiling; an iteration count, not wall-clock.
	defaultPollCeiling = 1000000
)

// LatencySetter programs flash wait states before the clock is raised.
// Implemented by the nvm driver, which owns the flash register bank.
type LatencySetter interface {
	SetLatency(waitStates uint8) error
}

// FrequencyMeter measures the effective LSI frequency; on the target it is
// backed by a capture timer clocked from LSI.
type FrequencyMeter interface {
	Start()
	Measure() (uint32, error)
	Stop()
}

type Config struct {
	Flash    LatencySetter
	LSIMeter FrequencyMeter
	// PollCeiling bounds the ready/switch polls; default 1,000,000.
	PollCeiling uint32
}

type Device struct {
	bus mmio.Bus
	cfg Config

	sysclkKHz uint32
}

func New(bus mmio.Bus, cfg Config) *Device {
	if cfg.PollCeiling == 0 {
		cfg.PollCeiling = defaultPollCeiling
	}
	return &Device{bus: bus, cfg: cfg}
}

// Init records the reset clock state. The reset prescalers (HCLK = PCLK1 =
// PCLK2 = SYSCLK) are already what this board needs, so no register writes
// happen here.
func (d *Device) Init() {
	d.sysclkKHz = msiResetFrequencyKHz
}

// SwitchToHSI raises flash latency, starts the 16 MHz internal RC, switches
// the system clock to it and stops MSI.
func (d *Device) SwitchToHSI() error {
	if d.cfg.Flash != nil {
		if err := d.cfg.Flash.SetLatency(1); err != nil {
			return errcode.Wrap(errcode.Of(err), "nvm", err)
		}
	}
	mmio.SetBits(d.bus, regCR, crHSI16On)
	for n := uint32(0); !mmio.HasBits(d.bus, regCR, crHSI16Rdy); n++ {
		if n > d.cfg.PollCeiling {
			return errcode.OscReadyTimeout
		}
	}
	d.bus.Write32(regCFGR, (d.bus.Read32(regCFGR)&^uint32(cfgrSwMask))|cfgrSwHSI)
	for n := uint32(0); d.bus.Read32(regCFGR)&cfgrSwsMask != cfgrSwsHSI; n++ {
		if n > d.cfg.PollCeiling {
			return errcode.ClockSwitchTimeout
		}
	}
	mmio.ClearBits(d.bus, regCR, crMSIOn)
	d.sysclkKHz = hsiFrequencyKHz
	return nil
}

// SysclkKHz returns the current system clock frequency in kHz.
func (d *Device) SysclkKHz() uint32 { return d.sysclkKHz }

// EnableLSI starts the 38 kHz internal RC and waits for it to stabilise.
func (d *Device) EnableLSI() error {
	mmio.SetBits(d.bus, regCSR, csrLSIOn)
	for n := uint32(0); !mmio.HasBits(d.bus, regCSR, csrLSIRdy); n++ {
		if n > d.cfg.PollCeiling {
			return errcode.OscReadyTimeout
		}
	}
	return nil
}

// EnableLSE starts the 32.768 kHz crystal oscillator. On timeout the
// oscillator is turned back off so a missing crystal cannot keep drawing
// current.
func (d *Device) EnableLSE() error {
	mmio.SetBits(d.bus, regCSR, csrLSEOn)
	for n := uint32(0); !mmio.HasBits(d.bus, regCSR, csrLSERdy); n++ {
		if n > d.cfg.PollCeiling {
			mmio.ClearBits(d.bus, regCSR, csrLSEOn)
			return errcode.OscReadyTimeout
		}
	}
	return nil
}

// LSIFrequency measures the effective LSI frequency as a running average of
// several samples. An out-of-range result falls back to the nominal value
// and reports OutOfRange so the caller can decide whether to trust it.
func (d *Device) LSIFrequency() (uint32, error) {
	if d.cfg.LSIMeter == nil {
		return 0, errcode.InvalidParams
	}
	d.cfg.LSIMeter.Start()
	defer d.cfg.LSIMeter.Stop()
	var freq uint32
	for i := uint32(0); i < lsiAveraging; i++ {
		s, err := d.cfg.LSIMeter.Measure()
		if err != nil {
			return 0, errcode.Wrap(errcode.Of(err), "tim", err)
		}
		freq = (freq*i + s) / (i + 1)
	}
	if freq < lsiFreqMinHz || freq > lsiFreqMaxHz {
		return LsiDefaultHz, errcode.OutOfRange
	}
	return freq, nil
}

// Peripheral clock gates consumed by the other drivers.

func (d *Device) EnableADCClock()    { mmio.SetBits(d.bus, regAPB2ENR, apb2ADCEn) }
func (d *Device) EnableSYSCFGClock() { mmio.SetBits(d.bus, regAPB2ENR, apb2SYSCFGEn) }
func (d *Device) EnableLPTIMClock()  { mmio.SetBits(d.bus, regAPB1ENR, apb1LPTIMEn) }
func (d *Device) EnableMIFClock()    { mmio.SetBits(d.bus, regAHBENR, ahbMIFEn) }
