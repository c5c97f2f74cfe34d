// Package nvm gives byte access to the EEPROM-emulated data flash, with the
// unlock/lock key sequencing the flash interface requires. It also owns the
// flash access-control register, so wait-state latency lives here.
package nvm

import (
	"boardcode-go/errcode"
	"boardcode-go/mmio"
)

// Flash interface register bank and EEPROM data window.
const (
	Base       uintptr = 0x40022000
	EepromBase uintptr = 0x08080000

	// Data EEPROM size of the STM32L031 part.
	EepromSizeBytes = 1024
)

// Register offsets.
const (
	regACR    = 0x00 // access control (latency)
	regPECR   = 0x04 // program/erase control
	regPEKEYR = 0x0C // PECR unlock keys
	regSR     = 0x18 // status
)

// PECR unlock key sequence.
const (
	pekey1 = 0x89ABCDEF
	pekey2 = 0x02030405
)

const (
	acrLatency = 1 << 0
	pecrPELock = 1 << 0
	srBusy     = 1 << 0
)

// Bounded-poll ceiling for busy waits; an iteration count, not wall-clock.
const defaultPollCeiling = 1000000

// ClockEnabler gates the flash interface clock. Implemented by the rcc
// driver.
type ClockEnabler interface {
	EnableMIFClock()
}

type Config struct {
	Clocks ClockEnabler
	// PollCeiling bounds the busy-wait loops; default 1,000,000 iterations.
	PollCeiling uint32
}

type Device struct {
	regs   mmio.Bus
	eeprom mmio.ByteRegion
	cfg    Config
}

func New(regs mmio.Bus, eeprom mmio.ByteRegion, cfg Config) *Device {
	if cfg.PollCeiling == 0 {
		cfg.PollCeiling = defaultPollCeiling
	}
	return &Device{regs: regs, eeprom: eeprom, cfg: cfg}
}

// Init enables the flash interface clock.
func (d *Device) Init() {
	if d.cfg.Clocks != nil {
		d.cfg.Clocks.EnableMIFClock()
	}
}

// ReadByte returns the EEPROM byte at offset.
func (d *Device) ReadByte(offset uint32) (byte, error) {
	if offset >= EepromSizeBytes {
		return 0, errcode.InvalidAddress
	}
	if err := d.unlock(); err != nil {
		return 0, err
	}
	b := d.eeprom.Load(offset)
	if err := d.lock(); err != nil {
		return 0, err
	}
	return b, nil
}

// WriteByte stores one byte in EEPROM and waits for the operation to finish.
func (d *Device) WriteByte(offset uint32, data byte) error {
	if offset >= EepromSizeBytes {
		return errcode.InvalidAddress
	}
	if err := d.unlock(); err != nil {
		return err
	}
	d.eeprom.Store(offset, data)
	if err := d.waitIdle(errcode.WriteTimeout); err != nil {
		return err
	}
	return d.lock()
}

// SetLatency programs the flash wait-state count (0 or 1 on this part).
// Consumed by the rcc driver before raising the system clock.
func (d *Device) SetLatency(waitStates uint8) error {
	if waitStates > 1 {
		return errcode.InvalidParams
	}
	if waitStates == 1 {
		mmio.SetBits(d.regs, regACR, acrLatency)
	} else {
		mmio.ClearBits(d.regs, regACR, acrLatency)
	}
	return nil
}

// unlock opens PECR with the key sequence once any running operation ends.
func (d *Device) unlock() error {
	if err := d.waitIdle(errcode.UnlockTimeout); err != nil {
		return err
	}
	if mmio.HasBits(d.regs, regPECR, pecrPELock) {
		d.regs.Write32(regPEKEYR, pekey1)
		d.regs.Write32(regPEKEYR, pekey2)
	}
	return nil
}

func (d *Device) lock() error {
	if err := d.waitIdle(errcode.LockTimeout); err != nil {
		return err
	}
	mmio.SetBits(d.regs, regPECR, pecrPELock)
	return nil
}

func (d *Device) waitIdle(timeoutCode errcode.Code) error {
	for n := uint32(0); mmio.HasBits(d.regs, regSR, srBusy); n++ {
		if n > d.cfg.PollCeiling {
			return timeoutCode
		}
	}
	return nil
}
