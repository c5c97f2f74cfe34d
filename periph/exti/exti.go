// Package exti configures external-interrupt lines: edge triggers, SYSCFG
// port routing and pending-flag management.
package exti

import (
	"boardcode-go/gpio"
	"boardcode-go/mmio"
)

// Peripheral base addresses (APB2).
const (
	Base       uintptr = 0x40010400
	SyscfgBase uintptr = 0x40010000
)

// EXTI register offsets.
const (
	regIMR  = 0x00 // interrupt mask
	regEMR  = 0x04 // event mask
	regRTSR = 0x08 // rising trigger selection
	regFTSR = 0x0C // falling trigger selection
	regSWIE = 0x10 // software interrupt event
	regPR   = 0x14 // pending
)

// SYSCFG external interrupt configuration registers (EXTICR1..4).
const syscfgExtiCrBase = 0x08

const (
	// Line 18 has no edge trigger support; lines above 22 do not exist.
	rtsrFtsrReservedLine = 18
	rtsrFtsrMaxLine      = 22

	// All implemented pending bits.
	pendingAll = 0x007BFFFF
)

// Interrupt numbers for the EXTI line groups.
const (
	IRQLines0to1  = 5
	IRQLines2to3  = 6
	IRQLines4to15 = 7
)

// Trigger selects which edges raise the line.
type Trigger uint8

const (
	TriggerRisingEdge Trigger = iota
	TriggerFallingEdge
	TriggerAnyEdge
)

// Line is a direct (non-GPIO) interrupt line number.
type Line uint8

// ClockEnabler gates the SYSCFG clock needed for port routing. Implemented
// by the rcc driver.
type ClockEnabler interface {
	EnableSYSCFGClock()
}

// PrioritySetter programs interrupt priorities in the interrupt controller.
type PrioritySetter interface {
	SetPriority(irq int, prio uint8)
}

// Config wires the optional collaborators; both may be nil.
type Config struct {
	Clocks ClockEnabler
	NVIC   PrioritySetter
}

type Device struct {
	bus    mmio.Bus // EXTI bank
	syscfg mmio.Bus // SYSCFG bank
	cfg    Config
}

func New(bus, syscfg mmio.Bus, cfg Config) *Device {
	return &Device{bus: bus, syscfg: syscfg, cfg: cfg}
}

// Init masks every source, clears stale pending flags and programs the
// group priorities.
func (d *Device) Init() {
	if d.cfg.Clocks != nil {
		d.cfg.Clocks.EnableSYSCFGClock()
	}
	d.bus.Write32(regIMR, 0)
	d.ClearAllFlags()
	if d.cfg.NVIC != nil {
		d.cfg.NVIC.SetPriority(IRQLines0to1, 3)
		d.cfg.NVIC.SetPriority(IRQLines4to15, 0)
	}
}

// ConfigureGPIO attaches a pin to its interrupt line: routes the port
// through SYSCFG, unmasks the line and selects the edge trigger.
func (d *Device) ConfigureGPIO(p gpio.Pin, t Trigger) {
	cr := uint32(syscfgExtiCrBase + 4*(p.Index/4))
	shift := 4 * uint32(p.Index%4)
	mmio.ClearBits(d.syscfg, cr, 0b1111<<shift)
	mmio.SetBits(d.syscfg, cr, uint32(p.Port)<<shift)
	mmio.SetBits(d.bus, regIMR, 1<<p.Index)
	d.setTrigger(t, p.Index)
}

// ConfigureLine unmasks a direct line and, where the line supports it,
// selects the edge trigger.
func (d *Device) ConfigureLine(line Line, t Trigger) {
	mmio.SetBits(d.bus, regIMR, 1<<line)
	if line != rtsrFtsrReservedLine && line <= rtsrFtsrMaxLine {
		d.setTrigger(t, uint8(line))
	}
}

// ClearAllFlags acknowledges every pending line.
func (d *Device) ClearAllFlags() {
	mmio.SetBits(d.bus, regPR, pendingAll)
}

func (d *Device) setTrigger(t Trigger, line uint8) {
	bit := uint32(1) << line
	switch t {
	case TriggerRisingEdge:
		mmio.SetBits(d.bus, regRTSR, bit)
		mmio.ClearBits(d.bus, regFTSR, bit)
	case TriggerFallingEdge:
		mmio.ClearBits(d.bus, regRTSR, bit)
		mmio.SetBits(d.bus, regFTSR, bit)
	case TriggerAnyEdge:
		mmio.SetBits(d.bus, regRTSR, bit)
		mmio.SetBits(d.bus, regFTSR, bit)
	}
	// Acknowledge any flag raised while reconfiguring.
	mmio.SetBits(d.bus, regPR, bit)
}
