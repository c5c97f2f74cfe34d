// Package adc drives the STM32L0 successive-approximation converter:
// calibration, channel selection, oversampled and median-filtered sampling,
// and derivation of calibrated physical quantities.
package adc

// Peripheral base address (APB2).
const Base uintptr = 0x40012400

// Register offsets (RM0377).
const (
	regISR    = 0x00 // interrupt and status
	regIER    = 0x04 // interrupt enable
	regCR     = 0x08 // control
	regCFGR1  = 0x0C // configuration 1
	regCFGR2  = 0x10 // configuration 2 (clock mode)
	regSMPR   = 0x14 // sampling time
	regCHSELR = 0x28 // channel selection
	regDR     = 0x40 // data
	regCCR    = 0x308 // common configuration (analog sources)
)

// ISR bits.
const (
	isrADRDY    = 1 << 0
	isrEOC      = 1 << 2
	isrEOCAL    = 1 << 11
	isrClearAll = 0x0000089F // write-1-to-clear set used before each start
)

// CR bits.
const (
	crADEN     = 1 << 0
	crADDIS    = 1 << 1
	crADSTART  = 1 << 2
	crADVREGEN = 1 << 28
	crADCAL    = 1 << 31
)

// CFGR2: ADC clock = PCLK/2.
const cfgr2CkModePclkDiv2 = 0b01 << 30

// SMPR: maximum sampling time (160.5 cycles).
const smprMax = 0b111

// CCR analog source enables.
const (
	ccrVREFEN = 1 << 22
	ccrTSEN   = 1 << 23
)

// CHSELR uses one select bit per channel; bits 19..31 are reserved.
const chselrMask = 0x0007FFFF

// Channel is a converter input channel number.
type Channel uint8

const (
	ChannelVRS     Channel = 4  // sense-resistor divider
	ChannelVUSB    Channel = 5  // USB voltage divider
	ChannelVrefint Channel = 17 // internal bandgap reference
	ChannelTemp    Channel = 18 // internal temperature sensor

	channelCount Channel = 19
)

// Factory calibration locations and conditions (system memory, RM0377).
const (
	vrefintCalAddr uintptr = 0x1FF80078
	tsCal1Addr     uintptr = 0x1FF8007A
	tsCal2Addr     uintptr = 0x1FF8007E

	vrefintCalibMv = 3000 // supply during bandgap factory calibration
	tsCalibMv      = 3000 // supply during temperature factory calibration
	tsCal1TempC    = 30
	tsCal2TempC    = 130
)

// Calibration holds the per-chip factory calibration codes. On the target it
// is read from system memory with FactoryCalibration; tests inject values.
type Calibration struct {
	VrefintCal uint32 // raw bandgap code at 3.0 V, 25 degC
	TsCal1     uint32 // temperature sensor code at 30 degC
	TsCal2     uint32 // temperature sensor code at 130 degC
}

// vrefintVoltageMV folds the factory constants into the nominal bandgap
// voltage in millivolts.
func (c Calibration) vrefintVoltageMV() uint32 {
	return c.VrefintCal * vrefintCalibMv / fullScale12Bits
}
