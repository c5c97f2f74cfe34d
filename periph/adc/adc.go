package adc

import (
	"boardcode-go/errcode"
	"boardcode-go/gpio"
	"boardcode-go/lptim"
	"boardcode-go/mmio"
	"boardcode-go/x/mathx"
)

const (
	medianFilterSize  = 9
	centerAverageSize = 3

	fullScale12Bits = 4095

	vmcuDefaultMv = 3300

	regulatorSettleMs = 5
	referenceSettleMs = 100

	// Default bounded-poll ceiling. This is an iteration count standing in
	// for a wall-clock timeout; it is approximate by construction.
	defaultPollCeiling = 1000000

	vusbDividerRatio = 2
	vrsDividerRatio  = 2
)

// DataIndex identifies a stored measurement.
type DataIndex uint8

const (
	DataVMCU DataIndex = iota // supply voltage, mV
	DataVUSB                  // USB voltage, mV
	DataVRS                   // sense-resistor voltage, mV

	dataIndexCount
)

// ClockEnabler gates the converter peripheral clock. Implemented by the rcc
// driver; optional so the package stays testable in isolation.
type ClockEnabler interface {
	EnableADCClock()
}

// Config wires the converter's collaborators. Delay is required; everything
// else is optional and zero values select defaults.
type Config struct {
	Delay lptim.Delayer

	// Pins, when set, is used on Init to put the analog inputs in analog
	// mode (and the monitor output in push-pull mode when Monitor is set).
	Pins      gpio.Configurer
	InputPins []gpio.Pin // defaults to PA4/PA5

	// Monitor, when set, drives the external analog-enable output that
	// powers the voltage-divider networks (hardware revision 1.1 boards).
	Monitor    gpio.Writer
	MonitorPin gpio.Pin

	Clocks ClockEnabler

	Cal Calibration

	// PollCeiling bounds every busy-poll loop; default 1,000,000 iterations.
	PollCeiling uint32
}

// Device owns the converter and the last measurement results. One instance
// maps to the one physical converter; callers serialise access externally.
type Device struct {
	bus mmio.Bus
	cfg Config

	vrefintRaw  uint32
	data        [dataIndexCount]uint32
	tmcuDegrees int8

	samples [medianFilterSize]uint32 // conversion scratch, no per-call alloc
}

// New creates the converter driver. The bus must map the ADC register bank
// (common registers included).
func New(bus mmio.Bus, cfg Config) *Device {
	if cfg.PollCeiling == 0 {
		cfg.PollCeiling = defaultPollCeiling
	}
	if cfg.InputPins == nil {
		cfg.InputPins = []gpio.Pin{{Port: 0, Index: 4}, {Port: 0, Index: 5}}
	}
	return &Device{bus: bus, cfg: cfg}
}

// Init resets the measurement state and takes the converter through
// regulator enable, clocking configuration and self-calibration.
func (d *Device) Init() error {
	// Reset context. The supply slot keeps a plausible default until a
	// real measurement replaces it.
	d.vrefintRaw = 0
	for i := range d.data {
		d.data[i] = 0
	}
	d.data[DataVMCU] = vmcuDefaultMv
	d.tmcuDegrees = 0

	if d.cfg.Pins != nil {
		for _, p := range d.cfg.InputPins {
			d.cfg.Pins.Configure(p, gpio.ModeAnalog, gpio.TypeOpenDrain, gpio.SpeedLow, gpio.PullNone)
		}
		if d.cfg.Monitor != nil {
			d.cfg.Pins.Configure(d.cfg.MonitorPin, gpio.ModeOutput, gpio.TypePushPull, gpio.SpeedLow, gpio.PullNone)
		}
	}
	if d.cfg.Clocks != nil {
		d.cfg.Clocks.EnableADCClock()
	}

	// The converter must be disabled before configuration is touched.
	if mmio.HasBits(d.bus, regCR, crADEN) {
		mmio.SetBits(d.bus, regCR, crADDIS)
	}

	// Voltage regulator on, then a fixed settling delay.
	mmio.SetBits(d.bus, regCR, crADVREGEN)
	if err := d.cfg.Delay.DelayMilliseconds(regulatorSettleMs, false); err != nil {
		return errcode.Wrap(errcode.Of(err), "lptim", err)
	}

	mmio.SetBits(d.bus, regCFGR2, cfgr2CkModePclkDiv2)
	mmio.SetBits(d.bus, regSMPR, smprMax)

	// Self-calibration: done when ADCAL clears or EOCAL sets.
	mmio.SetBits(d.bus, regCR, crADCAL)
	for n := uint32(0); mmio.HasBits(d.bus, regCR, crADCAL) && !mmio.HasBits(d.bus, regISR, isrEOCAL); n++ {
		if n > d.cfg.PollCeiling {
			return errcode.CalibrationTimeout
		}
	}
	return nil
}

// PerformMeasurements runs one full acquisition pass: bandgap reference,
// supply voltage, die temperature and the two divider channels. The analog
// front end is torn down on every exit path, success or failure; the first
// error encountered is returned unchanged.
func (d *Device) PerformMeasurements() error {
	defer d.teardown()

	if err := d.enable(); err != nil {
		return err
	}
	if d.cfg.Monitor != nil {
		// Power the voltage-divider networks.
		d.cfg.Monitor.Write(d.cfg.MonitorPin, true)
	}

	// Wake the bandgap reference and temperature sensor, then let the
	// reference and dividers stabilise.
	mmio.SetBits(d.bus, regCCR, ccrVREFEN|ccrTSEN)
	if err := d.cfg.Delay.DelayMilliseconds(referenceSettleMs, false); err != nil {
		return errcode.Wrap(errcode.Of(err), "lptim", err)
	}

	if err := d.computeVrefint(); err != nil {
		return err
	}
	d.computeVmcu()
	if err := d.computeTmcu(); err != nil {
		return err
	}
	if err := d.computeVusb(); err != nil {
		return err
	}
	return d.computeVrs()
}

// teardown switches the analog sources off, drops the divider supply and
// disables the converter. Fail safe: it runs regardless of where the
// measurement pass stopped.
func (d *Device) teardown() {
	mmio.ClearBits(d.bus, regCCR, ccrVREFEN|ccrTSEN)
	if d.cfg.Monitor != nil {
		d.cfg.Monitor.Write(d.cfg.MonitorPin, false)
	}
	mmio.SetBits(d.bus, regCR, crADDIS)
}

func (d *Device) enable() error {
	mmio.SetBits(d.bus, regCR, crADEN)
	for n := uint32(0); !mmio.HasBits(d.bus, regISR, isrADRDY); n++ {
		if n > d.cfg.PollCeiling {
			return errcode.ReadyTimeout
		}
	}
	return nil
}

// singleConversion runs one conversion on ch and returns the raw 12-bit
// result.
func (d *Device) singleConversion(ch Channel) (uint32, error) {
	if ch >= channelCount {
		return 0, errcode.InvalidChannel
	}
	// Select the input channel.
	d.bus.Write32(regCHSELR, (d.bus.Read32(regCHSELR)&^chselrMask)|(1<<ch))
	// Clear status flags, start, wait for end of conversion.
	mmio.SetBits(d.bus, regISR, isrClearAll)
	mmio.SetBits(d.bus, regCR, crADSTART)
	for n := uint32(0); !mmio.HasBits(d.bus, regISR, isrEOC); n++ {
		if n > d.cfg.PollCeiling {
			return 0, errcode.ConversionTimeout
		}
	}
	return d.bus.Read32(regDR), nil
}

// filteredConversion performs medianFilterSize independent conversions and
// reduces them with a center-averaging median filter.
func (d *Device) filteredConversion(ch Channel) (uint32, error) {
	if ch >= channelCount {
		return 0, errcode.InvalidChannel
	}
	for i := range d.samples {
		v, err := d.singleConversion(ch)
		if err != nil {
			return 0, err
		}
		d.samples[i] = v
	}
	v, err := mathx.MedianFilter(d.samples[:], centerAverageSize)
	if err != nil {
		return 0, errcode.Wrap(errcode.Of(err), "mathx", err)
	}
	return v, nil
}

func (d *Device) computeVrefint() error {
	v, err := d.filteredConversion(ChannelVrefint)
	if err != nil {
		return err
	}
	d.vrefintRaw = v
	return nil
}

// computeVmcu back-calculates the supply voltage from the measured bandgap
// code. No I/O; a zero reference reading keeps the previous value rather
// than dividing by zero.
func (d *Device) computeVmcu() {
	if d.vrefintRaw == 0 {
		return
	}
	d.data[DataVMCU] = d.cfg.Cal.VrefintCal * vrefintCalibMv / d.vrefintRaw
}

// computeTmcu converts the temperature sensor reading with the two-point
// factory calibration. The division order matches the reference manual
// formula exactly; truncation toward zero at each step is intentional.
func (d *Device) computeTmcu() error {
	raw, err := d.filteredConversion(ChannelTemp)
	if err != nil {
		return err
	}
	den := int32(d.cfg.Cal.TsCal2) - int32(d.cfg.Cal.TsCal1)
	if den == 0 {
		return errcode.InvalidParams
	}
	// Equivalent raw measurement at the factory calibration supply.
	calibMv := int32(raw)*int32(d.data[DataVMCU])/tsCalibMv - int32(d.cfg.Cal.TsCal1)
	deg := calibMv * (tsCal2TempC - tsCal1TempC)
	deg /= den
	d.tmcuDegrees = int8(mathx.Clamp(deg+tsCal1TempC, -128, 127))
	return nil
}

func (d *Device) computeVusb() error {
	raw, err := d.filteredConversion(ChannelVUSB)
	if err != nil {
		return err
	}
	if d.vrefintRaw == 0 {
		return errcode.ZeroReference
	}
	d.data[DataVUSB] = d.cfg.Cal.vrefintVoltageMV() * raw * vusbDividerRatio / d.vrefintRaw
	return nil
}

func (d *Device) computeVrs() error {
	raw, err := d.filteredConversion(ChannelVRS)
	if err != nil {
		return err
	}
	if d.vrefintRaw == 0 {
		return errcode.ZeroReference
	}
	d.data[DataVRS] = d.cfg.Cal.vrefintVoltageMV() * raw * vrsDividerRatio / d.vrefintRaw
	return nil
}

// Data returns the stored millivolt value for idx. The value may be stale
// or the default if PerformMeasurements has not run (or partially failed).
func (d *Device) Data(idx DataIndex) (uint32, error) {
	if idx >= dataIndexCount {
		return 0, errcode.InvalidIndex
	}
	return d.data[idx], nil
}

// Temperature returns the last computed die temperature in whole degrees
// Celsius.
func (d *Device) Temperature() int8 { return d.tmcuDegrees }
