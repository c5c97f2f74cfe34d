package rcc

import (
	"testing"

	"boardcode-go/errcode"
	"boardcode-go/mmio"
)

type fakeLatency struct {
	waitStates []uint8
	err        error
}

func (f *fakeLatency) SetLatency(ws uint8) error {
	f.waitStates = append(f.waitStates, ws)
	return f.err
}

// fakeMeter replays a scripted list of frequency samples.
type fakeMeter struct {
	samples []uint32
	err     error
	started bool
	stopped bool
}

func (f *fakeMeter) Start() { f.started = true }
func (f *fakeMeter) Stop()  { f.stopped = true }

func (f *fakeMeter) Measure() (uint32, error) {
	if f.err != nil {
		return 0, f.err
	}
	s := f.samples[0]
	if len(f.samples) > 1 {
		f.samples = f.samples[1:]
	}
	return s, nil
}

var (
	_ LatencySetter  = (*fakeLatency)(nil)
	_ FrequencyMeter = (*fakeMeter)(nil)
)

func TestSwitchToHSI(t *testing.T) {
	bank := SimBank()
	fl := &fakeLatency{}
	d := New(bank, Config{Flash: fl, PollCeiling: 100})
	d.Init()
	if d.SysclkKHz() != msiResetFrequencyKHz {
		t.Fatalf("reset sysclk = %d, want %d", d.SysclkKHz(), msiResetFrequencyKHz)
	}
	if err := d.SwitchToHSI(); err != nil {
		t.Fatalf("switch: %v", err)
	}
	if d.SysclkKHz() != hsiFrequencyKHz {
		t.Fatalf("sysclk = %d, want %d", d.SysclkKHz(), hsiFrequencyKHz)
	}
	if len(fl.waitStates) != 1 || fl.waitStates[0] != 1 {
		t.Fatalf("latency calls = %v, want one wait state before the switch", fl.waitStates)
	}
	if bank.Peek(regCFGR)&cfgrSwsMask != cfgrSwsHSI {
		t.Fatalf("CFGR = %#x, system clock not on HSI", bank.Peek(regCFGR))
	}
	if bank.Peek(regCR)&crMSIOn != 0 {
		t.Fatalf("CR = %#x, MSI left running", bank.Peek(regCR))
	}
}

func TestSwitchToHSIReadyTimeout(t *testing.T) {
	d := New(mmio.NewSim(), Config{PollCeiling: 10}) // ready flag never rises
	d.Init()
	if err := d.SwitchToHSI(); err != errcode.OscReadyTimeout {
		t.Fatalf("err = %v, want %v", err, errcode.OscReadyTimeout)
	}
	if d.SysclkKHz() != msiResetFrequencyKHz {
		t.Fatalf("sysclk changed to %d on a failed switch", d.SysclkKHz())
	}
}

func TestSwitchToHSILatencyErrorTagged(t *testing.T) {
	fl := &fakeLatency{err: errcode.InvalidParams}
	d := New(SimBank(), Config{Flash: fl, PollCeiling: 10})
	err := d.SwitchToHSI()
	if errcode.Of(err) != errcode.InvalidParams {
		t.Fatalf("code = %v, want %v", errcode.Of(err), errcode.InvalidParams)
	}
	e, ok := err.(*errcode.E)
	if !ok || e.Op != "nvm" {
		t.Fatalf("err = %#v, want *errcode.E tagged with origin nvm", err)
	}
}

func TestEnableLSI(t *testing.T) {
	bank := SimBank()
	d := New(bank, Config{PollCeiling: 10})
	if err := d.EnableLSI(); err != nil {
		t.Fatalf("enable LSI: %v", err)
	}
	if bank.Peek(regCSR)&csrLSIOn == 0 {
		t.Fatal("LSI not enabled")
	}
}

func TestEnableLSETimeoutDisablesOscillator(t *testing.T) {
	bank := mmio.NewSim() // ready flag never rises
	d := New(bank, Config{PollCeiling: 10})
	if err := d.EnableLSE(); err != errcode.OscReadyTimeout {
		t.Fatalf("err = %v, want %v", err, errcode.OscReadyTimeout)
	}
	if bank.Peek(regCSR)&csrLSEOn != 0 {
		t.Fatalf("CSR = %#x, LSE left on after timeout", bank.Peek(regCSR))
	}
}

func TestLSIFrequencyRunningAverage(t *testing.T) {
	m := &fakeMeter{samples: []uint32{30000, 32000, 34000, 36000, 38000}}
	d := New(SimBank(), Config{LSIMeter: m})
	f, err := d.LSIFrequency()
	if err != nil {
		t.Fatalf("measure: %v", err)
	}
	if f != 34000 {
		t.Fatalf("averaged frequency = %d, want 34000", f)
	}
	if !m.started || !m.stopped {
		t.Fatalf("meter lifecycle: started=%v stopped=%v", m.started, m.stopped)
	}
}

func TestLSIFrequencyOutOfRangeFallsBack(t *testing.T) {
	m := &fakeMeter{samples: []uint32{10000}}
	d := New(SimBank(), Config{LSIMeter: m})
	f, err := d.LSIFrequency()
	if err != errcode.OutOfRange {
		t.Fatalf("err = %v, want %v", err, errcode.OutOfRange)
	}
	if f != LsiDefaultHz {
		t.Fatalf("fallback frequency = %d, want %d", f, uint32(LsiDefaultHz))
	}
	if !m.stopped {
		t.Fatal("meter not stopped on the fallback path")
	}
}

func TestLSIFrequencyMeterErrors(t *testing.T) {
	d := New(SimBank(), Config{})
	if _, err := d.LSIFrequency(); err != errcode.InvalidParams {
		t.Fatalf("nil meter err = %v", err)
	}

	m := &fakeMeter{err: errcode.ConversionTimeout}
	d = New(SimBank(), Config{LSIMeter: m})
	_, err := d.LSIFrequency()
	e, ok := err.(*errcode.E)
	if !ok || e.Op != "tim" || errcode.Of(err) != errcode.ConversionTimeout {
		t.Fatalf("err = %#v, want *errcode.E from tim", err)
	}
	if !m.stopped {
		t.Fatal("meter not stopped on the error path")
	}
}

func TestClockGates(t *testing.T) {
	bank := SimBank()
	d := New(bank, Config{})
	d.EnableADCClock()
	d.EnableSYSCFGClock()
	d.EnableLPTIMClock()
	d.EnableMIFClock()
	if bank.Peek(regAPB2ENR)&apb2ADCEn == 0 {
		t.Fatal("ADC clock not gated on")
	}
	if bank.Peek(regAPB2ENR)&apb2SYSCFGEn == 0 {
		t.Fatal("SYSCFG clock not gated on")
	}
	if bank.Peek(regAPB1ENR)&apb1LPTIMEn == 0 {
		t.Fatal("timer clock not gated on")
	}
	if bank.Peek(regAHBENR)&ahbMIFEn == 0 {
		t.Fatal("flash interface clock not gated on")
	}
}
