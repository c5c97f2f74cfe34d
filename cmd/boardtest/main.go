// cmd/boardtest runs the whole peripheral stack against simulated register
// banks and prints a measurement report. It doubles as an executable smoke
// test on hosts where no target hardware exists.
package main

import (
	"os"

	"boardcode-go/console"
	"boardcode-go/gpio"
	"boardcode-go/lptim"
	"boardcode-go/mmio"
	"boardcode-go/periph/adc"
	"boardcode-go/periph/exti"
	"boardcode-go/periph/nvm"
	"boardcode-go/periph/rcc"
)

// Simulated channel readings and a plausible factory calibration set.
var (
	readings = map[adc.Channel]uint32{
		adc.ChannelVrefint: 1670,
		adc.ChannelTemp:    690,
		adc.ChannelVUSB:    2048,
		adc.ChannelVRS:     1024,
	}
	cal = adc.Calibration{VrefintCal: 1671, TsCal1: 670, TsCal2: 856}
)

// noopPins satisfies the pin services; the simulator has no pins to move.
type noopPins struct{}

func (noopPins) Configure(gpio.Pin, gpio.Mode, gpio.OutputType, gpio.Speed, gpio.Pull) {}
func (noopPins) Write(gpio.Pin, bool)                                                  {}

func main() {
	if err := run(); err != nil {
		println("boardtest: " + err.Error())
		os.Exit(1)
	}
}

func run() error {
	rep := console.New(os.Stdout)

	// Flash/EEPROM first so the clock driver can program latency.
	nv := nvm.New(mmio.NewSim(), mmio.NewSimBytes(nvm.EepromSizeBytes), nvm.Config{})
	clk := rcc.New(rcc.SimBank(), rcc.Config{Flash: nv})
	clk.Init()
	if err := clk.SwitchToHSI(); err != nil {
		return err
	}
	nv.Init()
	if err := rep.LineU("sysclk_khz=", uint64(clk.SysclkKHz())); err != nil {
		return err
	}

	// Delay service on the low-power timer, clocked from LSI.
	if err := clk.EnableLSI(); err != nil {
		return err
	}
	tm := lptim.NewTimer(lptim.SimBank(), lptim.Config{Clocks: clk})
	tm.Init(rcc.LsiDefaultHz)

	// Wake-up interrupt wiring, as the control loop would do it.
	ex := exti.New(mmio.NewSim(), mmio.NewSim(), exti.Config{Clocks: clk})
	ex.Init()
	ex.ConfigureGPIO(gpio.Pin{Port: 1, Index: 3}, exti.TriggerFallingEdge)

	// EEPROM round trip.
	if err := nv.WriteByte(0, 0xA5); err != nil {
		return err
	}
	b, err := nv.ReadByte(0)
	if err != nil {
		return err
	}
	if err := rep.Hex("eeprom0=", uint32(b)); err != nil {
		return err
	}

	// Full acquisition pass.
	eng := adc.New(adc.SimBank(readings), adc.Config{
		Delay:  tm,
		Pins:   noopPins{},
		Clocks: clk,
		Cal:    cal,
	})
	if err := eng.Init(); err != nil {
		return err
	}
	if err := eng.PerformMeasurements(); err != nil {
		return err
	}
	return rep.Report(eng.Snapshot())
}
