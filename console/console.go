// Package console reports measurements as key=value lines over a UART.
// Formatting goes through x/conv to stay off fmt on the MCU hot path.
package console

import (
	"io"

	"boardcode-go/periph/adc"
	"boardcode-go/x/conv"
)

// Reporter writes to the transmit side of a UART port; any io.Writer works,
// so host builds can point it at stdout.
type Reporter struct {
	uart io.Writer
	buf  [20]byte
}

func New(u io.Writer) *Reporter { return &Reporter{uart: u} }

// Report prints one measurement snapshot, one field per line.
func (r *Reporter) Report(s adc.Snapshot) error {
	if err := r.LineU("vmcu_mv=", uint64(s.VMCU_mV)); err != nil {
		return err
	}
	if err := r.LineU("vusb_mv=", uint64(s.VUSB_mV)); err != nil {
		return err
	}
	if err := r.LineU("vrs_mv=", uint64(s.VRS_mV)); err != nil {
		return err
	}
	return r.LineI("tmcu_degc=", int64(s.Tmcu_C))
}

// Hex prints name=HHHHHHHH, handy for register dumps.
func (r *Reporter) Hex(name string, v uint32) error {
	if err := r.write(name); err != nil {
		return err
	}
	if _, err := r.uart.Write(conv.U32Hex(r.buf[:8], v)); err != nil {
		return err
	}
	return r.write("\r\n")
}

// LineU prints name immediately followed by an unsigned decimal value.
func (r *Reporter) LineU(name string, v uint64) error {
	if err := r.write(name); err != nil {
		return err
	}
	if _, err := r.uart.Write(conv.Utoa(r.buf[:], v)); err != nil {
		return err
	}
	return r.write("\r\n")
}

// LineI prints name immediately followed by a signed decimal value.
func (r *Reporter) LineI(name string, v int64) error {
	if err := r.write(name); err != nil {
		return err
	}
	if _, err := r.uart.Write(conv.Itoa(r.buf[:], v)); err != nil {
		return err
	}
	return r.write("\r\n")
}

func (r *Reporter) write(s string) error {
	_, err := r.uart.Write([]byte(s))
	return err
}
