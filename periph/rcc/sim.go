package rcc

import "boardcode-go/mmio"

// SimBank builds a scripted register bank where every oscillator starts
// cleanly: ready flags follow the enable bits and the clock switch takes
// effect immediately. Used by host tests and the selftest binary.
func SimBank() *mmio.Sim {
	s := mmio.NewSim()
	s.OnWrite = func(s *mmio.Sim, off, old, val uint32) {
		switch off {
		case regCR:
			if val&crHSI16On != 0 {
				s.Poke(regCR, s.Peek(regCR)|crHSI16Rdy)
			}
		case regCFGR:
			s.Poke(regCFGR, (val&^uint32(cfgrSwsMask))|(val&cfgrSwMask)<<2)
		case regCSR:
			v := val
			if v&csrLSIOn != 0 {
				v |= csrLSIRdy
			}
			if v&csrLSEOn != 0 {
				v |= csrLSERdy
			}
			s.Poke(regCSR, v)
		}
	}
	return s
}
