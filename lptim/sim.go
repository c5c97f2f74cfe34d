package lptim

import "boardcode-go/mmio"

// SimBank builds a scripted timer bank where auto-reload writes land
// immediately and a single-shot start completes at once. Used by host tests
// and the selftest binary.
func SimBank() *mmio.Sim {
	s := mmio.NewSim()
	s.OnWrite = func(s *mmio.Sim, off, old, val uint32) {
		switch off {
		case regICR:
			s.Poke(regICR, 0)
			s.Poke(regISR, s.Peek(regISR)&^val)
		case regARR:
			s.Poke(regISR, s.Peek(regISR)|isrARROK)
		case regCR:
			if (val&^old)&crSngStrt != 0 {
				s.Poke(regISR, s.Peek(regISR)|isrARRM)
				s.Poke(regCR, s.Peek(regCR)&^uint32(crSngStrt))
			}
		}
	}
	return s
}
