package adc

import "boardcode-go/mmio"

// SimBank builds a scripted register bank that behaves like a healthy
// converter: enable raises the ready flag, calibration completes, and a
// started conversion immediately finishes with the reading configured for
// the selected channel. Used by host tests and the selftest binary.
func SimBank(readings map[Channel]uint32) *mmio.Sim {
	s := mmio.NewSim()
	s.OnWrite = func(s *mmio.Sim, off, old, val uint32) {
		switch off {
		case regISR:
			// Status flags are write-1-to-clear.
			s.Poke(regISR, old&^val)
		case regCR:
			set := val &^ old
			if set&crADEN != 0 {
				s.Poke(regISR, s.Peek(regISR)|isrADRDY)
			}
			if set&crADCAL != 0 {
				s.Poke(regCR, s.Peek(regCR)&^uint32(crADCAL))
				s.Poke(regISR, s.Peek(regISR)|isrEOCAL)
			}
			if set&crADSTART != 0 {
				ch := selectedChannel(s.Peek(regCHSELR))
				s.Poke(regDR, readings[ch])
				s.Poke(regISR, s.Peek(regISR)|isrEOC)
				s.Poke(regCR, s.Peek(regCR)&^uint32(crADSTART))
			}
			if set&crADDIS != 0 {
				s.Poke(regCR, s.Peek(regCR)&^uint32(crADEN|crADDIS))
				s.Poke(regISR, s.Peek(regISR)&^uint32(isrADRDY))
			}
		}
	}
	return s
}

func selectedChannel(chselr uint32) Channel {
	for ch := Channel(0); ch < channelCount; ch++ {
		if chselr&(1<<ch) != 0 {
			return ch
		}
	}
	return channelCount
}
