package mmio

// Sim is a scripted register bank for host tests and the selftest binary.
// Hooks run on driver-initiated accesses only; Poke/Peek bypass them so a
// hook can update the bank without recursing.
type Sim struct {
	mem map[uint32]uint32

	// OnWrite, if set, runs after each Write32 with the previous and new
	// register values.
	OnWrite func(s *Sim, off, old, val uint32)
	// OnRead, if set, can substitute the value returned by Read32.
	OnRead func(s *Sim, off, val uint32) uint32
}

func NewSim() *Sim {
	return &Sim{mem: make(map[uint32]uint32)}
}

func (s *Sim) Read32(off uint32) uint32 {
	v := s.mem[off]
	if s.OnRead != nil {
		return s.OnRead(s, off, v)
	}
	return v
}

func (s *Sim) Write32(off uint32, v uint32) {
	old := s.mem[off]
	s.mem[off] = v
	if s.OnWrite != nil {
		s.OnWrite(s, off, old, v)
	}
}

// Peek returns the raw register value without running hooks.
func (s *Sim) Peek(off uint32) uint32 { return s.mem[off] }

// Poke sets the raw register value without running hooks.
func (s *Sim) Poke(off uint32, v uint32) { s.mem[off] = v }

// SimBytes is an in-memory ByteRegion.
type SimBytes struct {
	mem []byte
	// OnStore, if set, runs after each Store.
	OnStore func(off uint32, v byte)
}

func NewSimBytes(size int) *SimBytes {
	return &SimBytes{mem: make([]byte, size)}
}

func (s *SimBytes) Load(off uint32) byte { return s.mem[off] }

func (s *SimBytes) Store(off uint32, v byte) {
	s.mem[off] = v
	if s.OnStore != nil {
		s.OnStore(off, v)
	}
}
