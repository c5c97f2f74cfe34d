// Package mmio abstracts memory-mapped peripheral access so register drivers
// can run against real hardware (TinyGo builds) or a scripted simulator
// (host tests, selftest binary).
package mmio

// Bus provides 32-bit access to one peripheral register bank.
// Offsets are byte offsets from the bank base address.
type Bus interface {
	Read32(off uint32) uint32
	Write32(off uint32, v uint32)
}

// ByteRegion provides byte access to a data memory window (EEPROM).
type ByteRegion interface {
	Load(off uint32) byte
	Store(off uint32, v byte)
}

// SetBits ORs mask into the register at off.
func SetBits(b Bus, off, mask uint32) {
	b.Write32(off, b.Read32(off)|mask)
}

// ClearBits clears mask in the register at off.
func ClearBits(b Bus, off, mask uint32) {
	b.Write32(off, b.Read32(off)&^mask)
}

// HasBits reports whether all bits of mask are set at off.
func HasBits(b Bus, off, mask uint32) bool {
	return b.Read32(off)&mask == mask
}
