//go:build tinygo

package mmio

import (
	"runtime/volatile"
	"unsafe"
)

// Bank is a Bus backed by real memory-mapped registers.
type Bank struct {
	base uintptr
}

// NewBank returns a Bus for the peripheral bank at base.
func NewBank(base uintptr) Bank { return Bank{base: base} }

func (b Bank) Read32(off uint32) uint32 {
	return (*volatile.Register32)(unsafe.Pointer(b.base + uintptr(off))).Get()
}

func (b Bank) Write32(off uint32, v uint32) {
	(*volatile.Register32)(unsafe.Pointer(b.base + uintptr(off))).Set(v)
}

// Region is a ByteRegion backed by real data memory.
type Region struct {
	base uintptr
}

// NewRegion returns a ByteRegion for the memory window at base.
func NewRegion(base uintptr) Region { return Region{base: base} }

func (r Region) Load(off uint32) byte {
	return (*volatile.Register8)(unsafe.Pointer(r.base + uintptr(off))).Get()
}

func (r Region) Store(off uint32, v byte) {
	(*volatile.Register8)(unsafe.Pointer(r.base + uintptr(off))).Set(v)
}
