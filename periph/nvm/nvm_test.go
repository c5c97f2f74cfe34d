package nvm

import (
	"testing"

	"boardcode-go/errcode"
	"boardcode-go/mmio"
)

// lockedBank returns a flash register bank that starts locked and honours
// the key sequence: the second key clears the lock bit. Key writes are
// appended to the returned slice.
func lockedBank() (*mmio.Sim, *[]uint32) {
	keys := &[]uint32{}
	s := mmio.NewSim()
	s.Poke(regPECR, pecrPELock)
	s.OnWrite = func(s *mmio.Sim, off, old, val uint32) {
		if off == regPEKEYR {
			*keys = append(*keys, val)
			k := *keys
			if len(k) >= 2 && k[len(k)-2] == pekey1 && k[len(k)-1] == pekey2 {
				s.Poke(regPECR, s.Peek(regPECR)&^uint32(pecrPELock))
			}
		}
	}
	return s, keys
}

func TestWriteByteRoundTrip(t *testing.T) {
	regs, keys := lockedBank()
	eeprom := mmio.NewSimBytes(EepromSizeBytes)
	d := New(regs, eeprom, Config{PollCeiling: 100})
	if err := d.WriteByte(17, 0xA5); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := eeprom.Load(17); got != 0xA5 {
		t.Fatalf("stored byte = %#x, want 0xA5", got)
	}
	if len(*keys) != 2 || (*keys)[0] != pekey1 || (*keys)[1] != pekey2 {
		t.Fatalf("key sequence = %#x, want [%#x %#x]", *keys, uint32(pekey1), uint32(pekey2))
	}
	if !mmio.HasBits(regs, regPECR, pecrPELock) {
		t.Fatal("PECR not locked back after write")
	}
	b, err := d.ReadByte(17)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if b != 0xA5 {
		t.Fatalf("read back %#x, want 0xA5", b)
	}
}

func TestUnlockSkippedWhenAlreadyOpen(t *testing.T) {
	regs, keys := lockedBank()
	regs.Poke(regPECR, 0) // already unlocked
	d := New(regs, mmio.NewSimBytes(EepromSizeBytes), Config{PollCeiling: 100})
	if err := d.WriteByte(0, 1); err != nil {
		t.Fatalf("write: %v", err)
	}
	if len(*keys) != 0 {
		t.Fatalf("keys written to an unlocked bank: %#x", *keys)
	}
}

func TestAddressBounds(t *testing.T) {
	d := New(mmio.NewSim(), mmio.NewSimBytes(EepromSizeBytes), Config{PollCeiling: 100})
	if _, err := d.ReadByte(EepromSizeBytes); err != errcode.InvalidAddress {
		t.Fatalf("read past end err = %v", err)
	}
	if err := d.WriteByte(EepromSizeBytes, 0); err != errcode.InvalidAddress {
		t.Fatalf("write past end err = %v", err)
	}
	if _, err := d.ReadByte(EepromSizeBytes - 1); err != nil {
		t.Fatalf("last byte read err = %v", err)
	}
}

func TestBusyTimeout(t *testing.T) {
	regs := mmio.NewSim()
	regs.Poke(regSR, srBusy) // stuck busy
	d := New(regs, mmio.NewSimBytes(EepromSizeBytes), Config{PollCeiling: 10})
	if err := d.WriteByte(0, 1); err != errcode.UnlockTimeout {
		t.Fatalf("stuck-busy write err = %v, want %v", err, errcode.UnlockTimeout)
	}
	if _, err := d.ReadByte(0); err != errcode.UnlockTimeout {
		t.Fatalf("stuck-busy read err = %v, want %v", err, errcode.UnlockTimeout)
	}
}

func TestSetLatency(t *testing.T) {
	regs := mmio.NewSim()
	d := New(regs, mmio.NewSimBytes(EepromSizeBytes), Config{})
	if err := d.SetLatency(1); err != nil {
		t.Fatalf("SetLatency(1): %v", err)
	}
	if !mmio.HasBits(regs, regACR, acrLatency) {
		t.Fatal("latency bit not set")
	}
	if err := d.SetLatency(0); err != nil {
		t.Fatalf("SetLatency(0): %v", err)
	}
	if mmio.HasBits(regs, regACR, acrLatency) {
		t.Fatal("latency bit not cleared")
	}
	if err := d.SetLatency(2); err != errcode.InvalidParams {
		t.Fatalf("SetLatency(2) err = %v", err)
	}
}
