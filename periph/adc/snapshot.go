package adc

// Snapshot collects the stored measurements in one read.
type Snapshot struct {
	VMCU_mV uint32
	VUSB_mV uint32
	VRS_mV  uint32
	Tmcu_C  int8
}

func (d *Device) Snapshot() Snapshot {
	var s Snapshot
	if v, e := d.Data(DataVMCU); e == nil {
		s.VMCU_mV = v
	}
	if v, e := d.Data(DataVUSB); e == nil {
		s.VUSB_mV = v
	}
	if v, e := d.Data(DataVRS); e == nil {
		s.VRS_mV = v
	}
	s.Tmcu_C = d.Temperature()
	return s
}
