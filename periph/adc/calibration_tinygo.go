//go:build tinygo

package adc

import "unsafe"

// FactoryCalibration reads the per-chip calibration codes burned into system
// memory at manufacture.
func FactoryCalibration() Calibration {
	return Calibration{
		VrefintCal: uint32(*(*uint16)(unsafe.Pointer(vrefintCalAddr))),
		TsCal1:     uint32(*(*uint16)(unsafe.Pointer(tsCal1Addr))),
		TsCal2:     uint32(*(*uint16)(unsafe.Pointer(tsCal2Addr))),
	}
}
