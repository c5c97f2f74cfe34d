// Package conv holds allocation-free number formatters for UART reporting.
// No fmt or strconv, so the MCU image stays small.
package conv

const hexDigits = "0123456789ABCDEF"

// Utoa renders n in decimal into the tail of buf and returns the used slice.
// buf needs at most 20 bytes for a uint64; a too-small buffer returns an
// empty slice.
func Utoa(buf []byte, n uint64) []byte {
	i := len(buf)
	for {
		if i == 0 {
			return buf[:0]
		}
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
		if n == 0 {
			return buf[i:]
		}
	}
}

// Itoa is Utoa with a leading minus for negative values.
func Itoa(buf []byte, n int64) []byte {
	if n >= 0 {
		return Utoa(buf, uint64(n))
	}
	s := Utoa(buf, uint64(-n))
	if len(s) == len(buf) {
		return s // no room for the sign
	}
	i := len(buf) - len(s) - 1
	buf[i] = '-'
	return buf[i:]
}

// U32Hex renders n as 8 uppercase hex digits, zero padded.
func U32Hex(buf []byte, n uint32) []byte {
	if len(buf) < 8 {
		return buf[:0]
	}
	for i := 7; i >= 0; i-- {
		buf[i] = hexDigits[n&0xF]
		n >>= 4
	}
	return buf[:8]
}
