package mathx

// RoundDiv divides a by b rounding to nearest, for unsigned operands.
// A zero divisor yields zero rather than trapping.
func RoundDiv[T ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64](a, b T) T {
	if b == 0 {
		return 0
	}
	return (a + b/2) / b
}
