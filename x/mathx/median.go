package mathx

import (
	"golang.org/x/exp/constraints"

	"boardcode-go/errcode"
)

// MedianFilter sorts samples in place and returns the average of the
// centerWindow middle-ranked values. centerWindow=1 is a plain median;
// a wider window reduces quantisation noise on top of the outlier rejection.
//
// The sample count must be odd and non-zero, and centerWindow must be in
// [1, len(samples)]. The average truncates toward zero.
func MedianFilter[T constraints.Unsigned](samples []T, centerWindow int) (T, error) {
	n := len(samples)
	if n == 0 || n%2 == 0 {
		return 0, errcode.InvalidParams
	}
	if centerWindow < 1 || centerWindow > n {
		return 0, errcode.InvalidParams
	}
	insertionSort(samples)
	start := n/2 - centerWindow/2
	var sum uint64
	for _, v := range samples[start : start+centerWindow] {
		sum += uint64(v)
	}
	return T(sum / uint64(centerWindow)), nil
}

// insertionSort keeps the filter allocation-free; sample buffers are tiny.
func insertionSort[T constraints.Ordered](s []T) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j] < s[j-1]; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}
