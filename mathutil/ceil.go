package mathutil

import (
	"golang.org/x/exp/constraints"
)

// CeilInts returns a/b rounded toward positive infinity.
func CeilInts[T constraints.Integer](a, b T) T {
	q, r := a/b, a%b
	if r != 0 && (r > 0) == (b > 0) {
		q++
	}
	return q
}
