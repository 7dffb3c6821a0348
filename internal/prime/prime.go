// Package prime picks table capacities.
package prime

import "math"

// IsPrime reports whether n is prime.
func IsPrime(n int) bool {
	if n < 2 {
		return false
	}
	if n%2 == 0 {
		return n == 2
	}
	for d := 3; d <= n/d; d += 2 {
		if n%d == 0 {
			return false
		}
	}
	return true
}

// Next returns the smallest prime >= n. Values below 2 yield 2. It returns 0
// when the search would run past math.MaxInt. Trial division makes it slow
// for n far beyond table sizes; callers bound n first.
func Next(n int) int {
	if n <= 2 {
		return 2
	}
	if n%2 == 0 {
		n++
	}
	for !IsPrime(n) {
		if n > math.MaxInt-2 {
			return 0
		}
		n += 2
	}
	return n
}
