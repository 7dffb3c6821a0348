package prime

import (
	"math"
	"testing"
)

func TestNext(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{-5, 2},
		{0, 2},
		{1, 2},
		{2, 2},
		{3, 3},
		{4, 5},
		{7, 7},
		{8, 11},
		{100, 101},
		{113, 113},
		{114, 127},
		{7919, 7919},
		{7920, 7927},
	}
	for _, tt := range tests {
		if got := Next(tt.in); got != tt.want {
			t.Errorf("Next(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestIsPrime(t *testing.T) {
	primes := map[int]bool{2: true, 3: true, 5: true, 7: true, 11: true, 13: true, 17: true, 19: true, 23: true, 29: true}
	for n := -1; n < 30; n++ {
		if got := IsPrime(n); got != primes[n] {
			t.Errorf("IsPrime(%d) = %v", n, got)
		}
	}
}

func TestNextOverflow(t *testing.T) {
	if math.MaxInt != math.MaxInt64 {
		t.Skip("2^31-1 is prime")
	}
	for _, n := range []int{math.MaxInt, math.MaxInt - 1} {
		if got := Next(n); got != 0 {
			t.Errorf("Next(%d) = %d, want 0", n, got)
		}
	}
}
