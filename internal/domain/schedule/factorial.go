package schedule

import "fmt"

// MaxOpponents is the largest opponent count whose factorial fits a uint64.
const MaxOpponents = 20

var factorials = func() [MaxOpponents + 1]uint64 {
	var f [MaxOpponents + 1]uint64
	f[0] = 1
	for i := 1; i <= MaxOpponents; i++ {
		f[i] = f[i-1] * uint64(i)
	}
	return f
}()

// Factorial returns n! for 0 <= n <= MaxOpponents.
func Factorial(n int) (uint64, error) {
	if n < 0 || n > MaxOpponents {
		return 0, fmt.Errorf("%w: %d", ErrTooManyOpponents, n)
	}
	return factorials[n], nil
}

// Range is a contiguous block of permutation ranks [Start, Start+Count).
type Range struct {
	Start uint64 `json:"start"`
	Count uint64 `json:"count"`
}

// End returns the exclusive upper rank.
func (r Range) End() uint64 { return r.Start + r.Count }

// Partition splits [0, total) into disjoint ranges of at most chunk ranks.
func Partition(total, chunk uint64) []Range {
	if total == 0 {
		return nil
	}
	if chunk == 0 {
		chunk = total
	}
	out := make([]Range, 0, (total+chunk-1)/chunk)
	for start := uint64(0); start < total; start += chunk {
		out = append(out, Range{Start: start, Count: min(chunk, total-start)})
	}
	return out
}
