package transportclient

import (
	"math/rand/v2"
	"time"
)

// Backoff computes the delay before retry attempt k+1 (k is
// 0-indexed, the attempt that just failed): min(base*2^k, cap) with
// full jitter, i.e. a uniform draw in [0, computed].
func Backoff(k int, base, cap time.Duration) time.Duration {
	if base <= 0 {
		base = 0
	}
	computed := base << uint(k) // base * 2^k
	if computed <= 0 || computed > cap {
		computed = cap
	}
	if computed <= 0 {
		return 0
	}
	return time.Duration(rand.Int64N(int64(computed) + 1))
}
