package transportclient

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoffNeverExceedsCap(t *testing.T) {
	cap := 30 * time.Second
	for k := 0; k < 10; k++ {
		d := Backoff(k, 500*time.Millisecond, cap)
		assert.LessOrEqual(t, d, cap)
		assert.GreaterOrEqual(t, d, time.Duration(0))
	}
}

func TestBackoffGrowsExponentiallyBeforeCapping(t *testing.T) {
	base := 500 * time.Millisecond
	cap := 30 * time.Second
	// at k=0 the jittered draw is bounded by base; at k=3 it's bounded
	// by base*8, still under cap, so repeated sampling should
	// eventually produce larger values at higher k.
	var maxAtZero, maxAtThree time.Duration
	for i := 0; i < 200; i++ {
		if d := Backoff(0, base, cap); d > maxAtZero {
			maxAtZero = d
		}
		if d := Backoff(3, base, cap); d > maxAtThree {
			maxAtThree = d
		}
	}
	assert.Greater(t, maxAtThree, maxAtZero)
}
