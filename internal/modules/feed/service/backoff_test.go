package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoffDoublesPerFailure(t *testing.T) {
	base := time.Second
	capD := 30 * time.Second

	want := []time.Duration{
		1 * time.Second,
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		16 * time.Second,
	}
	for i, w := range want {
		assert.Equal(t, w, backoffDelay(base, capD, i+1), "failure=%d", i+1)
	}
}

func TestBackoffRespectsCap(t *testing.T) {
	assert.Equal(t, 30*time.Second, backoffDelay(time.Second, 30*time.Second, 6))
	assert.Equal(t, 30*time.Second, backoffDelay(time.Second, 30*time.Second, 50))
	assert.Equal(t, 10*time.Second, backoffDelay(4*time.Second, 10*time.Second, 3))
}

func TestBackoffClampsBadFailureCount(t *testing.T) {
	assert.Equal(t, time.Second, backoffDelay(time.Second, 0, 0))
	assert.Equal(t, time.Second, backoffDelay(time.Second, 0, -3))
}

func TestBackoffZeroCapMeansUnbounded(t *testing.T) {
	assert.Equal(t, 1024*time.Second, backoffDelay(time.Second, 0, 11))
}
