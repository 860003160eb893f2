package signal_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/liubomyr-kozak/hackathon-interflect/internal/adapters/signal"
)

func TestIPRateLimiterAllowsBurst(t *testing.T) {
	rl := signal.NewIPRateLimiter(5)

	for i := 0; i < 10; i++ {
		assert.True(t, rl.Allow("10.0.0.1"), "attempt %d within burst", i)
	}
}

func TestIPRateLimiterBlocksFlood(t *testing.T) {
	rl := signal.NewIPRateLimiter(1)

	allowed := 0
	for i := 0; i < 50; i++ {
		if rl.Allow("10.0.0.1") {
			allowed++
		}
	}
	assert.Less(t, allowed, 50, "flood must be throttled")
}

func TestIPRateLimiterPerIP(t *testing.T) {
	rl := signal.NewIPRateLimiter(1)

	for i := 0; i < 50; i++ {
		rl.Allow("10.0.0.1")
	}
	assert.True(t, rl.Allow("10.0.0.2"), "a fresh ip has its own bucket")
}
