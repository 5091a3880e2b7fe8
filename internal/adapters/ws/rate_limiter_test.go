package ws

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dkeye/Courier/internal/domain"
)

func TestMessageRateLimiter_BlocksOverLimit(t *testing.T) {
	req := require.New(t)
	rl := NewMessageRateLimiter(3, time.Minute)
	uid := domain.UserID("id-alice")

	for i := 0; i < 3; i++ {
		req.True(rl.Allow(uid))
	}
	req.False(rl.Allow(uid))
}

func TestMessageRateLimiter_PerIdentity(t *testing.T) {
	req := require.New(t)
	rl := NewMessageRateLimiter(1, time.Minute)

	req.True(rl.Allow("id-alice"))
	req.False(rl.Allow("id-alice"))
	req.True(rl.Allow("id-bob"))
}

func TestMessageRateLimiter_WindowSlides(t *testing.T) {
	req := require.New(t)
	rl := NewMessageRateLimiter(1, 30*time.Millisecond)
	uid := domain.UserID("id-alice")

	req.True(rl.Allow(uid))
	req.False(rl.Allow(uid))

	time.Sleep(40 * time.Millisecond)
	req.True(rl.Allow(uid))
}
