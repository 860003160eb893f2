package domain_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liubomyr-kozak/hackathon-interflect/internal/domain"
)

func TestNewParticipant(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		p, err := domain.NewParticipant("p-1", "ABC123", "Alice", true)
		require.NoError(t, err)

		assert.Equal(t, domain.PeerID("p-1"), p.PeerID)
		assert.Equal(t, domain.RoomCode("ABC123"), p.RoomID)
		assert.Equal(t, "Alice", p.Name)
		assert.True(t, p.IsHost)
		assert.False(t, p.IsMuted)
		assert.True(t, p.HasVideo)
		assert.False(t, p.IsScreenSharing)
		assert.False(t, p.IsAdmin)
		assert.WithinDuration(t, time.Now(), p.JoinedAt, time.Second)
	})

	t.Run("rejects empty peer id", func(t *testing.T) {
		_, err := domain.NewParticipant("", "ABC123", "Alice", false)
		assert.ErrorIs(t, err, domain.ErrPeerIDEmpty)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := domain.NewParticipant("p-1", "ABC123", "", false)
		assert.ErrorIs(t, err, domain.ErrNameEmpty)
	})

	t.Run("rejects overlong name", func(t *testing.T) {
		_, err := domain.NewParticipant("p-1", "ABC123", strings.Repeat("a", domain.MaxNameLen+1), false)
		assert.ErrorIs(t, err, domain.ErrNameTooLong)
	})
}

func TestParticipantApply(t *testing.T) {
	t.Run("merges only supplied fields", func(t *testing.T) {
		p, err := domain.NewParticipant("p-1", "ABC123", "Alice", false)
		require.NoError(t, err)

		muted := true
		p.Apply(domain.ParticipantUpdate{IsMuted: &muted})

		assert.True(t, p.IsMuted)
		assert.True(t, p.HasVideo)
		assert.Equal(t, "Alice", p.Name)
	})

	t.Run("renames", func(t *testing.T) {
		p, err := domain.NewParticipant("p-1", "ABC123", "Alice", false)
		require.NoError(t, err)

		name := "Alicia"
		p.Apply(domain.ParticipantUpdate{Name: &name})

		assert.Equal(t, "Alicia", p.Name)
		assert.False(t, p.IsMuted)
	})
}

func TestParticipantUpdateIsZero(t *testing.T) {
	assert.True(t, domain.ParticipantUpdate{}.IsZero())

	sharing := true
	assert.False(t, domain.ParticipantUpdate{IsScreenSharing: &sharing}.IsZero())
}
