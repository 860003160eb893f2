package app_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liubomyr-kozak/hackathon-interflect/internal/app"
	"github.com/liubomyr-kozak/hackathon-interflect/internal/domain"
)

func TestRegistryCreate(t *testing.T) {
	reg := app.NewRegistry()

	p, err := reg.Create("p-1", "ABC123", "Alice", true)
	require.NoError(t, err)
	assert.True(t, p.IsHost)
	assert.True(t, p.HasVideo)

	got, ok := reg.Get("p-1")
	require.True(t, ok)
	assert.Equal(t, p, got)
}

func TestRegistryRejectsDuplicatePeer(t *testing.T) {
	reg := app.NewRegistry()

	_, err := reg.Create("p-1", "ABC123", "Alice", false)
	require.NoError(t, err)

	_, err = reg.Create("p-1", "OTHER", "Mallory", false)
	assert.ErrorIs(t, err, app.ErrPeerExists)

	// the original record is untouched
	got, ok := reg.Get("p-1")
	require.True(t, ok)
	assert.Equal(t, "Alice", got.Name)
	assert.Equal(t, domain.RoomCode("ABC123"), got.RoomID)
}

func TestRegistryListByRoomJoinOrder(t *testing.T) {
	reg := app.NewRegistry()

	for _, id := range []domain.PeerID{"p-1", "p-2", "p-3"} {
		_, err := reg.Create(id, "ABC123", string(id), false)
		require.NoError(t, err)
	}
	_, err := reg.Create("q-1", "OTHER", "outsider", false)
	require.NoError(t, err)

	roster := reg.ListByRoom("ABC123")
	require.Len(t, roster, 3)
	assert.Equal(t, domain.PeerID("p-1"), roster[0].PeerID)
	assert.Equal(t, domain.PeerID("p-2"), roster[1].PeerID)
	assert.Equal(t, domain.PeerID("p-3"), roster[2].PeerID)
}

func TestRegistryUpdate(t *testing.T) {
	reg := app.NewRegistry()

	_, err := reg.Create("p-1", "ABC123", "Alice", false)
	require.NoError(t, err)

	muted := true
	p, ok := reg.Update("p-1", domain.ParticipantUpdate{IsMuted: &muted})
	require.True(t, ok)
	assert.True(t, p.IsMuted)
	assert.True(t, p.HasVideo)

	t.Run("never resurrects a deleted record", func(t *testing.T) {
		reg.Delete("p-1")
		_, ok := reg.Update("p-1", domain.ParticipantUpdate{IsMuted: &muted})
		assert.False(t, ok)
		_, ok = reg.Get("p-1")
		assert.False(t, ok)
	})
}

func TestRegistryDeleteIdempotent(t *testing.T) {
	reg := app.NewRegistry()

	_, err := reg.Create("p-1", "ABC123", "Alice", false)
	require.NoError(t, err)

	reg.Delete("p-1")
	reg.Delete("p-1")

	assert.Equal(t, 0, reg.Count())
	assert.Empty(t, reg.ListByRoom("ABC123"))
}

func TestRegistryDeleteAllByRoom(t *testing.T) {
	reg := app.NewRegistry()

	_, err := reg.Create("p-1", "ABC123", "Alice", false)
	require.NoError(t, err)
	_, err = reg.Create("p-2", "ABC123", "Bob", false)
	require.NoError(t, err)
	_, err = reg.Create("q-1", "OTHER", "Carol", false)
	require.NoError(t, err)

	reg.DeleteAllByRoom("ABC123")

	assert.Empty(t, reg.ListByRoom("ABC123"))
	assert.Equal(t, 1, reg.Count())
	_, ok := reg.Get("q-1")
	assert.True(t, ok)
}
