package app_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liubomyr-kozak/hackathon-interflect/internal/app"
	"github.com/liubomyr-kozak/hackathon-interflect/internal/core"
	"github.com/liubomyr-kozak/hackathon-interflect/internal/domain"
)

func TestSessionTableBind(t *testing.T) {
	tbl := app.NewSessionTable()
	conn := &fakeConn{}
	tbl.Add("s-1", conn, nil)

	require.NoError(t, tbl.Bind("s-1", "p-1", "ABC123"))

	peer, room, ok := tbl.BindingOf("s-1")
	require.True(t, ok)
	assert.Equal(t, "p-1", string(peer))
	assert.Equal(t, "ABC123", string(room))

	t.Run("rejects a second join on the same connection", func(t *testing.T) {
		err := tbl.Bind("s-1", "p-other", "OTHER")
		assert.ErrorIs(t, err, app.ErrAlreadyJoined)
	})

	t.Run("rejects a peer id held by another session", func(t *testing.T) {
		tbl.Add("s-2", &fakeConn{}, nil)
		err := tbl.Bind("s-2", "p-1", "ABC123")
		assert.ErrorIs(t, err, app.ErrPeerBound)
	})

	t.Run("rejects an unknown session", func(t *testing.T) {
		err := tbl.Bind("ghost", "p-9", "ABC123")
		assert.Error(t, err)
	})
}

func TestSessionTableUnbind(t *testing.T) {
	tbl := app.NewSessionTable()
	tbl.Add("s-1", &fakeConn{}, nil)
	require.NoError(t, tbl.Bind("s-1", "p-1", "ABC123"))

	peer, room, ok := tbl.Unbind("s-1")
	require.True(t, ok)
	assert.Equal(t, "p-1", string(peer))
	assert.Equal(t, "ABC123", string(room))

	// back to anonymous, the connection itself survives
	_, _, ok = tbl.BindingOf("s-1")
	assert.False(t, ok)
	assert.Equal(t, 1, tbl.Count())

	// the peer id is free again
	require.NoError(t, tbl.Bind("s-1", "p-1", "ABC123"))
}

func TestSessionTableRemove(t *testing.T) {
	tbl := app.NewSessionTable()
	tbl.Add("s-1", &fakeConn{}, nil)
	require.NoError(t, tbl.Bind("s-1", "p-1", "ABC123"))

	peer, room, wasJoined := tbl.Remove("s-1")
	assert.True(t, wasJoined)
	assert.Equal(t, "p-1", string(peer))
	assert.Equal(t, "ABC123", string(room))
	assert.Equal(t, 0, tbl.Count())

	_, _, wasJoined = tbl.Remove("s-1")
	assert.False(t, wasJoined)

	_, ok := tbl.FindByPeer("p-1")
	assert.False(t, ok)
}

func TestSessionTableFindByPeer(t *testing.T) {
	tbl := app.NewSessionTable()
	conn := &fakeConn{}
	tbl.Add("s-1", conn, nil)
	require.NoError(t, tbl.Bind("s-1", "p-1", "ABC123"))

	got, ok := tbl.FindByPeer("p-1")
	require.True(t, ok)
	assert.Same(t, conn, got)

	_, ok = tbl.FindByPeer("ghost")
	assert.False(t, ok)
}

func TestSessionTableFanout(t *testing.T) {
	tbl := app.NewSessionTable()
	for _, s := range []struct {
		sid  core.SessionID
		peer string
		room string
	}{
		{"s-1", "p-1", "ABC123"},
		{"s-2", "p-2", "ABC123"},
		{"s-3", "p-3", "OTHER"},
	} {
		tbl.Add(s.sid, &fakeConn{}, nil)
		require.NoError(t, tbl.Bind(s.sid, domain.PeerID(s.peer), domain.RoomCode(s.room)))
	}
	// an anonymous connection never receives broadcasts
	tbl.Add("s-anon", &fakeConn{}, nil)

	t.Run("excludes the triggering session", func(t *testing.T) {
		targets := tbl.Fanout("ABC123", "s-1")
		require.Len(t, targets, 1)
		assert.Equal(t, core.SessionID("s-2"), targets[0].SID)
	})

	t.Run("only matching room", func(t *testing.T) {
		targets := tbl.Fanout("OTHER", "")
		require.Len(t, targets, 1)
		assert.Equal(t, core.SessionID("s-3"), targets[0].SID)
	})

	t.Run("all in room includes everyone", func(t *testing.T) {
		assert.Len(t, tbl.AllInRoom("ABC123"), 2)
	})

	t.Run("empty room", func(t *testing.T) {
		assert.Empty(t, tbl.Fanout("EMPTY", ""))
	})
}
