package app

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/liubomyr-kozak/hackathon-interflect/internal/core"
	"github.com/liubomyr-kozak/hackathon-interflect/internal/domain"
)

var (
	ErrAlreadyJoined = errors.New("session already joined a room")
	ErrPeerBound     = errors.New("peer id bound to another session")
)

type sessionEntry struct {
	Conn   core.SignalConnection
	Peer   domain.PeerID
	Room   domain.RoomCode
	Cancel context.CancelFunc
}

// SessionTable is the only place that knows about live transport
// handles. It binds a connection to the peer identity and room it
// joined; the registries never hold a transport reference.
type SessionTable struct {
	mu       sync.RWMutex
	sessions map[core.SessionID]*sessionEntry
	byPeer   map[domain.PeerID]core.SessionID
}

func NewSessionTable() *SessionTable {
	return &SessionTable{
		sessions: make(map[core.SessionID]*sessionEntry),
		byPeer:   make(map[domain.PeerID]core.SessionID),
	}
}

// Add registers an accepted connection in the Anonymous state.
func (t *SessionTable) Add(sid core.SessionID, conn core.SignalConnection, cancel context.CancelFunc) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sessions[sid] = &sessionEntry{Conn: conn, Cancel: cancel}
	log.Info().Str("module", "app.sessions").Str("sid", string(sid)).Msg("session added")
}

// Bind moves a session from Anonymous to Joined. At most one room per
// connection; a peerId held by another live session is rejected.
func (t *SessionTable) Bind(sid core.SessionID, peer domain.PeerID, room domain.RoomCode) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.sessions[sid]
	if !ok {
		return errors.New("unknown session")
	}
	if e.Peer != "" {
		return ErrAlreadyJoined
	}
	if owner, ok := t.byPeer[peer]; ok && owner != sid {
		return ErrPeerBound
	}
	e.Peer = peer
	e.Room = room
	t.byPeer[peer] = sid
	log.Info().Str("module", "app.sessions").Str("sid", string(sid)).Str("peer", string(peer)).Str("room", string(room)).Msg("session bound")
	return nil
}

// Unbind clears the peer/room binding but keeps the session alive, so
// the connection can join again. Returns the old binding if there was one.
func (t *SessionTable) Unbind(sid core.SessionID) (domain.PeerID, domain.RoomCode, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.sessions[sid]
	if !ok || e.Peer == "" {
		return "", "", false
	}
	peer, room := e.Peer, e.Room
	delete(t.byPeer, peer)
	e.Peer, e.Room = "", ""
	log.Info().Str("module", "app.sessions").Str("sid", string(sid)).Str("peer", string(peer)).Msg("session unbound")
	return peer, room, true
}

// Remove drops the session entirely on transport close. Returns the
// binding that was active, if any, so the caller can run leave cleanup.
func (t *SessionTable) Remove(sid core.SessionID) (domain.PeerID, domain.RoomCode, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.sessions[sid]
	if !ok {
		return "", "", false
	}
	delete(t.sessions, sid)
	if e.Peer != "" {
		delete(t.byPeer, e.Peer)
	}
	log.Info().Str("module", "app.sessions").Str("sid", string(sid)).Msg("session removed")
	return e.Peer, e.Room, e.Peer != ""
}

func (t *SessionTable) Conn(sid core.SessionID) (core.SignalConnection, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if e, ok := t.sessions[sid]; ok {
		return e.Conn, true
	}
	return nil, false
}

func (t *SessionTable) BindingOf(sid core.SessionID) (domain.PeerID, domain.RoomCode, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	e, ok := t.sessions[sid]
	if !ok || e.Peer == "" {
		return "", "", false
	}
	return e.Peer, e.Room, true
}

// FindByPeer resolves a peer id to its live connection.
func (t *SessionTable) FindByPeer(peer domain.PeerID) (core.SignalConnection, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	sid, ok := t.byPeer[peer]
	if !ok {
		return nil, false
	}
	e, ok := t.sessions[sid]
	if !ok {
		return nil, false
	}
	return e.Conn, true
}

// Target pairs a broadcast recipient with its connection.
type Target struct {
	SID  core.SessionID
	Conn core.SignalConnection
}

// AllInRoom returns every connection currently joined to the room.
func (t *SessionTable) AllInRoom(room domain.RoomCode) []Target {
	return t.Fanout(room, "")
}

// Fanout computes the broadcast target set for a room, excluding the
// triggering session. Pure lookup; it never touches the transport.
func (t *SessionTable) Fanout(room domain.RoomCode, exclude core.SessionID) []Target {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []Target
	for sid, e := range t.sessions {
		if e.Room != room || e.Room == "" {
			continue
		}
		if sid == exclude {
			continue
		}
		out = append(out, Target{SID: sid, Conn: e.Conn})
	}
	return out
}

// Cancel fires the session's cancel func, tearing down its pumps.
func (t *SessionTable) Cancel(sid core.SessionID) bool {
	t.mu.RLock()
	e, ok := t.sessions[sid]
	t.mu.RUnlock()
	if !ok {
		return false
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	return true
}

func (t *SessionTable) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.sessions)
}
