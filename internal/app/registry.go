package app

import (
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/liubomyr-kozak/hackathon-interflect/internal/domain"
)

var ErrPeerExists = errors.New("peer id already registered")

// Registry is the authoritative "who is a logical member of this room"
// table, keyed by peerId. A record exists iff a live session currently
// claims that peerId.
type Registry struct {
	mu     sync.RWMutex
	byPeer map[domain.PeerID]*domain.Participant
	// join order per room, an implementation convenience for rosters
	order map[domain.RoomCode][]domain.PeerID
}

func NewRegistry() *Registry {
	return &Registry{
		byPeer: make(map[domain.PeerID]*domain.Participant),
		order:  make(map[domain.RoomCode][]domain.PeerID),
	}
}

// Create registers a new participant with default status flags.
// A peerId that already has a live record is rejected, never displaced.
func (r *Registry) Create(peerID domain.PeerID, room domain.RoomCode, name string, isHost bool) (domain.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byPeer[peerID]; ok {
		return domain.Participant{}, ErrPeerExists
	}
	p, err := domain.NewParticipant(peerID, room, name, isHost)
	if err != nil {
		return domain.Participant{}, err
	}
	r.byPeer[peerID] = p
	r.order[room] = append(r.order[room], peerID)
	log.Info().Str("module", "app.registry").Str("peer", string(peerID)).Str("room", string(room)).Msg("participant created")
	return *p, nil
}

func (r *Registry) Get(peerID domain.PeerID) (domain.Participant, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byPeer[peerID]
	if !ok {
		return domain.Participant{}, false
	}
	return *p, true
}

// ListByRoom returns the room roster in join order.
func (r *Registry) ListByRoom(room domain.RoomCode) []domain.Participant {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Participant, 0, len(r.order[room]))
	for _, peerID := range r.order[room] {
		if p, ok := r.byPeer[peerID]; ok {
			out = append(out, *p)
		}
	}
	return out
}

// Update merges only the supplied fields. It never resurrects a deleted
// record: an absent peerId is reported via the ok bool.
func (r *Registry) Update(peerID domain.PeerID, upd domain.ParticipantUpdate) (domain.Participant, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byPeer[peerID]
	if !ok {
		return domain.Participant{}, false
	}
	p.Apply(upd)
	return *p, true
}

// Delete is idempotent; removing an absent peerId is a no-op.
func (r *Registry) Delete(peerID domain.PeerID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byPeer[peerID]
	if !ok {
		return
	}
	delete(r.byPeer, peerID)
	r.dropFromOrder(p.RoomID, peerID)
	log.Info().Str("module", "app.registry").Str("peer", string(peerID)).Msg("participant deleted")
}

// DeleteAllByRoom is the bulk cleanup hook for room teardown.
func (r *Registry) DeleteAllByRoom(room domain.RoomCode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, peerID := range r.order[room] {
		delete(r.byPeer, peerID)
	}
	delete(r.order, room)
	log.Info().Str("module", "app.registry").Str("room", string(room)).Msg("room participants deleted")
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byPeer)
}

func (r *Registry) dropFromOrder(room domain.RoomCode, peerID domain.PeerID) {
	ids := r.order[room]
	for i, id := range ids {
		if id == peerID {
			r.order[room] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	if len(r.order[room]) == 0 {
		delete(r.order, room)
	}
}
