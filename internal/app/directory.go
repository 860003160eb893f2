package app

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/liubomyr-kozak/hackathon-interflect/internal/domain"
)

var ErrRoomExists = errors.New("room already exists")

// Directory maps a shareable room code to room metadata. Lookup misses
// are a normal outcome (mistyped code), reported via the ok bool.
type Directory struct {
	mu     sync.RWMutex
	byCode map[domain.RoomCode]*domain.Room
	nextID int64
}

func NewDirectory() *Directory {
	return &Directory{
		byCode: make(map[domain.RoomCode]*domain.Room),
		nextID: 1,
	}
}

func (d *Directory) Create(code domain.RoomCode, isActive, isAdmin bool) (domain.Room, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.byCode[code]; ok {
		return domain.Room{}, ErrRoomExists
	}
	room := &domain.Room{
		ID:        d.nextID,
		Code:      code,
		IsAdmin:   isAdmin,
		IsActive:  isActive,
		CreatedAt: time.Now(),
	}
	d.nextID++
	d.byCode[code] = room
	log.Info().Str("module", "app.directory").Str("code", string(code)).Int64("id", room.ID).Msg("room created")
	return *room, nil
}

func (d *Directory) Lookup(code domain.RoomCode) (domain.Room, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	room, ok := d.byCode[code]
	if !ok {
		return domain.Room{}, false
	}
	return *room, true
}

func (d *Directory) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.byCode)
}
