// Package domain contains entities without logic, just meta-data.
package domain

import (
	"errors"
	"time"
)

const (
	MaxPeerIDLen = 64
	MaxNameLen   = 36
)

var (
	ErrPeerIDEmpty   = errors.New("peer id empty")
	ErrPeerIDTooLong = errors.New("peer id too long")
	ErrNameEmpty     = errors.New("name empty")
	ErrNameTooLong   = errors.New("name too long")
)

type PeerID string

// Participant is the logical membership record of one peer in one room.
// No transport references here; live connections are tracked separately.
type Participant struct {
	PeerID          PeerID    `json:"peerId"`
	RoomID          RoomCode  `json:"roomId"`
	Name            string    `json:"name"`
	IsHost          bool      `json:"isHost"`
	IsMuted         bool      `json:"isMuted"`
	HasVideo        bool      `json:"hasVideo"`
	IsScreenSharing bool      `json:"isScreenSharing"`
	IsAdmin         bool      `json:"isAdmin"`
	JoinedAt        time.Time `json:"joinedAt"`
}

// NewParticipant avoids raw literals in adapters and keeps the flag
// defaults in one place: not muted, video on, not sharing, not admin.
func NewParticipant(peerID PeerID, room RoomCode, name string, isHost bool) (*Participant, error) {
	if len(peerID) == 0 {
		return nil, ErrPeerIDEmpty
	}
	if len(peerID) > MaxPeerIDLen {
		return nil, ErrPeerIDTooLong
	}
	if len(name) == 0 {
		return nil, ErrNameEmpty
	}
	if len(name) > MaxNameLen {
		return nil, ErrNameTooLong
	}
	return &Participant{
		PeerID:   peerID,
		RoomID:   room,
		Name:     name,
		IsHost:   isHost,
		HasVideo: true,
		JoinedAt: time.Now(),
	}, nil
}

// ParticipantUpdate carries only the fields the caller supplied; nil
// pointers are left untouched by Apply.
type ParticipantUpdate struct {
	Name            *string `json:"name,omitempty"`
	IsMuted         *bool   `json:"isMuted,omitempty"`
	HasVideo        *bool   `json:"hasVideo,omitempty"`
	IsScreenSharing *bool   `json:"isScreenSharing,omitempty"`
	IsAdmin         *bool   `json:"isAdmin,omitempty"`
}

func (u ParticipantUpdate) IsZero() bool {
	return u.Name == nil && u.IsMuted == nil && u.HasVideo == nil &&
		u.IsScreenSharing == nil && u.IsAdmin == nil
}

func (p *Participant) Apply(u ParticipantUpdate) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.IsMuted != nil {
		p.IsMuted = *u.IsMuted
	}
	if u.HasVideo != nil {
		p.HasVideo = *u.HasVideo
	}
	if u.IsScreenSharing != nil {
		p.IsScreenSharing = *u.IsScreenSharing
	}
	if u.IsAdmin != nil {
		p.IsAdmin = *u.IsAdmin
	}
}
