package domain

import "time"

type RoomCode string

// Room is created once through the REST API and is read-only afterwards.
// The signaling core never mutates or deletes rooms.
type Room struct {
	ID        int64     `json:"id"`
	Code      RoomCode  `json:"code"`
	IsAdmin   bool      `json:"isAdmin"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}
