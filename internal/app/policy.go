package app

import "github.com/liubomyr-kozak/hackathon-interflect/internal/core"

type BackpressureAction int

const (
	DropFrame BackpressureAction = iota
	KickSession
)

// Policy decides what happens to a recipient whose outbound buffer is
// full. Signaling and chat are not required to survive backpressure;
// dropping the frame is the default, kicking resets the connection.
type Policy interface {
	OnBackpressure(sid core.SessionID) BackpressureAction
}

type DropPolicy struct{}

func (DropPolicy) OnBackpressure(core.SessionID) BackpressureAction { return DropFrame }

type KickPolicy struct{}

func (KickPolicy) OnBackpressure(core.SessionID) BackpressureAction { return KickSession }
