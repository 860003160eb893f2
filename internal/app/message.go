package app

import (
	"encoding/json"

	"github.com/liubomyr-kozak/hackathon-interflect/internal/core"
	"github.com/liubomyr-kozak/hackathon-interflect/internal/domain"
)

// Inbound message types.
const (
	msgJoinRoom     = "join-room"
	msgLeaveRoom    = "leave-room"
	msgOffer        = "offer"
	msgAnswer       = "answer"
	msgICECandidate = "ice-candidate"
	msgChat         = "chat-message"
	msgUpdate       = "participant-update"
)

// Outbound message types.
const (
	msgRoomJoined        = "room-joined"
	msgParticipantJoined = "participant-joined"
	msgParticipantLeft   = "participant-left"
	msgParticipantUpdate = "participant-updated"
	msgError             = "error"
)

// inboundMsg is the closed set of messages the dispatcher understands.
// Frames are decoded exactly once here; the dispatcher switches over
// concrete types, never over raw strings.
type inboundMsg interface{ isInbound() }

type joinRoomMsg struct {
	RoomCode string `json:"roomCode"`
	PeerID   string `json:"peerId"`
	Name     string `json:"name"`
	IsHost   bool   `json:"isHost"`
}

type leaveRoomMsg struct{}

// relayMsg carries an offer, answer or ICE candidate. The payload stays
// opaque: the relay forwards it without interpreting the SDP/candidate.
type relayMsg struct {
	Kind   string
	Target domain.PeerID
	Raw    core.Frame
}

type chatMsg struct {
	Message string `json:"message"`
}

type updateMsg struct {
	Updates domain.ParticipantUpdate `json:"updates"`
}

type unknownMsg struct {
	Kind string
}

func (joinRoomMsg) isInbound()  {}
func (leaveRoomMsg) isInbound() {}
func (relayMsg) isInbound()     {}
func (chatMsg) isInbound()      {}
func (updateMsg) isInbound()    {}
func (unknownMsg) isInbound()   {}

func decodeInbound(data core.Frame) (inboundMsg, error) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}

	switch env.Type {
	case msgJoinRoom:
		var m joinRoomMsg
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, err
		}
		return m, nil
	case msgLeaveRoom:
		return leaveRoomMsg{}, nil
	case msgOffer, msgAnswer, msgICECandidate:
		var m struct {
			TargetPeerID string `json:"targetPeerId"`
		}
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, err
		}
		return relayMsg{Kind: env.Type, Target: domain.PeerID(m.TargetPeerID), Raw: data}, nil
	case msgChat:
		var m chatMsg
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, err
		}
		return m, nil
	case msgUpdate:
		var m updateMsg
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, err
		}
		return m, nil
	default:
		return unknownMsg{Kind: env.Type}, nil
	}
}
