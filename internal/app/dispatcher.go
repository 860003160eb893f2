package app

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/liubomyr-kozak/hackathon-interflect/internal/core"
	"github.com/liubomyr-kozak/hackathon-interflect/internal/domain"
)

var ErrParticipantNotFound = errors.New("participant not found")

// Dispatcher is the signaling controller. It classifies one inbound
// frame per call, validates it against the session table, mutates the
// registries and computes the outbound fan-out. It holds no lock of its
// own and performs no network I/O: sends go through each connection's
// non-blocking TrySend after state is committed.
type Dispatcher struct {
	Directory *Directory
	Registry  *Registry
	Sessions  *SessionTable
	Policy    Policy
}

func NewDispatcher(dir *Directory, reg *Registry, sessions *SessionTable, policy Policy) *Dispatcher {
	if policy == nil {
		policy = DropPolicy{}
	}
	return &Dispatcher{
		Directory: dir,
		Registry:  reg,
		Sessions:  sessions,
		Policy:    policy,
	}
}

// HandleFrame processes one inbound frame from a connection. Frames
// from a single connection arrive in order; across connections there is
// no ordering guarantee. A bad frame never drops the connection.
func (d *Dispatcher) HandleFrame(sid core.SessionID, data core.Frame) {
	msg, err := decodeInbound(data)
	if err != nil {
		log.Warn().Err(err).Str("module", "app.dispatcher").Str("sid", string(sid)).Msg("bad frame")
		d.sendError(sid, "invalid message format")
		return
	}

	switch m := msg.(type) {
	case joinRoomMsg:
		d.handleJoin(sid, m)
	case leaveRoomMsg:
		d.handleLeave(sid)
	case relayMsg:
		d.handleRelay(sid, m)
	case chatMsg:
		d.handleChat(sid, m)
	case updateMsg:
		d.handleUpdate(sid, m)
	case unknownMsg:
		log.Warn().Str("module", "app.dispatcher").Str("type", m.Kind).Msg("unknown message type")
	}
}

func (d *Dispatcher) handleJoin(sid core.SessionID, m joinRoomMsg) {
	if _, _, joined := d.Sessions.BindingOf(sid); joined {
		d.sendError(sid, "already in a room")
		return
	}

	room, ok := d.Directory.Lookup(domain.RoomCode(m.RoomCode))
	if !ok {
		d.sendError(sid, "room not found")
		return
	}

	peerID := domain.PeerID(m.PeerID)
	participant, err := d.Registry.Create(peerID, room.Code, m.Name, m.IsHost)
	if err != nil {
		switch {
		case errors.Is(err, ErrPeerExists):
			d.sendError(sid, "peer id already in use")
		default:
			d.sendError(sid, err.Error())
		}
		return
	}

	if err := d.Sessions.Bind(sid, peerID, room.Code); err != nil {
		d.Registry.Delete(peerID)
		d.sendError(sid, err.Error())
		return
	}

	// The roster is computed after the new record exists but the joiner
	// filters itself out, so it sees membership as of before the join.
	roster := make([]domain.Participant, 0)
	for _, p := range d.Registry.ListByRoom(room.Code) {
		if p.PeerID != peerID {
			roster = append(roster, p)
		}
	}
	d.sendTo(sid, struct {
		Type         string               `json:"type"`
		Participants []domain.Participant `json:"participants"`
	}{msgRoomJoined, roster})

	d.broadcast(room.Code, sid, struct {
		Type        string             `json:"type"`
		Participant domain.Participant `json:"participant"`
	}{msgParticipantJoined, participant})

	log.Info().Str("module", "app.dispatcher").Str("sid", string(sid)).Str("peer", m.PeerID).Str("room", m.RoomCode).Msg("join")
}

func (d *Dispatcher) handleLeave(sid core.SessionID) {
	peer, room, ok := d.Sessions.Unbind(sid)
	if !ok {
		d.sendError(sid, "not in a room")
		return
	}
	d.Registry.Delete(peer)

	d.broadcast(room, sid, struct {
		Type   string        `json:"type"`
		PeerID domain.PeerID `json:"peerId"`
	}{msgParticipantLeft, peer})

	log.Info().Str("module", "app.dispatcher").Str("sid", string(sid)).Str("peer", string(peer)).Msg("leave")
}

// handleRelay forwards offer/answer/ice-candidate frames untouched,
// except that targetPeerId is stripped and the sender's id attached. A
// target with no live session is a silent no-op: the sender cannot tell
// "left a moment ago" from "never existed" without leaking timing.
func (d *Dispatcher) handleRelay(sid core.SessionID, m relayMsg) {
	peer, _, ok := d.Sessions.BindingOf(sid)
	if !ok {
		d.sendError(sid, "not in a room")
		return
	}

	target, ok := d.Sessions.FindByPeer(m.Target)
	if !ok {
		log.Debug().Str("module", "app.dispatcher").Str("type", m.Kind).Str("target", string(m.Target)).Msg("relay target not connected")
		return
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(m.Raw, &fields); err != nil {
		d.sendError(sid, "invalid message format")
		return
	}
	delete(fields, "targetPeerId")
	from, _ := json.Marshal(peer)
	fields["fromPeerId"] = from
	out, err := json.Marshal(fields)
	if err != nil {
		log.Error().Err(err).Str("module", "app.dispatcher").Msg("relay marshal")
		return
	}

	if err := target.TrySend(out); err != nil {
		log.Warn().Str("module", "app.dispatcher").Str("target", string(m.Target)).Msg("relay dropped on backpressure")
	}
}

func (d *Dispatcher) handleChat(sid core.SessionID, m chatMsg) {
	peer, room, ok := d.Sessions.BindingOf(sid)
	if !ok {
		d.sendError(sid, "not in a room")
		return
	}

	// The display name comes from the registry, never from the payload.
	senderName := "Unknown User"
	if p, ok := d.Registry.Get(peer); ok {
		senderName = p.Name
	}

	d.broadcast(room, sid, struct {
		Type       string        `json:"type"`
		Message    string        `json:"message"`
		FromPeerID domain.PeerID `json:"fromPeerId"`
		SenderName string        `json:"senderName"`
		Timestamp  string        `json:"timestamp"`
	}{msgChat, m.Message, peer, senderName, time.Now().UTC().Format(time.RFC3339)})
}

func (d *Dispatcher) handleUpdate(sid core.SessionID, m updateMsg) {
	peer, room, ok := d.Sessions.BindingOf(sid)
	if !ok {
		d.sendError(sid, "not in a room")
		return
	}

	// Admin status changes arrive out-of-band via the REST API only.
	m.Updates.IsAdmin = nil
	if m.Updates.IsZero() {
		d.sendError(sid, "empty update")
		return
	}

	if _, ok := d.Registry.Update(peer, m.Updates); !ok {
		d.sendError(sid, "participant not found")
		return
	}

	d.broadcast(room, sid, struct {
		Type    string                   `json:"type"`
		PeerID  domain.PeerID            `json:"peerId"`
		Updates domain.ParticipantUpdate `json:"updates"`
	}{msgParticipantUpdate, peer, m.Updates})
}

// Disconnect runs the same cleanup as an explicit leave. Called by the
// transport adapter when the connection closes, before its resources
// are released.
func (d *Dispatcher) Disconnect(sid core.SessionID) {
	peer, room, wasJoined := d.Sessions.Remove(sid)
	if !wasJoined {
		return
	}
	d.Registry.Delete(peer)

	d.broadcast(room, sid, struct {
		Type   string        `json:"type"`
		PeerID domain.PeerID `json:"peerId"`
	}{msgParticipantLeft, peer})

	log.Info().Str("module", "app.dispatcher").Str("sid", string(sid)).Str("peer", string(peer)).Msg("disconnect cleanup")
}

// ElevateAdmin flips the admin flag on a participant. The trigger is
// out-of-band, so the update is broadcast to the whole room, target
// included.
func (d *Dispatcher) ElevateAdmin(peer domain.PeerID, isAdmin bool) (domain.Participant, error) {
	upd := domain.ParticipantUpdate{IsAdmin: &isAdmin}
	p, ok := d.Registry.Update(peer, upd)
	if !ok {
		return domain.Participant{}, ErrParticipantNotFound
	}

	d.broadcastAll(p.RoomID, struct {
		Type    string                   `json:"type"`
		PeerID  domain.PeerID            `json:"peerId"`
		Updates domain.ParticipantUpdate `json:"updates"`
	}{msgParticipantUpdate, peer, upd})

	return p, nil
}

func (d *Dispatcher) broadcast(room domain.RoomCode, exclude core.SessionID, v any) core.PublishResult {
	return d.publish(d.Sessions.Fanout(room, exclude), v)
}

func (d *Dispatcher) broadcastAll(room domain.RoomCode, v any) core.PublishResult {
	return d.publish(d.Sessions.AllInRoom(room), v)
}

func (d *Dispatcher) publish(targets []Target, v any) core.PublishResult {
	res := core.PublishResult{}
	data, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app.dispatcher").Msg("broadcast marshal")
		return res
	}
	for _, t := range targets {
		if err := t.Conn.TrySend(data); err != nil {
			res.Dropped = append(res.Dropped, t.SID)
			continue
		}
		res.SentTo++
	}
	for _, slow := range res.Dropped {
		if d.Policy.OnBackpressure(slow) == KickSession {
			log.Warn().Str("module", "app.dispatcher").Str("sid", string(slow)).Msg("kicking slow session")
			d.Sessions.Cancel(slow)
		}
	}
	return res
}

func (d *Dispatcher) sendTo(sid core.SessionID, v any) {
	conn, ok := d.Sessions.Conn(sid)
	if !ok {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app.dispatcher").Msg("send marshal")
		return
	}
	if err := conn.TrySend(data); err != nil {
		log.Warn().Str("module", "app.dispatcher").Str("sid", string(sid)).Msg("send dropped on backpressure")
	}
}

func (d *Dispatcher) sendError(sid core.SessionID, msg string) {
	d.sendTo(sid, struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	}{msgError, msg})
}
