package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/liubomyr-kozak/hackathon-interflect/internal/app"
	"github.com/liubomyr-kozak/hackathon-interflect/internal/config"
	"github.com/liubomyr-kozak/hackathon-interflect/internal/domain"
)

// Handlers serves the room-management REST surface. Rooms are created
// here and only read by the signaling core afterwards.
type Handlers struct {
	Dispatcher *app.Dispatcher

	cfg *config.Config
}

type createRoomRequest struct {
	Code     string `json:"code" binding:"required"`
	IsActive *bool  `json:"isActive"`
	IsAdmin  bool   `json:"isAdmin"`
}

func (h *Handlers) createRoom(c *gin.Context) {
	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid room data"})
		return
	}
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	room, err := h.Dispatcher.Directory.Create(domain.RoomCode(req.Code), isActive, req.IsAdmin)
	if err != nil {
		if errors.Is(err, app.ErrRoomExists) {
			c.JSON(http.StatusConflict, gin.H{"message": "room already exists"})
			return
		}
		log.Error().Err(err).Str("module", "adapters.http").Msg("create room")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to create room"})
		return
	}
	c.JSON(http.StatusOK, room)
}

func (h *Handlers) getRoom(c *gin.Context) {
	room, ok := h.Dispatcher.Directory.Lookup(domain.RoomCode(c.Param("code")))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "room not found"})
		return
	}
	c.JSON(http.StatusOK, room)
}

func (h *Handlers) listParticipants(c *gin.Context) {
	code := domain.RoomCode(c.Param("code"))
	if _, ok := h.Dispatcher.Directory.Lookup(code); !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "room not found"})
		return
	}
	c.JSON(http.StatusOK, h.Dispatcher.Registry.ListByRoom(code))
}

type setAdminRequest struct {
	IsAdmin *bool `json:"isAdmin"`
}

// setAdmin is the out-of-band admin elevation: it bypasses the
// signaling connection and fans the change out to the whole room.
func (h *Handlers) setAdmin(c *gin.Context) {
	var req setAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.IsAdmin == nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "isAdmin must be a boolean"})
		return
	}

	participant, err := h.Dispatcher.ElevateAdmin(domain.PeerID(c.Param("peerId")), *req.IsAdmin)
	if err != nil {
		if errors.Is(err, app.ErrParticipantNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "participant not found"})
			return
		}
		log.Error().Err(err).Str("module", "adapters.http").Msg("set admin")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to update participant"})
		return
	}
	c.JSON(http.StatusOK, participant)
}

// iceServers hands clients the STUN/TURN set for their RTCPeerConnection.
// The server itself never opens peer connections; media flows peer to peer.
func (h *Handlers) iceServers(c *gin.Context) {
	servers := []webrtc.ICEServer{
		{URLs: h.cfg.STUNServers},
	}
	c.JSON(http.StatusOK, gin.H{"iceServers": servers})
}

func (h *Handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "ok",
		"rooms":        h.Dispatcher.Directory.Count(),
		"participants": h.Dispatcher.Registry.Count(),
		"sessions":     h.Dispatcher.Sessions.Count(),
	})
}
