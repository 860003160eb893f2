package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/liubomyr-kozak/hackathon-interflect/internal/app"
	"github.com/liubomyr-kozak/hackathon-interflect/internal/config"
	"github.com/liubomyr-kozak/hackathon-interflect/internal/core"
)

var (
	ErrBackpressure = errors.New("backpressure")
	ErrConnClosed   = errors.New("connection closed")
)

// Controller owns the WebSocket side of the signaling protocol: it
// accepts connections, runs the pumps and feeds inbound frames to the
// dispatcher. All protocol state lives in the app layer.
type Controller struct {
	Dispatcher *app.Dispatcher

	cfg     *config.Config
	limiter *IPRateLimiter
}

func NewController(cfg *config.Config, dispatcher *app.Dispatcher) *Controller {
	return &Controller{
		Dispatcher: dispatcher,
		cfg:        cfg,
		limiter:    NewIPRateLimiter(cfg.ConnPerIP),
	}
}

type wsConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *wsConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrConnClosed
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *wsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleSignal upgrades the request and registers the connection in the
// Anonymous state. Identity is established later by a join-room frame.
func (ctl *Controller) HandleSignal(ctx context.Context, c *gin.Context) {
	if !ctl.limiter.Allow(c.ClientIP()) {
		c.String(http.StatusTooManyRequests, "too many connections")
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	ws.SetReadLimit(ctl.cfg.ReadLimit)

	sid := core.SessionID(uuid.NewString())
	conn := &wsConn{
		conn: ws,
		send: make(chan core.Frame, ctl.cfg.SendBuffer),
	}

	ctx, cancel := context.WithCancel(ctx)
	ctl.Dispatcher.Sessions.Add(sid, conn, cancel)
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("ip", c.ClientIP()).Msg("new WS connection")

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, sid, conn)
}
