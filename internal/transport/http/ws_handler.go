package http

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"gameshow-service/internal/app"
	"gameshow-service/internal/protocol"
)

// WSConfig collects the collaborators every game connection is wired to.
type WSConfig struct {
	Users    *app.UsersService
	Games    app.GameRepository
	Store    app.PlayStore
	Schedule app.Schedule
	Notifier *app.StartNotifier
	Timings  app.PhaseTimings
	Clock    clockwork.Clock
	IDs      app.IDGenerator
}

type WSHandler struct {
	cfg      WSConfig
	upgrader websocket.Upgrader
}

func NewWSHandler(cfg WSConfig) *WSHandler {
	if cfg.IDs == nil {
		cfg.IDs = UUIDGenerator{}
	}
	return &WSHandler{
		cfg: cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// ServeWS authorizes the bearer token from the query string, upgrades the
// connection, and hands it to a game session for the rest of its lifetime.
// An unauthorized request is refused before any upgrade happens.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	username, err := h.cfg.Users.Authorize(r.Context(), token)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("ws upgrade failed")
		return
	}
	defer conn.Close()

	id := h.cfg.IDs.NewID()
	log.Info().Str("session", id).Str("user", username).Msg("client connected")

	session := app.NewGameSession(app.SessionConfig{
		ID:       id,
		Username: username,
		Conn:     &wsConn{conn: conn},
		Games:    h.cfg.Games,
		Store:    h.cfg.Store,
		Schedule: h.cfg.Schedule,
		Notifier: h.cfg.Notifier,
		Timings:  h.cfg.Timings,
		Clock:    h.cfg.Clock,
	})
	err = session.Run(r.Context())
	log.Info().Err(err).Str("session", id).Str("user", username).Msg("client disconnected")
}

// wsConn adapts a gorilla connection to the session's transport port.
type wsConn struct {
	conn *websocket.Conn
}

func (c *wsConn) Read() ([]byte, error) {
	_, data, err := c.conn.ReadMessage()
	return data, err
}

func (c *wsConn) Write(msg protocol.ServerMessage) error {
	return c.conn.WriteJSON(msg)
}

// UUIDGenerator allocates random connection ids.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}
