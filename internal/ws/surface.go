package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"meetup-client/internal/lifecycle"
	"meetup-client/internal/middleware"
	"meetup-client/internal/observability"
)

// SurfaceHandler upgrades presentation surfaces to websockets. A connected
// surface counts as a mounted view: it holds a reference on the identity's
// coordinator, so the poll loop and change-feed subscription live exactly as
// long as at least one surface is connected.
type SurfaceHandler struct {
	hub     *Hub
	manager *lifecycle.Manager
	secret  []byte
}

// NewSurfaceHandler constructs a SurfaceHandler.
func NewSurfaceHandler(hub *Hub, manager *lifecycle.Manager, secret []byte) *SurfaceHandler {
	return &SurfaceHandler{hub: hub, manager: manager, secret: secret}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type clientMessage struct {
	Type string `json:"type"`
}

// Handle authenticates, upgrades and registers a surface connection, then
// serves it until it closes. The client may send {"type":"focus"} to force
// an immediate re-fetch of both observations, mirroring a window regaining
// foreground focus.
func (h *SurfaceHandler) Handle(c *gin.Context) {
	ctx, span := otel.Tracer("meetup-client/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	userID, err := middleware.ValidateToken(h.secret, token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	info := ConnInfo{
		ConnID:      uuid.NewString(),
		UserID:      userID,
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   observability.RequestIDFromRequest(c.Request),
		TraceID:     span.SpanContext().TraceID().String(),
		ConnectedAt: time.Now(),
	}

	session, release := h.manager.Acquire(userID)
	h.hub.AddClient(userID, conn, info)
	observability.IncWSActive()
	observability.IncWSEvent("ws_connect")

	// Initial snapshot so the surface renders without waiting for a
	// transition.
	view := session.Coordinator.Refresh(c.Request.Context(), false)
	h.hub.BroadcastPhase(userID, view)

	go func() {
		defer func() {
			h.hub.RemoveClient(userID, conn)
			release()
			observability.DecWSActive()
			observability.IncWSEvent("ws_disconnect")
			conn.Close()
		}()
		for {
			_, payload, err := conn.ReadMessage()
			if err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					observability.IncWSEvent("ws_error")
				}
				return
			}

			var msg clientMessage
			if err := json.Unmarshal(payload, &msg); err != nil {
				continue
			}
			if msg.Type == "focus" {
				observability.IncForcedRefetch("focus")
				observability.IncWSEvent("focus")
				session.Coordinator.Refresh(context.Background(), true)
			}
		}
	}()
}
