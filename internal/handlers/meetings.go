package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"meetup-client/internal/gateway"
	"meetup-client/internal/lifecycle"
)

// MeetingsHandler exposes the lifecycle phase and the five meeting actions
// to presentation surfaces.
type MeetingsHandler struct {
	manager *lifecycle.Manager
}

// NewMeetingsHandler builds a MeetingsHandler.
func NewMeetingsHandler(manager *lifecycle.Manager) *MeetingsHandler {
	return &MeetingsHandler{manager: manager}
}

// State returns the current phase snapshot plus the per-action
// in-flight/error view.
func (h *MeetingsHandler) State(c *gin.Context) {
	userID := c.GetString("userID")
	session, release := h.manager.Acquire(userID)
	defer release()

	view := session.Coordinator.Refresh(c.Request.Context(), false)
	c.JSON(http.StatusOK, gin.H{"state": view, "actions": session.Dispatcher.State()})
}

// Start creates a meeting request toward an accepted friend.
func (h *MeetingsHandler) Start(c *gin.Context) {
	var req struct {
		FriendID string `json:"friend_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetString("userID")
	session, release := h.manager.Acquire(userID)
	defer release()

	if err := session.Dispatcher.StartMeeting(c.Request.Context(), req.FriendID); err != nil {
		respondActionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": session.Coordinator.Snapshot()})
}

// Cancel cancels a pending request the user sent.
func (h *MeetingsHandler) Cancel(c *gin.Context) {
	userID := c.GetString("userID")
	session, release := h.manager.Acquire(userID)
	defer release()

	if err := session.Dispatcher.CancelRequest(c.Request.Context(), c.Param("request_id")); err != nil {
		respondActionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": session.Coordinator.Snapshot()})
}

// Respond accepts or declines a pending request addressed to the user.
func (h *MeetingsHandler) Respond(c *gin.Context) {
	var req struct {
		Action string `json:"action" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetString("userID")
	session, release := h.manager.Acquire(userID)
	defer release()

	if err := session.Dispatcher.Respond(c.Request.Context(), c.Param("request_id"), req.Action); err != nil {
		respondActionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": session.Coordinator.Snapshot()})
}

// Confirm marks the meeting successfully completed.
func (h *MeetingsHandler) Confirm(c *gin.Context) {
	userID := c.GetString("userID")
	session, release := h.manager.Acquire(userID)
	defer release()

	if err := session.Dispatcher.ConfirmMeeting(c.Request.Context(), c.Param("meeting_id")); err != nil {
		respondActionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": session.Coordinator.Snapshot()})
}

// End terminates the meeting without counting it.
func (h *MeetingsHandler) End(c *gin.Context) {
	userID := c.GetString("userID")
	session, release := h.manager.Acquire(userID)
	defer release()

	if err := session.Dispatcher.EndMeeting(c.Request.Context(), c.Param("meeting_id")); err != nil {
		respondActionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": session.Coordinator.Snapshot()})
}

// respondActionError maps dispatcher failures onto the scoped error contract:
// client-side refusals and repeats are 4xx with the message, backend
// rejections are conflicts, anything else means the backend was unreachable.
func respondActionError(c *gin.Context, err error) {
	var precondition *lifecycle.PreconditionError
	switch {
	case errors.Is(err, lifecycle.ErrActionInFlight):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &precondition):
		c.JSON(http.StatusBadRequest, gin.H{"error": precondition.Reason})
	case gateway.IsRejection(err):
		c.JSON(http.StatusConflict, gin.H{"error": gateway.RejectionMessage(err)})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": "backend unavailable"})
	}
}
