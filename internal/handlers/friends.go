package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"meetup-client/internal/gateway"
)

// FriendsHandler exposes the friend list and friend-request operations.
// These are plain pass-through reads and procedure calls; no client-side
// caching or reconciliation applies to them.
type FriendsHandler struct {
	gw gateway.Gateway
}

// NewFriendsHandler builds a FriendsHandler.
func NewFriendsHandler(gw gateway.Gateway) *FriendsHandler {
	return &FriendsHandler{gw: gw}
}

// List returns the user's accepted friends with streak counters.
func (h *FriendsHandler) List(c *gin.Context) {
	friends, err := h.gw.Friends(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to load friends"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"friends": friends})
}

// Requests returns pending friend requests in both directions.
func (h *FriendsHandler) Requests(c *gin.Context) {
	userID := c.GetString("userID")
	ctx := c.Request.Context()

	incoming, err := h.gw.IncomingFriendRequests(ctx, userID)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to load friend requests"})
		return
	}
	outgoing, err := h.gw.OutgoingFriendRequests(ctx, userID)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to load friend requests"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"incoming": incoming, "outgoing": outgoing})
}

// Send creates a friend request toward an email address.
func (h *FriendsHandler) Send(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.gw.SendFriendRequest(c.Request.Context(), c.GetString("userID"), req.Email); err != nil {
		respondGatewayError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Respond accepts or declines a pending friend request.
func (h *FriendsHandler) Respond(c *gin.Context) {
	var req struct {
		Action string `json:"action" binding:"required,oneof=accept decline"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.gw.RespondToFriendRequest(c.Request.Context(), c.GetString("userID"), c.Param("request_id"), req.Action); err != nil {
		respondGatewayError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Remove tears down a friendship.
func (h *FriendsHandler) Remove(c *gin.Context) {
	if err := h.gw.RemoveFriend(c.Request.Context(), c.GetString("userID"), c.Param("friend_id")); err != nil {
		respondGatewayError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func respondGatewayError(c *gin.Context, err error) {
	if gateway.IsRejection(err) {
		c.JSON(http.StatusConflict, gin.H{"error": gateway.RejectionMessage(err)})
		return
	}
	c.JSON(http.StatusBadGateway, gin.H{"error": "backend unavailable"})
}
