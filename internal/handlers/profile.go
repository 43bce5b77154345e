package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"meetup-client/internal/gateway"
)

// ProfileHandler exposes the user's own profile.
type ProfileHandler struct {
	gw gateway.Gateway
}

// NewProfileHandler builds a ProfileHandler.
func NewProfileHandler(gw gateway.Gateway) *ProfileHandler {
	return &ProfileHandler{gw: gw}
}

// Get returns the user's profile; 404 when no profile row exists yet, which
// the surface treats as "username setup required".
func (h *ProfileHandler) Get(c *gin.Context) {
	profile, err := h.gw.Profile(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to load profile"})
		return
	}
	if profile == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "profile not set up"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// Update sets the user's username.
func (h *ProfileHandler) Update(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	username := strings.TrimSpace(req.Username)
	if username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username cannot be blank"})
		return
	}

	if err := h.gw.UpdateUsername(c.Request.Context(), c.GetString("userID"), username); err != nil {
		respondGatewayError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
