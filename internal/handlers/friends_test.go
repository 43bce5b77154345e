package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"meetup-client/internal/mocks"
	"meetup-client/internal/models"
)

func setupFriendsRouter(handler *FriendsHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", "user-1")
		c.Next()
	})
	r.GET("/friends", handler.List)
	r.GET("/friends/requests", handler.Requests)
	r.POST("/friends/requests", handler.Send)
	r.POST("/friends/requests/:request_id/respond", handler.Respond)
	r.DELETE("/friends/:friend_id", handler.Remove)
	return r
}

func TestListFriends(t *testing.T) {
	gw := new(mocks.GatewayMock)
	gw.On("Friends", mock.Anything, "user-1").Return([]models.Friend{{
		ID:            "friendship-1",
		Accepted:      true,
		FriendProfile: models.Profile{ID: "friend-1", Username: "ada"},
		DailyMeets:    2,
		TotalMeets:    14,
	}}, nil).Once()

	router := setupFriendsRouter(NewFriendsHandler(gw))

	req := httptest.NewRequest(http.MethodGet, "/friends", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Friends []models.Friend `json:"friends"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Friends, 1)
	require.Equal(t, "ada", resp.Friends[0].FriendProfile.Username)
	require.Equal(t, 14, resp.Friends[0].TotalMeets)
	gw.AssertExpectations(t)
}

func TestFriendRequestsBothDirections(t *testing.T) {
	gw := new(mocks.GatewayMock)
	gw.On("IncomingFriendRequests", mock.Anything, "user-1").Return([]models.FriendRequest{{
		ID:          "freq-1",
		FromUser: models.Profile{ID: "user-2", Username: "grace"},
	}}, nil).Once()
	gw.On("OutgoingFriendRequests", mock.Anything, "user-1").Return([]models.FriendRequest{}, nil).Once()

	router := setupFriendsRouter(NewFriendsHandler(gw))

	req := httptest.NewRequest(http.MethodGet, "/friends/requests", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Incoming []models.FriendRequest `json:"incoming"`
		Outgoing []models.FriendRequest `json:"outgoing"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Incoming, 1)
	require.Empty(t, resp.Outgoing)
	gw.AssertExpectations(t)
}

func TestSendFriendRequestValidatesEmail(t *testing.T) {
	gw := new(mocks.GatewayMock)
	router := setupFriendsRouter(NewFriendsHandler(gw))

	req := httptest.NewRequest(http.MethodPost, "/friends/requests", bytes.NewBufferString(`{"email":"not-an-email"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	gw.AssertNotCalled(t, "SendFriendRequest", mock.Anything, mock.Anything, mock.Anything)
}

func TestSendFriendRequest(t *testing.T) {
	gw := new(mocks.GatewayMock)
	gw.On("SendFriendRequest", mock.Anything, "user-1", "grace@example.com").Return(nil).Once()

	router := setupFriendsRouter(NewFriendsHandler(gw))

	req := httptest.NewRequest(http.MethodPost, "/friends/requests", bytes.NewBufferString(`{"email":"grace@example.com"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	gw.AssertExpectations(t)
}

func TestRespondFriendRequestRejectsUnknownAction(t *testing.T) {
	gw := new(mocks.GatewayMock)
	router := setupFriendsRouter(NewFriendsHandler(gw))

	req := httptest.NewRequest(http.MethodPost, "/friends/requests/freq-1/respond", bytes.NewBufferString(`{"action":"maybe"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	gw.AssertNotCalled(t, "RespondToFriendRequest", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRemoveFriendRejectionIsConflict(t *testing.T) {
	gw := new(mocks.GatewayMock)
	gw.On("RemoveFriend", mock.Anything, "user-1", "friend-1").
		Return(&pq.Error{Message: "friendship not found"}).Once()

	router := setupFriendsRouter(NewFriendsHandler(gw))

	req := httptest.NewRequest(http.MethodDelete, "/friends/friend-1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)

	var resp map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, "friendship not found", resp["error"])
	gw.AssertExpectations(t)
}
