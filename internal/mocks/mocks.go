package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"meetup-client/internal/models"
)

type GatewayMock struct {
	mock.Mock
}

func (m *GatewayMock) PendingMeetingRequest(ctx context.Context, userID string) (*models.MeetingRequest, error) {
	args := m.Called(ctx, userID)
	var request *models.MeetingRequest
	if val := args.Get(0); val != nil {
		request = val.(*models.MeetingRequest)
	}
	return request, args.Error(1)
}

func (m *GatewayMock) ActiveMeeting(ctx context.Context, userID string) (*models.Meeting, error) {
	args := m.Called(ctx, userID)
	var meeting *models.Meeting
	if val := args.Get(0); val != nil {
		meeting = val.(*models.Meeting)
	}
	return meeting, args.Error(1)
}

func (m *GatewayMock) StartMeetingRequest(ctx context.Context, userID, targetUserID string) (string, error) {
	args := m.Called(ctx, userID, targetUserID)
	return args.String(0), args.Error(1)
}

func (m *GatewayMock) CancelMeetingRequest(ctx context.Context, userID, requestID string) error {
	args := m.Called(ctx, userID, requestID)
	return args.Error(0)
}

func (m *GatewayMock) RespondToMeetingRequest(ctx context.Context, userID, requestID, action string) (*models.Meeting, error) {
	args := m.Called(ctx, userID, requestID, action)
	var meeting *models.Meeting
	if val := args.Get(0); val != nil {
		meeting = val.(*models.Meeting)
	}
	return meeting, args.Error(1)
}

func (m *GatewayMock) ConfirmMeeting(ctx context.Context, userID, meetingID string) error {
	args := m.Called(ctx, userID, meetingID)
	return args.Error(0)
}

func (m *GatewayMock) EndMeeting(ctx context.Context, userID, meetingID string) error {
	args := m.Called(ctx, userID, meetingID)
	return args.Error(0)
}

func (m *GatewayMock) Friends(ctx context.Context, userID string) ([]models.Friend, error) {
	args := m.Called(ctx, userID)
	var friends []models.Friend
	if val := args.Get(0); val != nil {
		friends = val.([]models.Friend)
	}
	return friends, args.Error(1)
}

func (m *GatewayMock) IncomingFriendRequests(ctx context.Context, userID string) ([]models.FriendRequest, error) {
	args := m.Called(ctx, userID)
	var requests []models.FriendRequest
	if val := args.Get(0); val != nil {
		requests = val.([]models.FriendRequest)
	}
	return requests, args.Error(1)
}

func (m *GatewayMock) OutgoingFriendRequests(ctx context.Context, userID string) ([]models.FriendRequest, error) {
	args := m.Called(ctx, userID)
	var requests []models.FriendRequest
	if val := args.Get(0); val != nil {
		requests = val.([]models.FriendRequest)
	}
	return requests, args.Error(1)
}

func (m *GatewayMock) SendFriendRequest(ctx context.Context, userID, email string) error {
	args := m.Called(ctx, userID, email)
	return args.Error(0)
}

func (m *GatewayMock) RespondToFriendRequest(ctx context.Context, userID, requestID, action string) error {
	args := m.Called(ctx, userID, requestID, action)
	return args.Error(0)
}

func (m *GatewayMock) RemoveFriend(ctx context.Context, userID, friendID string) error {
	args := m.Called(ctx, userID, friendID)
	return args.Error(0)
}

func (m *GatewayMock) Profile(ctx context.Context, userID string) (*models.Profile, error) {
	args := m.Called(ctx, userID)
	var profile *models.Profile
	if val := args.Get(0); val != nil {
		profile = val.(*models.Profile)
	}
	return profile, args.Error(1)
}

func (m *GatewayMock) UpdateUsername(ctx context.Context, userID, username string) error {
	args := m.Called(ctx, userID, username)
	return args.Error(0)
}
