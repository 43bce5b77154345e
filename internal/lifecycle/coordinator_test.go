package lifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"meetup-client/internal/mocks"
	"meetup-client/internal/models"
)

var (
	noRequest *models.MeetingRequest
	noMeeting *models.Meeting
)

func TestCoordinatorRequestVanishedForcesMeetingRefetch(t *testing.T) {
	gw := new(mocks.GatewayMock)
	coord := NewCoordinator(currentUser, gw, 5*time.Second, nil, nil)
	ctx := context.Background()

	gw.On("PendingMeetingRequest", mock.Anything, currentUser).Return(pendingRequest(currentUser, "friend-1"), nil).Once()
	gw.On("ActiveMeeting", mock.Anything, currentUser).Return(noMeeting, nil).Once()

	view := coord.Refresh(ctx, true)
	require.Equal(t, PhasePendingAsSender, view.Phase)

	// The request was accepted: its row vanished, but the meeting row is
	// not visible yet on the regular fetch. Only the forced re-fetch
	// triggered by the request edge sees it, so the cycle must never
	// settle on idle.
	gw.On("PendingMeetingRequest", mock.Anything, currentUser).Return(noRequest, nil).Once()
	gw.On("ActiveMeeting", mock.Anything, currentUser).Return(noMeeting, nil).Once()
	gw.On("ActiveMeeting", mock.Anything, currentUser).Return(activeMeeting(currentUser, "friend-1"), nil).Once()

	view = coord.Refresh(ctx, true)
	require.Equal(t, PhaseMeetingActive, view.Phase)
	gw.AssertExpectations(t)
}

func TestCoordinatorRequestVanishedConvergesToIdle(t *testing.T) {
	gw := new(mocks.GatewayMock)
	coord := NewCoordinator(currentUser, gw, 5*time.Second, nil, nil)
	ctx := context.Background()

	gw.On("PendingMeetingRequest", mock.Anything, currentUser).Return(pendingRequest(currentUser, "friend-1"), nil).Once()
	gw.On("ActiveMeeting", mock.Anything, currentUser).Return(noMeeting, nil).Once()
	coord.Refresh(ctx, true)

	// Cancelled: no meeting shows up even on the forced re-fetch.
	gw.On("PendingMeetingRequest", mock.Anything, currentUser).Return(noRequest, nil).Once()
	gw.On("ActiveMeeting", mock.Anything, currentUser).Return(noMeeting, nil).Twice()

	view := coord.Refresh(ctx, true)
	require.Equal(t, PhaseIdle, view.Phase)
	gw.AssertExpectations(t)
}

func TestCoordinatorMeetingEndForcesRequestAndFriendsRefetch(t *testing.T) {
	gw := new(mocks.GatewayMock)
	friendsInvalidated := 0
	coord := NewCoordinator(currentUser, gw, 5*time.Second, nil, func() {
		friendsInvalidated++
	})
	ctx := context.Background()

	gw.On("PendingMeetingRequest", mock.Anything, currentUser).Return(noRequest, nil).Once()
	gw.On("ActiveMeeting", mock.Anything, currentUser).Return(activeMeeting(currentUser, "friend-1"), nil).Once()

	view := coord.Refresh(ctx, true)
	require.Equal(t, PhaseMeetingActive, view.Phase)

	// Meeting ended; a new incoming request arrived while it was active
	// and must be picked up by the forced request re-fetch.
	gw.On("ActiveMeeting", mock.Anything, currentUser).Return(noMeeting, nil).Once()
	gw.On("PendingMeetingRequest", mock.Anything, currentUser).Return(noRequest, nil).Once()
	gw.On("PendingMeetingRequest", mock.Anything, currentUser).Return(pendingRequest("friend-2", currentUser), nil).Once()

	view = coord.Refresh(ctx, true)
	require.Equal(t, PhasePendingAsRecipient, view.Phase)
	assert.Equal(t, 1, friendsInvalidated)
	gw.AssertExpectations(t)
}

func TestCoordinatorNotifiesOnPhaseTransitionsOnly(t *testing.T) {
	gw := new(mocks.GatewayMock)
	var notified []Phase
	coord := NewCoordinator(currentUser, gw, 0, func(view PhaseView) {
		notified = append(notified, view.Phase)
	}, nil)
	ctx := context.Background()

	gw.On("PendingMeetingRequest", mock.Anything, currentUser).Return(noRequest, nil).Twice()
	gw.On("ActiveMeeting", mock.Anything, currentUser).Return(noMeeting, nil).Twice()
	coord.Refresh(ctx, true)
	coord.Refresh(ctx, true)
	assert.Empty(t, notified, "steady idle must not notify")

	gw.On("PendingMeetingRequest", mock.Anything, currentUser).Return(pendingRequest(currentUser, "friend-1"), nil).Twice()
	gw.On("ActiveMeeting", mock.Anything, currentUser).Return(noMeeting, nil).Twice()
	coord.Refresh(ctx, true)
	coord.Refresh(ctx, true)

	require.Equal(t, []Phase{PhasePendingAsSender}, notified)
}

func TestCoordinatorKeepsPhaseThroughTransientFetchFailure(t *testing.T) {
	gw := new(mocks.GatewayMock)
	coord := NewCoordinator(currentUser, gw, 0, nil, nil)
	ctx := context.Background()

	gw.On("PendingMeetingRequest", mock.Anything, currentUser).Return(pendingRequest(currentUser, "friend-1"), nil).Once()
	gw.On("ActiveMeeting", mock.Anything, currentUser).Return(noMeeting, nil).Once()
	coord.Refresh(ctx, true)

	gw.On("PendingMeetingRequest", mock.Anything, currentUser).Return(noRequest, assert.AnError).Once()
	gw.On("ActiveMeeting", mock.Anything, currentUser).Return(noMeeting, assert.AnError).Once()

	view := coord.Refresh(ctx, true)
	require.Equal(t, PhasePendingAsSender, view.Phase, "cached observation survives a failed poll")
}
