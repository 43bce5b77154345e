package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meetup-client/internal/models"
)

const currentUser = "user-1"

func pendingRequest(from, to string) *models.MeetingRequest {
	return &models.MeetingRequest{
		ID:         "req-1",
		FromUserID: from,
		ToUserID:   to,
		Status:     models.MeetingRequestPending,
		FromUser:   models.Profile{ID: from, Username: "sender"},
		ToUser:     models.Profile{ID: to, Username: "recipient"},
	}
}

func activeMeeting(participants ...string) *models.Meeting {
	m := &models.Meeting{ID: "meet-1", StartedBy: participants[0], ColorHex: "#ff8800", Active: true}
	for _, id := range participants {
		m.Participants = append(m.Participants, models.Participant{UserID: id, Username: "user-" + id})
	}
	return m
}

func TestDerivePhaseMeetingWinsOverRequest(t *testing.T) {
	// Both observations non-nil: a stale pending-request read must never
	// override the meeting.
	request := pendingRequest(currentUser, "friend-1")
	meeting := activeMeeting(currentUser, "friend-1")

	view := DerivePhase(currentUser, request, meeting)

	require.Equal(t, PhaseMeetingActive, view.Phase)
	require.Len(t, view.Participants, 1)
	assert.Equal(t, "friend-1", view.Participants[0].UserID)
}

func TestDerivePhaseSenderRecipientSplit(t *testing.T) {
	asSender := DerivePhase(currentUser, pendingRequest(currentUser, "friend-1"), nil)
	require.Equal(t, PhasePendingAsSender, asSender.Phase)
	require.NotNil(t, asSender.Friend)
	assert.Equal(t, "friend-1", asSender.Friend.ID)
	assert.Equal(t, "recipient", asSender.Friend.Username)

	asRecipient := DerivePhase(currentUser, pendingRequest("friend-1", currentUser), nil)
	require.Equal(t, PhasePendingAsRecipient, asRecipient.Phase)
	require.NotNil(t, asRecipient.Friend)
	assert.Equal(t, "friend-1", asRecipient.Friend.ID)
	assert.Equal(t, "sender", asRecipient.Friend.Username)
}

func TestDerivePhaseIdle(t *testing.T) {
	view := DerivePhase(currentUser, nil, nil)
	require.Equal(t, PhaseIdle, view.Phase)
	assert.Nil(t, view.Friend)
	assert.Nil(t, view.Meeting)
}
