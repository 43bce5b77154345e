package gateway

import (
	"context"
	"errors"

	"github.com/lib/pq"

	"meetup-client/internal/models"
)

// RespondAccept and RespondDecline are the two actions accepted by the
// respond procedures on the backend.
const (
	RespondAccept  = "accept"
	RespondDecline = "decline"
)

// Gateway is the client-side view of the meetups backend: single-row reads
// for the two lifecycle observations, stored-procedure calls for mutations
// and the friends/profile queries the surfaces need. Fetches that legitimately
// find no row return (nil, nil), never an error.
type Gateway interface {
	PendingMeetingRequest(ctx context.Context, userID string) (*models.MeetingRequest, error)
	ActiveMeeting(ctx context.Context, userID string) (*models.Meeting, error)

	StartMeetingRequest(ctx context.Context, userID, targetUserID string) (string, error)
	CancelMeetingRequest(ctx context.Context, userID, requestID string) error
	RespondToMeetingRequest(ctx context.Context, userID, requestID, action string) (*models.Meeting, error)
	ConfirmMeeting(ctx context.Context, userID, meetingID string) error
	EndMeeting(ctx context.Context, userID, meetingID string) error

	Friends(ctx context.Context, userID string) ([]models.Friend, error)
	IncomingFriendRequests(ctx context.Context, userID string) ([]models.FriendRequest, error)
	OutgoingFriendRequests(ctx context.Context, userID string) ([]models.FriendRequest, error)
	SendFriendRequest(ctx context.Context, userID, email string) error
	RespondToFriendRequest(ctx context.Context, userID, requestID, action string) error
	RemoveFriend(ctx context.Context, userID, friendID string) error

	Profile(ctx context.Context, userID string) (*models.Profile, error)
	UpdateUsername(ctx context.Context, userID, username string) error
}

// IsRejection reports whether the backend refused the call because its
// precondition no longer held (a raised exception inside a procedure), as
// opposed to the backend being unreachable.
func IsRejection(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr)
}

// RejectionMessage extracts the human-readable message from a backend
// rejection, or falls back to the plain error text.
func RejectionMessage(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Message != "" {
		return pqErr.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
