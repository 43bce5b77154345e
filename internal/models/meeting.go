package models

import "time"

// MeetingRequestStatus is the lifecycle status of a meeting request row.
type MeetingRequestStatus string

const (
	MeetingRequestPending   MeetingRequestStatus = "pending"
	MeetingRequestAccepted  MeetingRequestStatus = "accepted"
	MeetingRequestDeclined  MeetingRequestStatus = "declined"
	MeetingRequestCancelled MeetingRequestStatus = "cancelled"
	MeetingRequestExpired   MeetingRequestStatus = "expired"
)

// MeetingRequest is a proposal from one user to meet another. Once a request
// leaves the pending status the backend stops returning it from the pending
// query, so absence rather than status is the terminal signal a client sees.
type MeetingRequest struct {
	ID         string               `db:"id" json:"id"`
	FromUserID string               `db:"from_user" json:"from_user_id"`
	ToUserID   string               `db:"to_user" json:"to_user_id"`
	Status     MeetingRequestStatus `db:"status" json:"status"`
	CreatedAt  time.Time            `db:"created_at" json:"created_at"`
	UpdatedAt  *time.Time           `db:"updated_at" json:"updated_at,omitempty"`
	FromUser   Profile              `json:"from_user"`
	ToUser     Profile              `json:"to_user"`
}

// Counterpart returns the profile of the other party from userID's point of
// view.
func (r MeetingRequest) Counterpart(userID string) Profile {
	if r.FromUserID == userID {
		return r.ToUser
	}
	return r.FromUser
}

// Participant is a user taking part in a meeting.
type Participant struct {
	UserID   string `db:"user_id" json:"user_id"`
	Username string `db:"username" json:"username"`
}

// Meeting is a shared session created from an accepted request. While Active
// is true it is discoverable through the active-meeting query; ending or
// confirming it flips Active and removes it from that query.
type Meeting struct {
	ID           string        `db:"id" json:"id"`
	StartedBy    string        `db:"started_by" json:"started_by"`
	ColorHex     string        `db:"color_hex" json:"color_hex"`
	Active       bool          `db:"active" json:"active"`
	CreatedAt    time.Time     `db:"created_at" json:"created_at"`
	EndedAt      *time.Time    `db:"ended_at" json:"ended_at,omitempty"`
	Participants []Participant `json:"participants"`
}

// OtherParticipants returns everyone in the meeting except userID.
func (m Meeting) OtherParticipants(userID string) []Participant {
	others := make([]Participant, 0, len(m.Participants))
	for _, p := range m.Participants {
		if p.UserID != userID {
			others = append(others, p)
		}
	}
	return others
}
