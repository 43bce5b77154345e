package lifecycle

import "meetup-client/internal/models"

// Phase is the derived lifecycle state of a user's meeting flow. It is a
// closed set computed from the two backend observations, never persisted.
type Phase string

const (
	PhaseIdle               Phase = "idle"
	PhasePendingAsSender    Phase = "request-pending-as-sender"
	PhasePendingAsRecipient Phase = "request-pending-as-recipient"
	PhaseMeetingActive      Phase = "meeting-active"
)

// PhaseView is a phase together with the data presentation needs to render
// it: the counterpart profile for the pending phases, the participant set for
// an active meeting.
type PhaseView struct {
	Phase        Phase                  `json:"phase"`
	Friend       *models.Profile        `json:"friend,omitempty"`
	Participants []models.Participant   `json:"participants,omitempty"`
	Request      *models.MeetingRequest `json:"request,omitempty"`
	Meeting      *models.Meeting        `json:"meeting,omitempty"`
}

// DerivePhase merges the latest pending-request and active-meeting
// observations into a single phase. An active meeting always wins over a
// pending request: acceptance replaces the request with a meeting, but a
// stale read may still show the old request row for a moment.
func DerivePhase(userID string, request *models.MeetingRequest, meeting *models.Meeting) PhaseView {
	if meeting != nil {
		return PhaseView{
			Phase:        PhaseMeetingActive,
			Participants: meeting.OtherParticipants(userID),
			Meeting:      meeting,
		}
	}

	if request != nil {
		friend := request.Counterpart(userID)
		phase := PhasePendingAsRecipient
		if request.FromUserID == userID {
			phase = PhasePendingAsSender
		}
		return PhaseView{Phase: phase, Friend: &friend, Request: request}
	}

	return PhaseView{Phase: PhaseIdle}
}
