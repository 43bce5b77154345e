package lifecycle

import (
	"context"
	"log"
	"sync"
	"time"

	"meetup-client/internal/gateway"
	"meetup-client/internal/models"
	"meetup-client/internal/observability"
)

// Coordinator reconciles the pending-request and active-meeting observations
// for one signed-in identity into a lifecycle phase. It never fails on its
// own: fetch errors stay inside the sources, which keep their previous
// values until a later cycle succeeds.
type Coordinator struct {
	userID  string
	request *source[models.MeetingRequest]
	meeting *source[models.Meeting]

	mu         sync.Mutex
	hadRequest bool
	hadMeeting bool
	lastPhase  Phase

	onPhase          func(PhaseView)
	onFriendsChanged func()
}

// NewCoordinator builds a coordinator over the gateway. onPhase fires on
// every phase transition; onFriendsChanged fires when a meeting ends, since
// the streak counters on the friends rows may have moved.
func NewCoordinator(userID string, gw gateway.Gateway, staleness time.Duration, onPhase func(PhaseView), onFriendsChanged func()) *Coordinator {
	return &Coordinator{
		userID: userID,
		request: newSource(staleness, func(ctx context.Context) (*models.MeetingRequest, error) {
			return gw.PendingMeetingRequest(ctx, userID)
		}),
		meeting: newSource(staleness, func(ctx context.Context) (*models.Meeting, error) {
			return gw.ActiveMeeting(ctx, userID)
		}),
		lastPhase:        PhaseIdle,
		onPhase:          onPhase,
		onFriendsChanged: onFriendsChanged,
	}
}

// UserID returns the identity this coordinator serves.
func (c *Coordinator) UserID() string {
	return c.userID
}

// Refresh re-fetches both observations (respecting the validity window
// unless forced) and reconciles them into the current phase.
func (c *Coordinator) Refresh(ctx context.Context, force bool) PhaseView {
	if _, err := c.request.refresh(ctx, force); err != nil {
		log.Printf("pending request fetch failed for user %s: %v", c.userID, err)
	}
	if _, err := c.meeting.refresh(ctx, force); err != nil {
		log.Printf("active meeting fetch failed for user %s: %v", c.userID, err)
	}
	return c.reconcile(ctx)
}

// Snapshot derives the phase from the cached observations without touching
// the backend.
func (c *Coordinator) Snapshot() PhaseView {
	return DerivePhase(c.userID, c.request.get(), c.meeting.get())
}

// SeedMeeting installs a meeting obtained from a mutation response, so the
// phase flips to meeting-active without waiting for the next poll.
func (c *Coordinator) SeedMeeting(ctx context.Context, meeting *models.Meeting) PhaseView {
	c.meeting.seed(meeting)
	c.request.invalidate()
	if _, err := c.request.refresh(ctx, true); err != nil {
		log.Printf("pending request fetch failed for user %s: %v", c.userID, err)
	}
	return c.reconcile(ctx)
}

// Invalidate expires both observation caches and forces a refresh, used by
// the dispatcher after every mutation.
func (c *Coordinator) Invalidate(ctx context.Context) PhaseView {
	c.request.invalidate()
	c.meeting.invalidate()
	return c.Refresh(ctx, true)
}

// reconcile applies the two edge rules before trusting the derived phase:
// a vanished request may mean it was just accepted and the meeting row is
// not visible yet, and a vanished meeting may hide an updated friend list or
// a request that arrived while the meeting was active.
func (c *Coordinator) reconcile(ctx context.Context) PhaseView {
	request := c.request.get()
	meeting := c.meeting.get()

	c.mu.Lock()
	requestVanished := c.hadRequest && request == nil && meeting == nil
	meetingEnded := c.hadMeeting && meeting == nil
	c.mu.Unlock()

	if requestVanished {
		observability.IncForcedRefetch("request_vanished")
		if _, err := c.meeting.refresh(ctx, true); err != nil {
			log.Printf("forced meeting fetch failed for user %s: %v", c.userID, err)
		}
		meeting = c.meeting.get()
	}

	if meetingEnded {
		observability.IncForcedRefetch("meeting_ended")
		if _, err := c.request.refresh(ctx, true); err != nil {
			log.Printf("forced request fetch failed for user %s: %v", c.userID, err)
		}
		request = c.request.get()
		if c.onFriendsChanged != nil {
			c.onFriendsChanged()
		}
	}

	view := DerivePhase(c.userID, request, meeting)

	c.mu.Lock()
	c.hadRequest = request != nil
	c.hadMeeting = meeting != nil
	changed := view.Phase != c.lastPhase
	previous := c.lastPhase
	c.lastPhase = view.Phase
	c.mu.Unlock()

	if changed {
		observability.IncPhaseTransition(string(previous), string(view.Phase))
		if c.onPhase != nil {
			c.onPhase(view)
		}
	}
	return view
}

// Run polls both observations on a fixed cadence until the context is
// cancelled. The validity window inside the sources bounds backend load; the
// cadence keeps perceived latency low even without the change feed.
func (c *Coordinator) Run(ctx context.Context, interval time.Duration) {
	c.Refresh(ctx, true)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Refresh(ctx, false)
			observability.IncPollCycle()
		}
	}
}
