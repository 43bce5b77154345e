package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"meetup-client/internal/gateway"
	"meetup-client/internal/models"
	"meetup-client/internal/observability"
)

// Action identifies one of the user-initiated meeting transitions. Each has
// its own in-flight flag and error slot, so a rejection of one never blocks
// or taints the others.
type Action string

const (
	ActionStart   Action = "start"
	ActionCancel  Action = "cancel"
	ActionRespond Action = "respond"
	ActionConfirm Action = "confirm"
	ActionEnd     Action = "end"
)

// ErrActionInFlight is returned when the same action is dispatched again
// before the previous attempt resolved.
var ErrActionInFlight = errors.New("action already in flight")

// PreconditionError is a client-side refusal raised before any backend call.
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string {
	return e.Reason
}

// ActionState is the presentation-facing view of one action slot.
type ActionState struct {
	InFlight bool   `json:"in_flight"`
	Error    string `json:"error,omitempty"`
}

// Dispatcher runs the five meeting actions: each one backend mutation
// followed by invalidation of the cached observations, so the next
// reconciliation reflects the new truth. It never deduplicates repeat
// submissions beyond the in-flight flag; the backend rejects an action whose
// precondition no longer holds and the rejection surfaces as a scoped
// message.
type Dispatcher struct {
	coord *Coordinator
	gw    gateway.Gateway

	mu       sync.Mutex
	inFlight map[Action]bool
	errs     map[Action]string
}

// NewDispatcher builds a dispatcher bound to one coordinator.
func NewDispatcher(coord *Coordinator, gw gateway.Gateway) *Dispatcher {
	return &Dispatcher{
		coord:    coord,
		gw:       gw,
		inFlight: make(map[Action]bool),
		errs:     make(map[Action]string),
	}
}

func (d *Dispatcher) begin(action Action) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.inFlight[action] {
		return ErrActionInFlight
	}
	d.inFlight[action] = true
	delete(d.errs, action)
	return nil
}

func (d *Dispatcher) finish(action Action, err error) {
	d.mu.Lock()
	d.inFlight[action] = false
	if err != nil {
		d.errs[action] = err.Error()
	}
	d.mu.Unlock()

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	observability.IncAction(string(action), outcome)
}

// State returns the in-flight/error view of all five actions.
func (d *Dispatcher) State() map[Action]ActionState {
	d.mu.Lock()
	defer d.mu.Unlock()
	state := make(map[Action]ActionState, 5)
	for _, action := range []Action{ActionStart, ActionCancel, ActionRespond, ActionConfirm, ActionEnd} {
		state[action] = ActionState{InFlight: d.inFlight[action], Error: d.errs[action]}
	}
	return state
}

// Err returns the scoped error message of one action, empty when clear.
func (d *Dispatcher) Err(action Action) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.errs[action]
}

// ClearError dismisses one action's error message, as when the surface
// showing it closes.
func (d *Dispatcher) ClearError(action Action) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.errs, action)
}

// StartMeeting creates a pending meeting request toward an accepted friend.
// Refused client-side when the user already has a request or meeting in
// flight, or when the target is not a resolvable accepted friend.
func (d *Dispatcher) StartMeeting(ctx context.Context, targetUserID string) error {
	if err := d.begin(ActionStart); err != nil {
		return err
	}
	err := d.startMeeting(ctx, targetUserID)
	d.finish(ActionStart, err)
	return err
}

func (d *Dispatcher) startMeeting(ctx context.Context, targetUserID string) error {
	if view := d.coord.Refresh(ctx, false); view.Phase != PhaseIdle {
		return &PreconditionError{Reason: "a meeting request or active meeting already exists"}
	}

	friends, err := d.gw.Friends(ctx, d.coord.UserID())
	if err != nil {
		return fmt.Errorf("load friends: %w", err)
	}

	var target *models.Friend
	for i := range friends {
		if friends[i].FriendProfile.ID == targetUserID {
			target = &friends[i]
			break
		}
	}
	if target == nil || !target.Accepted || target.FriendProfile.ID == "" {
		return &PreconditionError{Reason: "target is not an accepted friend with a resolvable identity"}
	}

	if _, err := d.gw.StartMeetingRequest(ctx, d.coord.UserID(), target.FriendProfile.ID); err != nil {
		return err
	}
	d.coord.Invalidate(ctx)
	return nil
}

// CancelRequest cancels a pending request the user sent.
func (d *Dispatcher) CancelRequest(ctx context.Context, requestID string) error {
	if err := d.begin(ActionCancel); err != nil {
		return err
	}
	err := d.gw.CancelMeetingRequest(ctx, d.coord.UserID(), requestID)
	if err == nil {
		d.coord.Invalidate(ctx)
	}
	d.finish(ActionCancel, err)
	return err
}

// Respond accepts or declines a pending request addressed to the user. On
// accept the meeting carried by the response seeds the cache immediately.
func (d *Dispatcher) Respond(ctx context.Context, requestID, action string) error {
	if err := d.begin(ActionRespond); err != nil {
		return err
	}
	err := d.respond(ctx, requestID, action)
	d.finish(ActionRespond, err)
	return err
}

func (d *Dispatcher) respond(ctx context.Context, requestID, action string) error {
	if action != gateway.RespondAccept && action != gateway.RespondDecline {
		return &PreconditionError{Reason: fmt.Sprintf("unknown response action %q", action)}
	}

	meeting, err := d.gw.RespondToMeetingRequest(ctx, d.coord.UserID(), requestID, action)
	if err != nil {
		return err
	}
	if meeting != nil {
		d.coord.SeedMeeting(ctx, meeting)
		return nil
	}
	d.coord.Invalidate(ctx)
	return nil
}

// ConfirmMeeting marks the meeting successfully completed; the backend
// increments both participants' streak counters in the same procedure.
func (d *Dispatcher) ConfirmMeeting(ctx context.Context, meetingID string) error {
	if err := d.begin(ActionConfirm); err != nil {
		return err
	}
	err := d.gw.ConfirmMeeting(ctx, d.coord.UserID(), meetingID)
	if err == nil {
		d.coord.Invalidate(ctx)
	}
	d.finish(ActionConfirm, err)
	return err
}

// EndMeeting terminates the meeting without counting it.
func (d *Dispatcher) EndMeeting(ctx context.Context, meetingID string) error {
	if err := d.begin(ActionEnd); err != nil {
		return err
	}
	err := d.gw.EndMeeting(ctx, d.coord.UserID(), meetingID)
	if err == nil {
		d.coord.Invalidate(ctx)
	}
	d.finish(ActionEnd, err)
	return err
}
