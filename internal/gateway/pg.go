package gateway

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel"

	"meetup-client/internal/models"
)

// PG talks to the meetups backend over its Postgres surface: plain reads for
// the observation queries and stored procedures for every mutation. The
// backend owns the schema and all transactional guarantees; this side only
// reads and invokes.
type PG struct {
	db *sqlx.DB
}

// NewPG wraps an open backend connection.
func NewPG(db *sqlx.DB) *PG {
	return &PG{db: db}
}

var tracer = otel.Tracer("meetup-client/gateway")

type meetingRequestRow struct {
	ID           string         `db:"id"`
	FromUser     string         `db:"from_user"`
	ToUser       string         `db:"to_user"`
	Status       string         `db:"status"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    *time.Time     `db:"updated_at"`
	FromUsername sql.NullString `db:"from_username"`
	ToUsername   sql.NullString `db:"to_username"`
}

func (row meetingRequestRow) toModel() *models.MeetingRequest {
	return &models.MeetingRequest{
		ID:         row.ID,
		FromUserID: row.FromUser,
		ToUserID:   row.ToUser,
		Status:     models.MeetingRequestStatus(row.Status),
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
		FromUser:   models.ResolveProfile(row.FromUser, row.FromUsername.String, row.FromUser, models.FallbackFriendLabel),
		ToUser:     models.ResolveProfile(row.ToUser, row.ToUsername.String, row.ToUser, models.FallbackFriendLabel),
	}
}

// PendingMeetingRequest returns the newest pending request involving the user,
// or nil when there is none.
func (g *PG) PendingMeetingRequest(ctx context.Context, userID string) (*models.MeetingRequest, error) {
	ctx, span := tracer.Start(ctx, "gateway.PendingMeetingRequest")
	defer span.End()

	const query = `SELECT mr.id, mr.from_user, mr.to_user, mr.status, mr.created_at, mr.updated_at,
            fp.username AS from_username, tp.username AS to_username
        FROM meeting_requests mr
        LEFT JOIN profiles fp ON fp.id = mr.from_user
        LEFT JOIN profiles tp ON tp.id = mr.to_user
        WHERE (mr.from_user = $1 OR mr.to_user = $1) AND mr.status = 'pending'
        ORDER BY mr.created_at DESC
        LIMIT 1`

	var row meetingRequestRow
	if err := g.db.GetContext(ctx, &row, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch pending meeting request: %w", err)
	}
	return row.toModel(), nil
}

// ActiveMeeting returns the newest active meeting the user participates in,
// with its participants resolved, or nil when there is none.
func (g *PG) ActiveMeeting(ctx context.Context, userID string) (*models.Meeting, error) {
	ctx, span := tracer.Start(ctx, "gateway.ActiveMeeting")
	defer span.End()

	const query = `SELECT m.id, m.started_by, m.color_hex, m.active, m.created_at, m.ended_at
        FROM meeting_participants mp
        JOIN meetings m ON m.id = mp.meeting_id
        WHERE mp.user_id = $1 AND m.active = TRUE
        ORDER BY m.created_at DESC
        LIMIT 1`

	var meeting models.Meeting
	if err := g.db.GetContext(ctx, &meeting, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch active meeting: %w", err)
	}

	participants, err := g.meetingParticipants(ctx, meeting.ID)
	if err != nil {
		return nil, err
	}
	meeting.Participants = participants
	return &meeting, nil
}

func (g *PG) meetingByID(ctx context.Context, meetingID string) (*models.Meeting, error) {
	const query = `SELECT id, started_by, color_hex, active, created_at, ended_at
        FROM meetings WHERE id = $1`

	var meeting models.Meeting
	if err := g.db.GetContext(ctx, &meeting, query, meetingID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch meeting %s: %w", meetingID, err)
	}

	participants, err := g.meetingParticipants(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	meeting.Participants = participants
	return &meeting, nil
}

func (g *PG) meetingParticipants(ctx context.Context, meetingID string) ([]models.Participant, error) {
	const query = `SELECT mp.user_id, p.username
        FROM meeting_participants mp
        LEFT JOIN profiles p ON p.id = mp.user_id
        WHERE mp.meeting_id = $1`

	rows, err := g.db.QueryxContext(ctx, query, meetingID)
	if err != nil {
		return nil, fmt.Errorf("fetch meeting participants: %w", err)
	}
	defer rows.Close()

	var participants []models.Participant
	for rows.Next() {
		var userID string
		var username sql.NullString
		if err := rows.Scan(&userID, &username); err != nil {
			return nil, err
		}
		label := username.String
		if label == "" {
			label = models.FallbackFriendLabel
		}
		participants = append(participants, models.Participant{UserID: userID, Username: label})
	}
	return participants, rows.Err()
}

// StartMeetingRequest invokes the start procedure and returns the new request
// id.
func (g *PG) StartMeetingRequest(ctx context.Context, userID, targetUserID string) (string, error) {
	var requestID string
	if err := g.db.GetContext(ctx, &requestID, `SELECT start_meeting_request($1, $2)`, userID, targetUserID); err != nil {
		return "", err
	}
	return requestID, nil
}

// CancelMeetingRequest cancels a pending request the user sent.
func (g *PG) CancelMeetingRequest(ctx context.Context, userID, requestID string) error {
	_, err := g.db.ExecContext(ctx, `SELECT cancel_meeting_request($1, $2)`, userID, requestID)
	return err
}

// RespondToMeetingRequest accepts or declines a pending request addressed to
// the user. On accept the backend creates the meeting inside the same
// procedure and its id comes back with the result, so the caller can seed its
// cache without waiting for the next poll.
func (g *PG) RespondToMeetingRequest(ctx context.Context, userID, requestID, action string) (*models.Meeting, error) {
	ctx, span := tracer.Start(ctx, "gateway.RespondToMeetingRequest")
	defer span.End()

	var meetingID sql.NullString
	if err := g.db.GetContext(ctx, &meetingID, `SELECT respond_meeting_request($1, $2, $3)`, userID, requestID, action); err != nil {
		return nil, err
	}
	if !meetingID.Valid || meetingID.String == "" {
		return nil, nil
	}
	return g.meetingByID(ctx, meetingID.String)
}

// ConfirmMeeting marks the meeting successfully completed; the procedure
// increments both participants' daily and total meet counters and deactivates
// the meeting in one transaction.
func (g *PG) ConfirmMeeting(ctx context.Context, userID, meetingID string) error {
	_, err := g.db.ExecContext(ctx, `SELECT confirm_meeting($1, $2)`, userID, meetingID)
	return err
}

// EndMeeting terminates the meeting without touching the counters.
func (g *PG) EndMeeting(ctx context.Context, userID, meetingID string) error {
	_, err := g.db.ExecContext(ctx, `SELECT end_meeting($1, $2)`, userID, meetingID)
	return err
}

type friendRow struct {
	ID         string         `db:"id"`
	FriendID   string         `db:"friend_id"`
	Accepted   bool           `db:"accepted"`
	DailyMeets int            `db:"daily_meets"`
	TotalMeets int            `db:"total_meets"`
	Username   sql.NullString `db:"username"`
}

// Friends lists the user's accepted friends with their streak counters.
func (g *PG) Friends(ctx context.Context, userID string) ([]models.Friend, error) {
	const query = `SELECT f.id, f.friend_id, f.accepted, f.daily_meets, f.total_meets, p.username
        FROM friends f
        LEFT JOIN profiles p ON p.id = f.friend_id
        WHERE f.user_id = $1 AND f.accepted = TRUE
        ORDER BY f.created_at ASC`

	var rows []friendRow
	if err := g.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("fetch friends: %w", err)
	}

	friends := make([]models.Friend, 0, len(rows))
	for _, row := range rows {
		friends = append(friends, models.Friend{
			ID:            row.ID,
			Accepted:      row.Accepted,
			FriendProfile: models.ResolveProfile(row.FriendID, row.Username.String, row.FriendID, models.FallbackFriendLabel),
			DailyMeets:    row.DailyMeets,
			TotalMeets:    row.TotalMeets,
		})
	}
	return friends, nil
}

type friendRequestRow struct {
	ID           string         `db:"id"`
	FromUser     string         `db:"from_user"`
	ToUser       string         `db:"to_user"`
	Status       string         `db:"status"`
	CreatedAt    time.Time      `db:"created_at"`
	FromUsername sql.NullString `db:"from_username"`
	ToUsername   sql.NullString `db:"to_username"`
}

func (row friendRequestRow) toModel() models.FriendRequest {
	return models.FriendRequest{
		ID:         row.ID,
		FromUserID: row.FromUser,
		ToUserID:   row.ToUser,
		Status:     models.FriendRequestStatus(row.Status),
		CreatedAt:  row.CreatedAt,
		FromUser:   models.ResolveProfile(row.FromUser, row.FromUsername.String, row.FromUser, models.FallbackUnknownLabel),
		ToUser:     models.ResolveProfile(row.ToUser, row.ToUsername.String, row.ToUser, "Pending user"),
	}
}

func (g *PG) friendRequests(ctx context.Context, column, userID string) ([]models.FriendRequest, error) {
	query := fmt.Sprintf(`SELECT fr.id, fr.from_user, fr.to_user, fr.status, fr.created_at,
            fp.username AS from_username, tp.username AS to_username
        FROM friend_requests fr
        LEFT JOIN profiles fp ON fp.id = fr.from_user
        LEFT JOIN profiles tp ON tp.id = fr.to_user
        WHERE fr.%s = $1 AND fr.status = 'pending'
        ORDER BY fr.created_at ASC`, column)

	var rows []friendRequestRow
	if err := g.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("fetch friend requests: %w", err)
	}

	requests := make([]models.FriendRequest, 0, len(rows))
	for _, row := range rows {
		requests = append(requests, row.toModel())
	}
	return requests, nil
}

// IncomingFriendRequests lists pending requests addressed to the user.
func (g *PG) IncomingFriendRequests(ctx context.Context, userID string) ([]models.FriendRequest, error) {
	return g.friendRequests(ctx, "to_user", userID)
}

// OutgoingFriendRequests lists pending requests the user sent.
func (g *PG) OutgoingFriendRequests(ctx context.Context, userID string) ([]models.FriendRequest, error) {
	return g.friendRequests(ctx, "from_user", userID)
}

// SendFriendRequest invokes the friend-request procedure targeting an email
// address.
func (g *PG) SendFriendRequest(ctx context.Context, userID, email string) error {
	_, err := g.db.ExecContext(ctx, `SELECT send_friend_request($1, $2)`, userID, email)
	return err
}

// RespondToFriendRequest accepts or declines a pending friend request.
func (g *PG) RespondToFriendRequest(ctx context.Context, userID, requestID, action string) error {
	_, err := g.db.ExecContext(ctx, `SELECT respond_friend_request($1, $2, $3)`, userID, requestID, action)
	return err
}

// RemoveFriend tears down the friendship both ways.
func (g *PG) RemoveFriend(ctx context.Context, userID, friendID string) error {
	_, err := g.db.ExecContext(ctx, `SELECT remove_friend($1, $2)`, userID, friendID)
	return err
}

// Profile fetches the user's own profile, or nil when none exists yet.
func (g *PG) Profile(ctx context.Context, userID string) (*models.Profile, error) {
	var row struct {
		ID       string         `db:"id"`
		Username sql.NullString `db:"username"`
	}
	if err := g.db.GetContext(ctx, &row, `SELECT id, username FROM profiles WHERE id = $1`, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch profile: %w", err)
	}
	profile := models.ResolveProfile(row.ID, row.Username.String, userID, models.FallbackUnknownLabel)
	return &profile, nil
}

// UpdateUsername creates or updates the user's profile row.
func (g *PG) UpdateUsername(ctx context.Context, userID, username string) error {
	_, err := g.db.ExecContext(ctx, `INSERT INTO profiles (id, username) VALUES ($1, $2)
        ON CONFLICT (id) DO UPDATE SET username = EXCLUDED.username`, userID, username)
	return err
}
