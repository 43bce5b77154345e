package models

import "time"

// Friend is an accepted friendship row together with the meet streak counters
// the backend maintains for the pair.
type Friend struct {
	ID            string  `db:"id" json:"id"`
	Accepted      bool    `db:"accepted" json:"accepted"`
	FriendProfile Profile `json:"friend_profile"`
	DailyMeets    int     `db:"daily_meets" json:"daily_meets"`
	TotalMeets    int     `db:"total_meets" json:"total_meets"`
}

// FriendRequestStatus is the lifecycle status of a friend request row.
type FriendRequestStatus string

const (
	FriendRequestPending  FriendRequestStatus = "pending"
	FriendRequestAccepted FriendRequestStatus = "accepted"
	FriendRequestDeclined FriendRequestStatus = "declined"
)

// FriendRequest is a pending friendship proposal.
type FriendRequest struct {
	ID         string              `db:"id" json:"id"`
	FromUserID string              `db:"from_user" json:"from_user_id"`
	ToUserID   string              `db:"to_user" json:"to_user_id"`
	Status     FriendRequestStatus `db:"status" json:"status"`
	CreatedAt  time.Time           `db:"created_at" json:"created_at"`
	FromUser   Profile             `json:"from_user"`
	ToUser     Profile             `json:"to_user"`
}
