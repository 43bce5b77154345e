package models

// FallbackFriendLabel is shown whenever a participant or counterpart profile
// cannot be resolved to a username.
const FallbackFriendLabel = "Friend"

// FallbackUnknownLabel is shown for unresolved friend-request senders.
const FallbackUnknownLabel = "Unknown user"

// Profile is the minimal identity attached to requests, meetings and friends.
type Profile struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// ResolveProfile builds a Profile from possibly-missing backend columns.
// The id falls back to the referencing foreign key and the username to the
// given label, so a rendered profile is never empty.
func ResolveProfile(id, username, fallbackID, fallbackLabel string) Profile {
	p := Profile{ID: id, Username: username}
	if p.ID == "" {
		p.ID = fallbackID
	}
	if p.Username == "" {
		p.Username = fallbackLabel
	}
	return p
}
