// Package domain contains entity without logic, just meta-data
package domain

const DefaultAvatar = "default.png"

type UserID string

// Presence statuses stored on the account record and reported to peers.
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// Identity is the verified account descriptor a session binds to.
// Immutable for the lifetime of the session.
type Identity struct {
	ID       UserID `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}
