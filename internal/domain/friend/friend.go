package friend

import "time"

// Link connects two users so one can nudge the other about an upcoming dose.
// Links are directional: UserID added FriendUserID.
type Link struct {
	ID           int64
	UserID       int64
	FriendUserID int64
	CreatedAt    time.Time
}
