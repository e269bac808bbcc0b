package user

import (
	"database/sql"
	"time"
)

// User represents a person tracking their pill cycle through the bot.
type User struct {
	ID         int64
	TelegramID int64
	FirstName  string
	LastName   sql.NullString // optional
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
