package models

// User is the identity of the caller. A nil *User means the caller is anonymous.
type User struct {
	ID     string
	Email  string
	ChatID int64 // Telegram chat, zero when unknown.
}
