package model

import "time"

// Role is the closed set of roles a user can hold. Business rules
// branch on it explicitly (weekly quota bypass, admin-only listings)
// rather than through scattered boolean flags.
type Role string

const (
	RoleStudent Role = "STUDENT"
	RoleAdmin   Role = "ADMIN"
)

// User mirrors the `users` table. The email is the external key: the
// booking engine addresses users by email, never by numeric id. The
// calendar token columns back the best-effort external calendar sync
// and are nil for users who never linked a calendar.
type User struct {
	ID           uint64
	Email        string
	Name         string
	PasswordHash string
	Role         Role

	CalendarAccessToken  *string
	CalendarRefreshToken *string
	CalendarTokenExpiry  *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// RefreshToken models an entry in the `refresh_tokens` table. Only the
// SHA-256 hash of the raw token is stored.
type RefreshToken struct {
	ID        uint64
	UserID    uint64
	TokenHash string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}
