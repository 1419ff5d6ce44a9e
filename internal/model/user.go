package model

import "time"

// Roles a user account can hold.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents an account as stored in the `users` table. The
// password hash never leaves the process.
//
// Fields:
//
//	ID           - primary key identifier of the user.
//	Email        - unique email address.
//	Name         - display name.
//	PasswordHash - bcrypt hash of the password.
//	Role         - user or admin.
//	IsActive     - inactive accounts cannot sign in.
type User struct {
	ID           uint64    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Session models an entry in the `sessions` table. Only the SHA-256 hash
// of the opaque token is stored.
type Session struct {
	ID        uint64    `json:"id"`
	UserID    uint64    `json:"userId"`
	TokenHash string    `json:"-"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// Expired reports whether the session is past its expiry at now.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
