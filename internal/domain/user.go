package domain

import "time"

// User represents a registered account. Name is the login handle; email is
// the unique natural key.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	ProfilePic   string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
