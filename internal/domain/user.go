package domain

import "time"

// User is an account able to sign in.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Department   string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Caller returns the identity used when the user issues requests.
func (u *User) Caller() Caller {
	return Caller{ID: u.ID, Role: u.Role}
}
