// Package models holds the plain records exchanged between the message.ly
// core and its callers. No framework-specific wrapping.
package models

import "time"

// User is a registered account, identified by its immutable username.
//
// PasswordHash is write-only from the caller's point of view: the user store
// consumes it on Create and never populates it on profile reads.
type User struct {
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Phone        string     `json:"phone"`
	JoinedAt     time.Time  `json:"joined_at"`
	LastLoginAt  *time.Time `json:"last_login_at"`
}

// UserSummary is the public subset of a user embedded into message reads and
// directory listings.
type UserSummary struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

// Summary returns the public subset of u.
func (u *User) Summary() UserSummary {
	return UserSummary{
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.Phone,
	}
}
