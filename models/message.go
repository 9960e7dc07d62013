package models

import "time"

// Message is a directed message between two users. Depending on the query
// that produced it, the counterpart is embedded as FromUser (reads in the
// recipient's context) or ToUser (reads in the sender's context); the unused
// side is nil.
type Message struct {
	ID           int64        `json:"id"`
	FromUsername string       `json:"from_username,omitempty"`
	ToUsername   string       `json:"to_username,omitempty"`
	Body         string       `json:"body"`
	SentAt       time.Time    `json:"sent_at"`
	ReadAt       *time.Time   `json:"read_at"`
	FromUser     *UserSummary `json:"from_user,omitempty"`
	ToUser       *UserSummary `json:"to_user,omitempty"`
}
