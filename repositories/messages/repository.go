package messages

import (
	"context"
	"time"

	"github.com/messagely/core/models"
)

// Repository reads and writes directed messages. The read operations embed
// the counterpart user's summary into each returned message.
type Repository interface {
	// SentBy returns every message sent by username, each with ToUser
	// populated. An unknown username yields an empty slice, not an error:
	// no existence check is performed, the join simply matches zero rows.
	SentBy(ctx context.Context, username string) ([]*models.Message, error)

	// ReceivedBy returns every message addressed to username, each with
	// FromUser populated. Same empty-slice behavior as SentBy.
	ReceivedBy(ctx context.Context, username string) ([]*models.Message, error)

	// Get returns a single message with both counterpart summaries, or
	// common.ErrorNotFound.
	Get(ctx context.Context, id int64) (*models.Message, error)

	// Create inserts a message; the store assigns ID and SentAt. A sender
	// or recipient missing from users yields common.ErrorNotFound.
	Create(ctx context.Context, fromUsername, toUsername, body string) (*models.Message, error)

	// MarkRead sets read_at to the current server time and returns it, or
	// common.ErrorNotFound for an unknown id.
	MarkRead(ctx context.Context, id int64) (*time.Time, error)
}
