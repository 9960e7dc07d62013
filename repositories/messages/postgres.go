// Package messages provides the PostgreSQL-backed message repository: thread
// reconstruction with embedded counterpart summaries, plus message creation
// and read receipts.
package messages

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/messagely/core/common"
	"github.com/messagely/core/dbx"
	"github.com/messagely/core/models"
)

// foreignKeyViolation is the PostgreSQL SQLSTATE for foreign-key errors.
const foreignKeyViolation = "23503"

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) SentBy(ctx context.Context, username string) ([]*models.Message, error) {
	query :=
		`SELECT m.id, m.body, m.sent_at, m.read_at,
		        t.username, t.first_name, t.last_name, t.phone
		 FROM messages m
		 JOIN users t ON m.to_username = t.username
		 WHERE m.from_username = $1
		 `

	rows, err := r.db.QueryContext(ctx, query, username)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Message
	for rows.Next() {
		item := &models.Message{ToUser: &models.UserSummary{}}
		var readAt sql.NullTime
		if err := rows.Scan(
			&item.ID, &item.Body, &item.SentAt, &readAt,
			&item.ToUser.Username, &item.ToUser.FirstName, &item.ToUser.LastName, &item.ToUser.Phone,
		); err != nil {
			return nil, err
		}
		if readAt.Valid {
			item.ReadAt = &readAt.Time
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) ReceivedBy(ctx context.Context, username string) ([]*models.Message, error) {
	query :=
		`SELECT m.id, m.body, m.sent_at, m.read_at,
		        f.username, f.first_name, f.last_name, f.phone
		 FROM messages m
		 JOIN users f ON m.from_username = f.username
		 WHERE m.to_username = $1
		 `

	rows, err := r.db.QueryContext(ctx, query, username)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Message
	for rows.Next() {
		item := &models.Message{FromUser: &models.UserSummary{}}
		var readAt sql.NullTime
		if err := rows.Scan(
			&item.ID, &item.Body, &item.SentAt, &readAt,
			&item.FromUser.Username, &item.FromUser.FirstName, &item.FromUser.LastName, &item.FromUser.Phone,
		); err != nil {
			return nil, err
		}
		if readAt.Valid {
			item.ReadAt = &readAt.Time
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id int64) (*models.Message, error) {
	query :=
		`SELECT m.id, m.body, m.sent_at, m.read_at,
		        f.username, f.first_name, f.last_name, f.phone,
		        t.username, t.first_name, t.last_name, t.phone
		 FROM messages m
		 JOIN users f ON m.from_username = f.username
		 JOIN users t ON m.to_username = t.username
		 WHERE m.id = $1
		 `

	item := &models.Message{FromUser: &models.UserSummary{}, ToUser: &models.UserSummary{}}
	var readAt sql.NullTime
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&item.ID, &item.Body, &item.SentAt, &readAt,
		&item.FromUser.Username, &item.FromUser.FirstName, &item.FromUser.LastName, &item.FromUser.Phone,
		&item.ToUser.Username, &item.ToUser.FirstName, &item.ToUser.LastName, &item.ToUser.Phone,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if readAt.Valid {
		item.ReadAt = &readAt.Time
	}

	return item, nil
}

func (r *PostgresRepository) Create(ctx context.Context, fromUsername, toUsername, body string) (*models.Message, error) {

	query :=
		`INSERT INTO messages (from_username, to_username, body, sent_at)
		 VALUES ($1, $2, $3, current_timestamp)
		 RETURNING id, sent_at
		 `

	item := &models.Message{FromUsername: fromUsername, ToUsername: toUsername, Body: body}
	err := r.db.QueryRowContext(ctx, query, fromUsername, toUsername, body).Scan(&item.ID, &item.SentAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return item, nil
}

func (r *PostgresRepository) MarkRead(ctx context.Context, id int64) (*time.Time, error) {
	query :=
		`UPDATE messages SET read_at = current_timestamp
		 WHERE id = $1
		 RETURNING read_at
		 `

	var readAt time.Time
	err := r.db.QueryRowContext(ctx, query, id).Scan(&readAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return &readAt, nil
}
