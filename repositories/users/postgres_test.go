package users

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/messagely/core/common"
	"github.com/messagely/core/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

const createQuery = `(?s)^INSERT\s+INTO\s+users\s*\(username,\s*password_hash,\s*first_name,\s*last_name,\s*phone,\s*joined_at\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5,\s*current_timestamp\)\s*RETURNING\s+joined_at\s*$`

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	joined := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"joined_at"}).AddRow(joined)
	mock.ExpectQuery(createQuery).
		WithArgs("alice", "hash", "Alice", "Aldrin", "555-0001").
		WillReturnRows(rows)

	u := &models.User{Username: "alice", PasswordHash: "hash", FirstName: "Alice", LastName: "Aldrin", Phone: "555-0001"}
	got, err := repo.Create(context.Background(), u)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.Username != "alice" || !got.JoinedAt.Equal(joined) {
		t.Fatalf("unexpected user: %+v", got)
	}
	if got.LastLoginAt != nil {
		t.Fatalf("new user must have nil LastLoginAt, got %v", got.LastLoginAt)
	}
}

func TestCreate_Conflict(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(createQuery).
		WithArgs("alice", "hash", "Alice", "Aldrin", "555-0001").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_pkey"})

	u := &models.User{Username: "alice", PasswordHash: "hash", FirstName: "Alice", LastName: "Aldrin", Phone: "555-0001"}
	_, err := repo.Create(context.Background(), u)
	if !errors.Is(err, common.ErrorAlreadyExists) {
		t.Fatalf("want common.ErrorAlreadyExists, got %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(createQuery).
		WithArgs("alice", "hash", "Alice", "Aldrin", "555-0001").
		WillReturnError(errors.New("db down"))

	u := &models.User{Username: "alice", PasswordHash: "hash", FirstName: "Alice", LastName: "Aldrin", Phone: "555-0001"}
	_, err := repo.Create(context.Background(), u)
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

const findCredentialQuery = `(?s)^SELECT\s+password_hash\s+FROM\s+users\s+WHERE\s+username\s*=\s*\$1\s*$`

func TestFindCredential_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"password_hash"}).AddRow("$2a$12$abc")
	mock.ExpectQuery(findCredentialQuery).
		WithArgs("alice").
		WillReturnRows(rows)

	got, err := repo.FindCredential(context.Background(), "alice")
	if err != nil {
		t.Fatalf("FindCredential error: %v", err)
	}
	if got != "$2a$12$abc" {
		t.Fatalf("unexpected hash: %q", got)
	}
}

func TestFindCredential_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(findCredentialQuery).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindCredential(context.Background(), "ghost")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestFindCredential_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(findCredentialQuery).
		WithArgs("alice").
		WillReturnError(errors.New("db err"))

	_, err := repo.FindCredential(context.Background(), "alice")
	if err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

const getQuery = `(?s)^SELECT\s+username,\s*first_name,\s*last_name,\s*phone,\s*joined_at,\s*last_login_at\s+FROM\s+users\s+WHERE\s+username\s*=\s*\$1\s*$`

func TestGetByUsername_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	joined := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	lastLogin := joined.Add(48 * time.Hour)
	rows := sqlmock.NewRows([]string{"username", "first_name", "last_name", "phone", "joined_at", "last_login_at"}).
		AddRow("alice", "Alice", "Aldrin", "555-0001", joined, lastLogin)
	mock.ExpectQuery(getQuery).
		WithArgs("alice").
		WillReturnRows(rows)

	got, err := repo.GetByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("GetByUsername error: %v", err)
	}
	if got.Username != "alice" || got.FirstName != "Alice" || got.Phone != "555-0001" {
		t.Fatalf("unexpected user: %+v", got)
	}
	if got.LastLoginAt == nil || !got.LastLoginAt.Equal(lastLogin) {
		t.Fatalf("unexpected LastLoginAt: %v", got.LastLoginAt)
	}
	if got.PasswordHash != "" {
		t.Fatalf("profile read must not expose the hash, got %q", got.PasswordHash)
	}
}

func TestGetByUsername_NeverLoggedIn(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	joined := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"username", "first_name", "last_name", "phone", "joined_at", "last_login_at"}).
		AddRow("bob", "Bob", "Breuer", "555-0002", joined, nil)
	mock.ExpectQuery(getQuery).
		WithArgs("bob").
		WillReturnRows(rows)

	got, err := repo.GetByUsername(context.Background(), "bob")
	if err != nil {
		t.Fatalf("GetByUsername error: %v", err)
	}
	if got.LastLoginAt != nil {
		t.Fatalf("want nil LastLoginAt, got %v", got.LastLoginAt)
	}
}

func TestGetByUsername_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(getQuery).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByUsername(context.Background(), "ghost")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

const allQuery = `(?s)^SELECT\s+username,\s*first_name,\s*last_name,\s*phone\s+FROM\s+users\s*$`

func TestAll_ReturnsSummaries(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"username", "first_name", "last_name", "phone"}).
		AddRow("alice", "Alice", "Aldrin", "555-0001").
		AddRow("bob", "Bob", "Breuer", "555-0002")
	mock.ExpectQuery(allQuery).WillReturnRows(rows)

	got, err := repo.All(context.Background())
	if err != nil {
		t.Fatalf("All error: %v", err)
	}
	if len(got) != 2 || got[0].Username != "alice" || got[1].Username != "bob" {
		t.Fatalf("unexpected summaries: %+v", got)
	}
}

func TestAll_Empty(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(allQuery).
		WillReturnRows(sqlmock.NewRows([]string{"username", "first_name", "last_name", "phone"}))

	got, err := repo.All(context.Background())
	if err != nil {
		t.Fatalf("All error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("want empty result, got %+v", got)
	}
}

const touchQuery = `(?s)^UPDATE\s+users\s+SET\s+last_login_at\s*=\s*current_timestamp\s+WHERE\s+username\s*=\s*\$1\s*$`

func TestTouchLogin_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(touchQuery).
		WithArgs("alice").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.TouchLogin(context.Background(), "alice"); err != nil {
		t.Fatalf("TouchLogin error: %v", err)
	}
}

func TestTouchLogin_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(touchQuery).
		WithArgs("ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.TouchLogin(context.Background(), "ghost")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestTouchLogin_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(touchQuery).
		WithArgs("alice").
		WillReturnError(errors.New("db err"))

	err := repo.TouchLogin(context.Background(), "alice")
	if err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}
