// Package services contains the business logic of the message.ly core. This
// file implements AuthService, which composes the user store and the
// credential hasher to handle registration and credential verification.
package services

import (
	"context"

	"github.com/messagely/core/common"
	"github.com/messagely/core/models"
	"github.com/messagely/core/repositories/users"
)

// PasswordHasher abstracts the credential hashing algorithm so the service
// stays independent of the concrete primitive (see cryptox.BcryptHasher).
type PasswordHasher interface {
	// Hash generates a salted hash from a plaintext password.
	Hash(password string) (string, error)

	// Check compares a plaintext password with a hash. A mismatch is false,
	// not an error.
	Check(password, hash string) bool
}

// AuthService answers "is this username/password combination valid" and
// performs registration. Updating the login timestamp is deliberately left to
// the caller (via users.Repository.TouchLogin) so a failed downstream step,
// such as issuing a session token, leaves the timestamp unchanged.
type AuthService struct {
	users  users.Repository
	hasher PasswordHasher
}

// NewAuthService constructs an AuthService from a user store and a hasher.
func NewAuthService(users users.Repository, hasher PasswordHasher) *AuthService {
	return &AuthService{users: users, hasher: hasher}
}

// Register hashes the password and creates the user. A taken username yields
// common.ErrorAlreadyExists. Field validation belongs to the caller layer,
// but empty identity or credential input is rejected here with
// common.ErrorValidation: hashing an empty password would persist a
// meaningless credential.
func (s *AuthService) Register(ctx context.Context, username, password, firstName, lastName, phone string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, common.ErrorValidation
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, common.ErrorInternal
	}

	user := &models.User{
		Username:     username,
		PasswordHash: hash,
		FirstName:    firstName,
		LastName:     lastName,
		Phone:        phone,
	}

	return s.users.Create(ctx, user)
}

// Authenticate verifies the password against the stored hash. An unknown
// username surfaces common.ErrorNotFound rather than false: callers must
// handle "no such user" and "wrong password" as distinct outcomes. A wrong
// password is (false, nil).
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (bool, error) {
	hash, err := s.users.FindCredential(ctx, username)
	if err != nil {
		return false, err
	}

	return s.hasher.Check(password, hash), nil
}
