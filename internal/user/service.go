package user

import (
	"context"
	"errors"
	"time"

	"libraryapi/internal/auth"
	"libraryapi/internal/entity"
	"libraryapi/internal/store"
)

var (
	ErrDuplicateUsername = errors.New("username already taken")
	// ErrInvalidCredentials covers both an unknown username and a wrong
	// password; callers must not learn which.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type Service struct {
	store *store.Store
}

func NewService(st *store.Store) *Service {
	return &Service{store: st}
}

// Register creates a member account with a bcrypt-hashed credential and an
// empty borrowed set. Usernames are unique and case-sensitive.
func (s *Service) Register(ctx context.Context, username, password string) (entity.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return entity.User{}, err
	}

	var created entity.User
	err = s.store.Update(ctx, func(tx *store.Tx) error {
		if tx.UserByUsername(username) != nil {
			return ErrDuplicateUsername
		}
		u := tx.AddUser(entity.User{
			Username:      username,
			PasswordHash:  hash,
			Role:          entity.RoleMember,
			BorrowedBooks: []int64{},
			CreatedAt:     time.Now().UTC(),
		})
		created = u.Clone()
		return nil
	})
	if err != nil {
		return entity.User{}, err
	}
	return created, nil
}

// Verify checks a username/password pair and returns the user on success.
func (s *Service) Verify(ctx context.Context, username, password string) (entity.User, error) {
	u, ok := s.store.UserByUsername(username)
	if !ok || !auth.VerifyPassword(u.PasswordHash, password) {
		return entity.User{}, ErrInvalidCredentials
	}
	return u, nil
}
