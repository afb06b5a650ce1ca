package store

import (
	"time"

	"libraryapi/internal/entity"
)

// userRecord is the persisted shape of a user. It exists because the entity
// hides the password hash from JSON responses, while the store must keep it.
// Field names match the reference data files.
type userRecord struct {
	ID            int64     `json:"id"`
	Username      string    `json:"username"`
	Password      string    `json:"password"`
	Role          string    `json:"role"`
	BorrowedBooks []int64   `json:"borrowedBooks"`
	CreatedAt     time.Time `json:"created_at"`
}

func toUserRecords(users []entity.User) []userRecord {
	out := make([]userRecord, len(users))
	for i, u := range users {
		out[i] = userRecord{
			ID:            u.ID,
			Username:      u.Username,
			Password:      u.PasswordHash,
			Role:          u.Role,
			BorrowedBooks: u.BorrowedBooks,
			CreatedAt:     u.CreatedAt,
		}
	}
	return out
}

func fromUserRecords(records []userRecord) []entity.User {
	out := make([]entity.User, len(records))
	for i, r := range records {
		out[i] = entity.User{
			ID:            r.ID,
			Username:      r.Username,
			PasswordHash:  r.Password,
			Role:          r.Role,
			BorrowedBooks: r.BorrowedBooks,
			CreatedAt:     r.CreatedAt,
		}
	}
	return out
}
