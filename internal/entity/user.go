package entity

import "time"

const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

type User struct {
	ID            int64     `json:"id"`
	Username      string    `json:"username"`
	PasswordHash  string    `json:"-"`
	Role          string    `json:"role"` // member, admin
	BorrowedBooks []int64   `json:"borrowedBooks"`
	CreatedAt     time.Time `json:"created_at"`
}

// HasBorrowed reports whether the user currently holds the book.
func (u User) HasBorrowed(bookID int64) bool {
	for _, id := range u.BorrowedBooks {
		if id == bookID {
			return true
		}
	}
	return false
}

// Clone returns a copy sharing no mutable state with the receiver.
func (u User) Clone() User {
	c := u
	if u.BorrowedBooks != nil {
		c.BorrowedBooks = append([]int64(nil), u.BorrowedBooks...)
	}
	return c
}

// PublicUser is the projection of a User safe to return to clients.
type PublicUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Username: u.Username, Role: u.Role}
}
