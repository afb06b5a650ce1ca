package entity

import "time"

// Book is a catalog record. BorrowedBy is 0 while the book is available;
// Available and BorrowedBy change together, only through the lending engine.
type Book struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Author     string    `json:"author"`
	Genre      string    `json:"genre"`
	Available  bool      `json:"available"`
	BorrowedBy int64     `json:"borrowedBy,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
