package catalog

import (
	"context"
	"errors"
	"time"

	"libraryapi/internal/entity"
	"libraryapi/internal/store"
)

var ErrNotFound = errors.New("book not found")

// UpdateParams carries the metadata fields an admin may change. An empty
// field leaves the current value in place. Availability and borrower are
// deliberately absent: only the lending engine moves those.
type UpdateParams struct {
	Title  string
	Author string
	Genre  string
}

type Service struct {
	store *store.Store
}

func NewService(st *store.Store) *Service {
	return &Service{store: st}
}

// List returns a snapshot of the catalog in insertion order.
func (s *Service) List(ctx context.Context) []entity.Book {
	return s.store.Books()
}

// Create adds an available book with a fresh id and persists the catalog.
func (s *Service) Create(ctx context.Context, title, author, genre string) (entity.Book, error) {
	var created entity.Book
	err := s.store.Update(ctx, func(tx *store.Tx) error {
		now := time.Now().UTC()
		b := tx.AddBook(entity.Book{
			Title:     title,
			Author:    author,
			Genre:     genre,
			Available: true,
			CreatedAt: now,
			UpdatedAt: now,
		})
		created = *b
		return nil
	})
	if err != nil {
		return entity.Book{}, err
	}
	return created, nil
}

// Update applies a partial metadata edit.
func (s *Service) Update(ctx context.Context, id int64, p UpdateParams) (entity.Book, error) {
	var updated entity.Book
	err := s.store.Update(ctx, func(tx *store.Tx) error {
		b := tx.Book(id)
		if b == nil {
			return ErrNotFound
		}
		if p.Title != "" {
			b.Title = p.Title
		}
		if p.Author != "" {
			b.Author = p.Author
		}
		if p.Genre != "" {
			b.Genre = p.Genre
		}
		b.UpdatedAt = time.Now().UTC()
		tx.TouchBooks()
		updated = *b
		return nil
	})
	if err != nil {
		return entity.Book{}, err
	}
	return updated, nil
}

// Remove deletes the book. Deleting a borrowed book is permitted; the
// borrower's borrowed set drops the id in the same transaction so no record
// is left pointing at a book that no longer exists.
func (s *Service) Remove(ctx context.Context, id int64) error {
	return s.store.Update(ctx, func(tx *store.Tx) error {
		b := tx.Book(id)
		if b == nil {
			return ErrNotFound
		}
		if b.BorrowedBy != 0 {
			if borrower := tx.User(b.BorrowedBy); borrower != nil {
				borrower.BorrowedBooks = removeID(borrower.BorrowedBooks, id)
				tx.TouchUsers()
			}
		}
		tx.RemoveBook(id)
		return nil
	})
}

func removeID(ids []int64, id int64) []int64 {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
