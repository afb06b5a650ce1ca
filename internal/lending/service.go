// Package lending holds the borrow/return state machine. Each book moves
// between two states, Available and Borrowed(by user); both sides of a
// transition (the book's availability/borrower and the user's borrowed set)
// change inside one store transaction, so no interleaving or failed save can
// leave one side updated without the other.
package lending

import (
	"context"
	"errors"
	"time"

	"libraryapi/internal/entity"
	"libraryapi/internal/store"
)

var (
	ErrBookNotFound     = errors.New("book not found")
	ErrNotAvailable     = errors.New("book not available")
	ErrNotBorrowedByYou = errors.New("book not borrowed by requester")
	// ErrUnknownBorrower means the token-bound requester has no user record;
	// the engine cannot update a borrowed set that does not exist.
	ErrUnknownBorrower = errors.New("requester record not found")
)

type Service struct {
	store *store.Store
}

func NewService(st *store.Store) *Service {
	return &Service{store: st}
}

// Borrow transitions Available -> Borrowed(requester) and appends the book
// to the requester's borrowed set.
func (s *Service) Borrow(ctx context.Context, bookID, requesterID int64) (entity.Book, error) {
	var out entity.Book
	err := s.store.Update(ctx, func(tx *store.Tx) error {
		b := tx.Book(bookID)
		if b == nil {
			return ErrBookNotFound
		}
		if !b.Available {
			return ErrNotAvailable
		}
		u := tx.User(requesterID)
		if u == nil {
			return ErrUnknownBorrower
		}

		b.Available = false
		b.BorrowedBy = requesterID
		b.UpdatedAt = time.Now().UTC()
		u.BorrowedBooks = append(u.BorrowedBooks, bookID)
		tx.TouchBooks()
		tx.TouchUsers()

		out = *b
		return nil
	})
	if err != nil {
		return entity.Book{}, err
	}
	return out, nil
}

// Return transitions Borrowed(requester) -> Available and removes the book
// from the requester's borrowed set. A book borrowed by someone else, or not
// borrowed at all, fails the same way: the requester does not hold it.
func (s *Service) Return(ctx context.Context, bookID, requesterID int64) (entity.Book, error) {
	var out entity.Book
	err := s.store.Update(ctx, func(tx *store.Tx) error {
		b := tx.Book(bookID)
		if b == nil {
			return ErrBookNotFound
		}
		if b.BorrowedBy != requesterID {
			return ErrNotBorrowedByYou
		}
		u := tx.User(requesterID)
		if u == nil {
			return ErrUnknownBorrower
		}

		b.Available = true
		b.BorrowedBy = 0
		b.UpdatedAt = time.Now().UTC()
		u.BorrowedBooks = removeID(u.BorrowedBooks, bookID)
		tx.TouchBooks()
		tx.TouchUsers()

		out = *b
		return nil
	})
	if err != nil {
		return entity.Book{}, err
	}
	return out, nil
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
