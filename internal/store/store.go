package store

import (
	"context"
	"fmt"
	"sync"

	"libraryapi/internal/entity"
)

// Store owns the in-memory user and book collections. Reads return copies;
// all mutations go through Update, which serializes them under one lock and
// persists the touched collections before the new state becomes visible.
type Store struct {
	mu        sync.Mutex
	persister Persister

	users []entity.User
	books []entity.Book

	nextUserID int64
	nextBookID int64
}

// Open loads both collections from the persister and returns a ready store.
// The book records are the source of truth for lending state: each user's
// borrowed set is rebuilt from book.BorrowedBy, so durable state where only
// one side of a borrow landed (a save failed or the process died between the
// two collection writes) heals here instead of resurrecting a half-applied
// mutation.
func Open(ctx context.Context, p Persister) (*Store, error) {
	users, err := p.LoadUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	books, err := p.LoadBooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("load books: %w", err)
	}

	s := &Store{
		persister:  p,
		users:      rebuildBorrowedSets(users, books),
		books:      books,
		nextUserID: 1,
		nextBookID: 1,
	}
	for _, u := range users {
		if u.ID >= s.nextUserID {
			s.nextUserID = u.ID + 1
		}
	}
	for _, b := range books {
		if b.ID >= s.nextBookID {
			s.nextBookID = b.ID + 1
		}
	}
	return s, nil
}

// Books returns a snapshot of the catalog in insertion order.
func (s *Store) Books() []entity.Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.Book(nil), s.books...)
}

// UserByID returns a copy of the user with the given id.
func (s *Store) UserByID(id int64) (entity.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			return u.Clone(), true
		}
	}
	return entity.User{}, false
}

// UserByUsername returns a copy of the user with the given username.
// Usernames are case-sensitive.
func (s *Store) UserByUsername(username string) (entity.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			return u.Clone(), true
		}
	}
	return entity.User{}, false
}

// Update runs fn against a private copy of the current state, then persists
// every collection fn touched. The copy replaces the live state only after
// all saves confirm, so a failed save (or a failed fn) leaves both the
// in-memory model and its callers' view untouched. Mutations are serialized:
// no two Update calls interleave.
func (s *Store) Update(ctx context.Context, fn func(tx *Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &Tx{
		users:      cloneUsers(s.users),
		books:      append([]entity.Book(nil), s.books...),
		nextUserID: s.nextUserID,
		nextBookID: s.nextBookID,
	}

	if err := fn(tx); err != nil {
		return err
	}

	if tx.usersDirty {
		if err := s.persister.SaveUsers(ctx, tx.users); err != nil {
			return fmt.Errorf("save users: %w", err)
		}
	}
	if tx.booksDirty {
		if err := s.persister.SaveBooks(ctx, tx.books); err != nil {
			return fmt.Errorf("save books: %w", err)
		}
	}

	s.users = tx.users
	s.books = tx.books
	s.nextUserID = tx.nextUserID
	s.nextBookID = tx.nextBookID
	return nil
}

// rebuildBorrowedSets derives every user's borrowed set from the book
// records, in catalog order. Entries pointing at books that do not exist,
// are available, or are held by someone else are dropped; books naming a
// user as borrower appear in that user's set even if the stored set
// missed them.
func rebuildBorrowedSets(users []entity.User, books []entity.Book) []entity.User {
	held := make(map[int64][]int64)
	for _, b := range books {
		if !b.Available && b.BorrowedBy != 0 {
			held[b.BorrowedBy] = append(held[b.BorrowedBy], b.ID)
		}
	}

	out := make([]entity.User, len(users))
	for i, u := range users {
		c := u.Clone()
		c.BorrowedBooks = held[u.ID]
		if c.BorrowedBooks == nil {
			c.BorrowedBooks = []int64{}
		}
		out[i] = c
	}
	return out
}

func cloneUsers(users []entity.User) []entity.User {
	out := make([]entity.User, len(users))
	for i, u := range users {
		out[i] = u.Clone()
	}
	return out
}

// Tx is the mutable view handed to Update callbacks. Pointers returned by the
// lookup helpers point into the transaction's private copy; callers that
// mutate through them must mark the collection dirty.
type Tx struct {
	users []entity.User
	books []entity.Book

	usersDirty bool
	booksDirty bool

	nextUserID int64
	nextBookID int64
}

func (tx *Tx) User(id int64) *entity.User {
	for i := range tx.users {
		if tx.users[i].ID == id {
			return &tx.users[i]
		}
	}
	return nil
}

func (tx *Tx) UserByUsername(username string) *entity.User {
	for i := range tx.users {
		if tx.users[i].Username == username {
			return &tx.users[i]
		}
	}
	return nil
}

func (tx *Tx) Book(id int64) *entity.Book {
	for i := range tx.books {
		if tx.books[i].ID == id {
			return &tx.books[i]
		}
	}
	return nil
}

// AddUser assigns the next user id and appends the record.
func (tx *Tx) AddUser(u entity.User) *entity.User {
	u.ID = tx.nextUserID
	tx.nextUserID++
	tx.users = append(tx.users, u)
	tx.usersDirty = true
	return &tx.users[len(tx.users)-1]
}

// AddBook assigns the next book id and appends the record.
func (tx *Tx) AddBook(b entity.Book) *entity.Book {
	b.ID = tx.nextBookID
	tx.nextBookID++
	tx.books = append(tx.books, b)
	tx.booksDirty = true
	return &tx.books[len(tx.books)-1]
}

// RemoveBook deletes the book, preserving insertion order of the rest.
func (tx *Tx) RemoveBook(id int64) bool {
	for i := range tx.books {
		if tx.books[i].ID == id {
			tx.books = append(tx.books[:i], tx.books[i+1:]...)
			tx.booksDirty = true
			return true
		}
	}
	return false
}

// TouchUsers marks the user collection as modified in place.
func (tx *Tx) TouchUsers() { tx.usersDirty = true }

// TouchBooks marks the book collection as modified in place.
func (tx *Tx) TouchBooks() { tx.booksDirty = true }
