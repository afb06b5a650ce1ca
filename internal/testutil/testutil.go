// Package testutil holds fixtures and helpers shared by package tests.
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"libraryapi/internal/auth"
	"libraryapi/internal/entity"
	"libraryapi/internal/store"

	"github.com/golang-jwt/jwt/v5"
)

const JWTSecret = "test-secret-key"

// MemoryPersister is an in-memory Persister for tests. It records save
// counts so tests can assert which collections an operation persisted.
type MemoryPersister struct {
	mu             sync.Mutex
	Users          []entity.User
	Books          []entity.Book
	SaveUsersCalls int
	SaveBooksCalls int
}

func (m *MemoryPersister) LoadUsers(_ context.Context) ([]entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]entity.User(nil), m.Users...), nil
}

func (m *MemoryPersister) SaveUsers(_ context.Context, users []entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Users = append([]entity.User(nil), users...)
	m.SaveUsersCalls++
	return nil
}

func (m *MemoryPersister) LoadBooks(_ context.Context) ([]entity.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]entity.Book(nil), m.Books...), nil
}

func (m *MemoryPersister) SaveBooks(_ context.Context, books []entity.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Books = append([]entity.Book(nil), books...)
	m.SaveBooksCalls++
	return nil
}

// NewStore opens a store over a MemoryPersister seeded with the given
// collections.
func NewStore(t *testing.T, users []entity.User, books []entity.Book) (*store.Store, *MemoryPersister) {
	t.Helper()
	p := &MemoryPersister{Users: users, Books: books}
	st, err := store.Open(context.Background(), p)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return st, p
}

// Member returns a member fixture holding no books.
func Member(id int64, username string) entity.User {
	return entity.User{
		ID:            id,
		Username:      username,
		PasswordHash:  "not-a-real-hash",
		Role:          entity.RoleMember,
		BorrowedBooks: []int64{},
		CreatedAt:     time.Now().UTC(),
	}
}

// Admin returns an admin fixture.
func Admin(id int64, username string) entity.User {
	u := Member(id, username)
	u.Role = entity.RoleAdmin
	return u
}

// AvailableBook returns an available book fixture.
func AvailableBook(id int64, title string) entity.Book {
	now := time.Now().UTC()
	return entity.Book{
		ID:        id,
		Title:     title,
		Author:    "Test Author",
		Genre:     "Fiction",
		Available: true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// BorrowedBook returns a book fixture held by the given user.
func BorrowedBook(id int64, title string, borrowerID int64) entity.Book {
	b := AvailableBook(id, title)
	b.Available = false
	b.BorrowedBy = borrowerID
	return b
}

// Token issues a valid session token for the user id.
func Token(t *testing.T, userID int64) string {
	t.Helper()
	token, _, err := auth.GenerateToken(JWTSecret, userID)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return token
}

// ExpiredToken forges a token whose expiry is already in the past.
func ExpiredToken(t *testing.T, userID int64) string {
	t.Helper()
	c := auth.Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(JWTSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

// NewRequest builds a JSON request for handler tests.
func NewRequest(method, path string, body interface{}) *http.Request {
	var r *http.Request
	if body != nil {
		payload, _ := json.Marshal(body)
		r = httptest.NewRequest(method, path, bytes.NewReader(payload))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	return r
}

// NewRequestWithAuth builds a JSON request carrying a session token.
func NewRequestWithAuth(method, path string, body interface{}, token string) *http.Request {
	r := NewRequest(method, path, body)
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	return r
}

// DecodeBody decodes a recorded JSON response body into a map.
func DecodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
	return body
}

// ErrorCode extracts the stable error code from a recorded error response.
func ErrorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	body := DecodeBody(t, w)
	errBody, ok := body["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("response has no error body: %s", w.Body.String())
	}
	code, _ := errBody["code"].(string)
	return code
}
