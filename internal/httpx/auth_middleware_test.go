package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"libraryapi/internal/auth"
	"libraryapi/internal/entity"
	"libraryapi/internal/httpx"
	"libraryapi/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticResolver map[int64]entity.User

func (r staticResolver) UserByID(id int64) (entity.User, bool) {
	u, ok := r[id]
	return u, ok
}

// echoIdentity records what the middleware put on the request context.
type echoIdentity struct {
	called bool
	userID int64
	role   string
}

func (e *echoIdentity) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	e.called = true
	e.userID = httpx.UserIDFrom(r)
	e.role = httpx.RoleFrom(r)
	w.WriteHeader(http.StatusOK)
}

func newAuthFixture(users ...entity.User) (http.Handler, *echoIdentity) {
	resolver := staticResolver{}
	for _, u := range users {
		resolver[u.ID] = u
	}
	next := &echoIdentity{}
	return httpx.AuthMiddleware(testutil.JWTSecret, resolver)(next), next
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	handler, next := newAuthFixture(testutil.Admin(1, "root"))

	r := testutil.NewRequestWithAuth(http.MethodPost, "/books", nil, testutil.Token(t, 1))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, next.called)
	assert.Equal(t, int64(1), next.userID)
	// The role comes from the live record, not from the token.
	assert.Equal(t, entity.RoleAdmin, next.role)
}

func TestAuthMiddleware_BareTokenWithoutBearerPrefix(t *testing.T) {
	handler, next := newAuthFixture(testutil.Member(1, "alice"))

	r := testutil.NewRequest(http.MethodPost, "/books/borrow/1", nil)
	r.Header.Set("Authorization", testutil.Token(t, 1))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, next.called)
}

func TestAuthMiddleware_Failures(t *testing.T) {
	cases := []struct {
		name     string
		token    string
		wantCode string
	}{
		{"missing token", "", "MISSING_TOKEN"},
		{"garbage token", "not-a-token", "INVALID_TOKEN"},
		{"expired token", "", "TOKEN_EXPIRED"},
		{"token for deleted account", "", "UNKNOWN_USER"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler, next := newAuthFixture(testutil.Member(1, "alice"))

			token := tc.token
			switch tc.wantCode {
			case "TOKEN_EXPIRED":
				token = testutil.ExpiredToken(t, 1)
			case "UNKNOWN_USER":
				token = testutil.Token(t, 42)
			}

			r := testutil.NewRequestWithAuth(http.MethodPost, "/books", nil, token)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, r)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, tc.wantCode, testutil.ErrorCode(t, w))
			assert.False(t, next.called)
		})
	}
}

func TestAuthMiddleware_WrongSignature(t *testing.T) {
	handler, next := newAuthFixture(testutil.Member(1, "alice"))

	// A token signed with a different secret is invalid, not expired.
	forged, _, err := auth.GenerateToken("another-secret", 1)
	require.NoError(t, err)

	r := testutil.NewRequestWithAuth(http.MethodPost, "/books", nil, forged)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "INVALID_TOKEN", testutil.ErrorCode(t, w))
	assert.False(t, next.called)
}
