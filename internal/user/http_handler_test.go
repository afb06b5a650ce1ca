package user_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"libraryapi/internal/auth"
	"libraryapi/internal/testutil"
	"libraryapi/internal/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserHandler(t *testing.T) *user.HTTPHandler {
	st, _ := testutil.NewStore(t, nil, nil)
	return user.NewHTTPHandler(user.NewService(st), testutil.JWTSecret)
}

func TestRegisterUser(t *testing.T) {
	h := newUserHandler(t)

	w := httptest.NewRecorder()
	h.RegisterUser(w, testutil.NewRequest(http.MethodPost, "/register", map[string]string{
		"username": "alice",
		"password": "open sesame 123",
	}))

	require.Equal(t, http.StatusCreated, w.Code)
	body := testutil.DecodeBody(t, w)
	assert.Equal(t, true, body["success"])

	data := body["data"].(map[string]interface{})
	u := data["user"].(map[string]interface{})
	assert.Equal(t, "alice", u["username"])
	assert.Equal(t, "member", u["role"])
	// The response must never leak credential material.
	assert.NotContains(t, w.Body.String(), "password")
}

func TestRegisterUser_Validation(t *testing.T) {
	h := newUserHandler(t)

	cases := map[string]map[string]string{
		"missing username": {"password": "open sesame 123"},
		"short username":   {"username": "al", "password": "open sesame 123"},
		"short password":   {"username": "alice", "password": "short"},
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.RegisterUser(w, testutil.NewRequest(http.MethodPost, "/register", payload))

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "VALIDATION_ERROR", testutil.ErrorCode(t, w))
		})
	}
}

func TestRegisterUser_Duplicate(t *testing.T) {
	h := newUserHandler(t)
	payload := map[string]string{"username": "alice", "password": "open sesame 123"}

	w := httptest.NewRecorder()
	h.RegisterUser(w, testutil.NewRequest(http.MethodPost, "/register", payload))
	require.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	h.RegisterUser(w, testutil.NewRequest(http.MethodPost, "/register", payload))

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "USERNAME_TAKEN", testutil.ErrorCode(t, w))
}

func TestLoginUser(t *testing.T) {
	h := newUserHandler(t)

	w := httptest.NewRecorder()
	h.RegisterUser(w, testutil.NewRequest(http.MethodPost, "/register", map[string]string{
		"username": "alice",
		"password": "open sesame 123",
	}))
	require.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	h.LoginUser(w, testutil.NewRequest(http.MethodPost, "/login", map[string]string{
		"username": "alice",
		"password": "open sesame 123",
	}))

	require.Equal(t, http.StatusOK, w.Code)
	data := testutil.DecodeBody(t, w)["data"].(map[string]interface{})

	token, _ := data["token"].(string)
	require.NotEmpty(t, token)

	// The issued token must round-trip through the verifier.
	claims, err := auth.ParseToken(testutil.JWTSecret, token)
	require.NoError(t, err)
	assert.Equal(t, int64(1), claims.UserID)

	u := data["user"].(map[string]interface{})
	assert.Equal(t, "alice", u["username"])
}

func TestLoginUser_BadCredentials(t *testing.T) {
	h := newUserHandler(t)

	w := httptest.NewRecorder()
	h.RegisterUser(w, testutil.NewRequest(http.MethodPost, "/register", map[string]string{
		"username": "alice",
		"password": "open sesame 123",
	}))
	require.Equal(t, http.StatusCreated, w.Code)

	cases := map[string]map[string]string{
		"wrong password":   {"username": "alice", "password": "wrong wrong wrong"},
		"unknown username": {"username": "nobody", "password": "open sesame 123"},
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.LoginUser(w, testutil.NewRequest(http.MethodPost, "/login", payload))

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, "INVALID_CREDENTIALS", testutil.ErrorCode(t, w))
		})
	}
}

func TestRegisterUser_MalformedBody(t *testing.T) {
	h := newUserHandler(t)

	r := httptest.NewRequest(http.MethodPost, "/register", nil)
	w := httptest.NewRecorder()
	h.RegisterUser(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "BAD_REQUEST", testutil.ErrorCode(t, w))
}
