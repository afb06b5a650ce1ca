package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"libraryapi/internal/httpx"
	"libraryapi/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	handler := httpx.RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = httpx.RequestIDFrom(r)
	}))

	t.Run("mints an id when the caller sends none", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, testutil.NewRequest(http.MethodGet, "/books", nil))

		require.NotEmpty(t, seen)
		assert.Equal(t, seen, w.Header().Get("X-Request-Id"))
	})

	t.Run("honors a caller-supplied id", func(t *testing.T) {
		r := testutil.NewRequest(http.MethodGet, "/books", nil)
		r.Header.Set("X-Request-Id", "upstream-7")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)

		assert.Equal(t, "upstream-7", seen)
		assert.Equal(t, "upstream-7", w.Header().Get("X-Request-Id"))
	})
}
