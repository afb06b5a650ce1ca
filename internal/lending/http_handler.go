package lending

import (
	"errors"
	"net/http"
	"strconv"

	"libraryapi/internal/httpx"
	"libraryapi/internal/policy"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

// Borrow handles POST /books/borrow/{id}. The requester is always the
// authenticated identity from the request context.
func (h *HTTPHandler) Borrow(w http.ResponseWriter, r *http.Request) {
	if !policy.Allowed(httpx.RoleFrom(r), policy.OpBorrowBook) {
		httpx.JSONError(w, r, http.StatusForbidden, "FORBIDDEN", "Not allowed", nil)
		return
	}

	id, ok := bookIDFromPath(w, r)
	if !ok {
		return
	}

	book, err := h.service.Borrow(r.Context(), id, httpx.UserIDFrom(r))
	if err != nil {
		writeLendingError(w, r, err)
		return
	}

	httpx.JSONSuccess(w, r, book)
}

// Return handles POST /books/return/{id}.
func (h *HTTPHandler) Return(w http.ResponseWriter, r *http.Request) {
	if !policy.Allowed(httpx.RoleFrom(r), policy.OpReturnBook) {
		httpx.JSONError(w, r, http.StatusForbidden, "FORBIDDEN", "Not allowed", nil)
		return
	}

	id, ok := bookIDFromPath(w, r)
	if !ok {
		return
	}

	book, err := h.service.Return(r.Context(), id, httpx.UserIDFrom(r))
	if err != nil {
		writeLendingError(w, r, err)
		return
	}

	httpx.JSONSuccess(w, r, book)
}

func writeLendingError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrBookNotFound):
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
	case errors.Is(err, ErrNotAvailable):
		httpx.JSONError(w, r, http.StatusConflict, "NOT_AVAILABLE", "Book is not available", nil)
	case errors.Is(err, ErrNotBorrowedByYou):
		httpx.JSONError(w, r, http.StatusConflict, "NOT_BORROWED_BY_YOU", "Book is not borrowed by you", nil)
	case errors.Is(err, ErrUnknownBorrower):
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNKNOWN_USER", "Account no longer exists", nil)
	default:
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
	}
}

func bookIDFromPath(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid book id", nil)
		return 0, false
	}
	return id, true
}
