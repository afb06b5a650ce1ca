package catalog

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"libraryapi/internal/httpx"
	"libraryapi/internal/policy"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

// List handles GET /books. Browsing is open to anonymous callers.
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	httpx.JSONSuccess(w, r, h.service.List(r.Context()))
}

type createReq struct {
	Title  string `json:"title" validate:"required,max=200"`
	Author string `json:"author" validate:"required,max=200"`
	Genre  string `json:"genre" validate:"required,max=100"`
}

// Create handles POST /books (admin only).
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !policy.Allowed(httpx.RoleFrom(r), policy.OpCreateBook) {
		httpx.JSONError(w, r, http.StatusForbidden, "FORBIDDEN", "Admin access required", nil)
		return
	}

	var req createReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Author = strings.TrimSpace(req.Author)
	req.Genre = strings.TrimSpace(req.Genre)

	if details := httpx.ValidateStruct(req); len(details) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", details)
		return
	}

	book, err := h.service.Create(r.Context(), req.Title, req.Author, req.Genre)
	if err != nil {
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	httpx.JSONSuccessCreated(w, r, book)
}

type updateReq struct {
	Title  string `json:"title" validate:"max=200"`
	Author string `json:"author" validate:"max=200"`
	Genre  string `json:"genre" validate:"max=100"`
}

// Update handles PUT /books/{id} (admin only). Empty fields keep their
// current values; availability and borrower are not reachable here.
func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	if !policy.Allowed(httpx.RoleFrom(r), policy.OpUpdateBook) {
		httpx.JSONError(w, r, http.StatusForbidden, "FORBIDDEN", "Admin access required", nil)
		return
	}

	id, ok := bookIDFromPath(w, r)
	if !ok {
		return
	}

	var req updateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return
	}

	if details := httpx.ValidateStruct(req); len(details) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", details)
		return
	}

	book, err := h.service.Update(r.Context(), id, UpdateParams{
		Title:  strings.TrimSpace(req.Title),
		Author: strings.TrimSpace(req.Author),
		Genre:  strings.TrimSpace(req.Genre),
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
			return
		}
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	httpx.JSONSuccess(w, r, book)
}

// Delete handles DELETE /books/{id} (admin only).
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !policy.Allowed(httpx.RoleFrom(r), policy.OpDeleteBook) {
		httpx.JSONError(w, r, http.StatusForbidden, "FORBIDDEN", "Admin access required", nil)
		return
	}

	id, ok := bookIDFromPath(w, r)
	if !ok {
		return
	}

	if err := h.service.Remove(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
			return
		}
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	httpx.JSONSuccess(w, r, map[string]any{"message": "Book deleted successfully"})
}

func bookIDFromPath(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid book id", nil)
		return 0, false
	}
	return id, true
}
