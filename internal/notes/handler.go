package notes

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
)

type Handler struct {
	svc *Service
	log *slog.Logger
}

func NewHandler(svc *Service, log *slog.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// CreateNote handles POST /api/notes
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var input CreateNoteInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.writeFailure(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	note, err := h.svc.Create(r.Context(), input)
	if err != nil {
		h.writeError(w, "create note", err)
		return
	}

	h.writeSuccess(w, http.StatusCreated, Envelope{
		Message: fmt.Sprintf("Note created successfully by %s!", note.Author),
		Data:    note,
	})
}

// ListNotes handles GET /api/notes
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	page, err := h.queryInt(r, "page", 1)
	if err != nil {
		h.writeError(w, "list notes", err)
		return
	}
	limit, err := h.queryInt(r, "limit", DefaultPageLimit)
	if err != nil {
		h.writeError(w, "list notes", err)
		return
	}

	items, pageInfo, err := h.svc.List(r.Context(), ListQuery{
		Page:   page,
		Limit:  limit,
		Author: r.URL.Query().Get("author"),
	})
	if err != nil {
		h.writeError(w, "list notes", err)
		return
	}

	h.writeSuccess(w, http.StatusOK, Envelope{
		Message:    fmt.Sprintf("Retrieved %d notes successfully", len(items)),
		Data:       items,
		Pagination: pageInfo,
	})
}

// TopLikedNotes handles GET /api/notes/top-liked
func (h *Handler) TopLikedNotes(w http.ResponseWriter, r *http.Request) {
	limit, err := h.queryInt(r, "limit", DefaultTopLimit)
	if err != nil {
		h.writeError(w, "top liked notes", err)
		return
	}

	items, err := h.svc.TopLiked(r.Context(), limit)
	if err != nil {
		h.writeError(w, "top liked notes", err)
		return
	}

	h.writeSuccess(w, http.StatusOK, Envelope{
		Message: fmt.Sprintf("Top %d most liked notes", len(items)),
		Data:    items,
	})
}

// GetNote handles GET /api/notes/{id}
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	note, err := h.svc.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, "get note", err)
		return
	}

	h.writeSuccess(w, http.StatusOK, Envelope{
		Message: "Note retrieved successfully",
		Data:    note,
	})
}

// LikeNote handles PATCH /api/notes/{id}/like
func (h *Handler) LikeNote(w http.ResponseWriter, r *http.Request) {
	note, err := h.svc.Like(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, "like note", err)
		return
	}

	h.writeSuccess(w, http.StatusOK, Envelope{
		Message: fmt.Sprintf("Note liked! Total likes: %d", note.Likes),
		Data:    note,
	})
}

// UnlikeNote handles PATCH /api/notes/{id}/unlike
func (h *Handler) UnlikeNote(w http.ResponseWriter, r *http.Request) {
	note, err := h.svc.Unlike(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, "unlike note", err)
		return
	}

	h.writeSuccess(w, http.StatusOK, Envelope{
		Message: fmt.Sprintf("Note unliked! Total likes: %d", note.Likes),
		Data:    note,
	})
}

// DeleteNote handles DELETE /api/notes/{id}
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	note, err := h.svc.Delete(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, "delete note", err)
		return
	}

	h.writeSuccess(w, http.StatusOK, Envelope{
		Message: fmt.Sprintf("Note by %s deleted successfully!", note.Author),
		Data:    note,
	})
}

// --- Helper methods ---

// queryInt parses an integer query parameter. Absent means the default;
// present but non-numeric or below 1 is rejected rather than clamped.
func (h *Handler) queryInt(r *http.Request, name string, defaultVal int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return defaultVal, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 0, &ValidationError{
			Field:   name,
			Message: fmt.Sprintf("%s must be a positive integer", name),
		}
	}
	return v, nil
}

func (h *Handler) writeSuccess(w http.ResponseWriter, status int, env Envelope) {
	env.Success = true
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(env)
}

func (h *Handler) writeFailure(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(Envelope{Success: false, Message: message})
}

// writeError maps a domain error to its status and envelope. Anything
// outside the taxonomy is logged and reported as a generic 500.
func (h *Handler) writeError(w http.ResponseWriter, op string, err error) {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		h.writeFailure(w, http.StatusBadRequest, ve.Message)
	case errors.Is(err, ErrInvalidID):
		h.writeFailure(w, http.StatusBadRequest, "Invalid note ID format")
	case errors.Is(err, ErrNoteNotFound):
		h.writeFailure(w, http.StatusNotFound, "Note not found")
	case errors.Is(err, ErrStoreUnavailable):
		h.log.Error("store unavailable", "op", op, "error", err)
		h.writeFailure(w, http.StatusInternalServerError, "Store unavailable, please try again later")
	default:
		h.log.Error("unexpected failure", "op", op, "error", err)
		h.writeFailure(w, http.StatusInternalServerError, "Internal server error")
	}
}
