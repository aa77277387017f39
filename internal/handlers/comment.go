package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goblog/apiserver/internal/services"
	"github.com/goblog/apiserver/internal/store"
)

// CommentHandler provides HTTP handlers for mutating standalone comments.
type CommentHandler struct {
	commentService *services.CommentService
	userService    *services.UserService
}

// NewCommentHandler constructs a handler with the provided services.
func NewCommentHandler(commentService *services.CommentService, userService *services.UserService) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
		userService:    userService,
	}
}

// CommentRouter registers comment mutation routes on the given router.
// Both require an access token and owner-or-admin authorization.
func CommentRouter(
	r chi.Router,
	commentService *services.CommentService,
	userService *services.UserService,
	authMiddleware func(http.Handler) http.Handler,
) {
	handler := NewCommentHandler(commentService, userService)

	r.With(authMiddleware).Put("/{commentID}", handler.UpdateComment)
	r.With(authMiddleware).Delete("/{commentID}", handler.DeleteComment)
}

func (h *CommentHandler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	id, err := parseCommentID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	comment, err := h.commentService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "comment not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch comment")
		return
	}

	actor, err := currentUser(r.Context(), h.userService)
	if err != nil {
		writeUnauthenticated(w, "unauthorized")
		return
	}
	if !services.CanModifyComment(actor, comment) {
		writeError(w, http.StatusForbidden, "not authorized to edit this comment")
		return
	}

	var req CommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}

	comment.Content = req.Content
	updated, err := h.commentService.Update(r.Context(), comment)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "comment not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update comment")
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (h *CommentHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	id, err := parseCommentID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	comment, err := h.commentService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "comment not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch comment")
		return
	}

	actor, err := currentUser(r.Context(), h.userService)
	if err != nil {
		writeUnauthenticated(w, "unauthorized")
		return
	}
	if !services.CanModifyComment(actor, comment) {
		writeError(w, http.StatusForbidden, "not authorized to delete this comment")
		return
	}

	if err := h.commentService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "comment not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete comment")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func parseCommentID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "commentID")
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, errors.New("invalid comment id")
	}
	return id, nil
}
