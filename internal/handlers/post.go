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
	"github.com/goblog/apiserver/types"
)

const (
	defaultPostLimit = 100
	maxPostLimit     = 100
)

// PostHandler provides HTTP handlers for posts and their comments.
type PostHandler struct {
	postService    *services.PostService
	commentService *services.CommentService
	userService    *services.UserService
}

// NewPostHandler constructs a handler with the provided services.
func NewPostHandler(
	postService *services.PostService,
	commentService *services.CommentService,
	userService *services.UserService,
) *PostHandler {
	return &PostHandler{
		postService:    postService,
		commentService: commentService,
		userService:    userService,
	}
}

// PostRouter registers post routes on the given router. Comment listing
// is public; everything else requires an access token.
func PostRouter(
	r chi.Router,
	postService *services.PostService,
	commentService *services.CommentService,
	userService *services.UserService,
	authMiddleware func(http.Handler) http.Handler,
) {
	handler := NewPostHandler(postService, commentService, userService)

	r.With(authMiddleware).Get("/", handler.ListPosts)
	r.With(authMiddleware).Post("/", handler.CreatePost)
	r.Route("/{postID}", func(r chi.Router) {
		r.With(authMiddleware).Get("/", handler.GetPost)
		r.With(authMiddleware).Put("/", handler.UpdatePost)
		r.With(authMiddleware).Delete("/", handler.DeletePost)
		r.With(authMiddleware).Post("/comments/", handler.CreateComment)
		r.Get("/comments/", handler.ListComments)
	})
}

func (h *PostHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	offset, limit, err := parseListRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	posts, err := h.postService.List(r.Context(), offset, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list posts")
		return
	}

	writeJSON(w, http.StatusOK, posts)
}

func (h *PostHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	id, err := parsePostID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	post, err := h.postService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "post not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch post")
		return
	}

	writeJSON(w, http.StatusOK, post)
}

func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	req, err := decodePostRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.postService.Create(r.Context(), types.Post{
		Title:    req.Title,
		Category: req.Category,
		Content:  req.Content,
		Image:    req.Image,
		OwnerID:  actor.ID,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create post")
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (h *PostHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	id, err := parsePostID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Existence is decided before ownership, so a non-owner sees 404
	// only when the post truly does not exist.
	post, err := h.postService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "post not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch post")
		return
	}

	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	if !services.CanModifyPost(actor, post) {
		writeError(w, http.StatusForbidden, "not authorized to update this post")
		return
	}

	req, err := decodePostRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	post.Title = req.Title
	post.Category = req.Category
	post.Content = req.Content
	post.Image = req.Image

	updated, err := h.postService.Update(r.Context(), post)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "post not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update post")
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, err := parsePostID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	post, err := h.postService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "post not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch post")
		return
	}

	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	if !services.CanModifyPost(actor, post) {
		writeError(w, http.StatusForbidden, "not authorized to delete this post")
		return
	}

	if err := h.postService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "post not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete post")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *PostHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	postID, err := parsePostID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.postService.Get(r.Context(), postID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "post not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch post")
		return
	}

	actor, ok := h.actor(w, r)
	if !ok {
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

	created, err := h.commentService.Create(r.Context(), types.Comment{
		Content: req.Content,
		PostID:  postID,
		OwnerID: actor.ID,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create comment")
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (h *PostHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	postID, err := parsePostID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	comments, err := h.commentService.ListByPost(r.Context(), postID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list comments")
		return
	}

	writeJSON(w, http.StatusOK, comments)
}

// PostRequest is the JSON payload for creating or updating a post.
type PostRequest struct {
	Title    string  `json:"title"`
	Category string  `json:"category"`
	Content  string  `json:"content"`
	Image    *string `json:"image"`
}

// CommentRequest is the JSON payload for creating or updating a comment.
type CommentRequest struct {
	Content string `json:"content"`
}

func (h *PostHandler) actor(w http.ResponseWriter, r *http.Request) (types.User, bool) {
	actor, err := currentUser(r.Context(), h.userService)
	if err != nil {
		writeUnauthenticated(w, "unauthorized")
		return types.User{}, false
	}
	return actor, true
}

func decodePostRequest(r *http.Request) (PostRequest, error) {
	var req PostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return PostRequest{}, errors.New("invalid request")
	}

	req.Title = strings.TrimSpace(req.Title)
	req.Category = strings.TrimSpace(req.Category)
	if req.Title == "" {
		return PostRequest{}, errors.New("title is required")
	}
	if req.Category == "" {
		return PostRequest{}, errors.New("category is required")
	}
	if strings.TrimSpace(req.Content) == "" {
		return PostRequest{}, errors.New("content is required")
	}
	return req, nil
}

func parsePostID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "postID")
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, errors.New("invalid post id")
	}
	return id, nil
}

func parseListRange(r *http.Request) (offset, limit int, err error) {
	limit = defaultPostLimit

	if raw := strings.TrimSpace(r.URL.Query().Get("skip")); raw != "" {
		offset, err = strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return 0, 0, errors.New("invalid skip")
		}
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return 0, 0, errors.New("invalid limit")
		}
	}

	if limit > maxPostLimit {
		limit = maxPostLimit
	}

	return offset, limit, nil
}
