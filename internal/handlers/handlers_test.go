package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goblog/apiserver/config"
	"github.com/goblog/apiserver/internal/services"
	"github.com/goblog/apiserver/internal/store"
	"github.com/goblog/apiserver/types"
)

const testSecret = "test-secret-key-at-least-32-chars-long"

// memDB backs the fake repositories. Post deletion cascades to
// comments, mirroring the FK constraint in the real schema.
type memDB struct {
	mu          sync.Mutex
	users       map[int]types.User
	posts       map[int]types.Post
	comments    map[int]types.Comment
	nextUser    int
	nextPost    int
	nextComment int
}

func newMemDB() *memDB {
	return &memDB{
		users:       make(map[int]types.User),
		posts:       make(map[int]types.Post),
		comments:    make(map[int]types.Comment),
		nextUser:    1,
		nextPost:    1,
		nextComment: 1,
	}
}

type memUserRepo struct{ db *memDB }

func (r *memUserRepo) GetByID(ctx context.Context, id int) (types.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	user, ok := r.db.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (r *memUserRepo) GetByUsername(ctx context.Context, username string) (types.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, user := range r.db.users {
		if user.Username == username {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *memUserRepo) Create(ctx context.Context, user types.User) (types.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, existing := range r.db.users {
		if existing.Username == user.Username {
			return types.User{}, store.ErrConflict
		}
	}
	user.ID = r.db.nextUser
	r.db.nextUser++
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.db.users[user.ID] = user
	return user, nil
}

func (r *memUserRepo) Update(ctx context.Context, user types.User) (types.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.users[user.ID]; !ok {
		return types.User{}, store.ErrNotFound
	}
	r.db.users[user.ID] = user
	return user, nil
}

type memPostRepo struct{ db *memDB }

func (r *memPostRepo) List(ctx context.Context, offset, limit int) ([]types.Post, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	posts := make([]types.Post, 0, len(r.db.posts))
	for id := 1; id < r.db.nextPost; id++ {
		if post, ok := r.db.posts[id]; ok {
			posts = append(posts, post)
		}
	}
	if offset > len(posts) {
		offset = len(posts)
	}
	posts = posts[offset:]
	if limit > 0 && limit < len(posts) {
		posts = posts[:limit]
	}
	return posts, nil
}

func (r *memPostRepo) Get(ctx context.Context, id int) (types.Post, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	post, ok := r.db.posts[id]
	if !ok {
		return types.Post{}, store.ErrNotFound
	}
	return post, nil
}

func (r *memPostRepo) Create(ctx context.Context, post types.Post) (types.Post, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	post.ID = r.db.nextPost
	r.db.nextPost++
	post.CreatedAt = time.Now()
	post.UpdatedAt = post.CreatedAt
	r.db.posts[post.ID] = post
	return post, nil
}

func (r *memPostRepo) Update(ctx context.Context, post types.Post) (types.Post, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.posts[post.ID]; !ok {
		return types.Post{}, store.ErrNotFound
	}
	post.UpdatedAt = time.Now()
	r.db.posts[post.ID] = post
	return post, nil
}

func (r *memPostRepo) Delete(ctx context.Context, id int) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.posts[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.db.posts, id)
	for commentID, comment := range r.db.comments {
		if comment.PostID == id {
			delete(r.db.comments, commentID)
		}
	}
	return nil
}

type memCommentRepo struct{ db *memDB }

func (r *memCommentRepo) ListByPost(ctx context.Context, postID int) ([]types.Comment, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	comments := make([]types.Comment, 0)
	for id := 1; id < r.db.nextComment; id++ {
		if comment, ok := r.db.comments[id]; ok && comment.PostID == postID {
			comments = append(comments, r.withOwnerUsername(comment))
		}
	}
	return comments, nil
}

func (r *memCommentRepo) Get(ctx context.Context, id int) (types.Comment, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	comment, ok := r.db.comments[id]
	if !ok {
		return types.Comment{}, store.ErrNotFound
	}
	return r.withOwnerUsername(comment), nil
}

func (r *memCommentRepo) Create(ctx context.Context, comment types.Comment) (types.Comment, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	comment.ID = r.db.nextComment
	r.db.nextComment++
	comment.CreatedAt = time.Now()
	comment.UpdatedAt = comment.CreatedAt
	r.db.comments[comment.ID] = comment
	return r.withOwnerUsername(comment), nil
}

func (r *memCommentRepo) Update(ctx context.Context, comment types.Comment) (types.Comment, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.comments[comment.ID]; !ok {
		return types.Comment{}, store.ErrNotFound
	}
	comment.UpdatedAt = time.Now()
	r.db.comments[comment.ID] = comment
	return r.withOwnerUsername(comment), nil
}

func (r *memCommentRepo) Delete(ctx context.Context, id int) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.comments[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.db.comments, id)
	return nil
}

func (r *memCommentRepo) withOwnerUsername(comment types.Comment) types.Comment {
	if owner, ok := r.db.users[comment.OwnerID]; ok {
		comment.OwnerUsername = owner.Username
	}
	return comment
}

// testEnv assembles the full router over in-memory repositories, wired
// the same way the server wires the real ones.
type testEnv struct {
	db           *memDB
	router       *chi.Mux
	tokenService *services.TokenService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := newMemDB()
	userService := services.NewUserService(&memUserRepo{db: db})
	postService := services.NewPostService(&memPostRepo{db: db})
	commentService := services.NewCommentService(&memCommentRepo{db: db})
	tokenService := services.NewTokenService(config.AuthConfig{
		JWTSecret:       testSecret,
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 168 * time.Hour,
	})

	authMiddleware := RequireAuth(tokenService)

	router := chi.NewRouter()
	router.Get("/healthz", Healthz)
	AuthRouter(router, userService, tokenService)
	router.Route("/posts", func(r chi.Router) {
		PostRouter(r, postService, commentService, userService, authMiddleware)
	})
	router.Route("/comments", func(r chi.Router) {
		CommentRouter(r, commentService, userService, authMiddleware)
	})

	return &testEnv{
		db:           db,
		router:       router,
		tokenService: tokenService,
	}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) register(t *testing.T, username, password string) types.User {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/register", "", map[string]string{
		"username": username,
		"password": password,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %q: status = %d, body = %s", username, rec.Code, rec.Body.String())
	}

	var user types.User
	decodeBody(t, rec, &user)
	return user
}

func (e *testEnv) login(t *testing.T, username, password string) TokenResponse {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/token", "", map[string]string{
		"username": username,
		"password": password,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login %q: status = %d, body = %s", username, rec.Code, rec.Body.String())
	}

	var resp TokenResponse
	decodeBody(t, rec, &resp)
	return resp
}

func (e *testEnv) promoteToAdmin(t *testing.T, userID int) {
	t.Helper()

	e.db.mu.Lock()
	defer e.db.mu.Unlock()
	user, ok := e.db.users[userID]
	if !ok {
		t.Fatalf("no user with id %d", userID)
	}
	user.IsAdmin = true
	e.db.users[userID] = user
}

func (e *testEnv) createPost(t *testing.T, token, title string) types.Post {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/posts/", token, map[string]string{
		"title":    title,
		"category": "general",
		"content":  "some content",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create post: status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var post types.Post
	decodeBody(t, rec, &post)
	return post
}

func (e *testEnv) createComment(t *testing.T, token string, postID int, content string) types.Comment {
	t.Helper()

	path := fmt.Sprintf("/posts/%d/comments/", postID)
	rec := e.do(t, http.MethodPost, path, token, map[string]string{"content": content})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create comment: status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var comment types.Comment
	decodeBody(t, rec, &comment)
	return comment
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, value any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(value); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
}
