package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"feedctl/internal/model"
	"feedctl/pkg/logger"
)

//go:generate mockgen -source=feed.go -destination=./feed_mock.go -package=service

// PostsAPI is the remote posts collection.
type PostsAPI interface {
	ListPosts(ctx context.Context, token string) ([]model.Post, error)
	CreatePost(ctx context.Context, token string, req CreatePostRequest) error
	UpdatePost(ctx context.Context, token string, id model.PostID, req UpdatePostRequest) error
	DeletePost(ctx context.Context, token string, id model.PostID) error
}

// SessionProvider hands out the bearer token. An empty token with a nil
// error means nobody is logged in.
type SessionProvider interface {
	AccessToken(ctx context.Context) (string, error)
}

// PostStore holds the last fetched snapshot of the feed.
type PostStore interface {
	Replace(posts []model.Post)
	List() []model.Post
	GetByID(id model.PostID) (model.Post, error)
	Len() int
}

type Renderer interface {
	Render(ctx context.Context, view FeedView)
}

// Notifier surfaces failed operations to the user.
type Notifier interface {
	NotifyFailure(ctx context.Context, op Operation, err error)
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

type Operation string

const (
	OpRefresh Operation = "refresh"
	OpCreate  Operation = "create"
	OpUpdate  Operation = "update"
	OpDelete  Operation = "delete"
)

// FailureMessage is the user-facing text shown when op fails.
func (op Operation) FailureMessage() string {
	switch op {
	case OpRefresh:
		return "Failed to retrieve posts"
	case OpCreate:
		return "Failed to create the post"
	case OpUpdate:
		return "Failed to update the post"
	case OpDelete:
		return "Failed to delete the post"
	default:
		return "Operation failed"
	}
}

const DeletePrompt = "Do you really want to delete this post?"

// PendingDelete is the first half of a delete: the user has asked to delete
// Post and has not answered the confirmation prompt yet.
type PendingDelete struct {
	Post   model.Post
	Prompt string

	resolved bool
}

type FeedService struct {
	api      PostsAPI
	session  SessionProvider
	store    PostStore
	renderer Renderer
	notifier Notifier

	mu    sync.Mutex
	query ViewQuery
}

func NewFeedService(api PostsAPI, session SessionProvider, store PostStore, renderer Renderer, notifier Notifier) *FeedService {
	return &FeedService{
		api:      api,
		session:  session,
		store:    store,
		renderer: renderer,
		notifier: notifier,
	}
}

// Refresh fetches the whole feed, replaces the store and renders the default
// view. Without a token it does nothing.
func (s *FeedService) Refresh(ctx context.Context) error {
	token, ok, err := s.token(ctx, OpRefresh)
	if err != nil || !ok {
		return err
	}

	posts, err := s.api.ListPosts(ctx, token)
	if err != nil {
		return s.fail(ctx, OpRefresh, err)
	}
	if err := checkUniqueIDs(posts); err != nil {
		return s.fail(ctx, OpRefresh, err)
	}

	s.store.Replace(posts)
	logger.FromContext(ctx).Debug("feed synchronized", "posts", len(posts))

	s.mu.Lock()
	s.query = ViewQuery{}
	s.mu.Unlock()

	s.render(ctx)
	return nil
}

func (s *FeedService) Create(ctx context.Context, req CreatePostRequest) error {
	token, ok, err := s.token(ctx, OpCreate)
	if err != nil || !ok {
		return err
	}

	if err := s.api.CreatePost(ctx, token, req); err != nil {
		return s.fail(ctx, OpCreate, err)
	}
	logger.FromContext(ctx).Info("post created", "title", req.Title)
	return s.Refresh(ctx)
}

func (s *FeedService) Update(ctx context.Context, post model.Post, req UpdatePostRequest) error {
	token, ok, err := s.token(ctx, OpUpdate)
	if err != nil || !ok {
		return err
	}
	if post.ID == "" {
		return fmt.Errorf("post id is empty: %w", ErrInvalidRequest)
	}

	if err := s.api.UpdatePost(ctx, token, post.ID, req); err != nil {
		return s.fail(ctx, OpUpdate, err)
	}
	logger.FromContext(ctx).Info("post updated", "id", post.ID)
	return s.Refresh(ctx)
}

func (s *FeedService) RequestDelete(post model.Post) *PendingDelete {
	return &PendingDelete{Post: post, Prompt: DeletePrompt}
}

// ResolveDelete completes a delete. When the user declined nothing is sent.
func (s *FeedService) ResolveDelete(ctx context.Context, pending *PendingDelete, affirmed bool) error {
	if pending == nil {
		return fmt.Errorf("no pending delete: %w", ErrInvalidRequest)
	}
	if pending.resolved {
		return fmt.Errorf("delete of post %s already resolved: %w", pending.Post.ID, ErrInvalidRequest)
	}
	pending.resolved = true

	if !affirmed {
		logger.FromContext(ctx).Debug("delete declined", "id", pending.Post.ID)
		return nil
	}
	if pending.Post.ID == "" {
		return fmt.Errorf("post id is empty: %w", ErrInvalidRequest)
	}

	token, ok, err := s.token(ctx, OpDelete)
	if err != nil || !ok {
		return err
	}

	if err := s.api.DeletePost(ctx, token, pending.Post.ID); err != nil {
		return s.fail(ctx, OpDelete, err)
	}
	logger.FromContext(ctx).Info("post deleted", "id", pending.Post.ID)
	return s.Refresh(ctx)
}

// Delete asks c for confirmation and deletes the post if the answer is yes.
func (s *FeedService) Delete(ctx context.Context, post model.Post, c Confirmer) error {
	pending := s.RequestDelete(post)
	affirmed, err := c.Confirm(ctx, pending.Prompt)
	if err != nil {
		return fmt.Errorf("confirm delete: %w", err)
	}
	return s.ResolveDelete(ctx, pending, affirmed)
}

func (s *FeedService) Search(ctx context.Context, term string) {
	s.mu.Lock()
	s.query.Search = term
	s.mu.Unlock()
	s.render(ctx)
}

func (s *FeedService) SortBy(ctx context.Context, order SortOrder) {
	s.mu.Lock()
	s.query.Sort = order
	s.mu.Unlock()
	s.render(ctx)
}

func (s *FeedService) ResetView(ctx context.Context) {
	s.mu.Lock()
	s.query = ViewQuery{}
	s.mu.Unlock()
	s.render(ctx)
}

// View projects the store through the current query without rendering.
func (s *FeedService) View() FeedView {
	s.mu.Lock()
	q := s.query
	s.mu.Unlock()

	posts := s.store.List()
	return FeedView{
		Posts: Project(posts, q),
		Query: q,
		Total: len(posts),
	}
}

// Post looks a post up in the last fetched snapshot.
func (s *FeedService) Post(id model.PostID) (model.Post, error) {
	return s.store.GetByID(id)
}

func (s *FeedService) render(ctx context.Context) {
	s.renderer.Render(ctx, s.View())
}

// token returns ok=false when no one is logged in; that case is silent.
func (s *FeedService) token(ctx context.Context, op Operation) (string, bool, error) {
	token, err := s.session.AccessToken(ctx)
	if err != nil {
		return "", false, s.fail(ctx, op, fmt.Errorf("read session: %w", err))
	}
	if token == "" {
		logger.FromContext(ctx).Debug("skipping operation", "op", op, "reason", ErrMissingCredential)
		return "", false, nil
	}
	return token, true, nil
}

func (s *FeedService) fail(ctx context.Context, op Operation, err error) error {
	logger.FromContext(ctx).Error("feed operation failed", "op", op, "error", err)
	s.notifier.NotifyFailure(ctx, op, err)
	return &OperationError{Op: op, Err: err}
}

func checkUniqueIDs(posts []model.Post) error {
	seen := make(map[model.PostID]struct{}, len(posts))
	for _, p := range posts {
		if p.ID == "" {
			return fmt.Errorf("%w: post without id", ErrInvalidResponse)
		}
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("%w: duplicate post id %s", ErrInvalidResponse, p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return nil
}

// IsReported tells whether err has already been shown to the user.
func IsReported(err error) bool {
	var opErr *OperationError
	return errors.As(err, &opErr)
}
