// Package feed is the non-visual data layer of the social feed: paged post
// listing, creation, likes and comments, with the same error surfacing as
// the onboarding workflows.
package feed

import (
	"context"
	"sync"

	"github.com/devesh-qurilo/truepadosi/internal/session"
	"github.com/devesh-qurilo/truepadosi/pkg/api"
)

// DefaultPageSize is how many posts a page request asks for.
const DefaultPageSize = 20

// Service caches the currently loaded feed pages and talks to the FeedAPI
// collaborator with the session's token.
type Service struct {
	api      api.FeedAPI
	sessions *session.Store

	mu          sync.RWMutex
	posts       []api.Post
	currentPage int
	totalPages  int
}

// NewService creates a feed service.
func NewService(feedAPI api.FeedAPI, sessions *session.Store) *Service {
	return &Service{api: feedAPI, sessions: sessions}
}

// Posts returns a copy of the loaded posts, newest first.
func (s *Service) Posts() []api.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]api.Post, len(s.posts))
	copy(out, s.posts)
	return out
}

// CurrentPage returns the page most recently loaded, 0 before any load.
func (s *Service) CurrentPage() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentPage
}

// HasMore reports whether pages beyond the current one exist.
func (s *Service) HasMore() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentPage < s.totalPages
}

func (s *Service) token() (string, error) {
	sess := s.sessions.Current()
	if !sess.Authenticated() {
		return "", api.NewSessionError("the feed requires an authenticated session")
	}
	return sess.Token, nil
}

// Refresh loads the first page, replacing anything cached.
func (s *Service) Refresh(ctx context.Context) error {
	token, err := s.token()
	if err != nil {
		return err
	}

	page, err := s.api.ListPosts(ctx, token, 1, DefaultPageSize)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.posts = page.Posts
	s.currentPage = page.CurrentPage
	s.totalPages = page.TotalPages
	s.mu.Unlock()
	return nil
}

// LoadMore appends the next page. It is a no-op when no further pages
// exist.
func (s *Service) LoadMore(ctx context.Context) error {
	if !s.HasMore() {
		return nil
	}
	token, err := s.token()
	if err != nil {
		return err
	}

	s.mu.RLock()
	next := s.currentPage + 1
	s.mu.RUnlock()

	page, err := s.api.ListPosts(ctx, token, next, DefaultPageSize)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.posts = append(s.posts, page.Posts...)
	s.currentPage = page.CurrentPage
	s.totalPages = page.TotalPages
	s.mu.Unlock()
	return nil
}

// Create publishes a post and prepends it to the cached feed.
func (s *Service) Create(ctx context.Context, content string) (api.Post, error) {
	if content == "" {
		return api.Post{}, api.NewValidationError("content", "post content is required")
	}
	token, err := s.token()
	if err != nil {
		return api.Post{}, err
	}

	post, err := s.api.CreatePost(ctx, token, content)
	if err != nil {
		return api.Post{}, err
	}

	s.mu.Lock()
	s.posts = append([]api.Post{post}, s.posts...)
	s.mu.Unlock()
	return post, nil
}

// Like marks a post liked and updates the cached copy optimistically.
func (s *Service) Like(ctx context.Context, postID string) error {
	token, err := s.token()
	if err != nil {
		return err
	}
	if err := s.api.LikePost(ctx, token, postID); err != nil {
		return err
	}

	s.mu.Lock()
	for i := range s.posts {
		if s.posts[i].ID == postID && !s.posts[i].Liked {
			s.posts[i].Liked = true
			s.posts[i].Likes++
			break
		}
	}
	s.mu.Unlock()
	return nil
}

// Comment adds a comment to a post and updates the cached copy.
func (s *Service) Comment(ctx context.Context, postID, text string) (api.Comment, error) {
	if text == "" {
		return api.Comment{}, api.NewValidationError("text", "comment text is required")
	}
	token, err := s.token()
	if err != nil {
		return api.Comment{}, err
	}

	comment, err := s.api.AddComment(ctx, token, postID, text)
	if err != nil {
		return api.Comment{}, err
	}

	s.mu.Lock()
	for i := range s.posts {
		if s.posts[i].ID == postID {
			s.posts[i].Comments = append(s.posts[i].Comments, comment)
			break
		}
	}
	s.mu.Unlock()
	return comment, nil
}
