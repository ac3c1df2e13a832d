package api

import (
	"context"
	"time"
)

// Comment is a single comment on a feed post.
type Comment struct {
	ID        string    `json:"id"`
	Author    User      `json:"author"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// Post is a single entry in the social feed.
type Post struct {
	ID        string    `json:"id"`
	Author    User      `json:"author"`
	Content   string    `json:"content"`
	Likes     int       `json:"likes"`
	Liked     bool      `json:"liked"`
	Comments  []Comment `json:"comments"`
	CreatedAt time.Time `json:"createdAt"`
}

// PostPage is one page of the feed.
type PostPage struct {
	Posts       []Post `json:"posts"`
	CurrentPage int    `json:"currentPage"`
	TotalPages  int    `json:"totalPages"`
}

// FeedAPI is the backend collaborator for the social feed. All calls
// require an authenticated token.
type FeedAPI interface {
	ListPosts(ctx context.Context, token string, page, limit int) (PostPage, error)
	CreatePost(ctx context.Context, token, content string) (Post, error)
	LikePost(ctx context.Context, token, postID string) error
	AddComment(ctx context.Context, token, postID, text string) (Comment, error)
}
