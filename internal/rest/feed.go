package rest

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/devesh-qurilo/truepadosi/pkg/api"
)

// Ensure Client implements the collaborator interface.
var _ api.FeedAPI = (*Client)(nil)

// ListPosts calls GET /posts with page/limit query parameters.
func (c *Client) ListPosts(ctx context.Context, token string, page, limit int) (api.PostPage, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	path := "/posts"
	if encoded := q.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var out struct {
		envelope
		api.PostPage
	}
	if err := c.doJSON(ctx, http.MethodGet, path, nil, token, &out); err != nil {
		return api.PostPage{}, err
	}
	return out.PostPage, nil
}

// CreatePost calls POST /posts.
func (c *Client) CreatePost(ctx context.Context, token, content string) (api.Post, error) {
	body := map[string]string{"content": content}
	var out struct {
		envelope
		Post api.Post `json:"post"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/posts", body, token, &out); err != nil {
		return api.Post{}, err
	}
	return out.Post, nil
}

// LikePost calls POST /posts/{id}/like.
func (c *Client) LikePost(ctx context.Context, token, postID string) error {
	path := fmt.Sprintf("/posts/%s/like", url.PathEscape(postID))
	return c.doJSON(ctx, http.MethodPost, path, nil, token, nil)
}

// AddComment calls POST /posts/{id}/comments.
func (c *Client) AddComment(ctx context.Context, token, postID, text string) (api.Comment, error) {
	path := fmt.Sprintf("/posts/%s/comments", url.PathEscape(postID))
	body := map[string]string{"text": text}
	var out struct {
		envelope
		Comment api.Comment `json:"comment"`
	}
	if err := c.doJSON(ctx, http.MethodPost, path, body, token, &out); err != nil {
		return api.Comment{}, err
	}
	return out.Comment, nil
}
