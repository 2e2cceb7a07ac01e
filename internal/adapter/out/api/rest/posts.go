package rest

import (
	"context"
	"net/http"
	"net/url"

	"feedctl/internal/model"
	"feedctl/internal/service"
	"feedctl/pkg/endpoint"
)

func (c *Client) ListPosts(ctx context.Context, token string) ([]model.Post, error) {
	var out []postDTO
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   c.postsPath,
		query:  url.Values{endpoint.AuthorQueryParam: {"true"}},
		token:  token,
		out:    &out,
	})
	if err != nil {
		return nil, err
	}

	posts := make([]model.Post, 0, len(out))
	for _, p := range out {
		posts = append(posts, p.toModel())
	}
	return posts, nil
}

func (c *Client) CreatePost(ctx context.Context, token string, req service.CreatePostRequest) error {
	return c.do(ctx, request{
		method: http.MethodPost,
		path:   c.postsPath,
		token:  token,
		in:     createPostBody{Title: req.Title, Body: req.Body},
	})
}

func (c *Client) UpdatePost(ctx context.Context, token string, id model.PostID, req service.UpdatePostRequest) error {
	return c.do(ctx, request{
		method: http.MethodPut,
		path:   c.postPath(id),
		token:  token,
		in:     updatePostBody{Title: req.Title, Body: req.Body, Media: req.Media},
	})
}

func (c *Client) DeletePost(ctx context.Context, token string, id model.PostID) error {
	return c.do(ctx, request{
		method: http.MethodDelete,
		path:   c.postPath(id),
		token:  token,
	})
}

func (c *Client) postPath(id model.PostID) string {
	return c.postsPath + "/" + url.PathEscape(string(id))
}
