package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/klass-lk/blogboot/internal/model"
)

// blogsPath builds the list query. Empty values and the all-categories
// sentinel are left out.
func blogsPath(filter PostFilter) string {
	params := url.Values{}
	if filter.Search != "" {
		params.Set("search", filter.Search)
	}
	if filter.Category != "" && filter.Category != model.AllCategories {
		params.Set("category", filter.Category)
	}
	if filter.Location != "" {
		params.Set("location", filter.Location)
	}
	if len(params) == 0 {
		return "blogs"
	}
	return "blogs?" + params.Encode()
}

func (c *Client) FetchBlogs(ctx context.Context, filter PostFilter) ([]PostView, error) {
	var posts []PostView
	err := c.query(ctx, blogsPath(filter), []Tag{TypeTag(TagBlogs)}, &posts)
	return posts, err
}

func (c *Client) FetchBlogByID(ctx context.Context, id string) (PostDetail, error) {
	var detail PostDetail
	err := c.query(ctx, "blogs/"+url.PathEscape(id), []Tag{IDTag(TagBlogs, id), IDTag(TagComments, id)}, &detail)
	return detail, err
}

// FetchRelatedBlogs provides no tags, so only expiry or a reset evicts it.
func (c *Client) FetchRelatedBlogs(ctx context.Context, id string) ([]Post, error) {
	var posts []Post
	err := c.query(ctx, "blogs/related/"+url.PathEscape(id), nil, &posts)
	return posts, err
}

func (c *Client) PostBlog(ctx context.Context, req CreatePostRequest) (Post, error) {
	var resp model.PostResponse
	err := c.mutate(ctx, http.MethodPost, "blogs/create-post", req, &resp, TypeTag(TagBlogs))
	return resp.Post, err
}

func (c *Client) UpdateBlog(ctx context.Context, id string, patch PostPatch) (Post, error) {
	var resp model.PostResponse
	err := c.mutate(ctx, http.MethodPatch, "blogs/update-post/"+url.PathEscape(id), patch, &resp, IDTag(TagBlogs, id))
	return resp.Post, err
}

func (c *Client) DeleteBlog(ctx context.Context, id string) error {
	return c.mutate(ctx, http.MethodDelete, "blogs/"+url.PathEscape(id), nil, nil, IDTag(TagBlogs, id))
}
