package client

import (
	"context"
	"net/http"

	"github.com/klass-lk/blogboot/internal/model"
)

func (c *Client) PostComment(ctx context.Context, req CreateCommentRequest) (Comment, error) {
	var resp model.CommentResponse
	err := c.mutate(ctx, http.MethodPost, "comments/post-comment", req, &resp, IDTag(TagComments, req.PostID))
	return resp.Comment, err
}

func (c *Client) TotalComments(ctx context.Context) (int64, error) {
	var resp TotalCommentsResponse
	err := c.query(ctx, "comments/total-comments", nil, &resp)
	return resp.TotalComment, err
}
