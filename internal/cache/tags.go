package cache

import "github.com/gin-gonic/gin"

// TagPosts marks every response built from the post collection.
const TagPosts = "posts"

func PostTag(id string) string {
	return "post:" + id
}

// PostsTags tags list and related responses.
func PostsTags(*gin.Context) []string {
	return []string{TagPosts}
}

// PostDetailTags tags a single post response with the id in the :id param.
func PostDetailTags(c *gin.Context) []string {
	return []string{TagPosts, PostTag(c.Param("id"))}
}
