package repository

import (
	"regexp"
	"strings"

	"github.com/klass-lk/blogboot/internal/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PostListFilter builds the listing query. Provided filters are ANDed and
// search matches title or content, case-insensitively.
func PostListFilter(f model.PostFilter) bson.M {
	query := bson.M{}

	if f.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"content": pattern},
		}
	}

	if f.Category != "" && f.Category != model.AllCategories {
		query["category"] = f.Category
	}

	if f.Location != "" {
		query["location"] = f.Location
	}

	return query
}

// RelatedTitlePattern turns a title into an alternation of its
// space-separated words. It reports false when the title has no words.
func RelatedTitlePattern(title string) (string, bool) {
	words := strings.Split(title, " ")
	tokens := make([]string, 0, len(words))
	for _, word := range words {
		if word == "" {
			continue
		}
		tokens = append(tokens, regexp.QuoteMeta(word))
	}
	if len(tokens) == 0 {
		return "", false
	}
	return strings.Join(tokens, "|"), true
}

// RelatedPostsFilter matches every other post whose title shares a word
// with title.
func RelatedPostsFilter(id, title string) (bson.M, bool) {
	pattern, ok := RelatedTitlePattern(title)
	if !ok {
		return nil, false
	}
	return bson.M{
		"_id":   bson.M{"$ne": id},
		"title": primitive.Regex{Pattern: pattern, Options: "i"},
	}, true
}
