// Package seed fills an empty blog database with fixture or generated data.
package seed

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type UserFixture struct {
	Email    string `yaml:"email"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type CommentFixture struct {
	User    string `yaml:"user"`
	Comment string `yaml:"comment"`
}

// PostFixture names its author and commenters by email.
type PostFixture struct {
	Title    string           `yaml:"title"`
	Content  string           `yaml:"content"`
	Category string           `yaml:"category"`
	CoverImg string           `yaml:"coverImg"`
	Location string           `yaml:"location"`
	Author   string           `yaml:"author"`
	Comments []CommentFixture `yaml:"comments"`
}

type Fixtures struct {
	Users []UserFixture `yaml:"users"`
	Posts []PostFixture `yaml:"posts"`
}

func LoadFile(path string) (Fixtures, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Fixtures{}, fmt.Errorf("read fixtures: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (Fixtures, error) {
	var fixtures Fixtures
	if err := yaml.Unmarshal(data, &fixtures); err != nil {
		return Fixtures{}, fmt.Errorf("parse fixtures: %w", err)
	}
	for i, post := range fixtures.Posts {
		if post.Title == "" {
			return Fixtures{}, fmt.Errorf("post %d: title is required", i)
		}
		if post.Author == "" {
			return Fixtures{}, fmt.Errorf("post %q: author is required", post.Title)
		}
	}
	return fixtures, nil
}
