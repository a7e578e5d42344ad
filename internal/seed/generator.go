package seed

import (
	"fmt"

	"github.com/brianvoe/gofakeit/v6"
)

var (
	categories = []string{"Travel", "Food", "Culture", "Nature", "Adventure"}
	locations  = []string{"Kandy", "Ella", "Galle", "Colombo", "Sigiriya", "Jaffna", "Nuwara Eliya"}
)

type GeneratorOptions struct {
	Users           int
	Posts           int
	CommentsPerPost int
	// Seed makes the output reproducible. Zero picks a random seed.
	Seed int64
	// Author, when set, writes every post instead of the generated users.
	Author string
}

// Generate builds fake fixtures. Generated users share the password
// "password123".
func Generate(opts GeneratorOptions) Fixtures {
	faker := gofakeit.New(opts.Seed)

	var fixtures Fixtures
	for i := 0; i < opts.Users; i++ {
		fixtures.Users = append(fixtures.Users, UserFixture{
			Email:    fmt.Sprintf("%d.%s", i, faker.Email()),
			Username: faker.Username(),
			Password: "password123",
		})
	}

	people := make([]string, 0, len(fixtures.Users)+1)
	for _, user := range fixtures.Users {
		people = append(people, user.Email)
	}
	if opts.Author != "" {
		people = append(people, opts.Author)
	}
	if len(people) == 0 {
		return fixtures
	}

	for i := 0; i < opts.Posts; i++ {
		location := faker.RandomString(locations)
		post := PostFixture{
			Title:    fmt.Sprintf("%s %s in %s", faker.Adjective(), faker.Noun(), location),
			Content:  faker.Paragraph(2, 4, 12, "\n\n"),
			Category: faker.RandomString(categories),
			CoverImg: fmt.Sprintf("https://picsum.photos/seed/%s/1200/630", faker.UUID()),
			Location: location,
			Author:   opts.Author,
		}
		if post.Author == "" {
			post.Author = faker.RandomString(people)
		}
		for j := 0; j < opts.CommentsPerPost; j++ {
			post.Comments = append(post.Comments, CommentFixture{
				User:    faker.RandomString(people),
				Comment: faker.Sentence(faker.Number(4, 14)),
			})
		}
		fixtures.Posts = append(fixtures.Posts, post)
	}
	return fixtures
}
