package main

import (
	"context"
	"fmt"
	"os"

	"github.com/klass-lk/blogboot/internal/app"
	"github.com/klass-lk/blogboot/internal/cache"
	"github.com/klass-lk/blogboot/internal/config"
	"github.com/klass-lk/blogboot/internal/observability"
	"github.com/klass-lk/blogboot/internal/seed"
	"github.com/spf13/cobra"
)

func newSeedCmd() *cobra.Command {
	var (
		file    string
		opts    seed.GeneratorOptions
		asAdmin bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill the database from a fixtures file or with generated posts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			observability.SetupLogger(os.Stderr, cfg.Env, cfg.LogLevel)

			fixtures, err := loadFixtures(file, opts, asAdmin, cfg)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			a, err := app.New(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close(context.Background())

			seeder := seed.NewSeeder(a.Users, a.Posts, a.Comments)
			if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
				admin, err := a.Users.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminUsername, cfg.AdminPassword)
				if err != nil {
					return fmt.Errorf("ensure admin: %w", err)
				}
				seeder.Know(admin.Email, admin.ID)
			}

			result, err := seeder.Apply(ctx, fixtures)
			if err != nil {
				return err
			}
			if err := a.Cache.Invalidate(ctx, cache.TagPosts); err != nil {
				return fmt.Errorf("invalidate cache: %w", err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "seeded %d users, %d posts, %d comments\n", result.Users, result.Posts, result.Comments)
			return err
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML fixtures file; generated data is used when empty")
	cmd.Flags().IntVar(&opts.Users, "users", 5, "number of generated users")
	cmd.Flags().IntVar(&opts.Posts, "posts", 20, "number of generated posts")
	cmd.Flags().IntVar(&opts.CommentsPerPost, "comments", 3, "generated comments per post")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "random seed for generated data")
	cmd.Flags().BoolVar(&asAdmin, "as-admin", true, "publish generated posts as ADMIN_EMAIL")
	return cmd
}

func loadFixtures(file string, opts seed.GeneratorOptions, asAdmin bool, cfg *config.Config) (seed.Fixtures, error) {
	if file != "" {
		return seed.LoadFile(file)
	}
	if asAdmin {
		if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
			return seed.Fixtures{}, fmt.Errorf("ADMIN_EMAIL and ADMIN_PASSWORD are required to publish as admin")
		}
		opts.Author = cfg.AdminEmail
	}
	return seed.Generate(opts), nil
}
