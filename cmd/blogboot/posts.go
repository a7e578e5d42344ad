package main

import (
	"encoding/json"
	"io"

	"github.com/klass-lk/blogboot/client"
	"github.com/spf13/cobra"
)

func newPostsCmd() *cobra.Command {
	var baseURL string

	cmd := &cobra.Command{
		Use:   "posts",
		Short: "Read posts from a running API",
	}
	cmd.PersistentFlags().StringVar(&baseURL, "base-url", client.DefaultBaseURL, "API base URL")

	newClient := func() (*client.Client, error) {
		return client.New(client.Options{BaseURL: baseURL})
	}

	var filter client.PostFilter
	list := &cobra.Command{
		Use:   "list",
		Short: "List posts, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			posts, err := c.FetchBlogs(cmd.Context(), filter)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), posts)
		},
	}
	list.Flags().StringVar(&filter.Search, "search", "", "case-insensitive title search")
	list.Flags().StringVar(&filter.Category, "category", "", "exact category")
	list.Flags().StringVar(&filter.Location, "location", "", "exact location")

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show a post with its comments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			detail, err := c.FetchBlogByID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), detail)
		},
	}

	related := &cobra.Command{
		Use:   "related <id>",
		Short: "List posts whose titles share a word with the post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			posts, err := c.FetchRelatedBlogs(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), posts)
		},
	}

	cmd.AddCommand(list, get, related)
	return cmd
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
