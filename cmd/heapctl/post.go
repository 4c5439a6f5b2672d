package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap/arena"
	"github.com/joshuapare/heapkit/heap/board"
	"github.com/joshuapare/heapkit/heap/image"
)

var (
	postAuthor  string
	postTitle   string
	postContent string
)

func init() {
	cmd := newPostCmd()
	cmd.Flags().StringVar(&postAuthor, "author", "", "Author name (required)")
	cmd.Flags().StringVar(&postTitle, "title", "", "Post title (required)")
	cmd.Flags().StringVar(&postContent, "content", "", "Post body")
	_ = cmd.MarkFlagRequired("author")
	_ = cmd.MarkFlagRequired("title")
	rootCmd.AddCommand(cmd)
}

func newPostCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "post <image>",
		Short: "Create a post",
		Long: `The post command stores a new post record and prints its ID. An author
cannot reuse a title.

Example:
  heapctl post board.heap --author alice --title hello --content "first post"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPost(args)
		},
	}
	return cmd
}

func runPost(args []string) error {
	var id arena.Ref
	err := update(args[0], func(img *image.Image) error {
		var err error
		id, err = board.New(img.Arena(), board.Options{}).
			CreatePost(board.Author(postAuthor), []byte(postTitle), []byte(postContent))
		return err
	})
	if err != nil {
		return fmt.Errorf("create post: %w", err)
	}

	if jsonOut {
		return printJSON(map[string]string{"id": id.String()})
	}
	printInfo("Created post %s\n", id)
	return nil
}
