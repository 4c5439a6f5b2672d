package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap/board"
	"github.com/joshuapare/heapkit/heap/image"
)

var collabAuthor string

func init() {
	cmd := newCollabCmd()
	cmd.Flags().StringVar(&collabAuthor, "author", "", "Post author (required)")
	_ = cmd.MarkFlagRequired("author")
	rootCmd.AddCommand(cmd)
}

func newCollabCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collab <image> <post-id> <collaborator>",
		Short: "Add a collaborator to a post",
		Long: `The collab command adds a collaborator to a post. Only the post's author
may add one, and a post holds at most three.

Example:
  heapctl collab board.heap 0x18 carol --author alice`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCollab(args)
		},
	}
	return cmd
}

func runCollab(args []string) error {
	id, err := parseRef(args[1])
	if err != nil {
		return err
	}
	err = update(args[0], func(img *image.Image) error {
		return board.New(img.Arena(), board.Options{}).
			AddCollaborator(id, board.Author(collabAuthor), board.Author(args[2]))
	})
	if err != nil {
		return fmt.Errorf("add collaborator: %w", err)
	}

	if jsonOut {
		return printJSON(map[string]string{"id": id.String(), "collaborator": args[2]})
	}
	printInfo("Added %s to post %s\n", args[2], id)
	return nil
}
