package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap/arena"
	"github.com/joshuapare/heapkit/heap/board"
	"github.com/joshuapare/heapkit/heap/image"
)

var (
	commentAuthor  string
	commentContent string
	commentEdit    bool
)

func init() {
	cmd := newCommentCmd()
	cmd.Flags().StringVar(&commentAuthor, "author", "", "Author name (required)")
	cmd.Flags().StringVar(&commentContent, "content", "", "Comment body")
	cmd.Flags().BoolVar(&commentEdit, "edit", false, "Treat the ID as a comment and replace its content")
	_ = cmd.MarkFlagRequired("author")
	rootCmd.AddCommand(cmd)
}

func newCommentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comment <image> <id>",
		Short: "Add or edit a comment",
		Long: `The comment command adds a comment to the post with the given ID. With
--edit the ID names an existing comment instead; only its author may change
it. A longer body moves the comment to a new block and prints the new ID.

Example:
  heapctl comment board.heap 0x18 --author bob --content "nice"
  heapctl comment board.heap 0x120 --author bob --content "nicer" --edit`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runComment(args)
		},
	}
	return cmd
}

func runComment(args []string) error {
	target, err := parseRef(args[1])
	if err != nil {
		return err
	}

	var id arena.Ref
	err = update(args[0], func(img *image.Image) error {
		b := board.New(img.Arena(), board.Options{})
		var err error
		if commentEdit {
			id, err = b.EditComment(target, board.Author(commentAuthor), []byte(commentContent))
		} else {
			id, err = b.AddComment(target, board.Author(commentAuthor), []byte(commentContent))
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("comment: %w", err)
	}

	if jsonOut {
		return printJSON(map[string]interface{}{
			"id":    id.String(),
			"moved": commentEdit && id != target,
		})
	}
	switch {
	case !commentEdit:
		printInfo("Added comment %s\n", id)
	case id != target:
		printInfo("Moved comment %s to %s\n", target, id)
	default:
		printInfo("Edited comment %s\n", id)
	}
	return nil
}
