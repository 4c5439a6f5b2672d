package main

import (
	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap/arena"
	"github.com/joshuapare/heapkit/heap/board"
	"github.com/joshuapare/heapkit/internal/preview"
)

func init() {
	rootCmd.AddCommand(newShowCmd())
}

func newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <image> [post-id]",
		Short: "List posts and comments",
		Long: `The show command lists every post with its comments. Given a post ID it
shows only that post.

Example:
  heapctl show board.heap
  heapctl show board.heap 0x18 --json`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(args)
		},
	}
	return cmd
}

type commentJSON struct {
	ID      string `json:"id"`
	Author  string `json:"author"`
	Order   uint8  `json:"order"`
	Claps   uint8  `json:"claps"`
	Content string `json:"content"`
}

type postJSON struct {
	ID            string        `json:"id"`
	Author        string        `json:"author"`
	Title         string        `json:"title"`
	Content       string        `json:"content"`
	Claps         uint8         `json:"claps"`
	Collaborators []string      `json:"collaborators"`
	Comments      []commentJSON `json:"comments"`
}

func runShow(args []string) error {
	only := arena.NullRef
	if len(args) == 2 {
		ref, err := parseRef(args[1])
		if err != nil {
			return err
		}
		only = ref
	}

	img, err := openImage(args[0], true)
	if err != nil {
		return err
	}
	defer img.Close()

	b := board.New(img.Arena(), board.Options{})
	if !only.IsNull() {
		// surface ErrNotFound and ErrWrongKind for a bad ID
		if _, err := b.Post(only); err != nil {
			return err
		}
	}
	recs, err := b.Load()
	if err != nil {
		printVerbose("chain stopped: %v\n", err)
	}

	var posts []*postJSON
	byID := make(map[arena.Ref]*postJSON)
	for _, r := range recs {
		if r.Post == nil || (!only.IsNull() && r.ID != only) {
			continue
		}
		p := &postJSON{
			ID:            r.ID.String(),
			Author:        string(r.Post.Author),
			Title:         preview.Text(r.Post.Title, 0),
			Content:       preview.Text(r.Post.Content, 0),
			Claps:         r.Post.Claps,
			Collaborators: []string{},
			Comments:      []commentJSON{},
		}
		for _, c := range r.Post.Collaborators {
			p.Collaborators = append(p.Collaborators, string(c))
		}
		posts = append(posts, p)
		byID[r.ID] = p
	}
	for _, r := range recs {
		if r.Comment == nil {
			continue
		}
		if p, ok := byID[r.Comment.Post]; ok {
			p.Comments = append(p.Comments, commentJSON{
				ID:      r.ID.String(),
				Author:  string(r.Comment.Author),
				Order:   r.Comment.Order,
				Claps:   r.Comment.Claps,
				Content: preview.Text(r.Comment.Content, 0),
			})
		}
	}

	if jsonOut {
		if posts == nil {
			posts = []*postJSON{}
		}
		return printJSON(map[string]interface{}{"posts": posts})
	}
	if len(posts) == 0 {
		printInfo("No posts\n")
		return nil
	}
	for _, p := range posts {
		printInfo("%s  %q by %s  (%d claps)\n", p.ID, p.Title, p.Author, p.Claps)
		if len(p.Collaborators) > 0 {
			printInfo("    collaborators: %v\n", p.Collaborators)
		}
		if p.Content != "" {
			printInfo("    %s\n", p.Content)
		}
		for _, c := range p.Comments {
			printInfo("    #%d %s %s: %s  (%d claps)\n", c.Order, c.ID, c.Author, c.Content, c.Claps)
		}
	}
	return nil
}
