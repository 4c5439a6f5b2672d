// Package board keeps posts and comments as records inside an arena.
//
// Each record is one arena block whose payload starts with a two-byte
// signature ("po" or "co") followed by the wire encoding of its fields. A
// record's ID is its payload Ref. Nothing is cached: every read decodes the
// block again, so Load and the getters always reflect the region as it is,
// including changes made by raw arena commands.
package board

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/joshuapare/heapkit/heap/arena"
	"github.com/joshuapare/heapkit/heap/kit"
	"github.com/joshuapare/heapkit/internal/logger"
)

// Options configures a Board.
type Options struct {
	// Logger receives record diagnostics. Default: logger.L.
	Logger *slog.Logger

	// Kit runs the batches carried by Clap. Default: a dispatcher over the
	// board's arena sharing the board's logger.
	Kit *kit.Dispatcher
}

// Board is the record layer over one arena. All methods are safe for
// concurrent use; each one is a single critical section.
type Board struct {
	mu  sync.Mutex
	a   *arena.Arena
	kit *kit.Dispatcher
	log *slog.Logger
}

// New returns a Board over a.
func New(a *arena.Arena, opts Options) *Board {
	l := logger.Or(opts.Logger)
	d := opts.Kit
	if d == nil {
		d = kit.New(a, kit.Options{Logger: l})
	}
	return &Board{a: a, kit: d, log: l}
}

// CreatePost stores a new post and returns its ID. Titles are unique per author.
func (b *Board) CreatePost(author Author, title, content []byte) (arena.Ref, error) {
	if err := author.validate(); err != nil {
		return arena.NullRef, err
	}
	if len(title) > MaxTitleLen || len(content) > MaxContentLen {
		return arena.NullRef, fmt.Errorf("%w: title %d/%d, content %d/%d bytes",
			ErrTooLong, len(title), MaxTitleLen, len(content), MaxContentLen)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	recs, err := b.load()
	if err != nil {
		return arena.NullRef, err
	}
	for _, r := range recs {
		if r.Post != nil && r.Post.Author == author && string(r.Post.Title) == string(title) {
			return arena.NullRef, fmt.Errorf("%w: %q by %s at %s", ErrDuplicatePost, title, author, r.ID)
		}
	}

	p := &Post{Author: author, Title: title, Content: content}
	id, err := b.store(p.encode())
	if err != nil {
		return arena.NullRef, fmt.Errorf("create post: %w", err)
	}
	b.log.Info("post created", "id", id.String(), "author", string(author))
	return id, nil
}

// AddCollaborator adds collaborator to the post. Only the post's author may
// do so, up to MaxCollaborators distinct collaborators.
func (b *Board) AddCollaborator(id arena.Ref, author, collaborator Author) error {
	if err := collaborator.validate(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	p, err := b.post(id)
	if err != nil {
		return err
	}
	if p.Author != author {
		return fmt.Errorf("%w: post %s belongs to %s", ErrNotAuthor, id, p.Author)
	}
	if len(p.Collaborators) >= MaxCollaborators {
		return fmt.Errorf("%w: post %s", ErrTooManyCollaborators, id)
	}
	if p.HasCollaborator(collaborator) {
		return fmt.Errorf("%w: %s on post %s", ErrDuplicateCollaborator, collaborator, id)
	}

	p.Collaborators = append(p.Collaborators, collaborator)
	return b.a.WritePayload(id, p.encode())
}

// AddComment stores a comment on the post and returns its ID. The comment's
// Order is the post's comment count before the comment was added.
func (b *Board) AddComment(postID arena.Ref, author Author, content []byte) (arena.Ref, error) {
	if err := author.validate(); err != nil {
		return arena.NullRef, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	p, err := b.post(postID)
	if err != nil {
		return arena.NullRef, err
	}
	next, err := increment(p.CommentCount, "comment count")
	if err != nil {
		return arena.NullRef, err
	}

	c := &Comment{Order: p.CommentCount, Post: postID, Author: author, Content: content}
	id, err := b.store(c.encode())
	if err != nil {
		return arena.NullRef, fmt.Errorf("add comment: %w", err)
	}

	p.CommentCount = next
	if err := b.a.WritePayload(postID, p.encode()); err != nil {
		return arena.NullRef, err
	}
	b.log.Info("comment created", "id", id.String(), "post", postID.String(), "order", c.Order)
	return id, nil
}

// EditComment replaces the comment's content. Only the comment's author may
// edit it. When the new encoding does not fit the comment's block, the
// comment moves to a new block, the old block is retired, and the new ID is
// returned; otherwise the ID is unchanged.
func (b *Board) EditComment(id arena.Ref, author Author, content []byte) (arena.Ref, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	c, err := b.comment(id)
	if err != nil {
		return arena.NullRef, err
	}
	if c.Author != author {
		return arena.NullRef, fmt.Errorf("%w: comment %s belongs to %s", ErrNotAuthor, id, c.Author)
	}

	c.Content = content
	enc := c.encode()

	length, err := b.a.Length(id)
	if err != nil {
		return arena.NullRef, err
	}
	if uint64(len(enc)) <= length {
		return id, b.a.WritePayload(id, enc)
	}

	newID, err := b.store(enc)
	if err != nil {
		return arena.NullRef, fmt.Errorf("edit comment: %w", err)
	}
	if err := b.a.WritePayload(id, sigRetired); err != nil {
		return arena.NullRef, err
	}
	b.log.Info("comment moved", "from", id.String(), "to", newID.String())
	return newID, nil
}

// Clap increments the claps of a post or comment and then runs the batch it
// carries through the kit dispatcher. The batch is decoded first, so a
// malformed batch leaves the record untouched.
func (b *Board) Clap(id arena.Ref, batch []byte) (*kit.Report, error) {
	cmds, err := kit.DecodeBatch(batch)
	if err != nil {
		return nil, fmt.Errorf("clap: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	payload, kind, err := b.record(id)
	if err != nil {
		return nil, err
	}

	var enc []byte
	switch kind {
	case KindPost:
		p, err := decodePost(id, payload)
		if err != nil {
			return nil, err
		}
		if p.Claps, err = increment(p.Claps, "claps"); err != nil {
			return nil, err
		}
		enc = p.encode()
	case KindComment:
		c, err := decodeComment(id, payload)
		if err != nil {
			return nil, err
		}
		if c.Claps, err = increment(c.Claps, "claps"); err != nil {
			return nil, err
		}
		enc = c.encode()
	}
	if err := b.a.WritePayload(id, enc); err != nil {
		return nil, err
	}

	return b.kit.RunBatch(cmds), nil
}

// Post returns the post stored at id.
func (b *Board) Post(id arena.Ref) (*Post, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.post(id)
}

// Comment returns the comment stored at id.
func (b *Board) Comment(id arena.Ref) (*Comment, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.comment(id)
}

// Comments returns the live comments on a post in chain order.
func (b *Board) Comments(postID arena.Ref) ([]*Comment, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := b.post(postID); err != nil {
		return nil, err
	}
	recs, err := b.load()
	if err != nil {
		return nil, err
	}
	var out []*Comment
	for _, r := range recs {
		if r.Comment != nil && r.Comment.Post == postID {
			out = append(out, r.Comment)
		}
	}
	return out, nil
}

// Record is one decoded entry found by Load. Exactly one of Post and
// Comment is set.
type Record struct {
	ID      arena.Ref
	Kind    Kind
	Post    *Post
	Comment *Comment
}

// Load walks the arena's chain and decodes every signed block. Blocks without
// a signature, retired blocks and blocks that fail to decode are skipped.
func (b *Board) Load() ([]Record, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.load()
}

func (b *Board) load() ([]Record, error) {
	var recs []Record
	it := b.a.Blocks()
	for {
		blk, err := it.Next()
		if errors.Is(err, io.EOF) {
			return recs, nil
		}
		if err != nil {
			return recs, err
		}

		payload, err := b.a.Payload(blk.Payload)
		if err != nil {
			continue
		}
		kind, ok := kindOf(payload)
		if !ok {
			continue
		}

		rec := Record{ID: blk.Payload, Kind: kind}
		switch kind {
		case KindPost:
			rec.Post, err = decodePost(blk.Payload, payload)
		case KindComment:
			rec.Comment, err = decodeComment(blk.Payload, payload)
		}
		if err != nil {
			b.log.Debug("skip undecodable record", "index", blk.Index, "id", blk.Payload.String(), "error", err)
			continue
		}
		recs = append(recs, rec)
	}
}

// store allocates a block sized to enc and writes enc into it.
func (b *Board) store(enc []byte) (arena.Ref, error) {
	id, err := b.a.Alloc(uint64(len(enc)))
	if err != nil {
		return arena.NullRef, err
	}
	if err := b.a.WritePayload(id, enc); err != nil {
		return arena.NullRef, err
	}
	return id, nil
}

// record returns the signed payload at id.
func (b *Board) record(id arena.Ref) ([]byte, Kind, error) {
	payload, err := b.a.Payload(id)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %s: %w", ErrNotFound, id, err)
	}
	kind, ok := kindOf(payload)
	if !ok {
		return nil, 0, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return payload, kind, nil
}

func (b *Board) post(id arena.Ref) (*Post, error) {
	payload, _, err := b.record(id)
	if err != nil {
		return nil, err
	}
	return decodePost(id, payload)
}

func (b *Board) comment(id arena.Ref) (*Comment, error) {
	payload, _, err := b.record(id)
	if err != nil {
		return nil, err
	}
	return decodeComment(id, payload)
}
