package board

import (
	"bytes"
	"fmt"
	"math"

	"github.com/joshuapare/heapkit/heap/arena"
	"github.com/joshuapare/heapkit/heap/wire"
)

const (
	// MaxCollaborators is the number of collaborator slots on a post.
	MaxCollaborators = 3

	// MaxTitleLen and MaxContentLen bound a post's fields in bytes.
	MaxTitleLen   = 20
	MaxContentLen = 233

	// AuthorSize is the fixed width of an encoded author. Shorter names are
	// NUL-padded, so a record never changes size when a collaborator is added.
	AuthorSize = 32

	signatureSize = 2
)

// Record signatures: the first two payload bytes of every record block.
var (
	sigPost    = []byte("po")
	sigComment = []byte("co")
	sigRetired = []byte("xx")
)

// Kind tells posts from comments.
type Kind uint8

const (
	KindPost Kind = iota + 1
	KindComment
)

func (k Kind) String() string {
	switch k {
	case KindPost:
		return "post"
	case KindComment:
		return "comment"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Author names a user. Valid names are 1 to AuthorSize bytes without NULs.
type Author string

func (a Author) validate() error {
	if len(a) == 0 || len(a) > AuthorSize || bytes.IndexByte([]byte(a), 0) >= 0 {
		return fmt.Errorf("%w: %q", ErrBadAuthor, string(a))
	}
	return nil
}

func putAuthor(e *wire.Encoder, a Author) {
	var b [AuthorSize]byte
	copy(b[:], a)
	e.PutRaw(b[:])
}

func readAuthor(d *wire.Decoder) (Author, error) {
	b, err := d.Raw(AuthorSize)
	if err != nil {
		return "", err
	}
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return Author(b), nil
}

// Post is a titled entry that collects comments and claps.
type Post struct {
	ID            arena.Ref
	Claps         uint8
	CommentCount  uint8
	Collaborators []Author // at most MaxCollaborators
	Author        Author
	Title         []byte
	Content       []byte
}

// HasCollaborator reports whether a is already a collaborator.
func (p *Post) HasCollaborator(a Author) bool {
	for _, c := range p.Collaborators {
		if c == a {
			return true
		}
	}
	return false
}

// Comment is a reply to a post.
type Comment struct {
	ID      arena.Ref
	Claps   uint8
	Order   uint8 // the post's comment count when this comment was added
	Post    arena.Ref
	Author  Author
	Content []byte
}

// encode lays a post out as:
//
//	"po" claps u8, comment_count u8, collaborators [3]author,
//	collaborator_count u8, author, title bytes, content bytes
func (p *Post) encode() []byte {
	e := wire.NewEncoder(signatureSize + 3 + (MaxCollaborators+1)*AuthorSize + 8 + len(p.Title) + len(p.Content))
	e.PutRaw(sigPost)
	e.PutU8(p.Claps)
	e.PutU8(p.CommentCount)
	for i := range MaxCollaborators {
		var a Author
		if i < len(p.Collaborators) {
			a = p.Collaborators[i]
		}
		putAuthor(e, a)
	}
	e.PutU8(uint8(len(p.Collaborators)))
	putAuthor(e, p.Author)
	e.PutBytes(p.Title)
	e.PutBytes(p.Content)
	return e.Data()
}

// encode lays a comment out as:
//
//	"co" claps u8, order u8, post u64, author, content bytes
func (c *Comment) encode() []byte {
	e := wire.NewEncoder(signatureSize + 2 + 8 + AuthorSize + 4 + len(c.Content))
	e.PutRaw(sigComment)
	e.PutU8(c.Claps)
	e.PutU8(c.Order)
	e.PutU64(uint64(c.Post))
	putAuthor(e, c.Author)
	e.PutBytes(c.Content)
	return e.Data()
}

// kindOf inspects a payload's signature.
func kindOf(payload []byte) (Kind, bool) {
	if len(payload) < signatureSize {
		return 0, false
	}
	switch {
	case bytes.Equal(payload[:signatureSize], sigPost):
		return KindPost, true
	case bytes.Equal(payload[:signatureSize], sigComment):
		return KindComment, true
	default:
		return 0, false
	}
}

// decodePost parses a post payload. A record may occupy only a prefix of its
// block; trailing bytes are slack.
func decodePost(id arena.Ref, payload []byte) (*Post, error) {
	if k, ok := kindOf(payload); !ok || k != KindPost {
		return nil, fmt.Errorf("%w: %s is not a post", ErrWrongKind, id)
	}
	d := wire.NewDecoder(payload[signatureSize:])

	p := &Post{ID: id}
	var err error
	if p.Claps, err = d.U8(); err != nil {
		return nil, err
	}
	if p.CommentCount, err = d.U8(); err != nil {
		return nil, err
	}
	var slots [MaxCollaborators]Author
	for i := range slots {
		if slots[i], err = readAuthor(d); err != nil {
			return nil, err
		}
	}
	n, err := d.U8()
	if err != nil {
		return nil, err
	}
	if n > MaxCollaborators {
		return nil, fmt.Errorf("post %s: collaborator count %d: %w", id, n, ErrTooManyCollaborators)
	}
	p.Collaborators = append([]Author(nil), slots[:n]...)
	if p.Author, err = readAuthor(d); err != nil {
		return nil, err
	}
	if p.Title, err = d.Bytes(); err != nil {
		return nil, err
	}
	if p.Content, err = d.Bytes(); err != nil {
		return nil, err
	}
	return p, nil
}

func decodeComment(id arena.Ref, payload []byte) (*Comment, error) {
	if k, ok := kindOf(payload); !ok || k != KindComment {
		return nil, fmt.Errorf("%w: %s is not a comment", ErrWrongKind, id)
	}
	d := wire.NewDecoder(payload[signatureSize:])

	c := &Comment{ID: id}
	var err error
	if c.Claps, err = d.U8(); err != nil {
		return nil, err
	}
	if c.Order, err = d.U8(); err != nil {
		return nil, err
	}
	post, err := d.U64()
	if err != nil {
		return nil, err
	}
	c.Post = arena.Ref(post)
	if c.Author, err = readAuthor(d); err != nil {
		return nil, err
	}
	if c.Content, err = d.Bytes(); err != nil {
		return nil, err
	}
	return c, nil
}

func increment(v uint8, what string) (uint8, error) {
	if v == math.MaxUint8 {
		return v, fmt.Errorf("%w: %s", ErrCounterOverflow, what)
	}
	return v + 1, nil
}
