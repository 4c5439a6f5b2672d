package board

import "errors"

var (
	// ErrNotFound indicates an ID that does not name a live record.
	ErrNotFound = errors.New("board: record not found")

	// ErrWrongKind indicates a post ID used as a comment or vice versa.
	ErrWrongKind = errors.New("board: wrong record kind")

	// ErrTooLong indicates a title or content over its limit.
	ErrTooLong = errors.New("board: field too long")

	// ErrBadAuthor indicates an author name that is empty, too long, or
	// contains a NUL byte.
	ErrBadAuthor = errors.New("board: invalid author")

	// ErrNotAuthor indicates an operation reserved for the record's author.
	ErrNotAuthor = errors.New("board: author mismatch")

	// ErrTooManyCollaborators indicates a post already at MaxCollaborators.
	ErrTooManyCollaborators = errors.New("board: too many collaborators")

	// ErrDuplicateCollaborator indicates a collaborator already on the post.
	ErrDuplicateCollaborator = errors.New("board: collaborator already added")

	// ErrDuplicatePost indicates an author reusing one of their titles.
	ErrDuplicatePost = errors.New("board: post already exists")

	// ErrCounterOverflow indicates a claps or comment counter at its maximum.
	ErrCounterOverflow = errors.New("board: counter overflow")
)
