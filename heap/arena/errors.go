package arena

import "errors"

var (
	// ErrNoSpace indicates the allocation would move the frontier past capacity.
	ErrNoSpace = errors.New("arena: no space left in region")

	// ErrBadRef indicates a Ref whose header or payload falls outside the region.
	ErrBadRef = errors.New("arena: bad block reference")

	// ErrCapacity indicates a region size outside [MinCapacity, MaxCapacity].
	ErrCapacity = errors.New("arena: capacity out of range")

	// ErrCorruptFrontier indicates an adopted region whose frontier cell is
	// outside [BaseOffset, capacity].
	ErrCorruptFrontier = errors.New("arena: frontier outside region")

	// ErrChainTooLong indicates a walk that visited more blocks than the region
	// can physically hold, which only happens when the chain loops.
	ErrChainTooLong = errors.New("arena: chain exceeds region block bound")

	// ErrEditRejected wraps a non-OK EditStatus for callers that want an error.
	ErrEditRejected = errors.New("arena: edit rejected")
)
