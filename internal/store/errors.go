package store

import "errors"

// Recoverable failures surfaced to callers with a human-readable reason.
// Handlers match these with errors.Is and report them without a state change
// having occurred.
var (
	ErrListNotFound        = errors.New("list not found")
	ErrItemNotFound        = errors.New("item not found")
	ErrDuplicateItem       = errors.New("an item with this text already exists")
	ErrNoOpEdit            = errors.New("new text is the same as current text")
	ErrNotEthereal         = errors.New("not an ethereal list")
	ErrSectionNotFound     = errors.New("section not found")
	ErrOwnerCollaborator   = errors.New("owner cannot be added as collaborator")
	ErrAlreadyCollaborator = errors.New("user is already a collaborator")
)
