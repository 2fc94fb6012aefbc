package store

import (
	"errors"
	"fmt"
)

type NotFoundError struct {
	Kind string
	ID   int64
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %d", e.Kind, e.ID)
}

// ErrPublishedLocked: category, editor and color are frozen once an article
// is Published.
var ErrPublishedLocked = errors.New("article is published; field is locked")

// ErrNotPublished: only Published articles can be archived (Mark Complete).
var ErrNotPublished = errors.New("article is not published")
