// Package review collects the post-call rating form. A form opens when a
// call ends, accepts a 1 to 5 star rating plus an optional comment, and is
// either submitted or skipped; skipped forms leave no record.
package review

import (
	"strings"
	"time"

	"craftlink/go-backend/internal/domains/contracts"
	"craftlink/go-backend/pkg/models"
)

const (
	MinRating = 1
	MaxRating = 5
)

// Collector holds the single open review form and the submitted reviews,
// keyed by call session.
type Collector struct {
	open      *models.Review
	submitted map[string]models.Review
}

func NewCollector() *Collector {
	return &Collector{submitted: make(map[string]models.Review)}
}

// Begin opens the form for an ended call session. An already-open form is
// replaced; at most one call ends at a time so this only happens when the
// previous form was abandoned without skip.
func (c *Collector) Begin(sessionID string) error {
	if sessionID == "" {
		return contracts.InvalidInput("review needs a call session")
	}
	c.open = &models.Review{SessionID: sessionID}
	return nil
}

// Open returns the form currently on screen, if any.
func (c *Collector) Open() (models.Review, bool) {
	if c.open == nil {
		return models.Review{}, false
	}
	return *c.open, true
}

// SetRating records the selected star count. Out-of-range values are
// rejected, not clamped.
func (c *Collector) SetRating(rating int) error {
	if c.open == nil {
		return contracts.InvalidState("no review form is open")
	}
	if rating < MinRating || rating > MaxRating {
		return contracts.InvalidInput("rating must be between %d and %d stars", MinRating, MaxRating)
	}
	c.open.Rating = rating
	return nil
}

// SetComment replaces the form's comment text. Comments are optional and
// may be cleared by setting an empty string.
func (c *Collector) SetComment(comment string) error {
	if c.open == nil {
		return contracts.InvalidState("no review form is open")
	}
	c.open.Comment = strings.TrimSpace(comment)
	return nil
}

// Submit finalizes the form. A rating must have been chosen; the comment
// may be empty.
func (c *Collector) Submit(now time.Time) (models.Review, error) {
	if c.open == nil {
		return models.Review{}, contracts.InvalidState("no review form is open")
	}
	if c.open.Rating < MinRating {
		return models.Review{}, contracts.InvalidInput("choose a rating before submitting")
	}
	rev := *c.open
	rev.SubmittedAt = now.UTC()
	c.submitted[rev.SessionID] = rev
	c.open = nil
	return rev, nil
}

// Skip closes the form without keeping anything, including any rating or
// comment already entered. Skipping with no form open is a no-op.
func (c *Collector) Skip() {
	c.open = nil
}

// Submitted looks up the review recorded for a call session.
func (c *Collector) Submitted(sessionID string) (models.Review, bool) {
	rev, ok := c.submitted[sessionID]
	return rev, ok
}

func (c *Collector) Count() int {
	return len(c.submitted)
}
