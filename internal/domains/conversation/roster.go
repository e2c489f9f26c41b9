// Package conversation owns the contact roster: ordered listing with
// search, selection bookkeeping and preview/unread ingestion. Message logs
// themselves live in the thread domain; the roster only mirrors each
// conversation's last activity.
package conversation

import (
	"sort"
	"strings"
	"time"

	"craftlink/go-backend/pkg/models"
)

type Roster struct {
	contacts map[string]*models.Contact
	order    []string
}

func NewRoster() *Roster {
	return &Roster{contacts: make(map[string]*models.Contact)}
}

// Add registers a contact. Existing entries are overwritten; contacts are
// never removed, only hidden by search filters.
func (r *Roster) Add(contact models.Contact) {
	if strings.TrimSpace(contact.ID) == "" {
		return
	}
	if _, ok := r.contacts[contact.ID]; !ok {
		r.order = append(r.order, contact.ID)
	}
	c := contact
	r.contacts[contact.ID] = &c
}

func (r *Roster) Get(contactID string) (models.Contact, bool) {
	c, ok := r.contacts[contactID]
	if !ok {
		return models.Contact{}, false
	}
	return *c, true
}

func (r *Roster) Has(contactID string) bool {
	_, ok := r.contacts[contactID]
	return ok
}

// List returns contacts matching the search term, newest activity first.
// Matching is a case-insensitive substring test against display name or last
// preview; a blank term matches everything. The returned slice is a copy.
func (r *Roster) List(searchTerm string) []models.Contact {
	needle := strings.ToLower(strings.TrimSpace(searchTerm))
	out := make([]models.Contact, 0, len(r.contacts))
	for _, id := range r.order {
		c := r.contacts[id]
		if needle != "" && !matches(c, needle) {
			continue
		}
		out = append(out, *c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LastActivityAt.After(out[j].LastActivityAt)
	})
	return out
}

func matches(c *models.Contact, needle string) bool {
	return strings.Contains(strings.ToLower(c.DisplayName), needle) ||
		strings.Contains(strings.ToLower(c.LastPreview), needle)
}

// Ingest records new activity for a conversation: preview, timestamp and,
// for counterparty messages landing outside the active view, the unread flag.
// Unknown ids are ignored.
func (r *Roster) Ingest(contactID, preview string, at time.Time, markUnread bool) {
	c, ok := r.contacts[contactID]
	if !ok {
		return
	}
	c.LastPreview = PreviewOf(preview)
	c.LastActivityAt = at
	if markUnread {
		c.Unread = true
	}
}

func (r *Roster) ClearUnread(contactID string) {
	if c, ok := r.contacts[contactID]; ok {
		c.Unread = false
	}
}

const previewMaxLen = 80

// PreviewOf condenses a message body into a roster preview line.
func PreviewOf(body string) string {
	body = strings.Join(strings.Fields(body), " ")
	if len(body) <= previewMaxLen {
		return body
	}
	return strings.TrimSpace(body[:previewMaxLen-3]) + "..."
}
