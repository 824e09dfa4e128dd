package pipeline

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// ItemStore holds the in-memory corpus of extracted items. It stands in for
// whatever persistence the surrounding application uses; the core only needs
// a snapshot of the corpus per run.
type ItemStore struct {
	mu    sync.RWMutex
	items []Item
}

// NewItemStore constructs an empty corpus.
func NewItemStore() *ItemStore {
	return &ItemStore{}
}

// Add registers an item, generating defaults when missing. An item with an
// existing ID replaces the stored record.
func (s *ItemStore) Add(item Item) Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	if item.Status == "" {
		item.Status = StatusPending
	}

	for idx := range s.items {
		if s.items[idx].ID == item.ID {
			s.items[idx] = item
			return s.items[idx]
		}
	}

	s.items = append(s.items, item)
	return item
}

// All returns a snapshot copy of the corpus in insertion order.
func (s *ItemStore) All() []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// SetStatus updates one item's lifecycle status, reporting whether the item
// was found.
func (s *ItemStore) SetStatus(id, status string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for idx := range s.items {
		if s.items[idx].ID == id {
			s.items[idx].Status = status
			return true
		}
	}
	return false
}

// PruneOlderThan drops items created before the provided timestamp and
// returns the number of removed entries.
func (s *ItemStore) PruneOlderThan(ts time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.items) == 0 {
		return 0
	}

	filtered := s.items[:0]
	removed := 0
	for _, item := range s.items {
		if item.CreatedAt.Before(ts) {
			removed++
			continue
		}
		filtered = append(filtered, item)
	}
	s.items = filtered
	return removed
}

// RecipientDirectory holds recipient profiles in memory.
type RecipientDirectory struct {
	mu         sync.RWMutex
	recipients []Recipient
}

// NewRecipientDirectory constructs an empty directory.
func NewRecipientDirectory() *RecipientDirectory {
	return &RecipientDirectory{}
}

// Add registers a recipient, generating defaults when missing. A recipient
// with an existing ID replaces the stored record.
func (d *RecipientDirectory) Add(recipient Recipient) Recipient {
	d.mu.Lock()
	defer d.mu.Unlock()

	if recipient.ID == "" {
		recipient.ID = uuid.NewString()
	}
	if recipient.Status == "" {
		recipient.Status = RecipientActive
	}
	if recipient.Language == "" {
		recipient.Language = "en"
	}

	for idx := range d.recipients {
		if d.recipients[idx].ID == recipient.ID {
			d.recipients[idx] = recipient
			return d.recipients[idx]
		}
	}

	d.recipients = append(d.recipients, recipient)
	return recipient
}

// Get looks a recipient up by ID.
func (d *RecipientDirectory) Get(id string) (Recipient, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, recipient := range d.recipients {
		if recipient.ID == id {
			return recipient, true
		}
	}
	return Recipient{}, false
}

// Select returns active recipients. With an empty ID set every active
// recipient qualifies; otherwise only active recipients among the given IDs.
func (d *RecipientDirectory) Select(ids []string) []Recipient {
	d.mu.RLock()
	defer d.mu.RUnlock()

	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}

	var out []Recipient
	for _, recipient := range d.recipients {
		if recipient.Status != RecipientActive {
			continue
		}
		if len(wanted) > 0 {
			if _, ok := wanted[recipient.ID]; !ok {
				continue
			}
		}
		out = append(out, recipient)
	}
	return out
}
