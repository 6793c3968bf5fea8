package live

import (
	"sync"

	"github.com/MrSnakeDoc/smartmark/internal/domain"
)

// List is the reconciled, ordered view of one user's bookmarks.
// It is seeded from a point-in-time read, then only changed by feed events:
// inserts are prepended, deletes remove by ID, both are idempotent.
type List struct {
	mu    sync.RWMutex
	items []domain.Bookmark   // newest first
	ids   map[string]struct{} // IDs present in items
}

// NewList seeds a list. Duplicate IDs in the seed keep their first occurrence.
func NewList(seed []domain.Bookmark) *List {
	l := &List{
		items: make([]domain.Bookmark, 0, len(seed)),
		ids:   make(map[string]struct{}, len(seed)),
	}
	for _, b := range seed {
		if _, dup := l.ids[b.ID]; dup {
			continue
		}
		l.ids[b.ID] = struct{}{}
		l.items = append(l.items, b)
	}
	return l
}

// Apply dispatches a change event and reports whether the list changed.
func (l *List) Apply(ev domain.ChangeEvent) bool {
	switch ev.Kind {
	case domain.EventInsert:
		if ev.Record == nil {
			return false
		}
		return l.ApplyInsert(*ev.Record)
	case domain.EventDelete:
		return l.ApplyDelete(ev.ID)
	default:
		return false
	}
}

// ApplyInsert prepends b unless its ID is already present.
func (l *List) ApplyInsert(b domain.Bookmark) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.ids[b.ID]; ok {
		return false
	}

	items := make([]domain.Bookmark, 0, len(l.items)+1)
	items = append(items, b)
	l.items = append(items, l.items...)
	l.ids[b.ID] = struct{}{}
	return true
}

// ApplyDelete removes the element with that ID, if any.
func (l *List) ApplyDelete(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.ids[id]; !ok {
		return false
	}

	for i := range l.items {
		if l.items[i].ID == id {
			l.items = append(l.items[:i:i], l.items[i+1:]...)
			break
		}
	}
	delete(l.ids, id)
	return true
}

// Items returns a snapshot of the list, newest first.
func (l *List) Items() []domain.Bookmark {
	l.mu.RLock()
	defer l.mu.RUnlock()

	items := make([]domain.Bookmark, len(l.items))
	copy(items, l.items)
	return items
}

// Len returns the number of bookmarks.
func (l *List) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return len(l.items)
}

// Contains reports whether id is present.
func (l *List) Contains(id string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	_, ok := l.ids[id]
	return ok
}
