package live

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/MrSnakeDoc/smartmark/internal/logger"
)

// ErrDeleteInFlight is returned when a delete for the same ID has not resolved yet.
var ErrDeleteInFlight = errors.New("delete already in flight")

// Remover issues the delete write.
type Remover interface {
	Delete(ctx context.Context, userID, id string) error
}

// Deleter is the delete entry point. It keeps an in-flight marker per ID so the
// same row cannot be deleted twice concurrently. It never touches a List.
type Deleter struct {
	mu       sync.Mutex
	inFlight map[string]struct{}
	logger   logger.Logger
}

// NewDeleter returns a deleter reporting failures to log.
func NewDeleter(log logger.Logger) *Deleter {
	return &Deleter{
		inFlight: make(map[string]struct{}),
		logger:   log,
	}
}

// Begin marks id in flight. It returns false when it already was.
func (d *Deleter) Begin(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, busy := d.inFlight[id]; busy {
		return false
	}
	d.inFlight[id] = struct{}{}
	return true
}

func (d *Deleter) end(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	delete(d.inFlight, id)
}

// Delete issues one delete for id. Failures are logged and returned,
// and the marker is cleared either way.
func (d *Deleter) Delete(ctx context.Context, remover Remover, userID, id string) error {
	if !d.Begin(id) {
		return ErrDeleteInFlight
	}
	return d.run(ctx, remover, userID, id)
}

// run performs the write for an id already marked by Begin.
func (d *Deleter) run(ctx context.Context, remover Remover, userID, id string) error {
	defer d.end(id)

	if err := remover.Delete(ctx, userID, id); err != nil {
		d.logger.Error("failed to delete bookmark",
			logger.String("bookmark_id", id),
			logger.String("user_id", userID),
			logger.Error(err))
		return err
	}
	return nil
}

// InFlight reports whether a delete for id is pending.
func (d *Deleter) InFlight(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	_, busy := d.inFlight[id]
	return busy
}

// Pending returns the IDs with a delete in flight, sorted.
func (d *Deleter) Pending() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	ids := make([]string, 0, len(d.inFlight))
	for id := range d.inFlight {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
