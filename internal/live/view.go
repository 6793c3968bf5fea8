package live

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/MrSnakeDoc/smartmark/internal/backend"
	"github.com/MrSnakeDoc/smartmark/internal/domain"
	"github.com/MrSnakeDoc/smartmark/internal/logger"
)

// ErrAlreadyActive is returned by Activate on a view that holds a subscription.
var ErrAlreadyActive = errors.New("view already active")

// Subscriber opens change feed subscriptions.
type Subscriber interface {
	Subscribe(ctx context.Context, userID string) (backend.Subscription, error)
}

// View ties a List to the owner's change feed for as long as it is displayed.
// Activate acquires the subscription, Deactivate releases it; between the two,
// every valid event is applied to the list exactly once.
type View struct {
	list   *List
	feed   Subscriber
	userID string
	logger logger.Logger

	// OnChange, when set, is called from the feed goroutine after the list changed.
	OnChange func(ev domain.ChangeEvent)

	mu   sync.Mutex
	sub  backend.Subscription
	done chan struct{}
}

// NewView builds an inactive view over list.
func NewView(list *List, feed Subscriber, userID string, log logger.Logger) *View {
	return &View{
		list:   list,
		feed:   feed,
		userID: userID,
		logger: log,
	}
}

// List returns the reconciled list.
func (v *View) List() *List { return v.list }

// Activate subscribes to the feed and starts applying events.
func (v *View) Activate(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.sub != nil {
		return ErrAlreadyActive
	}

	sub, err := v.feed.Subscribe(ctx, v.userID)
	if err != nil {
		return fmt.Errorf("activate view: %w", err)
	}

	v.sub = sub
	v.done = make(chan struct{})
	go v.consume(sub, v.done)

	v.logger.Debug("live view activated", logger.String("user_id", v.userID))
	return nil
}

// Deactivate unsubscribes and waits for the feed goroutine to stop.
// It is a no-op on an inactive view.
func (v *View) Deactivate() error {
	v.mu.Lock()
	sub, done := v.sub, v.done
	v.sub, v.done = nil, nil
	v.mu.Unlock()

	if sub == nil {
		return nil
	}

	err := sub.Close()
	<-done

	v.logger.Debug("live view deactivated", logger.String("user_id", v.userID))
	return err
}

// Active reports whether the view holds a subscription.
func (v *View) Active() bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.sub != nil
}

func (v *View) consume(sub backend.Subscription, done chan struct{}) {
	defer close(done)

	for payload := range sub.Events() {
		ev, err := domain.DecodeEvent(payload)
		if err != nil {
			v.logger.Warn("dropping invalid feed payload",
				logger.String("user_id", v.userID),
				logger.Error(err))
			continue
		}
		if ev.Kind == domain.EventInsert && ev.Record.UserID != v.userID {
			v.logger.Warn("dropping insert for another owner",
				logger.String("user_id", v.userID),
				logger.String("bookmark_id", ev.Record.ID))
			continue
		}

		if v.list.Apply(ev) && v.OnChange != nil {
			v.OnChange(ev)
		}
	}

	// Feed ended: either Deactivate closed it or the connection dropped.
	// Events missed from here on are not replayed.
	v.logger.Debug("feed subscription ended", logger.String("user_id", v.userID))
}
