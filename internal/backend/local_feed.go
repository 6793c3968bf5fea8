package backend

import (
	"context"
	"sync"

	"github.com/MrSnakeDoc/smartmark/internal/domain"
)

// DefaultSubscriberBuffer is the per-subscriber queue depth of LocalFeed.
const DefaultSubscriberBuffer = 64

// LocalFeed is an in-process change feed for single-instance deployments.
// A subscriber whose buffer is full misses the event: there is no replay.
type LocalFeed struct {
	mu     sync.RWMutex
	subs   map[string]map[*localSubscription]struct{} // userID -> subscribers
	buffer int
}

// NewLocalFeed creates an empty in-process feed.
func NewLocalFeed(buffer int) *LocalFeed {
	if buffer <= 0 {
		buffer = DefaultSubscriberBuffer
	}
	return &LocalFeed{
		subs:   make(map[string]map[*localSubscription]struct{}),
		buffer: buffer,
	}
}

// Publish encodes ev and hands it to every subscriber of the owner.
func (f *LocalFeed) Publish(_ context.Context, ev domain.ChangeEvent) error {
	payload, err := domain.EncodeEvent(ev)
	if err != nil {
		return err
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	for sub := range f.subs[ev.UserID] {
		sub.deliver(payload)
	}
	return nil
}

// Subscribe registers a subscriber for the owner's events.
func (f *LocalFeed) Subscribe(_ context.Context, userID string) (Subscription, error) {
	sub := &localSubscription{
		feed:   f,
		userID: userID,
		ch:     make(chan []byte, f.buffer),
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.subs[userID] == nil {
		f.subs[userID] = make(map[*localSubscription]struct{})
	}
	f.subs[userID][sub] = struct{}{}
	return sub, nil
}

// Subscribers returns the number of live subscriptions for the owner.
func (f *LocalFeed) Subscribers(userID string) int {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return len(f.subs[userID])
}

func (f *LocalFeed) remove(sub *localSubscription) {
	f.mu.Lock()
	defer f.mu.Unlock()

	set := f.subs[sub.userID]
	delete(set, sub)
	if len(set) == 0 {
		delete(f.subs, sub.userID)
	}
}

type localSubscription struct {
	feed   *LocalFeed
	userID string

	mu     sync.Mutex
	ch     chan []byte
	closed bool
}

func (s *localSubscription) deliver(payload []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	select {
	case s.ch <- payload:
	default:
		// slow subscriber, event dropped
	}
}

func (s *localSubscription) Events() <-chan []byte { return s.ch }

func (s *localSubscription) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.ch)
	s.mu.Unlock()

	s.feed.remove(s)
	return nil
}
