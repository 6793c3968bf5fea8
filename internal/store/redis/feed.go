package redis

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/smartmark/internal/backend"
	"github.com/MrSnakeDoc/smartmark/internal/domain"
)

// Publish announces a bookmark change on the owner's channel
func (s *Store) Publish(ctx context.Context, ev domain.ChangeEvent) error {
	payload, err := domain.EncodeEvent(ev)
	if err != nil {
		return fmt.Errorf("failed to encode change event: %w", err)
	}
	if err := s.client.Publish(ctx, FeedChannel(ev.UserID), payload).Err(); err != nil {
		return fmt.Errorf("failed to publish change event: %w", err)
	}
	return nil
}

// Subscribe opens a Pub/Sub subscription on the owner's channel.
// It returns once Redis confirmed the subscription, so no event published
// afterwards can be missed by this subscriber.
func (s *Store) Subscribe(ctx context.Context, userID string) (backend.Subscription, error) {
	ps := s.client.Subscribe(ctx, FeedChannel(userID))
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("failed to subscribe to feed: %w", err)
	}

	sub := &feedSubscription{
		ps:   ps,
		ch:   make(chan []byte, s.feedBuffer),
		done: make(chan struct{}),
	}
	go sub.pump()
	return sub, nil
}

type feedSubscription struct {
	ps   *redis.PubSub
	ch   chan []byte
	done chan struct{}
	once sync.Once
}

// pump copies Redis messages to ch until the subscription is closed.
func (s *feedSubscription) pump() {
	defer close(s.ch)

	msgs := s.ps.Channel()
	for {
		select {
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			select {
			case s.ch <- []byte(msg.Payload):
			case <-s.done:
				return
			}
		case <-s.done:
			return
		}
	}
}

func (s *feedSubscription) Events() <-chan []byte { return s.ch }

func (s *feedSubscription) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.ps.Close()
	})
	return err
}
