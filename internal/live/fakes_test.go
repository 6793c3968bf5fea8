package live

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/MrSnakeDoc/smartmark/internal/backend"
	"github.com/MrSnakeDoc/smartmark/internal/domain"
)

// recordingBackend records writes and can be told to fail or block them.
type recordingBackend struct {
	mu      sync.Mutex
	inserts []domain.NewBookmark
	deletes []string
	seed    []domain.Bookmark

	insertErr error
	deleteErr error
	release   chan struct{} // when set, writes wait for it

	feed *backend.LocalFeed
}

func newRecordingBackend() *recordingBackend {
	return &recordingBackend{feed: backend.NewLocalFeed(0)}
}

func (r *recordingBackend) wait() {
	if r.release != nil {
		<-r.release
	}
}

func (r *recordingBackend) Insert(_ context.Context, nb domain.NewBookmark) (domain.Bookmark, error) {
	r.wait()

	r.mu.Lock()
	r.inserts = append(r.inserts, nb)
	err := r.insertErr
	id := fmt.Sprintf("bm-%d", len(r.inserts))
	r.mu.Unlock()

	if err != nil {
		return domain.Bookmark{}, err
	}
	b := domain.Bookmark{ID: id, UserID: nb.UserID, URL: nb.URL, Title: nb.Title}
	_ = r.feed.Publish(context.Background(), domain.InsertEvent(b))
	return b, nil
}

func (r *recordingBackend) Delete(_ context.Context, userID, id string) error {
	r.wait()

	r.mu.Lock()
	r.deletes = append(r.deletes, id)
	err := r.deleteErr
	r.mu.Unlock()

	if err != nil {
		return err
	}
	return r.feed.Publish(context.Background(), domain.DeleteEvent(userID, id))
}

func (r *recordingBackend) List(context.Context, string) ([]domain.Bookmark, error) {
	return r.seed, nil
}

func (r *recordingBackend) Subscribe(ctx context.Context, userID string) (backend.Subscription, error) {
	return r.feed.Subscribe(ctx, userID)
}

func (r *recordingBackend) insertCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.inserts)
}

func (r *recordingBackend) deleteCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.deletes)
}

var errRejected = errors.New("new row violates row-level security policy")

// rawSubscription feeds hand-written payloads to a View.
type rawSubscription struct {
	ch   chan []byte
	once sync.Once
}

func (s *rawSubscription) Events() <-chan []byte { return s.ch }

func (s *rawSubscription) Close() error {
	s.once.Do(func() { close(s.ch) })
	return nil
}

type rawSubscriber struct{ sub *rawSubscription }

func newRawSubscriber() *rawSubscriber {
	return &rawSubscriber{sub: &rawSubscription{ch: make(chan []byte, 16)}}
}

func (r *rawSubscriber) Subscribe(context.Context, string) (backend.Subscription, error) {
	return r.sub, nil
}
