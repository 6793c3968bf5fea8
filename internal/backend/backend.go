// Package backend is the data collaborator consumed by the live list and the HTTP surface:
// an owner-scoped bookmark table plus a change feed announcing every insert and delete.
package backend

import (
	"context"
	"fmt"
	"strings"

	"github.com/MrSnakeDoc/smartmark/internal/domain"
	"github.com/MrSnakeDoc/smartmark/internal/logger"
)

// Table is the relational bookmark table. Every method is scoped to one owner.
type Table interface {
	// List returns the owner's bookmarks ordered by creation time, newest first.
	List(ctx context.Context, userID string) ([]domain.Bookmark, error)
	// Insert stores a new row and returns it with ID and CreatedAt assigned.
	Insert(ctx context.Context, nb domain.NewBookmark) (domain.Bookmark, error)
	// Delete removes the owner's row with that id and reports whether one existed.
	Delete(ctx context.Context, userID, id string) (bool, error)
}

// Feed broadcasts row changes to the owner's subscribers.
type Feed interface {
	Publish(ctx context.Context, ev domain.ChangeEvent) error
	Subscribe(ctx context.Context, userID string) (Subscription, error)
}

// Subscription is a live feed handle. Payloads are raw and must be narrowed
// with domain.DecodeEvent before use. Events is closed once the subscription ends.
type Subscription interface {
	Events() <-chan []byte
	Close() error
}

// Client is the handle passed to every call site that reads or writes bookmarks.
type Client struct {
	table  Table
	feed   Feed
	logger logger.Logger
}

// NewClient wires a table and a feed together.
func NewClient(table Table, feed Feed, log logger.Logger) *Client {
	return &Client{
		table:  table,
		feed:   feed,
		logger: log,
	}
}

// List is a point-in-time ordered read of the owner's bookmarks.
func (c *Client) List(ctx context.Context, userID string) ([]domain.Bookmark, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("list bookmarks: %w", domain.ErrInvalidBookmark)
	}
	bookmarks, err := c.table.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}
	return bookmarks, nil
}

// Insert writes a row and announces it on the feed.
// A publish failure after a successful write is logged, not returned.
func (c *Client) Insert(ctx context.Context, nb domain.NewBookmark) (domain.Bookmark, error) {
	if err := nb.Validate(); err != nil {
		return domain.Bookmark{}, err
	}

	b, err := c.table.Insert(ctx, nb)
	if err != nil {
		return domain.Bookmark{}, fmt.Errorf("insert bookmark: %w", err)
	}

	if err := c.feed.Publish(ctx, domain.InsertEvent(b)); err != nil {
		c.logger.Warn("bookmark inserted but feed publish failed",
			logger.String("bookmark_id", b.ID),
			logger.String("user_id", b.UserID),
			logger.Error(err))
	}

	return b, nil
}

// Delete removes the owner's row and announces it when something was removed.
func (c *Client) Delete(ctx context.Context, userID, id string) error {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(id) == "" {
		return fmt.Errorf("delete bookmark: %w", domain.ErrInvalidBookmark)
	}

	removed, err := c.table.Delete(ctx, userID, id)
	if err != nil {
		return fmt.Errorf("delete bookmark: %w", err)
	}
	if !removed {
		c.logger.Debug("delete matched no row",
			logger.String("bookmark_id", id),
			logger.String("user_id", userID))
		return nil
	}

	if err := c.feed.Publish(ctx, domain.DeleteEvent(userID, id)); err != nil {
		c.logger.Warn("bookmark deleted but feed publish failed",
			logger.String("bookmark_id", id),
			logger.String("user_id", userID),
			logger.Error(err))
	}

	return nil
}

// Subscribe opens a feed subscription for the owner.
func (c *Client) Subscribe(ctx context.Context, userID string) (Subscription, error) {
	sub, err := c.feed.Subscribe(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("subscribe to feed: %w", err)
	}
	return sub, nil
}
