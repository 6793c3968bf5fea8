package domain

import (
	"errors"
	"strings"
	"time"
)

// ErrInvalidBookmark is returned when a bookmark payload is missing a required field.
var ErrInvalidBookmark = errors.New("invalid bookmark")

// Bookmark represents a saved link owned by exactly one user.
// Bookmarks are never updated in place: they are created, then deleted.
type Bookmark struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is the opaque unique identifier assigned by the table on insert.
	ID string `json:"id" yaml:"-"`

	// UserID is the owner. Every table read and write is scoped by it.
	UserID string `json:"user_id" yaml:"-"`

	// ─────────────────────────────
	// Content
	// ─────────────────────────────

	// URL is the saved link.
	// Example: https://example.com
	URL string `json:"url" yaml:"url"`

	// Title is the user supplied label.
	Title string `json:"title" yaml:"title"`

	// ─────────────────────────────
	// Metadata
	// ─────────────────────────────

	// CreatedAt is assigned by the table on insert and drives the initial ordering.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// NewBookmark is the insert payload. The table assigns ID and CreatedAt.
type NewBookmark struct {
	UserID string
	URL    string
	Title  string
}

// Validate checks that every field is non-blank after trimming.
func (nb NewBookmark) Validate() error {
	switch {
	case strings.TrimSpace(nb.UserID) == "":
		return errors.Join(ErrInvalidBookmark, errors.New("user_id is required"))
	case strings.TrimSpace(nb.URL) == "":
		return errors.Join(ErrInvalidBookmark, errors.New("url is required"))
	case strings.TrimSpace(nb.Title) == "":
		return errors.Join(ErrInvalidBookmark, errors.New("title is required"))
	}
	return nil
}

// CreatedLabel formats the creation date the way the dashboard shows it.
func (b Bookmark) CreatedLabel() string {
	if b.CreatedAt.IsZero() {
		return ""
	}
	return b.CreatedAt.Local().Format("Jan 02, 2006")
}
