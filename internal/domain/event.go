package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// EventKind is the kind of row change carried by the change feed.
type EventKind string

const (
	EventInsert EventKind = "INSERT"
	EventDelete EventKind = "DELETE"
)

// ErrInvalidEvent is returned by DecodeEvent for payloads that cannot be narrowed.
var ErrInvalidEvent = errors.New("invalid change event")

// ChangeEvent is a strict, validated row change.
// Insert events carry the full Record; delete events carry only ID.
type ChangeEvent struct {
	Kind   EventKind
	UserID string
	Record *Bookmark
	ID     string
}

// InsertEvent builds the event published after a successful insert.
func InsertEvent(b Bookmark) ChangeEvent {
	return ChangeEvent{Kind: EventInsert, UserID: b.UserID, Record: &b, ID: b.ID}
}

// DeleteEvent builds the event published after a successful delete.
func DeleteEvent(userID, id string) ChangeEvent {
	return ChangeEvent{Kind: EventDelete, UserID: userID, ID: id}
}

// wireEvent is the loose shape on the feed.
// Unknown fields are ignored, known ones are checked by DecodeEvent.
type wireEvent struct {
	Type   string         `json:"type"`
	Table  string         `json:"table,omitempty"`
	New    map[string]any `json:"new,omitempty"`
	Old    map[string]any `json:"old,omitempty"`
	UserID string         `json:"user_id,omitempty"`
}

// TableBookmarks is the table name stamped on every published event.
const TableBookmarks = "bookmarks"

// EncodeEvent serializes ev into its feed representation.
func EncodeEvent(ev ChangeEvent) ([]byte, error) {
	w := wireEvent{Type: string(ev.Kind), Table: TableBookmarks, UserID: ev.UserID}
	switch ev.Kind {
	case EventInsert:
		if ev.Record == nil {
			return nil, fmt.Errorf("%w: insert without record", ErrInvalidEvent)
		}
		w.New = map[string]any{
			"id":         ev.Record.ID,
			"user_id":    ev.Record.UserID,
			"url":        ev.Record.URL,
			"title":      ev.Record.Title,
			"created_at": ev.Record.CreatedAt.UTC().Format(time.RFC3339Nano),
		}
	case EventDelete:
		w.Old = map[string]any{"id": ev.ID}
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidEvent, ev.Kind)
	}
	return json.Marshal(w)
}

// DecodeEvent narrows a raw feed payload into a ChangeEvent.
// Anything that is not a well-formed insert or delete for the bookmarks table is rejected.
func DecodeEvent(payload []byte) (ChangeEvent, error) {
	var w wireEvent
	if err := json.Unmarshal(payload, &w); err != nil {
		return ChangeEvent{}, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	if w.Table != "" && w.Table != TableBookmarks {
		return ChangeEvent{}, fmt.Errorf("%w: table %q", ErrInvalidEvent, w.Table)
	}

	switch EventKind(strings.ToUpper(w.Type)) {
	case EventInsert:
		b, err := narrowBookmark(w.New)
		if err != nil {
			return ChangeEvent{}, err
		}
		return InsertEvent(b), nil
	case EventDelete:
		id, ok := stringField(w.Old, "id")
		if !ok {
			return ChangeEvent{}, fmt.Errorf("%w: delete without id", ErrInvalidEvent)
		}
		return DeleteEvent(w.UserID, id), nil
	default:
		return ChangeEvent{}, fmt.Errorf("%w: unsupported type %q", ErrInvalidEvent, w.Type)
	}
}

func narrowBookmark(row map[string]any) (Bookmark, error) {
	if row == nil {
		return Bookmark{}, fmt.Errorf("%w: insert without record", ErrInvalidEvent)
	}

	var b Bookmark
	var ok bool
	if b.ID, ok = stringField(row, "id"); !ok {
		return Bookmark{}, fmt.Errorf("%w: record without id", ErrInvalidEvent)
	}
	if b.UserID, ok = stringField(row, "user_id"); !ok {
		return Bookmark{}, fmt.Errorf("%w: record without user_id", ErrInvalidEvent)
	}
	if b.URL, ok = stringField(row, "url"); !ok {
		return Bookmark{}, fmt.Errorf("%w: record without url", ErrInvalidEvent)
	}
	if b.Title, ok = stringField(row, "title"); !ok {
		return Bookmark{}, fmt.Errorf("%w: record without title", ErrInvalidEvent)
	}

	raw, ok := stringField(row, "created_at")
	if !ok {
		return Bookmark{}, fmt.Errorf("%w: record without created_at", ErrInvalidEvent)
	}
	created, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return Bookmark{}, fmt.Errorf("%w: created_at: %v", ErrInvalidEvent, err)
	}
	b.CreatedAt = created

	return b, nil
}

// stringField returns a non-empty string value for key.
func stringField(row map[string]any, key string) (string, bool) {
	v, ok := row[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}
