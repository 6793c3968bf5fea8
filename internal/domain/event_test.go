package domain

import (
	"errors"
	"testing"
	"time"
)

func TestEncodeDecodeInsert(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)
	b := Bookmark{
		ID:        "b1",
		UserID:    "u1",
		URL:       "https://example.com",
		Title:     "Example",
		CreatedAt: created,
	}

	payload, err := EncodeEvent(InsertEvent(b))
	if err != nil {
		t.Fatalf("EncodeEvent() error = %v", err)
	}

	ev, err := DecodeEvent(payload)
	if err != nil {
		t.Fatalf("DecodeEvent() error = %v", err)
	}
	if ev.Kind != EventInsert {
		t.Fatalf("DecodeEvent() kind = %v, want %v", ev.Kind, EventInsert)
	}
	if ev.Record == nil {
		t.Fatal("DecodeEvent() insert without record")
	}
	if ev.Record.ID != "b1" || ev.Record.URL != b.URL || ev.Record.Title != b.Title || ev.Record.UserID != "u1" {
		t.Errorf("DecodeEvent() record = %+v, want %+v", *ev.Record, b)
	}
	if !ev.Record.CreatedAt.Equal(created) {
		t.Errorf("DecodeEvent() created_at = %v, want %v", ev.Record.CreatedAt, created)
	}
}

func TestEncodeDecodeDelete(t *testing.T) {
	payload, err := EncodeEvent(DeleteEvent("u1", "b1"))
	if err != nil {
		t.Fatalf("EncodeEvent() error = %v", err)
	}

	ev, err := DecodeEvent(payload)
	if err != nil {
		t.Fatalf("DecodeEvent() error = %v", err)
	}
	if ev.Kind != EventDelete || ev.ID != "b1" {
		t.Errorf("DecodeEvent() = %+v, want delete of b1", ev)
	}
	if ev.Record != nil {
		t.Errorf("DecodeEvent() delete should not carry a record")
	}
}

func TestDecodeEventRejectsLoosePayloads(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{name: "not json", payload: `nope`},
		{name: "update events are unsupported", payload: `{"type":"UPDATE","new":{"id":"x"}}`},
		{name: "other table", payload: `{"type":"DELETE","table":"users","old":{"id":"x"}}`},
		{name: "insert without record", payload: `{"type":"INSERT"}`},
		{name: "insert with numeric id", payload: `{"type":"INSERT","new":{"id":1,"user_id":"u","url":"https://a","title":"a","created_at":"2026-01-01T00:00:00Z"}}`},
		{name: "insert missing title", payload: `{"type":"INSERT","new":{"id":"x","user_id":"u","url":"https://a","created_at":"2026-01-01T00:00:00Z"}}`},
		{name: "insert bad timestamp", payload: `{"type":"INSERT","new":{"id":"x","user_id":"u","url":"https://a","title":"a","created_at":"yesterday"}}`},
		{name: "delete without id", payload: `{"type":"DELETE","old":{}}`},
		{name: "delete with empty id", payload: `{"type":"DELETE","old":{"id":""}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeEvent([]byte(tt.payload))
			if !errors.Is(err, ErrInvalidEvent) {
				t.Errorf("DecodeEvent() error = %v, want ErrInvalidEvent", err)
			}
		})
	}
}

func TestDecodeEventLowercaseType(t *testing.T) {
	ev, err := DecodeEvent([]byte(`{"type":"delete","old":{"id":"b9"}}`))
	if err != nil {
		t.Fatalf("DecodeEvent() error = %v", err)
	}
	if ev.Kind != EventDelete || ev.ID != "b9" {
		t.Errorf("DecodeEvent() = %+v, want delete of b9", ev)
	}
}

func TestEncodeEventRejectsInsertWithoutRecord(t *testing.T) {
	_, err := EncodeEvent(ChangeEvent{Kind: EventInsert})
	if !errors.Is(err, ErrInvalidEvent) {
		t.Errorf("EncodeEvent() error = %v, want ErrInvalidEvent", err)
	}
}
