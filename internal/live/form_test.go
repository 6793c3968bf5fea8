package live

import (
	"context"
	"testing"
	"time"
)

func TestFormSubmit(t *testing.T) {
	tests := []struct {
		name        string
		url         string
		title       string
		insertErr   error
		wantInserts int
		wantErr     string
		wantURL     string
		wantTitle   string
	}{
		{
			name:        "valid submission inserts once and clears fields",
			url:         "https://example.com",
			title:       "Example",
			wantInserts: 1,
		},
		{
			name:      "empty title is rejected without a write",
			url:       "https://example.com",
			title:     "",
			wantErr:   ErrMsgRequired,
			wantURL:   "https://example.com",
			wantTitle: "",
		},
		{
			name:      "blank url is rejected without a write",
			url:       "   ",
			title:     "Example",
			wantErr:   ErrMsgRequired,
			wantURL:   "   ",
			wantTitle: "Example",
		},
		{
			name:        "title that looks like markup is accepted",
			url:         "https://example.com",
			title:       "<script>x</script>",
			wantInserts: 1,
		},
		{
			name:        "write failure keeps fields and shows the message",
			url:         "https://example.com",
			title:       "Example",
			insertErr:   errRejected,
			wantInserts: 1,
			wantErr:     errRejected.Error(),
			wantURL:     "https://example.com",
			wantTitle:   "Example",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			be := newRecordingBackend()
			be.insertErr = tt.insertErr
			f := NewForm()

			if !f.Submit(context.Background(), be, "u1", tt.url, tt.title) {
				t.Fatal("Submit() = false on an idle form")
			}

			if got := be.insertCount(); got != tt.wantInserts {
				t.Errorf("inserts = %v, want %v", got, tt.wantInserts)
			}

			st := f.Snapshot()
			if st.Error != tt.wantErr {
				t.Errorf("Error = %q, want %q", st.Error, tt.wantErr)
			}
			if st.URL != tt.wantURL || st.Title != tt.wantTitle {
				t.Errorf("fields = (%q, %q), want (%q, %q)", st.URL, st.Title, tt.wantURL, tt.wantTitle)
			}
			if st.Pending {
				t.Error("Pending = true after Submit returned")
			}
		})
	}
}

func TestFormSubmitSendsOwnerAndTrimmedValues(t *testing.T) {
	be := newRecordingBackend()
	f := NewForm()

	f.Submit(context.Background(), be, "user-42", "  https://example.com  ", "  Example &amp; co ")

	if len(be.inserts) != 1 {
		t.Fatalf("inserts = %v, want 1", len(be.inserts))
	}
	got := be.inserts[0]
	if got.UserID != "user-42" {
		t.Errorf("UserID = %q, want user-42", got.UserID)
	}
	if got.URL != "https://example.com" {
		t.Errorf("URL = %q", got.URL)
	}
	if got.Title != "Example &amp; co" {
		t.Errorf("Title = %q, want %q", got.Title, "Example &amp; co")
	}
}

func TestFormKeepsTitleVerbatim(t *testing.T) {
	titles := []string{
		"a<b and c>d",
		"<b>Bold</b> tips",
		"Using <T> in Go generics",
		"<script>x</script>",
	}

	for _, title := range titles {
		t.Run(title, func(t *testing.T) {
			be := newRecordingBackend()
			f := NewForm()

			f.Submit(context.Background(), be, "u1", "https://example.com", "  "+title+"  ")

			if len(be.inserts) != 1 {
				t.Fatalf("inserts = %v, want 1 (error %q)", len(be.inserts), f.Snapshot().Error)
			}
			if got := be.inserts[0].Title; got != title {
				t.Errorf("Title = %q, want %q", got, title)
			}
		})
	}
}

func TestFormClearsPreviousError(t *testing.T) {
	be := newRecordingBackend()
	f := NewForm()

	f.Submit(context.Background(), be, "u1", "https://example.com", "")
	if f.Snapshot().Error == "" {
		t.Fatal("expected a validation error")
	}

	f.Submit(context.Background(), be, "u1", "https://example.com", "Example")
	if st := f.Snapshot(); st.Error != "" {
		t.Errorf("Error = %q after a successful submission", st.Error)
	}
}

func TestFormIgnoresSubmitWhilePending(t *testing.T) {
	be := newRecordingBackend()
	be.release = make(chan struct{})
	f := NewForm()

	done := make(chan struct{})
	go func() {
		defer close(done)
		f.Submit(context.Background(), be, "u1", "https://example.com", "Example")
	}()

	waitFor(t, func() bool { return f.Snapshot().Pending })

	if f.Submit(context.Background(), be, "u1", "https://other.example.com", "Other") {
		t.Error("Submit() = true while a submission is pending")
	}

	close(be.release)
	<-done

	if got := be.insertCount(); got != 1 {
		t.Errorf("inserts = %v, want 1", got)
	}
}

// waitFor polls cond until it holds or the test times out.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
