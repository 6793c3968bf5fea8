package live

import (
	"context"
	"strings"
	"sync"

	"github.com/MrSnakeDoc/smartmark/internal/domain"
)

// ErrMsgRequired is shown when either field is blank.
const ErrMsgRequired = "Both URL and title are required."

// Creator issues the insert write.
type Creator interface {
	Insert(ctx context.Context, nb domain.NewBookmark) (domain.Bookmark, error)
}

// FormState is a render snapshot of the create form.
type FormState struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Error   string `json:"error"`
	Pending bool   `json:"pending"`
}

// Form is the create entry point. It validates, issues one insert per submission
// and resets its fields on success. It never touches a List: the new row shows
// up through the feed.
type Form struct {
	mu    sync.Mutex
	state FormState
}

// NewForm returns an empty form.
func NewForm() *Form {
	return &Form{}
}

// Submit runs one submission with the given field values.
// It returns false without doing anything when a submission is already pending.
func (f *Form) Submit(ctx context.Context, creator Creator, userID, rawURL, rawTitle string) bool {
	f.mu.Lock()
	if f.state.Pending {
		f.mu.Unlock()
		return false
	}

	f.state.URL = rawURL
	f.state.Title = rawTitle
	f.state.Error = ""

	url := strings.TrimSpace(rawURL)
	title := strings.TrimSpace(rawTitle)
	if url == "" || title == "" {
		f.state.Error = ErrMsgRequired
		f.mu.Unlock()
		return true
	}

	f.state.Pending = true
	f.mu.Unlock()

	_, err := creator.Insert(ctx, domain.NewBookmark{
		UserID: userID,
		URL:    url,
		Title:  title,
	})

	f.mu.Lock()
	defer f.mu.Unlock()

	if err != nil {
		f.state.Error = err.Error()
	} else {
		f.state.URL = ""
		f.state.Title = ""
	}
	f.state.Pending = false
	return true
}

// Snapshot returns the current state.
func (f *Form) Snapshot() FormState {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.state
}
