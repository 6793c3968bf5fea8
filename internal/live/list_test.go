package live

import (
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/MrSnakeDoc/smartmark/internal/domain"
)

func bm(id string) domain.Bookmark {
	return domain.Bookmark{
		ID:        id,
		UserID:    "u1",
		URL:       "https://" + id + ".example.com",
		Title:     id,
		CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func ids(items []domain.Bookmark) []string {
	out := make([]string, len(items))
	for i, b := range items {
		out[i] = b.ID
	}
	return out
}

func equalIDs(t *testing.T, got []domain.Bookmark, want ...string) {
	t.Helper()

	g := ids(got)
	if len(g) != len(want) {
		t.Fatalf("ids = %v, want %v", g, want)
	}
	for i := range g {
		if g[i] != want[i] {
			t.Fatalf("ids = %v, want %v", g, want)
		}
	}
}

func TestNewListKeepsSeedOrder(t *testing.T) {
	l := NewList([]domain.Bookmark{bm("c"), bm("b"), bm("a")})
	equalIDs(t, l.Items(), "c", "b", "a")
}

func TestNewListDropsDuplicateSeedIDs(t *testing.T) {
	l := NewList([]domain.Bookmark{bm("c"), bm("b"), bm("c")})
	equalIDs(t, l.Items(), "c", "b")
	if l.Len() != 2 {
		t.Errorf("Len() = %v, want 2", l.Len())
	}
}

func TestApplyInsertPrepends(t *testing.T) {
	l := NewList([]domain.Bookmark{bm("b"), bm("a")})

	if !l.ApplyInsert(bm("c")) {
		t.Error("ApplyInsert() = false for a new id")
	}
	equalIDs(t, l.Items(), "c", "b", "a")
}

func TestApplyInsertIsIdempotent(t *testing.T) {
	l := NewList([]domain.Bookmark{bm("a")})

	if l.ApplyInsert(bm("a")) {
		t.Error("ApplyInsert() = true for an id already present")
	}
	l.ApplyInsert(bm("b"))
	if l.ApplyInsert(bm("b")) {
		t.Error("second ApplyInsert() should be a no-op")
	}
	equalIDs(t, l.Items(), "b", "a")
}

func TestApplyDelete(t *testing.T) {
	l := NewList([]domain.Bookmark{bm("c"), bm("b"), bm("a")})

	if !l.ApplyDelete("b") {
		t.Error("ApplyDelete() = false for a present id")
	}
	equalIDs(t, l.Items(), "c", "a")
	if l.Contains("b") {
		t.Error("Contains() = true after delete")
	}
}

func TestApplyDeleteMissingIsNoop(t *testing.T) {
	l := NewList([]domain.Bookmark{bm("a")})

	if l.ApplyDelete("zzz") {
		t.Error("ApplyDelete() = true for a missing id")
	}
	equalIDs(t, l.Items(), "a")
}

func TestApplyDispatch(t *testing.T) {
	l := NewList(nil)

	if !l.Apply(domain.InsertEvent(bm("a"))) {
		t.Error("Apply(insert) = false")
	}
	if l.Apply(domain.ChangeEvent{Kind: domain.EventInsert}) {
		t.Error("Apply(insert without record) = true")
	}
	if l.Apply(domain.ChangeEvent{Kind: "UPDATE", ID: "a"}) {
		t.Error("Apply(unknown kind) = true")
	}
	if !l.Apply(domain.DeleteEvent("u1", "a")) {
		t.Error("Apply(delete) = false")
	}
	if l.Len() != 0 {
		t.Errorf("Len() = %v, want 0", l.Len())
	}
}

func TestItemsReturnsSnapshot(t *testing.T) {
	l := NewList([]domain.Bookmark{bm("b"), bm("a")})

	snapshot := l.Items()
	l.ApplyInsert(bm("c"))
	l.ApplyDelete("a")

	equalIDs(t, snapshot, "b", "a")
	equalIDs(t, l.Items(), "c", "b")
}

// TestRandomEventSequences checks that, whatever the order and duplication of
// events, the list holds exactly the IDs inserted and not deleted afterwards.
func TestRandomEventSequences(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 200; round++ {
		l := NewList(nil)
		want := make(map[string]bool)

		for step := 0; step < 50; step++ {
			id := fmt.Sprintf("id-%d", rng.Intn(8))
			if rng.Intn(3) == 0 {
				l.ApplyDelete(id)
				delete(want, id)
			} else {
				l.ApplyInsert(bm(id))
				want[id] = true
			}
		}

		items := l.Items()
		seen := make(map[string]bool, len(items))
		for _, b := range items {
			if seen[b.ID] {
				t.Fatalf("round %d: duplicate id %v in %v", round, b.ID, ids(items))
			}
			seen[b.ID] = true
			if !want[b.ID] {
				t.Fatalf("round %d: unexpected id %v", round, b.ID)
			}
		}
		if len(seen) != len(want) {
			t.Fatalf("round %d: got %v, want set %v", round, ids(items), want)
		}
	}
}

func TestConcurrentApply(t *testing.T) {
	l := NewList(nil)

	var wg sync.WaitGroup

	// Concurrent duplicate inserts
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			l.ApplyInsert(bm(fmt.Sprintf("id-%d", i%10)))
		}(i)
	}

	// Concurrent reads
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = l.Items()
		}()
	}

	wg.Wait()

	if l.Len() != 10 {
		t.Errorf("Len() = %v after concurrent duplicate inserts, want 10", l.Len())
	}
}
