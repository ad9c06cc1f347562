package index

import (
	"testing"

	"github.com/lumen-desktop/lumen/internal/desktop"
)

func TestNew_FirstOccurrenceWins(t *testing.T) {
	userEntry := &desktop.Entry{ID: "firefox", Name: "Firefox (user)"}
	systemEntry := &desktop.Entry{ID: "firefox", Name: "Firefox (system)"}

	ix := New([]*desktop.Entry{userEntry, systemEntry})

	if ix.Len() != 1 {
		t.Fatalf("Len() = %d; want 1", ix.Len())
	}
	got, ok := ix.Get("firefox")
	if !ok {
		t.Fatal("Get(firefox) not found")
	}
	if got.Name != "Firefox (user)" {
		t.Errorf("kept entry Name = %q; want the first occurrence", got.Name)
	}
}

func TestNew_HiddenEntriesRetainedButNotVisible(t *testing.T) {
	ix := New([]*desktop.Entry{
		{ID: "im-config", Name: "Input Method", Hidden: true},
		{ID: "firefox", Name: "Firefox"},
	})

	if ix.Len() != 2 {
		t.Fatalf("Len() = %d; want 2 (hidden entries are retained)", ix.Len())
	}
	if len(ix.Visible()) != 1 {
		t.Fatalf("Visible() has %d entries; want 1", len(ix.Visible()))
	}
	if ix.Visible()[0].ID != "firefox" {
		t.Errorf("Visible()[0].ID = %q; want firefox", ix.Visible()[0].ID)
	}
	if _, ok := ix.Get("im-config"); !ok {
		t.Error("hidden entry should still be retrievable by ID")
	}
}

func TestNew_DeterministicOrder(t *testing.T) {
	ix := New([]*desktop.Entry{
		{ID: "zed", Name: "Zed"},
		{ID: "atom", Name: "Atom"},
		{ID: "code", Name: "Code"},
	})

	want := []string{"atom", "code", "zed"}
	for i, e := range ix.All() {
		if e.ID != want[i] {
			t.Errorf("All()[%d].ID = %q; want %q", i, e.ID, want[i])
		}
	}
}

func TestHandle_SwapIsObservedByReaders(t *testing.T) {
	h := NewHandle()
	if h.Load().Len() != 0 {
		t.Fatalf("fresh handle should hold an empty index, got %d entries", h.Load().Len())
	}

	next := New([]*desktop.Entry{{ID: "firefox", Name: "Firefox"}})
	prev := h.Swap(next)

	if prev.Len() != 0 {
		t.Errorf("Swap() returned index with %d entries; want 0", prev.Len())
	}
	if h.Load() != next {
		t.Error("Load() should return the swapped-in index")
	}
}
