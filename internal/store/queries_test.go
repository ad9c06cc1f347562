package store

import (
	"testing"
	"time"
)

func TestRecordLaunch_AndUsageCounts(t *testing.T) {
	s := setupTestStore(t)
	now := time.Now()

	for i := 0; i < 5; i++ {
		if err := s.RecordLaunch("firefox", now.Add(-time.Duration(i)*time.Hour)); err != nil {
			t.Fatalf("RecordLaunch() failed: %v", err)
		}
	}
	if err := s.RecordLaunch("gimp", now.Add(-40*24*time.Hour)); err != nil {
		t.Fatalf("RecordLaunch() failed: %v", err)
	}

	counts, err := s.UsageCounts(now.Add(-30 * 24 * time.Hour))
	if err != nil {
		t.Fatalf("UsageCounts() failed: %v", err)
	}

	if counts["firefox"] != 5 {
		t.Errorf("firefox count = %d; want 5", counts["firefox"])
	}
	if _, ok := counts["gimp"]; ok {
		t.Error("gimp launched outside the window should not be counted")
	}
}

func TestLastUsed(t *testing.T) {
	s := setupTestStore(t)

	last, err := s.LastUsed("firefox")
	if err != nil {
		t.Fatalf("LastUsed() failed: %v", err)
	}
	if last != nil {
		t.Errorf("LastUsed() = %v for a never-launched app; want nil", last)
	}

	first := time.Now().Add(-2 * time.Hour).Truncate(time.Second)
	second := time.Now().Add(-1 * time.Hour).Truncate(time.Second)
	if err := s.RecordLaunch("firefox", first); err != nil {
		t.Fatalf("RecordLaunch() failed: %v", err)
	}
	if err := s.RecordLaunch("firefox", second); err != nil {
		t.Fatalf("RecordLaunch() failed: %v", err)
	}

	last, err = s.LastUsed("firefox")
	if err != nil {
		t.Fatalf("LastUsed() failed: %v", err)
	}
	if last == nil || !last.Equal(second) {
		t.Errorf("LastUsed() = %v; want %v", last, second)
	}
}

func TestPruneEvents(t *testing.T) {
	s := setupTestStore(t)
	now := time.Now()

	if err := s.RecordLaunch("old", now.Add(-60*24*time.Hour)); err != nil {
		t.Fatalf("RecordLaunch() failed: %v", err)
	}
	if err := s.RecordLaunch("recent", now); err != nil {
		t.Fatalf("RecordLaunch() failed: %v", err)
	}

	removed, err := s.PruneEvents(now.Add(-30 * 24 * time.Hour))
	if err != nil {
		t.Fatalf("PruneEvents() failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("PruneEvents() removed %d; want 1", removed)
	}

	total, err := s.EventCount()
	if err != nil {
		t.Fatalf("EventCount() failed: %v", err)
	}
	if total != 1 {
		t.Errorf("EventCount() = %d after prune; want 1", total)
	}
}

func TestListStats_JoinsSnapshotNames(t *testing.T) {
	s := setupTestStore(t)
	now := time.Now()

	if err := s.RecordLaunch("firefox", now); err != nil {
		t.Fatalf("RecordLaunch() failed: %v", err)
	}
	if err := s.RecordLaunch("firefox", now.Add(-time.Hour)); err != nil {
		t.Fatalf("RecordLaunch() failed: %v", err)
	}
	if err := s.RecordLaunch("vanished", now); err != nil {
		t.Fatalf("RecordLaunch() failed: %v", err)
	}

	if _, err := s.DB().Exec(
		`INSERT INTO apps (id, name, exec, icon, descriptor_path, terminal, hidden, scanned_at)
		 VALUES ('firefox', 'Firefox', 'firefox %u', 'firefox', '/p/firefox.desktop', 0, 0, ?)`,
		now.Format(time.RFC3339),
	); err != nil {
		t.Fatalf("failed to seed snapshot: %v", err)
	}

	stats, err := s.ListStats(now.Add(-24 * time.Hour))
	if err != nil {
		t.Fatalf("ListStats() failed: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("ListStats() returned %d rows; want 2", len(stats))
	}

	// Ordered by launch count descending.
	if stats[0].AppID != "firefox" || stats[0].Launches != 2 {
		t.Errorf("stats[0] = %+v; want firefox with 2 launches", stats[0])
	}
	if stats[0].Name != "Firefox" {
		t.Errorf("stats[0].Name = %q; want snapshot display name", stats[0].Name)
	}
	if stats[1].Name != "vanished" {
		t.Errorf("stats[1].Name = %q; want bare identifier fallback", stats[1].Name)
	}
}

func TestUsageSnapshot(t *testing.T) {
	u := NewUsage(map[string]int{"firefox": 5, "gimp": 1})

	if u.Count("firefox") != 5 {
		t.Errorf("Count(firefox) = %d; want 5", u.Count("firefox"))
	}
	if u.Count("unknown") != 0 {
		t.Errorf("Count(unknown) = %d; want 0", u.Count("unknown"))
	}
	if u.Max() != 5 {
		t.Errorf("Max() = %d; want 5", u.Max())
	}

	bumped := u.Incremented("gimp")
	if bumped.Count("gimp") != 2 {
		t.Errorf("Incremented snapshot Count(gimp) = %d; want 2", bumped.Count("gimp"))
	}
	if u.Count("gimp") != 1 {
		t.Error("Incremented() must not mutate the original snapshot")
	}

	empty := EmptyUsage()
	if empty.Max() != 0 || empty.Count("anything") != 0 {
		t.Error("EmptyUsage() should report zero weights for every entry")
	}
}
