package kvstore

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"soberly/internal/models"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	store := New(db)
	if err := store.EnsureSchema(); err != nil {
		t.Fatalf("EnsureSchema() returned unexpected error: %v", err)
	}
	return store
}

func TestSnapshotEmpty(t *testing.T) {
	store := setupTestStore(t)

	state, err := store.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot() returned unexpected error: %v", err)
	}

	if state.IsTracking() {
		t.Error("fresh store reports IsTracking() = true, want false")
	}
	if state.DailyStatus != models.StatusSuccess {
		t.Errorf("fresh store DailyStatus = %q, want %q", state.DailyStatus, models.StatusSuccess)
	}
	if state.ShakyCountToday != 0 || len(state.ShakyTimestamps) != 0 {
		t.Errorf("fresh store has shaky data: count=%d timestamps=%d", state.ShakyCountToday, len(state.ShakyTimestamps))
	}
	if state.ComfortReady || state.ComfortShown {
		t.Error("fresh store has comfort flags set")
	}
}

func TestEditRoundTrip(t *testing.T) {
	store := setupTestStore(t)

	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.Local)
	last := time.Date(2026, 8, 30, 0, 0, 0, 0, time.Local)
	shaky := []time.Time{
		time.Date(2026, 8, 30, 14, 10, 0, 0, time.Local),
		time.Date(2026, 8, 30, 19, 45, 30, 0, time.Local),
	}

	_, err := store.Edit(func(state *models.DayState) {
		state.StartDate = &start
		state.CurrentStreak = 29
		state.LastRecordDate = &last
		state.DailyStatus = models.StatusShaky
		state.ShakyTimestamps = shaky
		state.ShakyCountToday = len(shaky)
		state.ComfortReady = true
	})
	if err != nil {
		t.Fatalf("Edit() returned unexpected error: %v", err)
	}

	got, err := store.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot() returned unexpected error: %v", err)
	}

	if got.StartDate == nil || !got.StartDate.Equal(start) {
		t.Errorf("StartDate = %v, want %v", got.StartDate, start)
	}
	if got.CurrentStreak != 29 {
		t.Errorf("CurrentStreak = %d, want 29", got.CurrentStreak)
	}
	if got.LastRecordDate == nil || !got.LastRecordDate.Equal(last) {
		t.Errorf("LastRecordDate = %v, want %v", got.LastRecordDate, last)
	}
	if got.DailyStatus != models.StatusShaky {
		t.Errorf("DailyStatus = %q, want %q", got.DailyStatus, models.StatusShaky)
	}
	if len(got.ShakyTimestamps) != 2 {
		t.Fatalf("len(ShakyTimestamps) = %d, want 2", len(got.ShakyTimestamps))
	}
	for i := range shaky {
		if !got.ShakyTimestamps[i].Equal(shaky[i]) {
			t.Errorf("ShakyTimestamps[%d] = %v, want %v", i, got.ShakyTimestamps[i], shaky[i])
		}
	}
	if !got.ComfortReady {
		t.Error("ComfortReady = false, want true")
	}
	if got.ComfortShown {
		t.Error("ComfortShown = true, want false")
	}
}

func TestShakyCountMatchesTimestamps(t *testing.T) {
	store := setupTestStore(t)

	for i := 0; i < 3; i++ {
		state, err := store.Edit(func(state *models.DayState) {
			state.ShakyTimestamps = append(state.ShakyTimestamps, time.Now())
			state.ShakyCountToday = len(state.ShakyTimestamps)
		})
		if err != nil {
			t.Fatalf("Edit() returned unexpected error: %v", err)
		}
		if state.ShakyCountToday != len(state.ShakyTimestamps) {
			t.Errorf("after edit %d: count = %d, timestamps = %d", i+1, state.ShakyCountToday, len(state.ShakyTimestamps))
		}
	}

	got, err := store.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot() returned unexpected error: %v", err)
	}
	if got.ShakyCountToday != 3 || len(got.ShakyTimestamps) != 3 {
		t.Errorf("persisted count = %d, timestamps = %d, want 3 and 3", got.ShakyCountToday, len(got.ShakyTimestamps))
	}
}

func TestResetHelpers(t *testing.T) {
	t.Run("reset daily data clears status", func(t *testing.T) {
		state := models.DayState{
			DailyStatus:     models.StatusShaky,
			ShakyCountToday: 2,
			ShakyTimestamps: []time.Time{time.Now(), time.Now()},
			ComfortReady:    true,
			ComfortShown:    true,
			CurrentStreak:   5,
		}
		ResetDailyData(&state)

		if state.DailyStatus != models.StatusSuccess {
			t.Errorf("DailyStatus = %q, want %q", state.DailyStatus, models.StatusSuccess)
		}
		if state.ShakyCountToday != 0 || state.ShakyTimestamps != nil {
			t.Error("shaky data not cleared")
		}
		if state.ComfortReady || state.ComfortShown {
			t.Error("comfort flags not cleared")
		}
		if state.CurrentStreak != 5 {
			t.Errorf("CurrentStreak = %d, want 5 (must not be touched)", state.CurrentStreak)
		}
	})

	t.Run("rollover reset preserves status", func(t *testing.T) {
		state := models.DayState{
			DailyStatus:     models.StatusFail,
			ShakyCountToday: 1,
			ShakyTimestamps: []time.Time{time.Now()},
			ComfortReady:    true,
		}
		ResetShakyAndComfort(&state)

		if state.DailyStatus != models.StatusFail {
			t.Errorf("DailyStatus = %q, want %q", state.DailyStatus, models.StatusFail)
		}
		if state.ShakyCountToday != 0 || state.ShakyTimestamps != nil {
			t.Error("shaky data not cleared")
		}
		if state.ComfortReady {
			t.Error("comfort flag not cleared")
		}
	})
}

func TestSubscribe(t *testing.T) {
	store := setupTestStore(t)

	var got []models.DayState
	cancel := store.Subscribe(func(state models.DayState) {
		got = append(got, state)
	})

	if _, err := store.Edit(func(state *models.DayState) {
		state.CurrentStreak = 1
	}); err != nil {
		t.Fatalf("Edit() returned unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].CurrentStreak != 1 {
		t.Fatalf("subscriber saw %d notifications, want 1 with streak 1", len(got))
	}

	cancel()
	if _, err := store.Edit(func(state *models.DayState) {
		state.CurrentStreak = 2
	}); err != nil {
		t.Fatalf("Edit() returned unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("cancelled subscriber saw %d notifications, want 1", len(got))
	}
}

func TestClear(t *testing.T) {
	store := setupTestStore(t)

	start := time.Now()
	if _, err := store.Edit(func(state *models.DayState) {
		state.StartDate = &start
		state.CurrentStreak = 10
	}); err != nil {
		t.Fatalf("Edit() returned unexpected error: %v", err)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear() returned unexpected error: %v", err)
	}

	got, err := store.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot() returned unexpected error: %v", err)
	}
	if got.IsTracking() || got.CurrentStreak != 0 {
		t.Errorf("state after Clear() = %+v, want zero state", got)
	}
}
