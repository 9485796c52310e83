package engine

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	apperrors "soberly/internal/errors"
	"soberly/internal/kvstore"
	"soberly/internal/models"
	"soberly/internal/storage"
)

func setupTestEngine(t *testing.T) (*Engine, *kvstore.Store, storage.Provider) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store := storage.NewSQLiteStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	kv := kvstore.New(store.GetDB())
	if err := kv.EnsureSchema(); err != nil {
		t.Fatalf("failed to create day state schema: %v", err)
	}

	return New(kv, store), kv, store
}

// fixNow pins the engine clock and restores it when the test ends.
func fixNow(t *testing.T, at time.Time) {
	t.Helper()
	nowFunc = func() time.Time { return at }
	t.Cleanup(func() { nowFunc = time.Now })
}

func TestRequireTracking(t *testing.T) {
	eng, _, _ := setupTestEngine(t)

	if err := eng.RecordSuccess(); !errors.Is(err, apperrors.ErrNotTracking) {
		t.Errorf("RecordSuccess() before init = %v, want ErrNotTracking", err)
	}
	if err := eng.RecordShaky(); !errors.Is(err, apperrors.ErrNotTracking) {
		t.Errorf("RecordShaky() before init = %v, want ErrNotTracking", err)
	}
	if err := eng.RecordFail("", ""); !errors.Is(err, apperrors.ErrNotTracking) {
		t.Errorf("RecordFail() before init = %v, want ErrNotTracking", err)
	}
}

func TestStartTracking(t *testing.T) {
	eng, kv, _ := setupTestEngine(t)

	start := time.Date(2026, 8, 1, 15, 30, 0, 0, time.Local)
	if err := eng.StartTracking(start); err != nil {
		t.Fatalf("StartTracking() returned unexpected error: %v", err)
	}

	state, err := kv.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot() returned unexpected error: %v", err)
	}
	if !state.IsTracking() {
		t.Fatal("IsTracking() = false after StartTracking")
	}
	wantDate := time.Date(2026, 8, 1, 0, 0, 0, 0, time.Local)
	if !state.StartDate.Equal(wantDate) {
		t.Errorf("StartDate = %v, want truncated %v", state.StartDate, wantDate)
	}
	if state.CurrentStreak != 0 {
		t.Errorf("CurrentStreak = %d, want 0", state.CurrentStreak)
	}
	if state.DailyStatus != models.StatusSuccess {
		t.Errorf("DailyStatus = %q, want %q", state.DailyStatus, models.StatusSuccess)
	}
}

func TestRecordSuccess(t *testing.T) {
	eng, kv, _ := setupTestEngine(t)

	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.Local)
	if err := eng.StartTracking(start); err != nil {
		t.Fatalf("StartTracking() returned unexpected error: %v", err)
	}

	fixNow(t, time.Date(2026, 8, 6, 9, 0, 0, 0, time.Local))
	if err := eng.RecordSuccess(); err != nil {
		t.Fatalf("RecordSuccess() returned unexpected error: %v", err)
	}

	state, err := kv.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot() returned unexpected error: %v", err)
	}
	if state.DailyStatus != models.StatusSuccess {
		t.Errorf("DailyStatus = %q, want %q", state.DailyStatus, models.StatusSuccess)
	}
	if state.CurrentStreak != 5 {
		t.Errorf("CurrentStreak = %d, want 5", state.CurrentStreak)
	}
	if !state.HasRecordedToday(nowFunc()) {
		t.Error("HasRecordedToday() = false after RecordSuccess")
	}

	days, err := eng.SoberDays()
	if err != nil {
		t.Fatalf("SoberDays() returned unexpected error: %v", err)
	}
	if days != 5 {
		t.Errorf("SoberDays() = %d, want 5", days)
	}
}

func TestStreakAcrossSpringForward(t *testing.T) {
	// 2026-03-08 is a 23-hour day in US Eastern. The streak is a calendar-day
	// count, so two days after the start is still streak 2.
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tz database unavailable: %v", err)
	}
	eng, kv, _ := setupTestEngine(t)

	if err := eng.StartTracking(time.Date(2026, 3, 7, 9, 0, 0, 0, loc)); err != nil {
		t.Fatalf("StartTracking() returned unexpected error: %v", err)
	}

	fixNow(t, time.Date(2026, 3, 9, 9, 0, 0, 0, loc))
	days, err := eng.SoberDays()
	if err != nil {
		t.Fatalf("SoberDays() returned unexpected error: %v", err)
	}
	if days != 2 {
		t.Errorf("SoberDays() across spring-forward = %d, want 2", days)
	}

	if err := eng.RecordSuccess(); err != nil {
		t.Fatalf("RecordSuccess() returned unexpected error: %v", err)
	}
	state, err := kv.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot() returned unexpected error: %v", err)
	}
	if state.CurrentStreak != 2 {
		t.Errorf("CurrentStreak across spring-forward = %d, want 2", state.CurrentStreak)
	}
}

func TestRecordShaky(t *testing.T) {
	eng, kv, _ := setupTestEngine(t)

	if err := eng.StartTracking(time.Date(2026, 8, 1, 0, 0, 0, 0, time.Local)); err != nil {
		t.Fatalf("StartTracking() returned unexpected error: %v", err)
	}

	fixNow(t, time.Date(2026, 8, 6, 14, 0, 0, 0, time.Local))
	for i := 0; i < 3; i++ {
		if err := eng.RecordShaky(); err != nil {
			t.Fatalf("RecordShaky() #%d returned unexpected error: %v", i+1, err)
		}
	}

	state, err := kv.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot() returned unexpected error: %v", err)
	}
	if state.DailyStatus != models.StatusShaky {
		t.Errorf("DailyStatus = %q, want %q", state.DailyStatus, models.StatusShaky)
	}
	if state.ShakyCountToday != 3 {
		t.Errorf("ShakyCountToday = %d, want 3", state.ShakyCountToday)
	}
	if len(state.ShakyTimestamps) != state.ShakyCountToday {
		t.Errorf("len(ShakyTimestamps) = %d, count = %d, must match", len(state.ShakyTimestamps), state.ShakyCountToday)
	}
	if state.ComfortReady {
		t.Error("ComfortReady = true right after RecordShaky, the timer callback is its only writer")
	}

	// Shaky is not a day outcome, so the success/fail duplicate guard must
	// stay open.
	recorded, err := eng.HasRecordedToday()
	if err != nil {
		t.Fatalf("HasRecordedToday() returned unexpected error: %v", err)
	}
	if recorded {
		t.Error("HasRecordedToday() = true after only shaky records, want false")
	}
}

func TestRecordFail(t *testing.T) {
	eng, kv, store := setupTestEngine(t)

	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.Local)
	if err := eng.StartTracking(start); err != nil {
		t.Fatalf("StartTracking() returned unexpected error: %v", err)
	}
	if _, err := store.StartNewSobriety(start, "health", ""); err != nil {
		t.Fatalf("StartNewSobriety() returned unexpected error: %v", err)
	}

	fixNow(t, time.Date(2026, 8, 10, 21, 0, 0, 0, time.Local))
	if err := eng.RecordFail("rough day", "tomorrow is day one"); err != nil {
		t.Fatalf("RecordFail() returned unexpected error: %v", err)
	}

	state, err := kv.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot() returned unexpected error: %v", err)
	}
	if state.DailyStatus != models.StatusFail {
		t.Errorf("DailyStatus = %q, want %q", state.DailyStatus, models.StatusFail)
	}
	if state.CurrentStreak != 0 {
		t.Errorf("CurrentStreak = %d, want 0", state.CurrentStreak)
	}
	wantStart := time.Date(2026, 8, 10, 0, 0, 0, 0, time.Local)
	if !state.StartDate.Equal(wantStart) {
		t.Errorf("StartDate = %v, want %v", state.StartDate, wantStart)
	}

	records, err := store.GetAllSobrietyRecords()
	if err != nil {
		t.Fatalf("GetAllSobrietyRecords() returned unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2 (closed old period, opened new)", len(records))
	}
	active := 0
	for _, r := range records {
		if r.IsActive {
			active++
			if r.Reason != "rough day" {
				t.Errorf("new period reason = %q, want %q", r.Reason, "rough day")
			}
		}
	}
	if active != 1 {
		t.Errorf("active records = %d, want exactly 1", active)
	}
}

func TestDayRollover(t *testing.T) {
	t.Run("late shaky then next morning", func(t *testing.T) {
		eng, kv, _ := setupTestEngine(t)

		fixNow(t, time.Date(2026, 8, 6, 22, 0, 0, 0, time.Local))
		if err := eng.StartTracking(time.Date(2026, 8, 1, 0, 0, 0, 0, time.Local)); err != nil {
			t.Fatalf("StartTracking() returned unexpected error: %v", err)
		}
		if err := eng.RecordShaky(); err != nil {
			t.Fatalf("RecordShaky() returned unexpected error: %v", err)
		}

		// 01:00 the next day: the late-evening shaky is yesterday's activity.
		fixNow(t, time.Date(2026, 8, 7, 1, 0, 0, 0, time.Local))
		reset, err := eng.CheckAndResetIfNewDay()
		if err != nil {
			t.Fatalf("CheckAndResetIfNewDay() returned unexpected error: %v", err)
		}
		if !reset {
			t.Fatal("CheckAndResetIfNewDay() = false, want reset")
		}

		state, err := kv.Snapshot()
		if err != nil {
			t.Fatalf("Snapshot() returned unexpected error: %v", err)
		}
		if state.ShakyCountToday != 0 || len(state.ShakyTimestamps) != 0 {
			t.Error("shaky data survived the rollover")
		}
		if state.ComfortReady || state.ComfortShown {
			t.Error("comfort flags survived the rollover")
		}
		if state.DailyStatus != models.StatusShaky {
			t.Errorf("DailyStatus = %q, want %q (rollover must not rewrite it)", state.DailyStatus, models.StatusShaky)
		}
		if state.CurrentStreak != 6 {
			t.Errorf("CurrentStreak = %d, want 6 (recomputed from start date)", state.CurrentStreak)
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		eng, _, _ := setupTestEngine(t)

		fixNow(t, time.Date(2026, 8, 6, 10, 0, 0, 0, time.Local))
		if err := eng.StartTracking(time.Date(2026, 8, 1, 0, 0, 0, 0, time.Local)); err != nil {
			t.Fatalf("StartTracking() returned unexpected error: %v", err)
		}
		if err := eng.RecordSuccess(); err != nil {
			t.Fatalf("RecordSuccess() returned unexpected error: %v", err)
		}

		fixNow(t, time.Date(2026, 8, 7, 0, 30, 0, 0, time.Local))
		first, err := eng.CheckAndResetIfNewDay()
		if err != nil {
			t.Fatalf("first CheckAndResetIfNewDay() returned unexpected error: %v", err)
		}
		if !first {
			t.Fatal("first CheckAndResetIfNewDay() = false, want reset")
		}
		second, err := eng.CheckAndResetIfNewDay()
		if err != nil {
			t.Fatalf("second CheckAndResetIfNewDay() returned unexpected error: %v", err)
		}
		if second {
			t.Error("second CheckAndResetIfNewDay() = true, want no-op")
		}
	})

	t.Run("same day is a no-op", func(t *testing.T) {
		eng, _, _ := setupTestEngine(t)

		fixNow(t, time.Date(2026, 8, 6, 10, 0, 0, 0, time.Local))
		if err := eng.StartTracking(nowFunc()); err != nil {
			t.Fatalf("StartTracking() returned unexpected error: %v", err)
		}
		if err := eng.RecordSuccess(); err != nil {
			t.Fatalf("RecordSuccess() returned unexpected error: %v", err)
		}

		fixNow(t, time.Date(2026, 8, 6, 23, 59, 0, 0, time.Local))
		reset, err := eng.CheckAndResetIfNewDay()
		if err != nil {
			t.Fatalf("CheckAndResetIfNewDay() returned unexpected error: %v", err)
		}
		if reset {
			t.Error("CheckAndResetIfNewDay() = true on the same day, want false")
		}
	})
}

func TestMarkComfortMessageShown(t *testing.T) {
	eng, kv, _ := setupTestEngine(t)

	fixNow(t, time.Date(2026, 8, 6, 12, 0, 0, 0, time.Local))
	if err := eng.StartTracking(nowFunc()); err != nil {
		t.Fatalf("StartTracking() returned unexpected error: %v", err)
	}
	if _, err := kv.Edit(func(state *models.DayState) {
		state.ComfortReady = true
	}); err != nil {
		t.Fatalf("Edit() returned unexpected error: %v", err)
	}

	if err := eng.MarkComfortMessageShown(); err != nil {
		t.Fatalf("MarkComfortMessageShown() returned unexpected error: %v", err)
	}

	state, err := kv.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot() returned unexpected error: %v", err)
	}
	if !state.ComfortShown {
		t.Error("ComfortShown = false, want true")
	}
	if state.ComfortReady {
		t.Error("ComfortReady = true after showing, want false")
	}
}

func TestResetAll(t *testing.T) {
	eng, kv, _ := setupTestEngine(t)

	if err := eng.StartTracking(time.Now()); err != nil {
		t.Fatalf("StartTracking() returned unexpected error: %v", err)
	}
	if err := eng.ResetAll(); err != nil {
		t.Fatalf("ResetAll() returned unexpected error: %v", err)
	}

	state, err := kv.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot() returned unexpected error: %v", err)
	}
	if state.IsTracking() {
		t.Error("IsTracking() = true after ResetAll, want false")
	}
}
