package tui

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"soberly/internal/comfort"
	"soberly/internal/engine"
	"soberly/internal/kvstore"
	"soberly/internal/milestone"
	"soberly/internal/storage"
)

func setupTestModel(t *testing.T, startedDaysAgo int) (Model, storage.Provider) {
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

	eng := engine.New(kv, store)
	if err := eng.StartTracking(time.Now().AddDate(0, 0, -startedDaysAgo)); err != nil {
		t.Fatalf("StartTracking() returned unexpected error: %v", err)
	}
	if _, err := store.StartNewSobriety(time.Now().AddDate(0, 0, -startedDaysAgo), "", ""); err != nil {
		t.Fatalf("StartNewSobriety() returned unexpected error: %v", err)
	}

	ctrl := comfort.New(kv, comfort.NewTimerScheduler())
	eval := milestone.NewEvaluator(store)
	return NewModel(store, kv, eng, ctrl, eval), store
}

func achievedTitles(t *testing.T, store storage.Provider) map[string]bool {
	t.Helper()
	achieved, err := store.GetAchievedMilestones()
	if err != nil {
		t.Fatalf("GetAchievedMilestones() returned unexpected error: %v", err)
	}
	titles := make(map[string]bool, len(achieved))
	for _, m := range achieved {
		titles[m.Title] = true
	}
	return titles
}

func TestSuccessKeyAchievesMilestone(t *testing.T) {
	m, store := setupTestModel(t, 7)

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	next := updated.(Model)
	if next.err != nil {
		t.Fatalf("Update() left err = %v", next.err)
	}

	titles := achievedTitles(t, store)
	if !titles["One Week Champion"] {
		t.Error("recording day-7 success from the dashboard did not achieve One Week Champion")
	}
	if !strings.Contains(next.flash, "Milestone achieved") {
		t.Errorf("flash = %q, want a milestone announcement", next.flash)
	}
}

func TestTickEvaluatesMilestonesOnRollover(t *testing.T) {
	// Tracking started days ago, so the first tick applies the day rollover
	// and must re-check achievements without any key press.
	m, store := setupTestModel(t, 3)

	updated, _ := m.Update(tickMsg(time.Now()))
	next := updated.(Model)
	if next.err != nil {
		t.Fatalf("Update() left err = %v", next.err)
	}

	titles := achievedTitles(t, store)
	if !titles["Three-Day Spark"] {
		t.Error("day rollover on tick did not achieve Three-Day Spark")
	}
}
