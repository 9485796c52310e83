// Package engine holds the sobriety state-transition and day-reset rules. It
// is the only writer of tracking state besides the comfort timer's deferred
// callback, and every operation commits as a single key-value transaction.
package engine

import (
	"time"

	"soberly/internal/constants"
	apperrors "soberly/internal/errors"
	"soberly/internal/kvstore"
	"soberly/internal/logger"
	"soberly/internal/models"
	"soberly/internal/storage"
)

// nowFunc is swapped out by tests to simulate day boundaries.
var nowFunc = time.Now

type Engine struct {
	kv      *kvstore.Store
	records storage.Provider
}

func New(kv *kvstore.Store, records storage.Provider) *Engine {
	return &Engine{
		kv:      kv,
		records: records,
	}
}

// Snapshot returns the latest persisted day state.
func (e *Engine) Snapshot() (models.DayState, error) {
	return e.kv.Snapshot()
}

// StartTracking begins a sobriety period on the given date. Used at onboarding
// and at restart; all per-day fields reset to their initial values.
func (e *Engine) StartTracking(date time.Time) error {
	date = truncateToDay(date)
	_, err := e.kv.Edit(func(state *models.DayState) {
		state.StartDate = &date
		state.CurrentStreak = 0
		state.LastRecordDate = &date
		kvstore.ResetDailyData(state)
	})
	if err == nil {
		logger.Info("Tracking started", "start_date", date.Format(constants.DateFormat))
	}
	return err
}

// RecordSuccess marks today as a sober day and refreshes the streak.
// Duplicate-call suppression is the caller's job via HasRecordedToday; the
// engine itself accepts idempotent re-invocation.
func (e *Engine) RecordSuccess() error {
	if err := e.requireTracking(); err != nil {
		return err
	}
	if _, err := e.CheckAndResetIfNewDay(); err != nil {
		return err
	}

	today := truncateToDay(nowFunc())
	_, err := e.kv.Edit(func(state *models.DayState) {
		state.DailyStatus = models.StatusSuccess
		state.LastRecordDate = &today
		state.CurrentStreak = streakDays(state.StartDate, today)
	})
	return err
}

// RecordShaky logs an urge-resisted event. Unlike success/fail it may be
// recorded any number of times per day. The comfort-ready flag is NOT set
// here; the comfort timer's deferred callback is its sole writer.
func (e *Engine) RecordShaky() error {
	if err := e.requireTracking(); err != nil {
		return err
	}
	if _, err := e.CheckAndResetIfNewDay(); err != nil {
		return err
	}

	now := nowFunc()
	_, err := e.kv.Edit(func(state *models.DayState) {
		state.DailyStatus = models.StatusShaky
		state.ShakyTimestamps = append(state.ShakyTimestamps, now)
		state.ShakyCountToday = len(state.ShakyTimestamps)
		// LastRecordDate is left alone: shaky is not a day outcome, so it
		// must not trip the duplicate guard for success/fail. Rollover sees
		// the activity through the timestamps instead.
	})
	return err
}

// RecordFail marks today as a drinking day and resets the streak: the day
// state restarts from today and the record store closes the active sobriety
// period and opens a fresh one.
func (e *Engine) RecordFail(reason, note string) error {
	if err := e.requireTracking(); err != nil {
		return err
	}
	if _, err := e.CheckAndResetIfNewDay(); err != nil {
		return err
	}

	now := nowFunc()
	today := truncateToDay(now)
	_, err := e.kv.Edit(func(state *models.DayState) {
		state.DailyStatus = models.StatusFail
		state.LastRecordDate = &today
		state.StartDate = &today
		state.CurrentStreak = 0
	})
	if err != nil {
		return err
	}

	if _, err := e.records.StartNewSobriety(now, reason, note); err != nil {
		return apperrors.WrapStore("restart sobriety record", err)
	}
	logger.Info("Streak reset after drink", "date", today.Format(constants.DateFormat))
	return nil
}

// MarkComfortMessageShown records that the pending comfort message was
// dismissed. Shown and ready are mutually exclusive afterwards.
func (e *Engine) MarkComfortMessageShown() error {
	if err := e.requireTracking(); err != nil {
		return err
	}
	_, err := e.kv.Edit(func(state *models.DayState) {
		state.ComfortShown = true
		state.ComfortReady = false
	})
	return err
}

// CheckAndResetIfNewDay reconciles the day boundary: if the most recent
// activity (last record date or last shaky timestamp, whichever is later) is
// strictly before today, the shaky and comfort fields are cleared and the
// streak recomputed from the start date. The daily status is left alone.
//
// The check is idempotent; calling it twice in quick succession is safe
// because the second call sees today's state and does nothing. It is invoked
// before every record-writing action and again from the watch/tui timers so
// state is correct even when the CLI has not been run. Comparing persisted
// dates against now avoids depending on any midnight event actually firing.
func (e *Engine) CheckAndResetIfNewDay() (bool, error) {
	today := truncateToDay(nowFunc())
	reset := false
	_, err := e.kv.Edit(func(state *models.DayState) {
		last := lastActivityDate(state)
		if last == nil || !last.Before(today) {
			return
		}
		kvstore.ResetShakyAndComfort(state)
		state.CurrentStreak = streakDays(state.StartDate, today)
		reset = true
	})
	if err != nil {
		return false, err
	}
	if reset {
		logger.Info("Day rollover applied", "today", today.Format(constants.DateFormat))
	}
	return reset, nil
}

// SoberDays returns the elapsed day count since the start date, recomputed
// rather than read from the cached streak. Returns 0 when not tracking.
func (e *Engine) SoberDays() (int, error) {
	state, err := e.kv.Snapshot()
	if err != nil {
		return 0, err
	}
	return streakDays(state.StartDate, truncateToDay(nowFunc())), nil
}

// HasRecordedToday reports whether a success/fail outcome exists for today.
func (e *Engine) HasRecordedToday() (bool, error) {
	state, err := e.kv.Snapshot()
	if err != nil {
		return false, err
	}
	return state.HasRecordedToday(nowFunc()), nil
}

// ResetAll wipes the day state entirely. Tracking must be restarted afterwards.
func (e *Engine) ResetAll() error {
	return e.kv.Clear()
}

func (e *Engine) requireTracking() error {
	state, err := e.kv.Snapshot()
	if err != nil {
		return err
	}
	if !state.IsTracking() {
		return apperrors.ErrNotTracking
	}
	return nil
}

// lastActivityDate is the later of the last record date and the date portion
// of the most recent shaky timestamp; nil when neither exists.
func lastActivityDate(state *models.DayState) *time.Time {
	var last *time.Time
	if state.LastRecordDate != nil {
		d := truncateToDay(*state.LastRecordDate)
		last = &d
	}
	if ts, ok := state.LastShaky(); ok {
		d := truncateToDay(ts)
		if last == nil || d.After(*last) {
			last = &d
		}
	}
	return last
}

// streakDays is a calendar-day difference. The dates are rebuilt in UTC
// before subtracting so a DST transition (a 23- or 25-hour local day) cannot
// skew the count.
func streakDays(start *time.Time, today time.Time) int {
	if start == nil {
		return 0
	}
	sy, sm, sd := start.Date()
	ty, tm, td := today.Date()
	from := time.Date(sy, sm, sd, 0, 0, 0, 0, time.UTC)
	to := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	days := int(to.Sub(from).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
