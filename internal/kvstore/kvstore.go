// Package kvstore persists the mutable per-day tracking state as rows in a
// single key-value table, mirroring the record store's database file. Every
// mutation runs as one read-modify-write SQL transaction; subscribers are
// notified after a successful commit.
package kvstore

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"soberly/internal/constants"
	apperrors "soberly/internal/errors"
	"soberly/internal/models"
)

type Store struct {
	db *sql.DB

	mu      sync.Mutex
	subs    map[int]func(models.DayState)
	nextSub int
}

// New wraps an open database handle. Call EnsureSchema before first use.
func New(db *sql.DB) *Store {
	return &Store{
		db:   db,
		subs: make(map[int]func(models.DayState)),
	}
}

// EnsureSchema creates the day_state table if it does not exist.
func (s *Store) EnsureSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS day_state (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`)
	return apperrors.WrapStore("schema", err)
}

// Snapshot reads the current day state in one query.
func (s *Store) Snapshot() (models.DayState, error) {
	rows, err := s.db.Query("SELECT key, value FROM day_state")
	if err != nil {
		return models.DayState{}, apperrors.WrapStore("read", err)
	}
	defer rows.Close()

	raw := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return models.DayState{}, apperrors.WrapStore("read", err)
		}
		raw[k] = v
	}
	if err := rows.Err(); err != nil {
		return models.DayState{}, apperrors.WrapStore("read", err)
	}

	return decode(raw)
}

// Edit applies fn to the latest persisted state and writes the result back,
// all inside a single transaction. A failure leaves prior state untouched.
// Subscribers see the committed state.
func (s *Store) Edit(fn func(*models.DayState)) (models.DayState, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return models.DayState{}, apperrors.WrapStore("begin", err)
	}
	defer tx.Rollback()

	rows, err := tx.Query("SELECT key, value FROM day_state")
	if err != nil {
		return models.DayState{}, apperrors.WrapStore("read", err)
	}
	raw := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			rows.Close()
			return models.DayState{}, apperrors.WrapStore("read", err)
		}
		raw[k] = v
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return models.DayState{}, apperrors.WrapStore("read", err)
	}
	rows.Close()

	state, err := decode(raw)
	if err != nil {
		return models.DayState{}, err
	}

	fn(&state)

	stmt, err := tx.Prepare("INSERT OR REPLACE INTO day_state (key, value) VALUES (?, ?)")
	if err != nil {
		return models.DayState{}, apperrors.WrapStore("write", err)
	}
	defer stmt.Close()

	for k, v := range encode(state) {
		if _, err := stmt.Exec(k, v); err != nil {
			return models.DayState{}, apperrors.WrapStore("write", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return models.DayState{}, apperrors.WrapStore("commit", err)
	}

	s.notify(state)
	return state, nil
}

// Clear wipes all persisted day state. Used by the full reset only.
func (s *Store) Clear() error {
	if _, err := s.db.Exec("DELETE FROM day_state"); err != nil {
		return apperrors.WrapStore("clear", err)
	}
	s.notify(models.DayState{DailyStatus: models.StatusSuccess})
	return nil
}

// Subscribe registers fn to be called with every committed state. The returned
// cancel func removes the subscription; it is safe to call more than once.
func (s *Store) Subscribe(fn func(models.DayState)) (cancel func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store) notify(state models.DayState) {
	s.mu.Lock()
	fns := make([]func(models.DayState), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(state)
	}
}

// ResetDailyData resets all per-day fields to their initial values, including
// the daily status. Used when tracking (re)starts.
func ResetDailyData(state *models.DayState) {
	state.DailyStatus = models.StatusSuccess
	ResetShakyAndComfort(state)
}

// ResetShakyAndComfort clears the shaky and comfort fields only. The daily
// status is deliberately preserved; day rollover does not rewrite it.
func ResetShakyAndComfort(state *models.DayState) {
	state.ShakyCountToday = 0
	state.ShakyTimestamps = nil
	state.ComfortReady = false
	state.ComfortShown = false
}

func encode(state models.DayState) map[string]string {
	out := map[string]string{
		constants.KeyCurrentStreak:       strconv.Itoa(state.CurrentStreak),
		constants.KeyDailyStatus:         string(state.DailyStatus),
		constants.KeyShakyCountToday:     strconv.Itoa(state.ShakyCountToday),
		constants.KeyShakyTimestamps:     encodeTimestamps(state.ShakyTimestamps),
		constants.KeyComfortReadyFlag:    strconv.FormatBool(state.ComfortReady),
		constants.KeyComfortMessageShown: strconv.FormatBool(state.ComfortShown),
	}
	out[constants.KeyStartDate] = encodeDate(state.StartDate)
	out[constants.KeyLastRecordDate] = encodeDate(state.LastRecordDate)
	return out
}

func decode(raw map[string]string) (models.DayState, error) {
	state := models.DayState{
		DailyStatus: models.StatusFromString(raw[constants.KeyDailyStatus]),
	}

	var err error
	if state.StartDate, err = decodeDate(raw[constants.KeyStartDate]); err != nil {
		return state, err
	}
	if state.LastRecordDate, err = decodeDate(raw[constants.KeyLastRecordDate]); err != nil {
		return state, err
	}
	if v := raw[constants.KeyCurrentStreak]; v != "" {
		if state.CurrentStreak, err = strconv.Atoi(v); err != nil {
			return state, fmt.Errorf("parsing %s: %w", constants.KeyCurrentStreak, err)
		}
	}
	if v := raw[constants.KeyShakyCountToday]; v != "" {
		if state.ShakyCountToday, err = strconv.Atoi(v); err != nil {
			return state, fmt.Errorf("parsing %s: %w", constants.KeyShakyCountToday, err)
		}
	}
	if state.ShakyTimestamps, err = decodeTimestamps(raw[constants.KeyShakyTimestamps]); err != nil {
		return state, err
	}
	state.ComfortReady = raw[constants.KeyComfortReadyFlag] == "true"
	state.ComfortShown = raw[constants.KeyComfortMessageShown] == "true"

	return state, nil
}

func encodeDate(d *time.Time) string {
	if d == nil {
		return ""
	}
	return d.Format(constants.DateFormat)
}

func decodeDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	// Dates are compared as local-midnight instants, so they must decode in
	// the same location they were truncated in.
	d, err := time.ParseInLocation(constants.DateFormat, s, time.Local)
	if err != nil {
		return nil, fmt.Errorf("parsing stored date %q: %w", s, err)
	}
	return &d, nil
}

func encodeTimestamps(ts []time.Time) string {
	if len(ts) == 0 {
		return ""
	}
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = t.Format(constants.DateTimeFormat)
	}
	return strings.Join(parts, constants.TimestampDelimiter)
}

func decodeTimestamps(s string) ([]time.Time, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, constants.TimestampDelimiter)
	ts := make([]time.Time, len(parts))
	for i, p := range parts {
		t, err := time.ParseInLocation(constants.DateTimeFormat, p, time.Local)
		if err != nil {
			return nil, fmt.Errorf("parsing stored timestamp %q: %w", p, err)
		}
		ts[i] = t
	}
	return ts, nil
}
