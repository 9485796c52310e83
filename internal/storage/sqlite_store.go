package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"soberly/internal/constants"
	"soberly/internal/models"
)

type SQLiteStore struct {
	path string
	db   *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{
		path: path,
	}
}

func (s *SQLiteStore) Init() error {
	// Create config directory if it doesn't exist
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := s.open(); err != nil {
		return err
	}

	if err := s.createTables(); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	// Seed the fixed catalogues once. The quote count doubles as the
	// first-run marker, matching the milestone seed's idempotent conflict
	// handling.
	count, err := s.GetQuoteCount()
	if err != nil {
		return err
	}
	if count == 0 {
		if err := s.SeedQuotes(DefaultQuotes()); err != nil {
			return fmt.Errorf("failed to seed quotes: %w", err)
		}
	}
	if err := s.SeedMilestones(DefaultMilestones()); err != nil {
		return fmt.Errorf("failed to seed milestones: %w", err)
	}

	return nil
}

func (s *SQLiteStore) Load() error {
	if s.db != nil {
		return nil
	}

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return fmt.Errorf("storage not initialized, run 'soberly init' first")
	}

	return s.open()
}

func (s *SQLiteStore) open() error {
	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// Single connection avoids "database is locked" errors; the busy timeout
	// covers the watch process and a CLI invocation touching the file together.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return fmt.Errorf("failed to set busy timeout: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return fmt.Errorf("failed to set journal mode: %w", err)
	}

	s.db = db
	return nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) createTables() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sobriety_records (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			ended_at TEXT,
			is_active INTEGER NOT NULL DEFAULT 1,
			reason TEXT NOT NULL DEFAULT '',
			note TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS daily_logs (
			id TEXT PRIMARY KEY,
			day TEXT NOT NULL UNIQUE,
			mood INTEGER NOT NULL,
			craving_level INTEGER NOT NULL,
			did_drink INTEGER NOT NULL DEFAULT 0,
			drink_amount INTEGER NOT NULL DEFAULT 0,
			note TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS milestones (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT NOT NULL,
			target_days INTEGER NOT NULL UNIQUE,
			achieved_at TEXT,
			is_achieved INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS motivational_quotes (
			id TEXT PRIMARY KEY,
			quote TEXT NOT NULL,
			author TEXT NOT NULL DEFAULT ''
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// ========== Sobriety Records ==========

func (s *SQLiteStore) InsertSobrietyRecord(record models.SobrietyRecord) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO sobriety_records (id, started_at, ended_at, is_active, reason, note)
		VALUES (?, ?, ?, ?, ?, ?)`,
		record.ID, record.StartedAt.Format(constants.DateTimeFormat), nullTime(record.EndedAt),
		record.IsActive, record.Reason, record.Note,
	)
	return err
}

func (s *SQLiteStore) UpdateSobrietyRecord(record models.SobrietyRecord) error {
	res, err := s.db.Exec(`
		UPDATE sobriety_records SET started_at = ?, ended_at = ?, is_active = ?, reason = ?, note = ?
		WHERE id = ?`,
		record.StartedAt.Format(constants.DateTimeFormat), nullTime(record.EndedAt),
		record.IsActive, record.Reason, record.Note, record.ID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("sobriety record with id %s not found", record.ID)
	}
	return nil
}

func (s *SQLiteStore) DeleteSobrietyRecord(id string) error {
	_, err := s.db.Exec("DELETE FROM sobriety_records WHERE id = ?", id)
	return err
}

func (s *SQLiteStore) GetActiveSobrietyRecord() (models.SobrietyRecord, error) {
	row := s.db.QueryRow(`
		SELECT id, started_at, ended_at, is_active, reason, note
		FROM sobriety_records WHERE is_active = 1 LIMIT 1`)
	return scanSobrietyRecord(row)
}

func (s *SQLiteStore) GetAllSobrietyRecords() ([]models.SobrietyRecord, error) {
	rows, err := s.db.Query(`
		SELECT id, started_at, ended_at, is_active, reason, note
		FROM sobriety_records ORDER BY started_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.SobrietyRecord
	for rows.Next() {
		r, err := scanSobrietyRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *SQLiteStore) EndCurrentSobriety(endedAt time.Time) error {
	_, err := s.db.Exec(
		"UPDATE sobriety_records SET is_active = 0, ended_at = ? WHERE is_active = 1",
		endedAt.Format(constants.DateTimeFormat),
	)
	return err
}

// StartNewSobriety closes any active record and opens a new one atomically, so
// the single-active-record invariant holds even if the process dies mid-way.
func (s *SQLiteStore) StartNewSobriety(startedAt time.Time, reason, note string) (models.SobrietyRecord, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return models.SobrietyRecord{}, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		"UPDATE sobriety_records SET is_active = 0, ended_at = ? WHERE is_active = 1",
		startedAt.Format(constants.DateTimeFormat),
	); err != nil {
		return models.SobrietyRecord{}, err
	}

	record := models.SobrietyRecord{
		ID:        uuid.New().String(),
		StartedAt: startedAt,
		IsActive:  true,
		Reason:    reason,
		Note:      note,
	}
	if _, err := tx.Exec(`
		INSERT INTO sobriety_records (id, started_at, ended_at, is_active, reason, note)
		VALUES (?, ?, NULL, 1, ?, ?)`,
		record.ID, record.StartedAt.Format(constants.DateTimeFormat), record.Reason, record.Note,
	); err != nil {
		return models.SobrietyRecord{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.SobrietyRecord{}, err
	}
	return record, nil
}

// ========== Daily Logs ==========

// SaveDailyLog upserts by calendar day: saving again for the same date
// overwrites the earlier entry while keeping its id and created_at.
func (s *SQLiteStore) SaveDailyLog(log models.DailyLog) error {
	existing, err := s.GetDailyLogByDay(log.Day)
	if err == nil {
		log.ID = existing.ID
		log.CreatedAt = existing.CreatedAt
	} else if err != sql.ErrNoRows {
		return err
	}

	if log.ID == "" {
		log.ID = uuid.New().String()
	}

	_, err = s.db.Exec(`
		INSERT OR REPLACE INTO daily_logs (id, day, mood, craving_level, did_drink, drink_amount, note, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		log.ID, log.Day, log.Mood, log.CravingLevel, log.DidDrink, log.DrinkAmount,
		log.Note, log.CreatedAt.Format(constants.DateTimeFormat),
	)
	return err
}

func (s *SQLiteStore) DeleteDailyLog(id string) error {
	_, err := s.db.Exec("DELETE FROM daily_logs WHERE id = ?", id)
	return err
}

func (s *SQLiteStore) GetDailyLogByDay(day string) (models.DailyLog, error) {
	row := s.db.QueryRow(`
		SELECT id, day, mood, craving_level, did_drink, drink_amount, note, created_at
		FROM daily_logs WHERE day = ? LIMIT 1`, day)
	return scanDailyLog(row)
}

func (s *SQLiteStore) GetAllDailyLogs() ([]models.DailyLog, error) {
	return s.queryDailyLogs(`
		SELECT id, day, mood, craving_level, did_drink, drink_amount, note, created_at
		FROM daily_logs ORDER BY day DESC`)
}

func (s *SQLiteStore) GetRecentDailyLogs(limit int) ([]models.DailyLog, error) {
	return s.queryDailyLogs(`
		SELECT id, day, mood, craving_level, did_drink, drink_amount, note, created_at
		FROM daily_logs ORDER BY day DESC LIMIT ?`, limit)
}

func (s *SQLiteStore) GetDailyLogsBetween(startDay, endDay string) ([]models.DailyLog, error) {
	return s.queryDailyLogs(`
		SELECT id, day, mood, craving_level, did_drink, drink_amount, note, created_at
		FROM daily_logs WHERE day BETWEEN ? AND ? ORDER BY day ASC`, startDay, endDay)
}

func (s *SQLiteStore) queryDailyLogs(query string, args ...any) ([]models.DailyLog, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []models.DailyLog
	for rows.Next() {
		l, err := scanDailyLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// ========== Milestones ==========

// SeedMilestones inserts the fixed catalogue, skipping any target that already
// exists so achieved flags survive re-initialization.
func (s *SQLiteStore) SeedMilestones(milestones []models.Milestone) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO milestones (id, title, description, target_days, achieved_at, is_achieved)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(target_days) DO NOTHING`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, m := range milestones {
		id := m.ID
		if id == "" {
			id = uuid.New().String()
		}
		if _, err := stmt.Exec(id, m.Title, m.Description, m.TargetDays, nullTime(m.AchievedAt), m.IsAchieved); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) UpdateMilestone(m models.Milestone) error {
	res, err := s.db.Exec(`
		UPDATE milestones SET title = ?, description = ?, target_days = ?, achieved_at = ?, is_achieved = ?
		WHERE id = ?`,
		m.Title, m.Description, m.TargetDays, nullTime(m.AchievedAt), m.IsAchieved, m.ID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("milestone with id %s not found", m.ID)
	}
	return nil
}

func (s *SQLiteStore) GetAllMilestones() ([]models.Milestone, error) {
	return s.queryMilestones(`
		SELECT id, title, description, target_days, achieved_at, is_achieved
		FROM milestones ORDER BY target_days ASC`)
}

func (s *SQLiteStore) GetUnachievedMilestones() ([]models.Milestone, error) {
	return s.queryMilestones(`
		SELECT id, title, description, target_days, achieved_at, is_achieved
		FROM milestones WHERE is_achieved = 0 ORDER BY target_days ASC`)
}

func (s *SQLiteStore) GetAchievedMilestones() ([]models.Milestone, error) {
	return s.queryMilestones(`
		SELECT id, title, description, target_days, achieved_at, is_achieved
		FROM milestones WHERE is_achieved = 1 ORDER BY achieved_at DESC`)
}

func (s *SQLiteStore) GetMilestonesToAchieve(days int) ([]models.Milestone, error) {
	return s.queryMilestones(`
		SELECT id, title, description, target_days, achieved_at, is_achieved
		FROM milestones WHERE target_days <= ? AND is_achieved = 0`, days)
}

func (s *SQLiteStore) queryMilestones(query string, args ...any) ([]models.Milestone, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var milestones []models.Milestone
	for rows.Next() {
		var m models.Milestone
		var achievedAt sql.NullString
		if err := rows.Scan(&m.ID, &m.Title, &m.Description, &m.TargetDays, &achievedAt, &m.IsAchieved); err != nil {
			return nil, err
		}
		if achievedAt.Valid {
			t, err := time.ParseInLocation(constants.DateTimeFormat, achievedAt.String, time.Local)
			if err != nil {
				return nil, fmt.Errorf("parsing achieved_at: %w", err)
			}
			m.AchievedAt = &t
		}
		milestones = append(milestones, m)
	}
	return milestones, rows.Err()
}

// ========== Motivational Quotes ==========

func (s *SQLiteStore) SeedQuotes(quotes []models.MotivationalQuote) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("INSERT OR REPLACE INTO motivational_quotes (id, quote, author) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, q := range quotes {
		id := q.ID
		if id == "" {
			id = uuid.New().String()
		}
		if _, err := stmt.Exec(id, q.Quote, q.Author); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) GetRandomQuote() (models.MotivationalQuote, error) {
	var q models.MotivationalQuote
	row := s.db.QueryRow("SELECT id, quote, author FROM motivational_quotes ORDER BY RANDOM() LIMIT 1")
	if err := row.Scan(&q.ID, &q.Quote, &q.Author); err != nil {
		return models.MotivationalQuote{}, err
	}
	return q, nil
}

func (s *SQLiteStore) GetQuoteCount() (int, error) {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM motivational_quotes").Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// ========== Utils ==========

func (s *SQLiteStore) GetConfigPath() string {
	return s.path
}

func (s *SQLiteStore) GetDB() *sql.DB {
	return s.db
}

type scannable interface {
	Scan(dest ...any) error
}

func scanSobrietyRecord(row scannable) (models.SobrietyRecord, error) {
	var r models.SobrietyRecord
	var startedAt string
	var endedAt sql.NullString

	if err := row.Scan(&r.ID, &startedAt, &endedAt, &r.IsActive, &r.Reason, &r.Note); err != nil {
		return models.SobrietyRecord{}, err
	}

	t, err := time.ParseInLocation(constants.DateTimeFormat, startedAt, time.Local)
	if err != nil {
		return models.SobrietyRecord{}, fmt.Errorf("parsing started_at: %w", err)
	}
	r.StartedAt = t

	if endedAt.Valid {
		t, err := time.ParseInLocation(constants.DateTimeFormat, endedAt.String, time.Local)
		if err != nil {
			return models.SobrietyRecord{}, fmt.Errorf("parsing ended_at: %w", err)
		}
		r.EndedAt = &t
	}
	return r, nil
}

func scanDailyLog(row scannable) (models.DailyLog, error) {
	var l models.DailyLog
	var createdAt string

	if err := row.Scan(&l.ID, &l.Day, &l.Mood, &l.CravingLevel, &l.DidDrink, &l.DrinkAmount, &l.Note, &createdAt); err != nil {
		return models.DailyLog{}, err
	}

	t, err := time.ParseInLocation(constants.DateTimeFormat, createdAt, time.Local)
	if err != nil {
		return models.DailyLog{}, fmt.Errorf("parsing created_at: %w", err)
	}
	l.CreatedAt = t
	return l, nil
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(constants.DateTimeFormat), Valid: true}
}
