package storage

import (
	"database/sql"
	"time"

	"soberly/internal/models"
)

// Provider is the record-store boundary: long-term history and milestone data,
// as opposed to the fast-changing day state in the key-value store.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Sobriety records
	InsertSobrietyRecord(models.SobrietyRecord) error
	UpdateSobrietyRecord(models.SobrietyRecord) error
	DeleteSobrietyRecord(id string) error
	GetActiveSobrietyRecord() (models.SobrietyRecord, error)
	GetAllSobrietyRecords() ([]models.SobrietyRecord, error)
	EndCurrentSobriety(endedAt time.Time) error
	StartNewSobriety(startedAt time.Time, reason, note string) (models.SobrietyRecord, error)

	// Daily logs
	SaveDailyLog(models.DailyLog) error
	DeleteDailyLog(id string) error
	GetDailyLogByDay(day string) (models.DailyLog, error)
	GetAllDailyLogs() ([]models.DailyLog, error)
	GetRecentDailyLogs(limit int) ([]models.DailyLog, error)
	GetDailyLogsBetween(startDay, endDay string) ([]models.DailyLog, error)

	// Milestones
	SeedMilestones([]models.Milestone) error
	UpdateMilestone(models.Milestone) error
	GetAllMilestones() ([]models.Milestone, error)
	GetUnachievedMilestones() ([]models.Milestone, error)
	GetAchievedMilestones() ([]models.Milestone, error)
	GetMilestonesToAchieve(days int) ([]models.Milestone, error)

	// Motivational quotes
	SeedQuotes([]models.MotivationalQuote) error
	GetRandomQuote() (models.MotivationalQuote, error)
	GetQuoteCount() (int, error)

	// Utils
	GetConfigPath() string
	GetDB() *sql.DB
}
