package constants

import "time"

const (
	AppName           = "soberly"
	Version           = "v0.3.0"
	DefaultConfigPath = "~/.config/soberly/soberly.db"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// DateTimeFormat is used for shaky timestamps and record times. It must never
	// contain TimestampDelimiter.
	DateTimeFormat = "2006-01-02T15:04:05"

	// TimestampDelimiter separates serialized shaky timestamps in the key-value store.
	TimestampDelimiter = "|"

	// ComfortDelay is how long after the most recent shaky event the comfort
	// message becomes available.
	ComfortDelay = 3 * time.Hour

	// RolloverPollInterval is the advisory polling cadence for the day-rollover
	// check while a long-running command is in the foreground.
	RolloverPollInterval = 30 * time.Second

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "soberly-"
	BackupFileSuffix = ".db"

	// Notify constants
	NotifierLockfileName   = "soberly-notifier.lock"
	NotificationDurationMs = 5000
	TrayAppIdentifier      = "com.soberly.tray"
	DefaultReminderHour    = 20
)

// Key-value store field names. Renaming any of these loses user data.
const (
	KeyStartDate           = "start_date"
	KeyCurrentStreak       = "current_streak"
	KeyLastRecordDate      = "last_record_date"
	KeyDailyStatus         = "daily_status"
	KeyShakyCountToday     = "shaky_count_today"
	KeyShakyTimestamps     = "shaky_timestamps"
	KeyComfortReadyFlag    = "comfort_ready_flag"
	KeyComfortMessageShown = "comfort_message_shown"
)
