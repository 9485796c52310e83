package models

import "time"

// RecordStatus is the outcome recorded for a single day.
type RecordStatus string

const (
	// StatusSuccess marks a day with no recorded urge or drink.
	StatusSuccess RecordStatus = "SUCCESS"
	// StatusShaky marks a day where an urge was felt and resisted.
	StatusShaky RecordStatus = "SHAKY"
	// StatusFail marks a day where a drink was recorded.
	StatusFail RecordStatus = "FAIL"
)

// StatusFromString decodes a stored status string. Unknown or empty values
// decode to StatusSuccess so a fresh or corrupted row never blocks the UI.
func StatusFromString(s string) RecordStatus {
	switch RecordStatus(s) {
	case StatusShaky:
		return StatusShaky
	case StatusFail:
		return StatusFail
	default:
		return StatusSuccess
	}
}

// DayState is the mutable per-session state held in the key-value store.
// It is overwritten in place through the day and partially reset at rollover.
type DayState struct {
	// StartDate is when the current sobriety period began; nil before tracking starts.
	StartDate *time.Time

	// CurrentStreak is a cached day count. Authoritative values are always
	// recomputed from StartDate, never trusted blindly.
	CurrentStreak int

	// LastRecordDate is the date of the last SUCCESS/FAIL record.
	LastRecordDate *time.Time

	DailyStatus RecordStatus

	// ShakyCountToday always equals len(ShakyTimestamps); both are written in
	// the same transaction.
	ShakyCountToday int

	// ShakyTimestamps is chronological and append-only within a day.
	ShakyTimestamps []time.Time

	// ComfortReady is set once the comfort delay has elapsed since the most
	// recent shaky event and the message has not yet been shown.
	ComfortReady bool

	// ComfortShown is set once the user has dismissed the pending message.
	// ComfortShown implies !ComfortReady.
	ComfortShown bool
}

// IsTracking reports whether a sobriety period has been started.
func (s DayState) IsTracking() bool {
	return s.StartDate != nil
}

// HasRecordedToday reports whether a SUCCESS/FAIL outcome was already recorded
// for the given day. Callers use it to suppress duplicate success/fail records;
// shaky records are intentionally not gated by it.
func (s DayState) HasRecordedToday(today time.Time) bool {
	if s.LastRecordDate == nil {
		return false
	}
	return sameDay(*s.LastRecordDate, today)
}

// LastShaky returns the most recent shaky timestamp, or false if none exist.
func (s DayState) LastShaky() (time.Time, bool) {
	if len(s.ShakyTimestamps) == 0 {
		return time.Time{}, false
	}
	return s.ShakyTimestamps[len(s.ShakyTimestamps)-1], true
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
