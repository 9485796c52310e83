package models

import "time"

// SobrietyRecord represents one sobriety period, from start to the drink that
// ended it. At most one record is active at any time; starting a new record
// closes the currently active one in the same transaction.
type SobrietyRecord struct {
	ID        string     `json:"id"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"` // nil while the period is active
	IsActive  bool       `json:"is_active"`
	Reason    string     `json:"reason"`
	Note      string     `json:"note"`
}

// Duration returns the elapsed length of the period, using now for records
// that are still open.
func (r SobrietyRecord) Duration(now time.Time) time.Duration {
	end := now
	if r.EndedAt != nil {
		end = *r.EndedAt
	}
	return end.Sub(r.StartedAt)
}

// DailyLog is one per calendar date, keyed by Day; saving again for the same
// date overwrites the earlier entry.
type DailyLog struct {
	ID           string    `json:"id"`
	Day          string    `json:"day"`           // YYYY-MM-DD format
	Mood         int       `json:"mood"`          // 1 (worst) .. 5 (best)
	CravingLevel int       `json:"craving_level"` // 1 (none) .. 5 (strongest)
	DidDrink     bool      `json:"did_drink"`
	DrinkAmount  int       `json:"drink_amount"` // standard drinks; 0 when DidDrink is false
	Note         string    `json:"note"`
	CreatedAt    time.Time `json:"created_at"`
}

// Milestone is a fixed sober-day threshold. Achievement is monotonic: once
// achieved, never un-achieved.
type Milestone struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	TargetDays  int        `json:"target_days"`
	AchievedAt  *time.Time `json:"achieved_at,omitempty"`
	IsAchieved  bool       `json:"is_achieved"`
}

// MotivationalQuote is part of the static catalogue seeded at first run.
type MotivationalQuote struct {
	ID     string `json:"id"`
	Quote  string `json:"quote"`
	Author string `json:"author"`
}
