// Package milestone flips achievement flags as the sober-day count grows.
package milestone

import (
	"time"

	"soberly/internal/logger"
	"soberly/internal/storage"
)

var nowFunc = time.Now

type Evaluator struct {
	records storage.Provider
}

func NewEvaluator(records storage.Provider) *Evaluator {
	return &Evaluator{records: records}
}

// Evaluate achieves every milestone whose target is within soberDays and not
// yet achieved, and returns the newly achieved ones. Already-achieved rows are
// excluded by the query, so repeated calls with the same or a smaller day
// count have no further effect, and a milestone is never un-achieved.
func (e *Evaluator) Evaluate(soberDays int) ([]string, error) {
	if soberDays < 0 {
		return nil, nil
	}

	pending, err := e.records.GetMilestonesToAchieve(soberDays)
	if err != nil {
		return nil, err
	}

	now := nowFunc()
	var achieved []string
	for _, m := range pending {
		m.IsAchieved = true
		m.AchievedAt = &now
		if err := e.records.UpdateMilestone(m); err != nil {
			return achieved, err
		}
		achieved = append(achieved, m.Title)
		logger.Info("Milestone achieved", "title", m.Title, "target_days", m.TargetDays)
	}
	return achieved, nil
}
