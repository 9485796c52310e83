package cli

import (
	"fmt"
	"time"

	"soberly/internal/models"
)

type StatsCmd struct{}

// Run aggregates across all sobriety periods and the most recent week of
// daily logs.
func (c *StatsCmd) Run(ctx *Context) error {
	records, err := ctx.Store.GetAllSobrietyRecords()
	if err != nil {
		return err
	}
	logs, err := ctx.Store.GetRecentDailyLogs(7)
	if err != nil {
		return err
	}

	total, longest := periodStats(records, time.Now())

	fmt.Println()
	fmt.Printf("  %s\n", titleStyle.Render("statistics"))
	fmt.Printf("  Total sober:     %s across %d period(s)\n", streakStyle.Render(FormatDays(total)), len(records))
	fmt.Printf("  Longest streak:  %s\n", FormatDays(longest))

	if len(logs) == 0 {
		fmt.Println()
		fmt.Println("  No daily logs yet. Use 'soberly log add' to start.")
		fmt.Println()
		return nil
	}

	moodSum, cravingSum := 0, 0
	for _, l := range logs {
		moodSum += l.Mood
		cravingSum += l.CravingLevel
	}
	n := float64(len(logs))
	fmt.Printf("  Average mood:    %.1f / 5 (last %d logs)\n", float64(moodSum)/n, len(logs))
	fmt.Printf("  Average craving: %.1f / 5 (last %d logs)\n", float64(cravingSum)/n, len(logs))

	fmt.Println()
	fmt.Printf("  %s\n", faintStyle.Render("Recent logs"))
	for _, l := range logs {
		printLogLine(l)
	}
	fmt.Println()
	return nil
}

// periodStats sums the calendar-day length of every period and finds the
// longest one.
func periodStats(records []models.SobrietyRecord, now time.Time) (total, longest int) {
	for _, r := range records {
		d := recordDays(r, now)
		total += d
		if d > longest {
			longest = d
		}
	}
	return total, longest
}

// recordDays is the calendar-day length of a period, using now for a period
// that is still open. Dates are rebuilt in UTC so DST transitions cannot skew
// the count.
func recordDays(r models.SobrietyRecord, now time.Time) int {
	end := now
	if r.EndedAt != nil {
		end = *r.EndedAt
	}
	days := int(utcMidnight(end).Sub(utcMidnight(r.StartedAt)).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

func utcMidnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
