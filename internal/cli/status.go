package cli

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"soberly/internal/constants"
	"soberly/internal/models"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	streakStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	faintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	quoteStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("111")).
			Italic(true)
)

type StatusCmd struct{}

func (c *StatusCmd) Run(ctx *Context) error {
	if _, err := ctx.Engine.CheckAndResetIfNewDay(); err != nil {
		return err
	}
	if err := ctx.Comfort.Resync(); err != nil {
		return err
	}

	state, err := ctx.KV.Snapshot()
	if err != nil {
		return err
	}
	if !state.IsTracking() {
		fmt.Println("Tracking has not been started. Run 'soberly init' to begin.")
		return nil
	}

	days, err := ctx.Engine.SoberDays()
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("  %s\n", titleStyle.Render("soberly"))
	fmt.Printf("  %s sober, since %s\n",
		streakStyle.Render(FormatDays(days)),
		state.StartDate.Format(constants.DateFormat))

	switch state.DailyStatus {
	case models.StatusShaky:
		fmt.Printf("  Today: %s (%d urge(s) resisted)\n", warnStyle.Render("shaky"), state.ShakyCountToday)
	case models.StatusFail:
		fmt.Println("  Today: restarted")
	default:
		if state.HasRecordedToday(time.Now()) {
			fmt.Println("  Today: sober day recorded ✓")
		} else {
			fmt.Println("  Today: not yet recorded")
		}
	}

	if state.ComfortReady {
		fmt.Printf("  %s\n", warnStyle.Render("A comfort message is waiting, run 'soberly comfort'."))
	} else if last, ok := state.LastShaky(); ok && state.DailyStatus == models.StatusShaky && !state.ComfortShown {
		remaining := time.Until(last.Add(constants.ComfortDelay))
		if remaining > 0 {
			fmt.Printf("  Comfort message in %s\n", FormatDuration(remaining))
		}
	}

	if next, ok, err := nextMilestone(ctx, days); err != nil {
		return err
	} else if ok {
		fmt.Printf("  %s\n", faintStyle.Render(
			fmt.Sprintf("Next milestone: %s (%s away)", next.Title, FormatDays(next.TargetDays-days))))
	}

	if quote, err := ctx.Store.GetRandomQuote(); err == nil {
		fmt.Println()
		fmt.Printf("  %s\n", quoteStyle.Render(formatQuote(quote)))
	}
	fmt.Println()
	return nil
}

// nextMilestone returns the closest milestone still ahead of the given day count.
func nextMilestone(ctx *Context, days int) (models.Milestone, bool, error) {
	pending, err := ctx.Store.GetUnachievedMilestones()
	if err != nil {
		return models.Milestone{}, false, err
	}
	for _, m := range pending {
		if m.TargetDays > days {
			return m, true, nil
		}
	}
	return models.Milestone{}, false, nil
}

type QuoteCmd struct{}

func (c *QuoteCmd) Run(ctx *Context) error {
	quote, err := ctx.Store.GetRandomQuote()
	if err != nil {
		return err
	}
	fmt.Println(formatQuote(quote))
	return nil
}

func formatQuote(q models.MotivationalQuote) string {
	if q.Author == "" {
		return fmt.Sprintf("“%s”", q.Quote)
	}
	return fmt.Sprintf("“%s” (%s)", q.Quote, q.Author)
}

type HistoryCmd struct{}

func (c *HistoryCmd) Run(ctx *Context) error {
	records, err := ctx.Store.GetAllSobrietyRecords()
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No sobriety periods recorded yet.")
		return nil
	}

	now := time.Now()
	fmt.Printf("Sobriety periods (%d):\n\n", len(records))
	for _, r := range records {
		end := "ongoing"
		marker := "●"
		if r.EndedAt != nil {
			end = r.EndedAt.Format(constants.DateFormat)
			marker = "○"
		}
		days := recordDays(r, now)
		fmt.Printf("  %s %s → %-10s  %s\n", marker, r.StartedAt.Format(constants.DateFormat), end, FormatDays(days))
		if r.Reason != "" {
			fmt.Printf("      Reason: %s\n", r.Reason)
		}
		if r.Note != "" {
			fmt.Printf("      Note: %s\n", r.Note)
		}
	}
	return nil
}

type MilestonesCmd struct {
	Achieved   bool `help:"Show only achieved milestones."`
	Unachieved bool `help:"Show only milestones still ahead."`
}

func (c *MilestonesCmd) Run(ctx *Context) error {
	var (
		milestones []models.Milestone
		err        error
	)
	switch {
	case c.Achieved:
		milestones, err = ctx.Store.GetAchievedMilestones()
	case c.Unachieved:
		milestones, err = ctx.Store.GetUnachievedMilestones()
	default:
		milestones, err = ctx.Store.GetAllMilestones()
	}
	if err != nil {
		return err
	}
	if len(milestones) == 0 {
		fmt.Println("No milestones found.")
		return nil
	}

	for _, m := range milestones {
		mark := " "
		achieved := ""
		if m.IsAchieved {
			mark = "✓"
			if m.AchievedAt != nil {
				achieved = faintStyle.Render("  achieved " + m.AchievedAt.Format(constants.DateFormat))
			}
		}
		fmt.Printf("  [%s] %-18s %s%s\n", mark, m.Title, FormatDays(m.TargetDays), achieved)
	}
	return nil
}
