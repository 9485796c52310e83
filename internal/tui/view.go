package tui

import (
	"fmt"
	"strings"
	"time"

	"soberly/internal/comfort"
	"soberly/internal/constants"
	"soberly/internal/models"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("soberly"))
	b.WriteString("\n\n")

	if !m.state.IsTracking() {
		b.WriteString("Tracking has not been started.\n")
		b.WriteString("Quit and run 'soberly init' to begin.\n")
		return docStyle.Render(b.String())
	}

	b.WriteString(fmt.Sprintf("%s sober, since %s\n",
		streakStyle.Render(formatDays(m.days)),
		m.state.StartDate.Format(constants.DateFormat)))
	b.WriteString(m.todayLine())
	b.WriteString("\n")

	if section := m.comfortSection(); section != "" {
		b.WriteString("\n")
		b.WriteString(section)
		b.WriteString("\n")
	}

	if m.flash != "" {
		b.WriteString("\n")
		b.WriteString(flashStyle.Render(m.flash))
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(shakyStyle.Render("error: " + m.err.Error()))
		b.WriteString("\n")
	}

	if m.quote.Quote != "" {
		text := fmt.Sprintf("“%s”", m.quote.Quote)
		if m.quote.Author != "" {
			text = fmt.Sprintf("%s (%s)", text, m.quote.Author)
		}
		b.WriteString("\n")
		b.WriteString(quoteStyle.Render(text))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))

	return docStyle.Render(b.String())
}

func (m Model) todayLine() string {
	switch m.state.DailyStatus {
	case models.StatusShaky:
		return shakyStyle.Render(fmt.Sprintf("Today: shaky, %d urge(s) resisted", m.state.ShakyCountToday))
	case models.StatusFail:
		return "Today: restarted"
	default:
		if m.state.HasRecordedToday(time.Now()) {
			return "Today: sober day recorded ✓"
		}
		return "Today: not yet recorded"
	}
}

// comfortSection renders either the unlocked comfort message or the countdown
// bar toward it. Empty when nothing is pending.
func (m Model) comfortSection() string {
	if m.state.ComfortShown {
		return ""
	}
	if m.state.ComfortReady {
		return comfortStyle.Render(comfort.Message)
	}
	last, ok := m.state.LastShaky()
	if !ok || m.state.DailyStatus != models.StatusShaky {
		return ""
	}

	remaining := time.Until(last.Add(constants.ComfortDelay))
	if remaining <= 0 {
		return ""
	}
	elapsed := constants.ComfortDelay - remaining
	percent := float64(elapsed) / float64(constants.ComfortDelay)

	return fmt.Sprintf("%s\nComfort message in %s\n",
		m.progress.ViewAs(percent), formatCountdown(remaining))
}

func formatDays(days int) string {
	if days == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", days)
}

func formatCountdown(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d.Hours())
	min := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%d:%02d:%02d", h, min, s)
}
