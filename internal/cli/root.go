package cli

import (
	"fmt"
	"time"

	"soberly/internal/backup"
	"soberly/internal/comfort"
	"soberly/internal/engine"
	"soberly/internal/kvstore"
	"soberly/internal/logger"
	"soberly/internal/milestone"
	"soberly/internal/storage"
)

// Context carries the wired application components into every command.
type Context struct {
	Store      storage.Provider
	KV         *kvstore.Store
	Engine     *engine.Engine
	Comfort    *comfort.Controller
	Milestones *milestone.Evaluator
}

// Setup builds the component graph over a loaded store. Called once from main
// after Init or Load succeeds.
func (c *Context) Setup() error {
	c.KV = kvstore.New(c.Store.GetDB())
	if err := c.KV.EnsureSchema(); err != nil {
		return err
	}
	c.Engine = engine.New(c.KV, c.Store)
	c.Comfort = comfort.New(c.KV, comfort.NewTimerScheduler())
	c.Milestones = milestone.NewEvaluator(c.Store)
	return nil
}

// PerformAutomaticBackup creates an automatic backup and silently handles errors
func (c *Context) PerformAutomaticBackup() {
	mgr := backup.NewManager(c.Store.GetConfigPath())
	if _, err := mgr.Create(); err != nil {
		// Log warning but don't interrupt user workflow
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// EvaluateMilestones re-runs milestone evaluation against the current
// sober-day count and announces any new achievements.
func (c *Context) EvaluateMilestones() error {
	days, err := c.Engine.SoberDays()
	if err != nil {
		return err
	}
	achieved, err := c.Milestones.Evaluate(days)
	if err != nil {
		return err
	}
	for _, title := range achieved {
		fmt.Printf("🏅 Milestone achieved: %s\n", title)
	}
	return nil
}

// FormatDuration renders a duration as "2h 15m" / "45m" / "30s" for countdown
// and history output.
func FormatDuration(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case m > 0:
		return fmt.Sprintf("%dm", m)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

// FormatDays renders a day count with its unit.
func FormatDays(days int) string {
	if days == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", days)
}
