package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"soberly/internal/comfort"
	"soberly/internal/constants"
	"soberly/internal/logger"
	"soberly/internal/notifier"
)

type WatchCmd struct {
	ReminderHour int  `help:"Hour of day (0-23) for the daily check-in reminder." default:"20"`
	NoReminder   bool `help:"Disable the daily reminder notification."`
}

func (c *WatchCmd) Validate() error {
	if c.ReminderHour < 0 || c.ReminderHour > 23 {
		return fmt.Errorf("reminder hour must be between 0 and 23")
	}
	return nil
}

// Run hosts the background timers: the comfort-message callback, the midnight
// day-rollover, and the daily reminder. Short-lived commands recorded from
// other processes are picked up through the poll-tick resync.
func (c *WatchCmd) Run(ctx *Context) error {
	notify := notifier.New()

	ctx.Comfort.SetReadyHook(func() {
		if err := notify.Notify(comfort.Message); err != nil {
			logger.Debug("Comfort notification not delivered", "error", err)
		}
	})

	if _, err := ctx.Engine.CheckAndResetIfNewDay(); err != nil {
		return err
	}
	if err := ctx.Comfort.RestoreOnStartup(); err != nil {
		return err
	}

	fmt.Println("Watching for day changes and comfort timers. Ctrl+C to stop.")
	logger.Info("Watch mode started", "reminder_hour", c.ReminderHour, "reminder_enabled", !c.NoReminder)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)

	ticker := time.NewTicker(constants.RolloverPollInterval)
	defer ticker.Stop()

	midnight := time.NewTimer(untilNextMidnight(time.Now()))
	defer midnight.Stop()

	lastReminderDay := ""
	for {
		select {
		case <-midnight.C:
			if err := c.onTick(ctx); err != nil {
				logger.Error("Midnight rollover failed", "error", err)
			}
			midnight.Reset(untilNextMidnight(time.Now()))

		case <-ticker.C:
			// The poll is advisory: rollover correctness never depends on the
			// midnight timer having fired, only on persisted dates.
			if err := c.onTick(ctx); err != nil {
				logger.Error("Rollover poll failed", "error", err)
			}
			if !c.NoReminder {
				lastReminderDay = c.maybeRemind(ctx, notify, lastReminderDay)
			}

		case <-sig:
			fmt.Println("\nStopped.")
			return nil
		}
	}
}

func (c *WatchCmd) onTick(ctx *Context) error {
	reset, err := ctx.Engine.CheckAndResetIfNewDay()
	if err != nil {
		return err
	}
	if reset {
		if err := ctx.EvaluateMilestones(); err != nil {
			return err
		}
	}
	return ctx.Comfort.Resync()
}

// maybeRemind sends the once-a-day check-in nudge after the configured hour.
// Returns the day the reminder was last sent for.
func (c *WatchCmd) maybeRemind(ctx *Context, notify *notifier.Notifier, lastDay string) string {
	now := time.Now()
	today := now.Format(constants.DateFormat)
	if now.Hour() < c.ReminderHour || lastDay == today {
		return lastDay
	}

	recorded, err := ctx.Engine.HasRecordedToday()
	if err != nil {
		// Transient store failure must not swallow the reminder for the day.
		logger.Warn("Reminder check failed", "error", err)
		return lastDay
	}
	if recorded {
		return today
	}
	days, err := ctx.Engine.SoberDays()
	if err != nil {
		logger.Warn("Reminder check failed", "error", err)
		return lastDay
	}

	text := fmt.Sprintf("How was today? %s sober so far.", FormatDays(days))
	if quote, err := ctx.Store.GetRandomQuote(); err == nil {
		text = fmt.Sprintf("%s “%s”", text, quote.Quote)
	}
	if err := notify.Notify(text); err != nil {
		logger.Debug("Reminder notification not delivered", "error", err)
	}
	return today
}

func untilNextMidnight(now time.Time) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
	return next.Sub(now)
}
