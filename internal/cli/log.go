package cli

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"soberly/internal/constants"
	"soberly/internal/models"
)

type LogCmd struct {
	Add  LogAddCmd  `cmd:"" help:"Add or update today's log." default:"withargs"`
	List LogListCmd `cmd:"" help:"List recent daily logs."`
	Show LogShowCmd `cmd:"" help:"Show the log for one day."`
}

type LogAddCmd struct {
	Mood    int    `short:"m" help:"Mood, 1 (worst) to 5 (best)." required:""`
	Craving int    `short:"c" help:"Craving level, 1 (none) to 5 (strongest)." required:""`
	Date    string `short:"d" help:"Day to log (YYYY-MM-DD). Defaults to today."`
	Drank   bool   `help:"Whether you drank that day."`
	Amount  int    `short:"a" help:"Standard drinks, when --drank is set." default:"0"`
	Note    string `short:"n" help:"Free-form note."`
}

func (c *LogAddCmd) Validate() error {
	if c.Mood < 1 || c.Mood > 5 {
		return fmt.Errorf("mood must be between 1 and 5")
	}
	if c.Craving < 1 || c.Craving > 5 {
		return fmt.Errorf("craving must be between 1 and 5")
	}
	if !c.Drank && c.Amount != 0 {
		return fmt.Errorf("--amount requires --drank")
	}
	if c.Amount < 0 {
		return fmt.Errorf("amount must not be negative")
	}
	return nil
}

func (c *LogAddCmd) Run(ctx *Context) error {
	day := time.Now().Format(constants.DateFormat)
	if c.Date != "" {
		parsed, err := time.Parse(constants.DateFormat, c.Date)
		if err != nil {
			return fmt.Errorf("invalid date format, use YYYY-MM-DD: %w", err)
		}
		day = parsed.Format(constants.DateFormat)
	}

	log := models.DailyLog{
		ID:           uuid.New().String(),
		Day:          day,
		Mood:         c.Mood,
		CravingLevel: c.Craving,
		DidDrink:     c.Drank,
		DrinkAmount:  c.Amount,
		Note:         c.Note,
		CreatedAt:    time.Now(),
	}

	// SaveDailyLog upserts by day, so logging twice for the same date
	// overwrites the earlier entry.
	if err := ctx.Store.SaveDailyLog(log); err != nil {
		return err
	}
	fmt.Printf("Logged %s: mood %d/5, craving %d/5\n", day, c.Mood, c.Craving)
	return nil
}

type LogListCmd struct {
	Recent int  `short:"r" help:"Number of most recent logs to show." default:"7"`
	All    bool `help:"Show every log."`
}

func (c *LogListCmd) Run(ctx *Context) error {
	var (
		logs []models.DailyLog
		err  error
	)
	if c.All {
		logs, err = ctx.Store.GetAllDailyLogs()
	} else {
		logs, err = ctx.Store.GetRecentDailyLogs(c.Recent)
	}
	if err != nil {
		return err
	}
	if len(logs) == 0 {
		fmt.Println("No daily logs yet. Use 'soberly log add' to start.")
		return nil
	}

	for _, l := range logs {
		printLogLine(l)
	}
	return nil
}

type LogShowCmd struct {
	Date string `arg:"" help:"Day to show (YYYY-MM-DD or 'today')." default:"today"`
}

func (c *LogShowCmd) Run(ctx *Context) error {
	day := c.Date
	if day == "today" {
		day = time.Now().Format(constants.DateFormat)
	} else if _, err := time.Parse(constants.DateFormat, day); err != nil {
		return fmt.Errorf("invalid date format, use YYYY-MM-DD or 'today': %w", err)
	}

	log, err := ctx.Store.GetDailyLogByDay(day)
	if err != nil {
		return fmt.Errorf("no log found for %s", day)
	}

	printLogLine(log)
	if log.Note != "" {
		fmt.Printf("      Note: %s\n", log.Note)
	}
	return nil
}

func printLogLine(l models.DailyLog) {
	drink := "sober"
	if l.DidDrink {
		drink = fmt.Sprintf("drank (%d)", l.DrinkAmount)
	}
	fmt.Printf("  %s  mood %d/5  craving %d/5  %s\n", l.Day, l.Mood, l.CravingLevel, drink)
}
