package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"soberly/internal/constants"
)

type InitCmd struct {
	Date   string `short:"d" help:"Sobriety start date (YYYY-MM-DD). Defaults to today."`
	Reason string `short:"r" help:"Why you are quitting."`
	Note   string `short:"n" help:"Free-form note for the first sobriety period."`
	Force  bool   `short:"f" help:"Re-initialize even if tracking has already started."`
}

func (c *InitCmd) Run(ctx *Context) error {
	if err := ctx.Store.Init(); err != nil {
		return err
	}
	if err := ctx.Setup(); err != nil {
		return err
	}

	state, err := ctx.KV.Snapshot()
	if err != nil {
		return err
	}
	if state.IsTracking() && !c.Force {
		fmt.Printf("Tracking already started on %s. Use --force to start over.\n",
			state.StartDate.Format(constants.DateFormat))
		return nil
	}

	// No flags given: run the onboarding form.
	if c.Date == "" && c.Reason == "" && c.Note == "" {
		if err := c.onboardingForm(); err != nil {
			return err
		}
	}

	startDate := time.Now()
	if c.Date != "" {
		startDate, err = time.ParseInLocation(constants.DateFormat, strings.TrimSpace(c.Date), time.Local)
		if err != nil {
			return fmt.Errorf("invalid date format, use YYYY-MM-DD: %w", err)
		}
	}

	if err := ctx.Engine.StartTracking(startDate); err != nil {
		return err
	}
	if _, err := ctx.Store.StartNewSobriety(startDate, c.Reason, c.Note); err != nil {
		return err
	}
	if err := ctx.EvaluateMilestones(); err != nil {
		return err
	}

	fmt.Printf("Initialized soberly storage at: %s\n", ctx.Store.GetConfigPath())
	fmt.Printf("Tracking started on %s. One day at a time.\n", startDate.Format(constants.DateFormat))
	return nil
}

func (c *InitCmd) onboardingForm() error {
	c.Date = time.Now().Format(constants.DateFormat)
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("When did your sobriety start?").
				Description("YYYY-MM-DD, today is fine").
				Value(&c.Date).
				Validate(func(s string) error {
					if _, err := time.Parse(constants.DateFormat, strings.TrimSpace(s)); err != nil {
						return fmt.Errorf("invalid date format, use YYYY-MM-DD")
					}
					return nil
				}),
			huh.NewInput().
				Title("Why are you quitting?").
				Description("Shown on your status screen when things get hard").
				Value(&c.Reason),
			huh.NewText().
				Title("Anything else you want to tell your future self?").
				Value(&c.Note),
		),
	).WithTheme(huh.ThemeDracula()).Run()
}
