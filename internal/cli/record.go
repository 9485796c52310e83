package cli

import (
	"fmt"
	"time"

	"soberly/internal/comfort"
	"soberly/internal/constants"
)

type SuccessCmd struct{}

func (c *SuccessCmd) Run(ctx *Context) error {
	recorded, err := ctx.Engine.HasRecordedToday()
	if err != nil {
		return err
	}
	if recorded {
		fmt.Println("Today is already recorded. See you tomorrow.")
		return nil
	}

	if err := ctx.Engine.RecordSuccess(); err != nil {
		return err
	}
	ctx.Comfort.OnClearedByOutcome()

	days, err := ctx.Engine.SoberDays()
	if err != nil {
		return err
	}
	fmt.Printf("✓ Sober day recorded. %s and counting.\n", FormatDays(days))

	if err := ctx.EvaluateMilestones(); err != nil {
		return err
	}
	ctx.PerformAutomaticBackup()
	return nil
}

type ShakyCmd struct{}

func (c *ShakyCmd) Run(ctx *Context) error {
	if err := ctx.Engine.RecordShaky(); err != nil {
		return err
	}
	ctx.Comfort.OnShakyRecorded()

	state, err := ctx.KV.Snapshot()
	if err != nil {
		return err
	}
	last, _ := state.LastShaky()
	readyAt := last.Add(constants.ComfortDelay)

	fmt.Printf("Urge logged (%d today). It passes, every time.\n", state.ShakyCountToday)
	fmt.Printf("If you hold on, a message unlocks at %s.\n", readyAt.Format("15:04"))
	return nil
}

type DrankCmd struct {
	Reason string `short:"r" help:"What led to it, if you want to note it."`
	Note   string `short:"n" help:"Free-form note for the new sobriety period."`
}

func (c *DrankCmd) Run(ctx *Context) error {
	recorded, err := ctx.Engine.HasRecordedToday()
	if err != nil {
		return err
	}
	if recorded {
		fmt.Println("Today is already recorded. See you tomorrow.")
		return nil
	}

	if err := ctx.Engine.RecordFail(c.Reason, c.Note); err != nil {
		return err
	}
	ctx.Comfort.OnClearedByOutcome()

	fmt.Println("Recorded. A slip is not the end of the road.")
	fmt.Println("Your new period starts today. The days you held still count for you.")

	if err := ctx.EvaluateMilestones(); err != nil {
		return err
	}
	ctx.PerformAutomaticBackup()
	return nil
}

type ComfortCmd struct{}

func (c *ComfortCmd) Run(ctx *Context) error {
	if _, err := ctx.Engine.CheckAndResetIfNewDay(); err != nil {
		return err
	}
	// Catch-up: if the delay elapsed while no process was hosting the timer,
	// Resync fires the ready transition synchronously.
	if err := ctx.Comfort.Resync(); err != nil {
		return err
	}

	state, err := ctx.KV.Snapshot()
	if err != nil {
		return err
	}

	if state.ComfortReady {
		fmt.Println()
		fmt.Printf("  %s\n\n", comfort.Message)
		return ctx.Engine.MarkComfortMessageShown()
	}

	if last, ok := state.LastShaky(); ok && !state.ComfortShown {
		remaining := time.Until(last.Add(constants.ComfortDelay))
		if remaining > 0 {
			fmt.Printf("Not yet. Your message unlocks in %s.\n", FormatDuration(remaining))
			return nil
		}
	}

	fmt.Println("No comfort message pending.")
	return nil
}
