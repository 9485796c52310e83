package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"
)

type ResetCmd struct {
	Restart bool   `help:"Close the current sobriety period and start a fresh one from today, without recording a drink."`
	All     bool   `help:"Wipe all tracking state. History records are kept."`
	Reason  string `short:"r" help:"Reason for the restarted period (with --restart)."`
	Note    string `short:"n" help:"Note for the restarted period (with --restart)."`
	Yes     bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *ResetCmd) Run(ctx *Context) error {
	if c.Restart == c.All {
		return fmt.Errorf("pass exactly one of --restart or --all")
	}

	if !c.Yes {
		if c.All {
			fmt.Println("⚠️  This wipes your streak, start date and today's records.")
		} else {
			fmt.Println("This closes the current sobriety period and restarts from today.")
		}
		fmt.Print("Continue? [y/N]: ")
		reader := bufio.NewReader(os.Stdin)
		response, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		response = strings.TrimSpace(strings.ToLower(response))
		if response != "y" && response != "yes" {
			fmt.Println("Reset cancelled.")
			return nil
		}
	}

	now := time.Now()
	ctx.Comfort.OnClearedByOutcome()

	if c.All {
		if err := ctx.Store.EndCurrentSobriety(now); err != nil {
			return err
		}
		if err := ctx.Engine.ResetAll(); err != nil {
			return err
		}
		fmt.Println("Tracking state cleared. Your history is still in the database.")
		fmt.Println("Run 'soberly init' when you are ready to start again.")
		return nil
	}

	if err := ctx.Engine.StartTracking(now); err != nil {
		return err
	}
	if _, err := ctx.Store.StartNewSobriety(now, c.Reason, c.Note); err != nil {
		return err
	}
	if err := ctx.EvaluateMilestones(); err != nil {
		return err
	}
	ctx.PerformAutomaticBackup()
	fmt.Println("✓ Restarted from today. Day zero is still a day forward.")
	return nil
}
