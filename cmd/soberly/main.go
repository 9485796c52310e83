package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"soberly/internal/cli"
	"soberly/internal/constants"
	"soberly/internal/errors"
	"soberly/internal/logger"
	"soberly/internal/storage"
)

var CLI struct {
	Version kong.VersionFlag
	Db      string `help:"Database file path." type:"path" default:"${config_path}"`
	Debug   bool   `help:"Enable debug logging to stderr."`

	Init       cli.InitCmd       `cmd:"" help:"Initialize storage and start tracking."`
	Status     cli.StatusCmd     `cmd:"" help:"Show streak, today's state and comfort countdown." default:"1"`
	Success    cli.SuccessCmd    `cmd:"" help:"Record today as a sober day."`
	Shaky      cli.ShakyCmd      `cmd:"" help:"Record an urge you resisted."`
	Drank      cli.DrankCmd      `cmd:"" help:"Record a drink and restart the streak."`
	Comfort    cli.ComfortCmd    `cmd:"" help:"Read the pending comfort message."`
	Log        cli.LogCmd        `cmd:"" help:"Daily mood and craving logs."`
	Milestones cli.MilestonesCmd `cmd:"" help:"List sobriety milestones."`
	History    cli.HistoryCmd    `cmd:"" help:"List past sobriety periods."`
	Stats      cli.StatsCmd      `cmd:"" help:"Aggregate statistics across all periods and logs."`
	Quote      cli.QuoteCmd      `cmd:"" help:"Print a motivational quote."`
	Reset      cli.ResetCmd      `cmd:"" help:"Restart tracking or wipe tracking state."`
	Watch      cli.WatchCmd      `cmd:"" help:"Run background timers in the foreground."`
	Tui        cli.TuiCmd        `cmd:"" help:"Launch the interactive dashboard."`
	Backup     struct {
		Create  cli.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    cli.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore cli.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage database backups."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Sobriety tracking companion"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":     constants.Version,
			"config_path": constants.DefaultConfigPath,
		},
	)

	if err := logger.Init(logger.Config{
		Debug:     CLI.Debug,
		ConfigDir: filepath.Dir(CLI.Db),
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	appCtx := &cli.Context{
		Store: storage.NewSQLiteStore(CLI.Db),
	}

	// Load before running the command; the init command handles its own setup.
	if ctx.Selected() != nil && ctx.Selected().Name != "init" {
		if err := appCtx.Store.Load(); err != nil {
			errors.Fatal(err)
		}
		if err := appCtx.Setup(); err != nil {
			errors.Fatal(err)
		}
	}

	errors.Fatal(ctx.Run(appCtx))
}
