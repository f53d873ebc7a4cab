package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/habitpulse/internal/cli"
	"github.com/julianstephens/habitpulse/internal/cli/backups"
	"github.com/julianstephens/habitpulse/internal/cli/habits"
	"github.com/julianstephens/habitpulse/internal/cli/profile"
	"github.com/julianstephens/habitpulse/internal/cli/reports"
	"github.com/julianstephens/habitpulse/internal/cli/system"
	"github.com/julianstephens/habitpulse/internal/config"
	"github.com/julianstephens/habitpulse/internal/constants"
	herrors "github.com/julianstephens/habitpulse/internal/errors"
	"github.com/julianstephens/habitpulse/internal/lock"
	"github.com/julianstephens/habitpulse/internal/logger"
	"github.com/julianstephens/habitpulse/internal/scheduler"
	"github.com/julianstephens/habitpulse/internal/storage"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Store to use: a SQLite path, a .json path, or a PostgreSQL connection string. Use 'postgres' or 'keyring' to read the connection string from HABITPULSE_DB_CONNECTION or the OS keyring. Credentials must NOT be embedded in the connection string." type:"string" env:"HABITPULSE_CONFIG" default:"~/.config/habitpulse/habitpulse.db"`
	Debug   bool   `help:"Enable debug logging." env:"HABITPULSE_DEBUG"`

	Init     system.InitCmd      `cmd:"" help:"Initialize habitpulse storage."`
	Migrate  system.MigrateCmd   `cmd:"" help:"Run database migrations."`
	Doctor   system.DoctorCmd    `cmd:"" help:"Run health checks and diagnostics."`
	Tui      system.TuiCmd       `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Habit    habits.HabitCmd     `cmd:"" help:"Manage habits."`
	Toggle   habits.ToggleCmd    `cmd:"" help:"Toggle a habit's completion for a day."`
	Note     habits.NoteCmd      `cmd:"" help:"Attach a note to a habit for a day."`
	Today    reports.TodayCmd    `cmd:"" help:"Show the habits due today and their progress."`
	Week     reports.WeekCmd     `cmd:"" help:"Show progress for the last seven days."`
	Strip    reports.StripCmd    `cmd:"" help:"Show the date strip around today."`
	Calendar reports.CalendarCmd `cmd:"" help:"Show a month calendar of perfect and partial days."`
	Heatmap  reports.HeatmapCmd  `cmd:"" help:"Show recent completion history."`
	Stats    reports.StatsCmd    `cmd:"" help:"Show streaks, totals and completion rates."`
	Profile  profile.ProfileCmd  `cmd:"" help:"Show or update your profile."`
	Backup   struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage database backups."`
	Keyring  system.KeyringCmd `cmd:"" help:"Manage the PostgreSQL connection string in the OS keyring."`
	Import   system.ImportCmd  `cmd:"" help:"Import habits from an exported JSON file."`
	DebugCmd system.DebugCmd   `cmd:"" name:"debug" help:"Debug commands for troubleshooting."`
}

// loadDotEnv reads .env from the working directory and the config directory
// before flags are parsed, so env-backed flags can come from either.
func loadDotEnv() {
	dirs := []string{}
	if wd, err := os.Getwd(); err == nil {
		dirs = append(dirs, wd)
	}
	value := os.Getenv(constants.EnvConfig)
	if value == "" {
		value = constants.DefaultConfigPath
	}
	if dir, err := config.Dir(value); err == nil {
		dirs = append(dirs, dir)
	}
	if _, err := config.LoadDotEnv(dirs...); err != nil {
		fmt.Fprintln(os.Stderr, herrors.Format(err))
	}
}

func main() {
	loadDotEnv()

	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Habit tracker with streaks, calendars and completion stats"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	command := ctx.Command()
	configDir, err := config.Dir(CLI.Config)
	if err != nil {
		herrors.Fatal(err)
	}
	if err := logger.Init(logger.Config{
		Debug:     CLI.Debug || config.DebugFromEnv(),
		ConfigDir: configDir,
		Quiet:     command == "tui",
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logging: %v\n", err)
	}
	logger.Debug("Starting", "command", command, "backend", config.Detect(CLI.Config))

	appCtx := &cli.Context{
		Scheduler: scheduler.New(),
		LockDir:   configDir,
	}

	// Keyring commands manage the connection string itself, so they must
	// work before a PostgreSQL store can be opened.
	store, err := cli.OpenStore(CLI.Config)
	if err != nil && !strings.HasPrefix(command, "keyring") {
		fail(err)
	}
	appCtx.Store = store
	defer func() {
		if appCtx.Store != nil {
			appCtx.Store.Close()
		}
	}()

	if err := ctx.Run(appCtx); err != nil {
		fail(err)
	}
}

func fail(err error) {
	switch {
	case errors.Is(err, storage.ErrNotInitialized):
		err = herrors.WithHint(err, "Run 'habitpulse init' to create the store.")
	case errors.Is(err, lock.ErrLocked):
		err = herrors.WithHint(err, "Another habitpulse process is using the store. Close it or run 'habitpulse doctor'.")
	}
	herrors.Fatal(err)
}
