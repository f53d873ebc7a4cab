package constants

import "time"

// SessionState represents the current state of the TUI application
type SessionState int

const (
	AppName            = "habitpulse"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/habitpulse/habitpulse.db"
	Version            = "v0.3.0"

	// Environment variables
	EnvConfig       = "HABITPULSE_CONFIG"
	EnvDebug        = "HABITPULSE_DEBUG"
	EnvDBConnection = "HABITPULSE_DB_CONNECTION"
	DotEnvFileName  = ".env"

	// StreakLookbackDays bounds the backward streak walk. Streaks longer than
	// this report the cap.
	StreakLookbackDays = 365

	// CompletionRateWindowDays is the fixed denominator of the completion rate.
	CompletionRateWindowDays = 30

	// HeatmapDays is the number of days shown in a habit's heatmap.
	HeatmapDays = 28

	// WeekDays is the length of the weekly series.
	WeekDays = 7

	// Home date strip bounds relative to today
	StripDaysBefore = 14
	StripDaysAfter  = 5

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "habitpulse-"

	// Lock constants
	LockfileName     = "habitpulse.lock"
	LockRetries      = 3
	LockRetryDelay   = 100 * time.Millisecond
	LogDirName       = "logs"
	LogFileName      = "habitpulse.log"
	SnapshotVersion  = 1
	PostgresSchema   = AppName
	DefaultUserName  = "Adventurer"
	MaxNoteLength    = 500
	MaxTitleLength   = 80
	DefaultHabitUnit = "times"
)

// Session States
const (
	StateToday SessionState = iota
	StateCalendar
	StateAnalytics
	StateAddHabit
	StateEditNote
	StateConfirmDelete
)

// Avatars are the built-in profile pictures.
var Avatars = []string{
	"https://api.dicebear.com/9.x/adventurer/svg?seed=Felix",
	"https://api.dicebear.com/9.x/adventurer/svg?seed=Aneka",
	"https://api.dicebear.com/9.x/adventurer/svg?seed=Zack",
	"https://api.dicebear.com/9.x/adventurer/svg?seed=Midnight",
	"https://api.dicebear.com/9.x/adventurer/svg?seed=Luna",
	"https://api.dicebear.com/9.x/adventurer/svg?seed=Shadow",
	"https://api.dicebear.com/9.x/adventurer/svg?seed=Orion",
	"https://api.dicebear.com/9.x/adventurer/svg?seed=Nova",
	"https://api.dicebear.com/9.x/adventurer/svg?seed=Leo",
	"https://api.dicebear.com/9.x/adventurer/svg?seed=Bella",
	"https://api.dicebear.com/9.x/adventurer/svg?seed=Jack",
	"https://api.dicebear.com/9.x/adventurer/svg?seed=Willow",
}
