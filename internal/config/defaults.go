package config

// Default values.
const (
	DefaultDriver          = "sqlite"
	DefaultUser            = "default"
	DefaultPracticeCount   = 20
	DefaultFilter          = "all"
	DefaultLessonMinSize   = 4
	DefaultReminderMinutes = 60
	DefaultReminderStart   = 8
	DefaultReminderEnd     = 22
)

// Default returns the configuration used when no file is present. An empty
// database path means store.DefaultDBPath.
func Default() Config {
	return Config{
		Database: Database{Driver: DefaultDriver},
		Logging:  Logging{Level: "info", Format: "auto"},
		Practice: Practice{
			User:          DefaultUser,
			Count:         DefaultPracticeCount,
			Filter:        DefaultFilter,
			LessonMinSize: DefaultLessonMinSize,
		},
		Reminder: Reminder{
			IntervalMinutes: DefaultReminderMinutes,
			StartHour:       DefaultReminderStart,
			EndHour:         DefaultReminderEnd,
		},
	}
}
