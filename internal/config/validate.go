package config

import (
	"errors"
	"fmt"
	"slices"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validatePractice(); err != nil {
		return err
	}
	return c.validateReminder()
}

func (c *Config) validateDatabase() error {
	switch c.Database.Driver {
	case "sqlite":
		return nil
	case "postgres":
		if c.Database.Path == "" {
			return errors.New("database.path must be a connection string when database.driver is postgres")
		}
		return nil
	default:
		return fmt.Errorf("database.driver: unsupported value %q (want sqlite or postgres)", c.Database.Driver)
	}
}

func (c *Config) validateLogging() error {
	if !slices.Contains([]string{"", "debug", "info", "warn", "error"}, c.Logging.Level) {
		return fmt.Errorf("log.level: unsupported value %q", c.Logging.Level)
	}
	if !slices.Contains([]string{"", "auto", "console", "json"}, c.Logging.Format) {
		return fmt.Errorf("log.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}

func (c *Config) validatePractice() error {
	if c.Practice.User == "" {
		return errors.New("practice.user must not be empty")
	}
	if c.Practice.Count < 0 {
		return errors.New("practice.count must be >= 0")
	}
	if !slices.Contains([]string{"", "all", "new", "due", "weak"}, c.Practice.Filter) {
		return fmt.Errorf("practice.filter: unsupported value %q", c.Practice.Filter)
	}
	if c.Practice.LessonMinSize < 1 {
		return errors.New("practice.lesson_min_size must be >= 1")
	}
	return nil
}

func (c *Config) validateReminder() error {
	if c.Reminder.IntervalMinutes < 1 {
		return errors.New("reminder.interval_minutes must be >= 1")
	}
	if c.Reminder.StartHour < 0 || c.Reminder.StartHour > 23 || c.Reminder.EndHour < 0 || c.Reminder.EndHour > 23 {
		return errors.New("reminder.start_hour and reminder.end_hour must be between 0 and 23")
	}
	return nil
}
