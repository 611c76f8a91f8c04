package config

import "strings"

func (c *Config) normalize() error {
	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	if c.Database.Driver == "sqlite3" {
		c.Database.Driver = "sqlite"
	}
	c.Database.Path = strings.TrimSpace(c.Database.Path)
	if c.Database.Driver == "sqlite" && c.Database.Path != "" && !strings.HasPrefix(c.Database.Path, "file:") {
		p, err := ExpandPath(c.Database.Path)
		if err != nil {
			return err
		}
		c.Database.Path = p
	}

	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Practice.User = strings.TrimSpace(c.Practice.User)
	c.Practice.Filter = strings.ToLower(strings.TrimSpace(c.Practice.Filter))
	return nil
}
