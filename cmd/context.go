package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/abhisek/lingo/internal/catalog"
	"github.com/abhisek/lingo/internal/config"
	"github.com/abhisek/lingo/internal/logging"
	"github.com/abhisek/lingo/internal/mastery"
	"github.com/abhisek/lingo/internal/store"
)

type rootFlags struct {
	db     string
	config string
	user   string
}

// commandContext carries lazily loaded configuration shared by subcommands.
type commandContext struct {
	flags *rootFlags
	// logOut receives log output; nil means stderr.
	logOut io.Writer

	configOnce sync.Once
	config     *config.Config
	configErr  error
	logger     *slog.Logger
}

func newCommandContext(flags *rootFlags) *commandContext {
	return &commandContext{flags: flags}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(strings.TrimSpace(c.flags.config))
		if err != nil {
			c.configErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg, c.logOut)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.logger = logger
	})
	return c.config, c.configErr
}

// userID returns --user, falling back to practice.user.
func (c *commandContext) userID() string {
	if u := strings.TrimSpace(c.flags.user); u != "" {
		return u
	}
	if c.config != nil {
		return c.config.Practice.User
	}
	return config.DefaultUser
}

// database resolves the driver and DSN: --db flag, then database.path (which
// already honours LINGO_DB), then the default XDG path.
func (c *commandContext) database() (driver, dsn string, err error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return "", "", err
	}
	driver = cfg.Database.Driver
	dsn = strings.TrimSpace(c.flags.db)
	if dsn == "" {
		dsn = cfg.Database.Path
	}
	if driver == store.DriverPostgres {
		return driver, dsn, nil
	}
	if dsn == "" {
		dsn, err = store.DefaultDBPath()
		return driver, dsn, err
	}
	return driver, dsn, store.EnsureDir(dsn)
}

// lockPath is the advisory lock guarding practice sessions for the current
// database and learner.
func (c *commandContext) lockPath() (string, error) {
	driver, dsn, err := c.database()
	if err != nil {
		return "", err
	}
	if driver == store.DriverPostgres {
		return filepath.Join(lockDir(), fmt.Sprintf("lingo-%s.lock", sanitize(c.userID()))), nil
	}
	return dsn + ".lock", nil
}

// app bundles the services a command needs.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *store.Store
	mastery *mastery.Service
	catalog *catalog.Registry
	userID  string
}

// withApp opens the store, builds services and runs fn.
func (c *commandContext) withApp(cmd *cobra.Command, fn func(*app) error) error {
	if c.logOut == nil {
		c.logOut = cmd.ErrOrStderr()
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	driver, dsn, err := c.database()
	if err != nil {
		return fmt.Errorf("resolve database: %w", err)
	}
	reg, err := catalog.Default()
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	st, err := store.OpenDriver(driver, dsn)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	logger := c.logger.With("user", c.userID())
	logger.Debug("store opened", "driver", driver)

	return fn(&app{
		cfg:     cfg,
		logger:  logger,
		store:   st,
		mastery: mastery.NewService(st.ProgressRepo(), st.ReviewEventRepo(), mastery.WithLogger(logger)),
		catalog: reg,
		userID:  c.userID(),
	})
}

// collection resolves a collection argument.
func (a *app) collection(id string) (*catalog.Collection, error) {
	return a.catalog.Get(strings.TrimSpace(id))
}
