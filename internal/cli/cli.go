// Package cli implements projdashctl, an administrative command line that
// operates on the record store directly, without going through the HTTP API.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/dmitrijs2005/projdash/internal/logging"
	"github.com/dmitrijs2005/projdash/internal/server/blobstore"
	"github.com/dmitrijs2005/projdash/internal/server/config"
	"github.com/dmitrijs2005/projdash/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/projdash/internal/server/services"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// App holds the state shared by every subcommand. Storage is opened lazily in
// the root PersistentPreRunE and released by Close.
type App struct {
	configFile string
	envFile    string
	backend    string
	dataDir    string
	dsn        string
	sqlitePath string

	config   *config.Config
	manager  repomanager.Manager
	users    *services.UserService
	projects *services.ProjectService
	avatars  *services.AvatarService
}

// NewRootCommand builds the projdashctl command tree bound to a.
func (a *App) NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "projdashctl",
		Short:         "Administer a projdash record store",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.configFile, "config", "c", "", "config file (.json, .yaml)")
	pf.StringVar(&a.envFile, "env-file", ".env", "dotenv file loaded before the environment is read")
	pf.StringVar(&a.backend, "backend", "", "storage backend: file, postgres, sqlite")
	pf.StringVar(&a.dataDir, "data-dir", "", "data directory of the file backend")
	pf.StringVar(&a.dsn, "dsn", "", "PostgreSQL DSN")
	pf.StringVar(&a.sqlitePath, "sqlite-path", "", "SQLite database path")

	root.AddCommand(
		a.newMigrateCommand(),
		a.newUserCommand(),
		a.newProjectCommand(),
		a.newPictureCommand(),
	)
	return root
}

func (a *App) open(cmd *cobra.Command) error {
	if a.manager != nil {
		return nil
	}

	if a.envFile != "" {
		if err := godotenv.Load(a.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", a.envFile, err)
		}
	}

	var args []string
	if a.configFile != "" {
		args = append(args, "-c", a.configFile)
	}
	cfg, err := config.Load(args)
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	flags := cmd.Flags()
	override := func(name string, dst *string, v string) {
		if flags.Changed(name) {
			*dst = v
		}
	}
	override("backend", &cfg.StorageBackend, a.backend)
	override("data-dir", &cfg.DataDir, a.dataDir)
	override("dsn", &cfg.DatabaseDSN, a.dsn)
	override("sqlite-path", &cfg.SQLitePath, a.sqlitePath)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	ctx := cmd.Context()
	m, err := repomanager.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}

	var blobs blobstore.Store
	if cfg.S3Bucket != "" {
		s3, err := blobstore.NewS3Store(ctx, cfg)
		if err != nil {
			_ = m.Close()
			return fmt.Errorf("s3 init error: %w", err)
		}
		blobs = s3
	}

	logger, _ := logging.New(logging.Options{Level: cfg.LogLevel, Output: cmd.ErrOrStderr()})

	a.config = cfg
	a.manager = m
	a.avatars = services.NewAvatarService(m, blobs, cfg, logger)
	a.users = services.NewUserService(m, a.avatars, cfg)
	a.projects = services.NewProjectService(m, cfg)
	return nil
}

// Close releases the storage opened by a command, if any.
func (a *App) Close() error {
	if a.manager == nil {
		return nil
	}
	err := a.manager.Close()
	a.manager = nil
	return err
}

// Run executes projdashctl with args and releases storage afterwards.
func Run(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) error {
	a := &App{}
	defer a.Close()

	root := a.NewRootCommand()
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)
	return root.ExecuteContext(ctx)
}

// userID resolves a login to the stored user id.
func (a *App) userID(ctx context.Context, login string) (string, error) {
	u, err := a.users.GetByLogin(ctx, login)
	if err != nil {
		return "", fmt.Errorf("user %q: %w", login, err)
	}
	return u.ID, nil
}
