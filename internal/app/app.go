package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/liaGregorio/GeoDUA-sub000/internal/ai"
	"github.com/liaGregorio/GeoDUA-sub000/internal/config"
	"github.com/liaGregorio/GeoDUA-sub000/internal/content"
	"github.com/liaGregorio/GeoDUA-sub000/internal/editor"
	"github.com/liaGregorio/GeoDUA-sub000/internal/errors"
	"github.com/liaGregorio/GeoDUA-sub000/internal/history"
	"github.com/liaGregorio/GeoDUA-sub000/internal/journal"
	"github.com/liaGregorio/GeoDUA-sub000/internal/localdb"
	"github.com/liaGregorio/GeoDUA-sub000/internal/logger"
	"github.com/liaGregorio/GeoDUA-sub000/internal/media"
	"github.com/liaGregorio/GeoDUA-sub000/internal/prefs"
	"github.com/liaGregorio/GeoDUA-sub000/internal/ui"
)

// Options configure the GeoDUA application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/geodua/prefs.toml
	ChapterID  int64

	// Interactive sends logs to the log file instead of stderr.
	Interactive bool
	// LogWriter overrides where logs go.
	LogWriter io.Writer
}

// Env holds the wired dependencies shared by the TUI and the CLI commands.
type Env struct {
	Config  config.Config
	Prefs   prefs.Prefs
	Logger  *slog.Logger
	Client  *content.Client
	DB      *localdb.DB
	Journal *journal.Journal
	History *history.Recorder
	AI      ai.Generator

	prefsPath string
	closers   []io.Closer
}

// Open loads configuration and wires every dependency. Callers must Close
// the returned Env.
func Open(ctx context.Context, opts Options) (*Env, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	env := &Env{Config: cfg, prefsPath: opts.PrefsPath}

	out := opts.LogWriter
	if out == nil {
		out = os.Stderr
		if opts.Interactive {
			f, err := logger.OpenFile(cfg.DataDir)
			if err != nil {
				return nil, err
			}
			env.closers = append(env.closers, f)
			out = f
		}
	}
	env.Logger = logger.New(logger.Config{
		Writer: out,
		Format: cfg.LogFormat,
		Level:  logger.ParseLevel(cfg.LogLevel),
	})

	env.Prefs, _ = prefs.Load(opts.PrefsPath)

	env.Client, err = content.NewClient(cfg.APIURL,
		content.WithToken(cfg.Token),
		content.WithRateLimit(cfg.RequestsPerSecond),
	)
	if err != nil {
		_ = env.Close()
		return nil, fmt.Errorf("init content client: %w", err)
	}

	env.DB, err = localdb.OpenDir(cfg.DataDir, env.Logger)
	if err != nil {
		_ = env.Close()
		return nil, fmt.Errorf("open local database: %w", err)
	}
	env.closers = append([]io.Closer{env.DB}, env.closers...)
	env.Journal = journal.New(env.DB)
	env.History = history.NewRecorder(env.DB, env.Client, env.Logger)

	if n, err := env.Journal.Interrupted(ctx); err != nil {
		env.Logger.Warn("mark interrupted saves failed", "error", err)
	} else if n > 0 {
		env.Logger.Warn("previous saves were interrupted", "count", n)
	}

	env.AI, err = ai.New(ctx, ai.Options{
		Provider: cfg.AI.Provider,
		APIKey:   cfg.AI.APIKey,
		Model:    cfg.AI.Model,
		TTSModel: cfg.AI.TTSModel,
		Voice:    cfg.AI.Voice,
		BaseURL:  cfg.AI.BaseURL,
	})
	switch {
	case errors.Is(err, ai.ErrDisabled):
		env.Logger.Debug("ai features disabled", "provider", cfg.AI.Provider)
		env.AI = ai.Disabled()
	case err != nil:
		_ = env.Close()
		return nil, fmt.Errorf("init ai provider: %w", err)
	}

	return env, nil
}

// Close releases the database and the log file.
func (e *Env) Close() error {
	var errs []error
	for _, c := range e.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	e.closers = nil
	return errors.Join(errs...)
}

// PrefsPath returns the preferences file the Env was opened with.
func (e *Env) PrefsPath() string { return e.prefsPath }

// AudioDir is where spoken sections are written.
func (e *Env) AudioDir() string { return filepath.Join(e.Config.DataDir, "audio") }

// Session creates an editing session for user.
func (e *Env) Session(user content.User) *editor.Session {
	return editor.NewSession(editor.Options{
		Persistence: e.Client,
		Generator:   e.AI,
		Journal:     e.Journal,
		Logger:      e.Logger,
		User:        user,
		SaveTimeout: e.Config.SaveTimeout,
		Images: media.CompressOptions{
			MaxDimension: e.Config.Images.MaxDimension,
			JPEGQuality:  e.Config.Images.JPEGQuality,
		},
	})
}

// RequireLogin fails when no API token is configured.
func (e *Env) RequireLogin() error {
	if e.Config.Token == "" {
		return &errors.Error{Code: errors.CodeUnauthorized, Message: "not logged in, run `geodua login` first"}
	}
	return nil
}

// Run boots the section editor TUI for opts.ChapterID until the user quits
// or the context is cancelled. A zero ChapterID reopens the last chapter
// recorded in preferences.
func Run(ctx context.Context, opts Options) error {
	opts.Interactive = true
	env, err := Open(ctx, opts)
	if err != nil {
		return err
	}
	defer func() { _ = env.Close() }()

	if err := env.RequireLogin(); err != nil {
		return err
	}
	if opts.ChapterID <= 0 {
		opts.ChapterID = env.Prefs.LastChapter
	}
	if opts.ChapterID <= 0 {
		return errors.Validation("no chapter given and none opened before, pass --chapter")
	}
	user, err := env.Client.CurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("fetch current user: %w", err)
	}
	chapter, err := env.Client.GetChapter(ctx, opts.ChapterID)
	if err != nil {
		return fmt.Errorf("fetch chapter %d: %w", opts.ChapterID, err)
	}
	env.Logger.Info("editor starting", "chapter_id", chapter.ID, "user_id", user.ID)

	return ui.Run(ui.Options{
		Context:   ctx,
		Session:   env.Session(user),
		History:   env.History,
		Chapter:   chapter,
		Logger:    env.Logger,
		Prefs:     env.Prefs,
		PrefsPath: opts.PrefsPath,
		AudioDir:  env.AudioDir(),
	})
}
