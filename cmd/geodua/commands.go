package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/liaGregorio/GeoDUA-sub000/internal/app"
	"github.com/liaGregorio/GeoDUA-sub000/internal/content"
	"github.com/liaGregorio/GeoDUA-sub000/internal/editor"
	"github.com/liaGregorio/GeoDUA-sub000/internal/journal"
	"github.com/liaGregorio/GeoDUA-sub000/internal/logger"
	"github.com/liaGregorio/GeoDUA-sub000/internal/logtail"
	"github.com/liaGregorio/GeoDUA-sub000/internal/media"
	"github.com/liaGregorio/GeoDUA-sub000/internal/prefs"
)

const timeLayout = "2006-01-02 15:04:05"

// withEnv opens the application environment for one command.
func withEnv(cmd *cobra.Command, g *globalFlags, login bool, fn func(ctx context.Context, env *app.Env) error) error {
	ctx := cmd.Context()
	env, err := app.Open(ctx, g.options())
	if err != nil {
		return err
	}
	defer func() { _ = env.Close() }()

	if login {
		if err := env.RequireLogin(); err != nil {
			return err
		}
	}
	return fn(ctx, env)
}

func newEditCmd(g *globalFlags) *cobra.Command {
	var chapter int64
	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Open a chapter in the section editor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEdit(cmd.Context(), g, chapter)
		},
	}
	cmd.Flags().Int64Var(&chapter, "chapter", 0, "chapter id (default: the last chapter opened)")
	return cmd
}

func newSectionsCmd(g *globalFlags) *cobra.Command {
	var chapter int64
	cmd := &cobra.Command{
		Use:   "sections",
		Short: "List a chapter's sections in order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(cmd, g, true, func(ctx context.Context, env *app.Env) error {
				sections, err := editor.NewStore(env.Client).Load(ctx, chapter)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(sections) == 0 {
					_, err := fmt.Fprintf(out, "Chapter %d has no sections\n", chapter)
					return err
				}
				_, err = fmt.Fprintln(out, sectionsTable(sections))
				return err
			})
		},
	}
	cmd.Flags().Int64Var(&chapter, "chapter", 0, "chapter id")
	_ = cmd.MarkFlagRequired("chapter")
	return cmd
}

func newPublishCmd(g *globalFlags) *cobra.Command {
	var draft, chapter int64
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish a draft chapter into a chapter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(cmd, g, true, func(ctx context.Context, env *app.Env) error {
				user, err := env.Client.CurrentUser(ctx)
				if err != nil {
					return fmt.Errorf("fetch current user: %w", err)
				}
				if err := env.Session(user).Publish(ctx, draft, chapter); err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "Draft %d published into chapter %d\n", draft, chapter)
				return err
			})
		},
	}
	cmd.Flags().Int64Var(&draft, "draft", 0, "draft chapter id")
	cmd.Flags().Int64Var(&chapter, "chapter", 0, "destination chapter id")
	_ = cmd.MarkFlagRequired("draft")
	_ = cmd.MarkFlagRequired("chapter")
	return cmd
}

func newSpeakCmd(g *globalFlags) *cobra.Command {
	var chapter, section int64
	var out string
	cmd := &cobra.Command{
		Use:   "speak",
		Short: "Write a section's summary (or body) as speech to a WAV file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(cmd, g, true, func(ctx context.Context, env *app.Env) error {
				user, err := env.Client.CurrentUser(ctx)
				if err != nil {
					return fmt.Errorf("fetch current user: %w", err)
				}
				s := env.Session(user)
				if err := s.Load(ctx, chapter); err != nil {
					return err
				}
				audio, err := s.Speak(ctx, editor.KeyOf(section))
				if err != nil {
					return err
				}
				path := out
				if path == "" {
					path = fmt.Sprintf("chapter-%d-section-%d.wav", chapter, section)
				}
				if err := media.WriteAudio(path, audio); err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
				return err
			})
		},
	}
	cmd.Flags().Int64Var(&chapter, "chapter", 0, "chapter id")
	cmd.Flags().Int64Var(&section, "section", 0, "section id")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default chapter-N-section-S.wav)")
	_ = cmd.MarkFlagRequired("chapter")
	_ = cmd.MarkFlagRequired("section")
	return cmd
}

func newHistoryCmd(g *globalFlags) *cobra.Command {
	var saves bool
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently opened chapters, or recent saves with --saves",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(cmd, g, false, func(ctx context.Context, env *app.Env) error {
				out := cmd.OutOrStdout()
				if saves {
					list, err := env.Journal.Recent(ctx, limit)
					if err != nil {
						return err
					}
					return printSaves(out, list)
				}
				visits, err := env.History.Recent(ctx, limit)
				if err != nil {
					return err
				}
				return printVisits(out, visits)
			})
		},
	}
	cmd.Flags().BoolVar(&saves, "saves", false, "show save attempts and their operations")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries")
	return cmd
}

func newLogsCmd(g *globalFlags) *cobra.Command {
	var lines int
	var level string
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the end of the editor log file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(cmd, g, false, func(_ context.Context, env *app.Env) error {
				path := env.Config.LogPath()
				tail, err := logtail.Read(path, lines)
				if err != nil {
					return err
				}
				if level != "" {
					tail = logtail.Filter(tail, logger.ParseLevel(level))
				}
				out := cmd.OutOrStdout()
				if len(tail) == 0 {
					_, err := fmt.Fprintf(out, "No log entries in %s\n", path)
					return err
				}
				for _, line := range tail {
					if _, err := fmt.Fprintln(out, logtail.Colorize(line)); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 200, "number of lines, 0 for all")
	cmd.Flags().StringVar(&level, "level", "", "minimum level (debug, info, warn, error)")
	return cmd
}

func newLoginCmd(g *globalFlags) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the API token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(cmd, g, false, func(ctx context.Context, env *app.Env) error {
				password, err := readPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
				if err != nil {
					return err
				}
				token, err := env.Client.Login(ctx, email, password)
				if err != nil {
					return err
				}
				if err := env.Config.SaveToken(token); err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", email)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored token and reset preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(cmd, g, false, func(_ context.Context, env *app.Env) error {
				if err := env.Config.RemoveToken(); err != nil {
					return err
				}
				if err := prefs.Reset(env.PrefsPath()); err != nil {
					return err
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
				return err
			})
		},
	}
}

// readPassword prompts without echo on a terminal and reads one line
// otherwise.
func readPassword(in io.Reader, prompt io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		_, _ = fmt.Fprint(prompt, "Password: ")
		b, err := term.ReadPassword(int(f.Fd()))
		_, _ = fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...)
}

func sectionsTable(sections []content.Section) string {
	t := newTable("#", "ID", "TITLE", "3D MODEL", "SUMMARY")
	for _, s := range sections {
		summary := "-"
		if strings.TrimSpace(s.Summary) != "" {
			summary = "yes"
		}
		model := "-"
		if s.ExternalModelLink != "" {
			model = s.ExternalModelOrder.String()
		}
		t.Row(strconv.Itoa(s.Order), strconv.FormatInt(s.ID, 10), clip(s.Title, 48), model, summary)
	}
	return t.String()
}

func printVisits(w io.Writer, visits []content.Visit) error {
	if len(visits) == 0 {
		_, err := fmt.Fprintln(w, "No chapters opened yet")
		return err
	}
	t := newTable("WHEN", "CHAPTER", "TITLE")
	for _, v := range visits {
		t.Row(v.At.Local().Format(timeLayout), strconv.FormatInt(v.ChapterID, 10), clip(v.Title, 48))
	}
	_, err := fmt.Fprintln(w, t.String())
	return err
}

func printSaves(w io.Writer, saves []journal.Save) error {
	if len(saves) == 0 {
		_, err := fmt.Fprintln(w, "No saves recorded")
		return err
	}
	for _, s := range saves {
		line := fmt.Sprintf("#%d %s chapter %d  %s  %s", s.ID, s.Kind, s.ChapterID,
			s.StartedAt.Local().Format(timeLayout), s.Status)
		if s.Error != "" {
			line += ": " + s.Error
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
		for _, op := range s.Ops {
			target := string(op.Key)
			if op.RemoteID != 0 {
				target = fmt.Sprintf("%s -> %d", op.Key, op.RemoteID)
			}
			detail := fmt.Sprintf("    %-15s %-20s %s", op.Kind, target, op.Status)
			if len(op.Fields) > 0 {
				detail += " [" + strings.Join(op.Fields, ",") + "]"
			}
			if op.Error != "" {
				detail += ": " + op.Error
			}
			if _, err := fmt.Fprintln(w, detail); err != nil {
				return err
			}
		}
	}
	return nil
}

func clip(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n-1]) + "…"
}
