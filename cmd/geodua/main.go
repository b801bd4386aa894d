package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/liaGregorio/GeoDUA-sub000/internal/app"
	"github.com/liaGregorio/GeoDUA-sub000/internal/prefs"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "geodua: %v\n", err)
		return 1
	}
	return 0
}

// globalFlags are shared by every command.
type globalFlags struct {
	configPath string
	prefsPath  string
}

func (g *globalFlags) options() app.Options {
	return app.Options{ConfigPath: g.configPath, PrefsPath: g.prefsPath}
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	var chapter int64

	root := &cobra.Command{
		Use:           "geodua",
		Short:         "Edit GeoDUA textbook chapters from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if chapter <= 0 {
				if p, _ := prefs.Load(g.prefsPath); p.LastChapter <= 0 {
					return cmd.Help()
				}
			}
			return runEdit(cmd.Context(), g, chapter)
		},
	}
	root.PersistentFlags().StringVar(&g.configPath, "config", "", "config file (default ~/.config/geodua/config.toml)")
	root.PersistentFlags().StringVar(&g.prefsPath, "prefs", "", "preferences file (default ~/.config/geodua/prefs.toml)")
	root.Flags().Int64Var(&chapter, "chapter", 0, "chapter to open in the editor")

	root.AddCommand(
		newEditCmd(g),
		newSectionsCmd(g),
		newPublishCmd(g),
		newSpeakCmd(g),
		newHistoryCmd(g),
		newLogsCmd(g),
		newLoginCmd(g),
		newLogoutCmd(g),
	)
	return root
}

func runEdit(ctx context.Context, g *globalFlags, chapter int64) error {
	opts := g.options()
	opts.ChapterID = chapter
	return app.Run(ctx, opts)
}
