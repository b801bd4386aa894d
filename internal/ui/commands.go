package ui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/liaGregorio/GeoDUA-sub000/internal/content"
	"github.com/liaGregorio/GeoDUA-sub000/internal/editor"
	"github.com/liaGregorio/GeoDUA-sub000/internal/history"
	"github.com/liaGregorio/GeoDUA-sub000/internal/media"
)

// Messages

type loadedMsg struct {
	chapterID int64
	err       error
}

type imagesMsg struct {
	key editor.Key
	err error
}

type savedMsg struct {
	report editor.SaveReport
	err    error
}

type draftSavedMsg struct {
	draft content.DraftChapter
	err   error
}

type summaryMsg struct {
	key editor.Key
	err error
}

type describedMsg struct {
	err error
}

type imageAddedMsg struct {
	name string
	err  error
}

type spokenMsg struct {
	path string
	err  error
}

type clearStatusMsg struct {
	seq int
}

// Messages emitted by modals.

type quitMsg struct{}

type discardMsg struct{}

type removeSectionMsg struct {
	key editor.Key
}

type pickFieldMsg struct {
	key   editor.Key
	field editor.Field
}

type fieldEditMsg struct {
	key   editor.Key
	field editor.Field
	value string
}

type captionEditMsg struct {
	key   editor.Key
	ref   editor.ImageRef
	value string
}

type imagePathMsg struct {
	key  editor.Key
	path string
}

// Commands

func loadCmd(ctx context.Context, s *editor.Session, rec *history.Recorder, chapter content.Chapter) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, LoadTimeout)
		defer cancel()
		err := s.Load(ctx, chapter.ID)
		if err == nil && rec != nil {
			rec.Record(ctx, content.Visit{ChapterID: chapter.ID, BookID: chapter.BookID, Title: chapter.Title})
		}
		return loadedMsg{chapterID: chapter.ID, err: err}
	}
}

func loadImagesCmd(ctx context.Context, s *editor.Session, key editor.Key) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, LoadTimeout)
		defer cancel()
		return imagesMsg{key: key, err: s.LoadImages(ctx, key)}
	}
}

func saveCmd(ctx context.Context, s *editor.Session) tea.Cmd {
	return func() tea.Msg {
		report, err := s.Save(ctx)
		return savedMsg{report: report, err: err}
	}
}

func saveDraftCmd(ctx context.Context, s *editor.Session) tea.Cmd {
	return func() tea.Msg {
		draft, err := s.SaveAsDraft(ctx)
		return draftSavedMsg{draft: draft, err: err}
	}
}

func summarizeCmd(ctx context.Context, s *editor.Session, key editor.Key) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, AITimeout)
		defer cancel()
		_, err := s.GenerateSummary(ctx, key)
		return summaryMsg{key: key, err: err}
	}
}

func describeCmd(ctx context.Context, s *editor.Session, key editor.Key, ref editor.ImageRef) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, AITimeout)
		defer cancel()
		_, err := s.DescribeImage(ctx, key, ref)
		return describedMsg{err: err}
	}
}

func addImageCmd(ctx context.Context, s *editor.Session, key editor.Key, path string) tea.Cmd {
	return func() tea.Msg {
		up, err := media.ReadImage(expandHome(path))
		if err != nil {
			return imageAddedMsg{err: err}
		}
		ctx, cancel := context.WithTimeout(ctx, ImageTimeout)
		defer cancel()
		_, err = s.AddImage(ctx, key, up)
		return imageAddedMsg{name: up.Name, err: err}
	}
}

func speakCmd(ctx context.Context, s *editor.Session, key editor.Key, dir string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, AITimeout)
		defer cancel()
		audio, err := s.Speak(ctx, key)
		if err != nil {
			return spokenMsg{err: err}
		}
		path := filepath.Join(dir, fmt.Sprintf("chapter-%d-section-%s.wav", s.ChapterID(), key))
		if err := media.WriteAudio(path, audio); err != nil {
			return spokenMsg{err: err}
		}
		return spokenMsg{path: path}
	}
}

func clearStatusCmd(seq int) tea.Cmd {
	return tea.Tick(statusTTL, func(time.Time) tea.Msg {
		return clearStatusMsg{seq: seq}
	})
}

// expandHome expands a leading ~/ typed into the image path prompt.
func expandHome(path string) string {
	path = strings.TrimSpace(path)
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
