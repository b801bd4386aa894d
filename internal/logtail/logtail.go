package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Read returns the last n lines of the file at path, oldest first. n <= 0
// returns every line. A missing file yields no lines.
func Read(path string, n int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer func() { _ = file.Close() }()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if n <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, n)
	next, count := 0, 0
	for scanner.Scan() {
		ring[next] = scanner.Text()
		next = (next + 1) % n
		if count < n {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	start := 0
	if count == n {
		start = next
	}
	for i := range lines {
		lines[i] = ring[(start+i)%n]
	}
	return lines, nil
}

// Level extracts the slog level of a text ("level=WARN") or JSON
// ("\"level\":\"WARN\"") line. Lines without one report false.
func Level(line string) (slog.Level, bool) {
	var raw string
	if i := strings.Index(line, "level="); i >= 0 {
		raw = line[i+len("level="):]
		if end := strings.IndexByte(raw, ' '); end >= 0 {
			raw = raw[:end]
		}
	} else if i := strings.Index(line, `"level":"`); i >= 0 {
		raw = line[i+len(`"level":"`):]
		if end := strings.IndexByte(raw, '"'); end >= 0 {
			raw = raw[:end]
		}
	} else {
		return 0, false
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return 0, false
	}
	return level, true
}

// Filter keeps lines at or above min. Lines without a level follow the
// previous line, so multi-line values stay with their record.
func Filter(lines []string, min slog.Level) []string {
	out := make([]string, 0, len(lines))
	keep := true
	for _, line := range lines {
		if level, ok := Level(line); ok {
			keep = level >= min
		}
		if keep {
			out = append(out, line)
		}
	}
	return out
}

var (
	debugStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#87CEEB"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
)

// Colorize styles a line by its level. Info and unlevelled lines are
// returned unchanged.
func Colorize(line string) string {
	level, ok := Level(line)
	if !ok {
		return line
	}
	switch {
	case level >= slog.LevelError:
		return errorStyle.Render(line)
	case level >= slog.LevelWarn:
		return warnStyle.Render(line)
	case level < slog.LevelInfo:
		return debugStyle.Render(line)
	default:
		return line
	}
}
