package logtail

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestRead(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "geodua.log")

	var content strings.Builder
	var all []string
	for i := 1; i <= 10; i++ {
		line := fmt.Sprintf("Line %d", i)
		content.WriteString(line + "\n")
		all = append(all, line)
	}
	if err := os.WriteFile(logPath, []byte(content.String()), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	tests := []struct {
		name string
		n    int
		want []string
	}{
		{"all (0)", 0, all},
		{"all (negative)", -1, all},
		{"partial", 5, all[5:]},
		{"exactly all", 10, all},
		{"more than exists", 20, all},
		{"one", 1, all[9:]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(logPath, tt.n)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Read() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRead_MissingFile(t *testing.T) {
	lines, err := Read(filepath.Join(t.TempDir(), "nope.log"), 10)
	if err != nil || lines != nil {
		t.Fatalf("Read() = %v, %v, want nil, nil", lines, err)
	}
}

func TestLevel(t *testing.T) {
	tests := []struct {
		line   string
		want   slog.Level
		wantOK bool
	}{
		{`time=2026-01-02T10:00:00Z level=WARN msg="save failed"`, slog.LevelWarn, true},
		{`time=2026-01-02T10:00:00Z level=DEBUG msg=x`, slog.LevelDebug, true},
		{`{"time":"2026-01-02T10:00:00Z","level":"ERROR","msg":"boom"}`, slog.LevelError, true},
		{`  continuation of a value`, 0, false},
		{`level=LOUD msg=x`, 0, false},
	}
	for _, tt := range tests {
		got, ok := Level(tt.line)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("Level(%q) = %v, %v, want %v, %v", tt.line, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestFilter(t *testing.T) {
	lines := []string{
		"level=DEBUG msg=a",
		"level=INFO msg=b",
		"level=WARN msg=c",
		"  detail of c",
		"level=DEBUG msg=d",
		"  detail of d",
		"level=ERROR msg=e",
	}
	got := Filter(lines, slog.LevelWarn)
	want := []string{"level=WARN msg=c", "  detail of c", "level=ERROR msg=e"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Filter() = %v, want %v", got, want)
	}
}

func TestColorize_KeepsText(t *testing.T) {
	for _, line := range []string{"level=ERROR msg=e", "level=INFO msg=b", "plain"} {
		if got := Colorize(line); !strings.Contains(got, line) {
			t.Errorf("Colorize(%q) = %q, lost the text", line, got)
		}
	}
}
