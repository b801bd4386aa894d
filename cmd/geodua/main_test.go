package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/liaGregorio/GeoDUA-sub000/internal/config"
)

type testEnv struct {
	configPath string
	prefsPath  string
	tokenPath  string
}

func setup(t *testing.T) testEnv {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	for _, env := range []string{config.EnvToken, config.EnvAIAPIKey, config.EnvAPIURL} {
		t.Setenv(env, "")
	}
	dir := t.TempDir()
	e := testEnv{
		configPath: filepath.Join(dir, "config.toml"),
		prefsPath:  filepath.Join(dir, "prefs.toml"),
		tokenPath:  filepath.Join(dir, "token"),
	}
	body := fmt.Sprintf("api_url = %q\ndata_dir = %q\ntoken_file = %q\n",
		"http://127.0.0.1:9", filepath.Join(dir, "data"), e.tokenPath)
	if err := os.WriteFile(e.configPath, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return e
}

func execute(t *testing.T, e testEnv, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", e.configPath, "--prefs", e.prefsPath}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestHistory_Empty(t *testing.T) {
	e := setup(t)

	out, err := execute(t, e, "history")
	if err != nil {
		t.Fatalf("history returned error: %v", err)
	}
	if !strings.Contains(out, "No chapters opened yet") {
		t.Fatalf("output = %q", out)
	}

	out, err = execute(t, e, "history", "--saves")
	if err != nil {
		t.Fatalf("history --saves returned error: %v", err)
	}
	if !strings.Contains(out, "No saves recorded") {
		t.Fatalf("output = %q", out)
	}
}

func TestSections_RequiresLogin(t *testing.T) {
	e := setup(t)

	_, err := execute(t, e, "sections", "--chapter", "3")
	if err == nil || !strings.Contains(err.Error(), "geodua login") {
		t.Fatalf("sections error = %v, want login hint", err)
	}
}

func TestLogout_RemovesTokenAndPrefs(t *testing.T) {
	e := setup(t)
	if err := os.WriteFile(e.tokenPath, []byte("abc\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := os.WriteFile(e.prefsPath, []byte("theme = \"Atlas\"\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := execute(t, e, "logout"); err != nil {
		t.Fatalf("logout returned error: %v", err)
	}
	for _, path := range []string{e.tokenPath, e.prefsPath} {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Fatalf("%s still exists (err=%v)", path, err)
		}
	}
}

func TestReadPassword_FromPipe(t *testing.T) {
	got, err := readPassword(strings.NewReader("s3cret\r\n"), &bytes.Buffer{})
	if err != nil {
		t.Fatalf("readPassword returned error: %v", err)
	}
	if got != "s3cret" {
		t.Fatalf("readPassword = %q, want s3cret", got)
	}
}

func TestClip(t *testing.T) {
	if got := clip("  Relief  ", 10); got != "Relief" {
		t.Fatalf("clip = %q, want Relief", got)
	}
	if got := clip("Hydrography", 5); got != "Hydr…" {
		t.Fatalf("clip = %q, want Hydr…", got)
	}
}

func TestLogs_FiltersByLevel(t *testing.T) {
	e := setup(t)
	logPath := filepath.Join(filepath.Dir(e.configPath), "data", "geodua.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	body := "level=INFO msg=\"editor starting\"\nlevel=ERROR msg=\"save failed\"\n"
	if err := os.WriteFile(logPath, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	out, err := execute(t, e, "logs", "--level", "warn")
	if err != nil {
		t.Fatalf("logs returned error: %v", err)
	}
	if !strings.Contains(out, "save failed") || strings.Contains(out, "editor starting") {
		t.Fatalf("output = %q", out)
	}
}

func TestRoot_NoChapterShowsHelp(t *testing.T) {
	e := setup(t)

	out, err := execute(t, e)
	if err != nil {
		t.Fatalf("root returned error: %v", err)
	}
	if !strings.Contains(out, "Usage:") {
		t.Fatalf("output = %q, want help", out)
	}
}
