package prefs

import (
	"os"
	"path/filepath"
	"testing"
)

func writePrefs(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prefs.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoad_DefaultPathUnderHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	if p, _ := Load(""); p != Defaults() {
		t.Fatalf("Load = %+v, want %+v", p, Defaults())
	}

	dir := filepath.Join(home, ".config", "geodua")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	body := "theme = \"Atlas\"\nedit_mode = true\nlast_chapter = 12\n"
	if err := os.WriteFile(filepath.Join(dir, "prefs.toml"), []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	p, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	want := Prefs{Theme: "Atlas", EditMode: true, LastChapter: 12}
	if p != want {
		t.Fatalf("Load = %+v, want %+v", p, want)
	}
}

func TestLoad_Normalizes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want Prefs
	}{
		{"empty theme", "theme = \"  \"\n", Defaults()},
		{"negative chapter", "theme = \"Atlas\"\nlast_chapter = -4\n", Prefs{Theme: "Atlas"}},
		{"invalid toml", "not valid toml {{{\n", Defaults()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Load(writePrefs(t, tt.body))
			if err != nil {
				t.Fatalf("Load returned error: %v", err)
			}
			if p != tt.want {
				t.Fatalf("Load = %+v, want %+v", p, tt.want)
			}
		})
	}
}

func TestSave_CreatesDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "prefs.toml")
	in := Prefs{Theme: "Atlas", EditMode: true, LastChapter: 3}

	if err := Save(path, in); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if got, _ := Load(path); got != in {
		t.Fatalf("Load after Save = %+v, want %+v", got, in)
	}
}

func TestUpdate_KeepsOtherFields(t *testing.T) {
	path := writePrefs(t, "theme = \"Atlas\"\nlast_chapter = 9\n")

	got, err := Update(path, func(p *Prefs) { p.EditMode = true })
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	want := Prefs{Theme: "Atlas", EditMode: true, LastChapter: 9}
	if got != want {
		t.Fatalf("Update = %+v, want %+v", got, want)
	}
	if stored, _ := Load(path); stored != want {
		t.Fatalf("stored = %+v, want %+v", stored, want)
	}
}

func TestReset(t *testing.T) {
	path := writePrefs(t, "theme = \"Atlas\"\n")

	if err := Reset(path); err != nil {
		t.Fatalf("Reset returned error: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("prefs file still present: %v", err)
	}
	if err := Reset(path); err != nil {
		t.Fatalf("Reset on missing file returned error: %v", err)
	}
	if p, _ := Load(path); p != Defaults() {
		t.Fatalf("Load after Reset = %+v, want defaults", p)
	}
}
