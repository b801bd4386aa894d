package ui

import (
	"testing"

	"github.com/liaGregorio/GeoDUA-sub000/internal/editor"
)

func TestThemeNames(t *testing.T) {
	names := ThemeNames()
	if len(names) != 2 {
		t.Fatalf("ThemeNames = %v, want 2 themes", names)
	}
	for _, name := range names {
		if got := GetTheme(name).Name; got != name {
			t.Fatalf("GetTheme(%q).Name = %q", name, got)
		}
	}
}

func TestGetTheme_UnknownFallsBack(t *testing.T) {
	if got := GetTheme("Solarized").Name; got != "Topo" {
		t.Fatalf("GetTheme unknown = %q, want Topo", got)
	}
}

func TestNextTheme_Cycles(t *testing.T) {
	if got := NextTheme("Topo"); got != "Atlas" {
		t.Fatalf("NextTheme(Topo) = %q, want Atlas", got)
	}
	if got := NextTheme("Atlas"); got != "Topo" {
		t.Fatalf("NextTheme(Atlas) = %q, want Topo", got)
	}
	if got := NextTheme("missing"); got != "Topo" {
		t.Fatalf("NextTheme(missing) = %q, want Topo", got)
	}
}

func TestThemes_ColorEveryEditedState(t *testing.T) {
	for _, name := range ThemeNames() {
		th := GetTheme(name)
		for _, state := range []editor.State{editor.StateDirty, editor.StateDraft, editor.StateTombstoned} {
			if th.StateColors[state] == "" {
				t.Errorf("%s has no color for %s", name, state)
			}
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"Relief", 10, "Relief"},
		{"Hydrography", 8, "Hydro..."},
		{"Clima", 2, "Cl"},
		{"anything", 0, ""},
		{"Geografía física", 10, "Geograf..."},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestFirstLine(t *testing.T) {
	if got := firstLine("\n  \n  Map of rivers \nsecond"); got != "Map of rivers" {
		t.Fatalf("firstLine = %q", got)
	}
	if got := firstLine(" \n "); got != "" {
		t.Fatalf("firstLine blank = %q", got)
	}
}
