package history

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/liaGregorio/GeoDUA-sub000/internal/content"
	"github.com/liaGregorio/GeoDUA-sub000/internal/localdb"
	"github.com/liaGregorio/GeoDUA-sub000/internal/logger"
)

type fakeRemote struct {
	mu     sync.Mutex
	visits []content.Visit
	err    error
}

func (f *fakeRemote) RecordVisit(_ context.Context, v content.Visit) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.visits = append(f.visits, v)
	return f.err
}

func newRecorder(t *testing.T, remote Remote) *Recorder {
	t.Helper()
	db, err := localdb.Open(filepath.Join(t.TempDir(), "h.db"), nil)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewRecorder(db, remote, logger.Discard())
}

func TestIsDuplicate(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	prev := content.Visit{ChapterID: 4, At: base}

	tests := []struct {
		name string
		next content.Visit
		want bool
	}{
		{"same chapter inside window", content.Visit{ChapterID: 4, At: base.Add(time.Minute)}, true},
		{"same instant", content.Visit{ChapterID: 4, At: base}, true},
		{"window boundary", content.Visit{ChapterID: 4, At: base.Add(DuplicateWindow)}, false},
		{"other chapter", content.Visit{ChapterID: 5, At: base.Add(time.Second)}, false},
		{"earlier timestamp", content.Visit{ChapterID: 4, At: base.Add(-time.Second)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsDuplicate(prev, tt.next, DuplicateWindow); got != tt.want {
				t.Errorf("IsDuplicate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRecorder_Record(t *testing.T) {
	remote := &fakeRemote{}
	r := newRecorder(t, remote)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	if !r.Record(ctx, content.Visit{ChapterID: 1, Title: "Rivers", At: base}) {
		t.Fatal("first visit not recorded")
	}
	if r.Record(ctx, content.Visit{ChapterID: 1, At: base.Add(2 * time.Minute)}) {
		t.Fatal("duplicate visit recorded")
	}
	if !r.Record(ctx, content.Visit{ChapterID: 2, At: base.Add(3 * time.Minute)}) {
		t.Fatal("other chapter not recorded")
	}
	if !r.Record(ctx, content.Visit{ChapterID: 1, At: base.Add(4 * time.Minute)}) {
		t.Fatal("return to chapter 1 after another chapter not recorded")
	}

	visits, err := r.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(visits) != 3 {
		t.Fatalf("len(visits) = %d, want 3", len(visits))
	}
	if visits[0].ChapterID != 1 || visits[1].ChapterID != 2 || visits[2].Title != "Rivers" {
		t.Fatalf("visits = %+v", visits)
	}
	if len(remote.visits) != 3 {
		t.Fatalf("remote visits = %d, want 3", len(remote.visits))
	}
}

func TestRecorder_RemoteFailureIgnored(t *testing.T) {
	r := newRecorder(t, &fakeRemote{err: errors.New("offline")})
	if !r.Record(context.Background(), content.Visit{ChapterID: 9}) {
		t.Fatal("visit not stored when remote fails")
	}

	visits, err := r.Recent(context.Background(), 0)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(visits) != 1 || visits[0].At.IsZero() {
		t.Fatalf("visits = %+v, want one stamped visit", visits)
	}
}
