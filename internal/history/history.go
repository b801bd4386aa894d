// Package history keeps the chapters the user opened. Visits are stored
// locally and reported to the API on a best-effort basis; repeated opens of
// the same chapter within DuplicateWindow count once.
package history

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/liaGregorio/GeoDUA-sub000/internal/content"
	"github.com/liaGregorio/GeoDUA-sub000/internal/localdb"
)

// DuplicateWindow is the interval in which a second visit to the same
// chapter is not recorded.
const DuplicateWindow = 5 * time.Minute

// Remote receives visits. content.Client satisfies it.
type Remote interface {
	RecordVisit(ctx context.Context, v content.Visit) error
}

// IsDuplicate reports whether next repeats prev: same chapter, less than
// window later.
func IsDuplicate(prev, next content.Visit, window time.Duration) bool {
	if prev.ChapterID != next.ChapterID {
		return false
	}
	d := next.At.Sub(prev.At)
	return d >= 0 && d < window
}

// Recorder stores visits and forwards them to the remote.
type Recorder struct {
	db     *localdb.DB
	remote Remote
	logger *slog.Logger
	now    func() time.Time
}

// NewRecorder creates a recorder. remote may be nil.
func NewRecorder(db *localdb.DB, remote Remote, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{db: db, remote: remote, logger: logger, now: time.Now}
}

// Record stores v unless it duplicates the latest visit, and reports
// whether it was stored. Failures are logged, never returned: history must
// not get in the way of editing.
func (r *Recorder) Record(ctx context.Context, v content.Visit) bool {
	if v.At.IsZero() {
		v.At = r.now()
	}

	latest, err := r.Recent(ctx, 1)
	if err != nil {
		r.logger.Debug("read latest visit failed", "error", err)
	} else if len(latest) > 0 && IsDuplicate(latest[0], v, DuplicateWindow) {
		return false
	}

	if _, err := r.db.SQL().ExecContext(ctx,
		`INSERT INTO visits (chapter_id, book_id, title, visited_at) VALUES (?, ?, ?, ?)`,
		v.ChapterID, v.BookID, v.Title, localdb.FormatTime(v.At)); err != nil {
		r.logger.Debug("store visit failed", "chapter_id", v.ChapterID, "error", err)
		return false
	}

	if r.remote != nil {
		if err := r.remote.RecordVisit(ctx, v); err != nil {
			r.logger.Debug("report visit failed", "chapter_id", v.ChapterID, "error", err)
		}
	}
	return true
}

// Recent returns stored visits, newest first.
func (r *Recorder) Recent(ctx context.Context, limit int) ([]content.Visit, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.SQL().QueryContext(ctx,
		`SELECT chapter_id, book_id, title, visited_at FROM visits
		 ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query visits: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var visits []content.Visit
	for rows.Next() {
		var (
			v  content.Visit
			at string
		)
		if err := rows.Scan(&v.ChapterID, &v.BookID, &v.Title, &at); err != nil {
			return nil, fmt.Errorf("scan visit: %w", err)
		}
		if v.At, err = localdb.ParseTime(at); err != nil {
			return nil, fmt.Errorf("parse visited_at: %w", err)
		}
		visits = append(visits, v)
	}
	return visits, rows.Err()
}
