// Package journal records every save attempt and each remote operation it
// issued, so a save that failed halfway shows which changes already landed.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/liaGregorio/GeoDUA-sub000/internal/editor"
	"github.com/liaGregorio/GeoDUA-sub000/internal/localdb"
)

// Save statuses.
const (
	StatusRunning = "running"
	StatusOK      = "ok"
	StatusFailed  = "failed"
)

// Journal implements editor.Journal on the local database.
type Journal struct {
	db  *localdb.DB
	now func() time.Time
}

// New creates a journal.
func New(db *localdb.DB) *Journal {
	return &Journal{db: db, now: time.Now}
}

// Save is one recorded save attempt.
type Save struct {
	ID         int64
	ChapterID  int64
	Kind       string
	Status     string
	Error      string
	StartedAt  time.Time
	FinishedAt *time.Time
	Ops        []Op
}

// Op is one recorded remote operation.
type Op struct {
	Kind     editor.OpKind
	Key      editor.Key
	RemoteID int64
	Fields   []string
	Status   string
	Error    string
	At       time.Time
}

// BeginSave records the start of a save and returns its id.
func (j *Journal) BeginSave(ctx context.Context, chapterID int64, kind string) (int64, error) {
	res, err := j.db.SQL().ExecContext(ctx,
		`INSERT INTO save_attempts (chapter_id, kind, status, started_at) VALUES (?, ?, ?, ?)`,
		chapterID, kind, StatusRunning, localdb.FormatTime(j.now()))
	if err != nil {
		return 0, fmt.Errorf("insert save attempt: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("save attempt id: %w", err)
	}
	return id, nil
}

// RecordOp records one remote operation and its outcome.
func (j *Journal) RecordOp(ctx context.Context, saveID int64, op editor.Op, opErr error) error {
	status, errText := StatusOK, sql.NullString{}
	if opErr != nil {
		status = StatusFailed
		errText = sql.NullString{String: opErr.Error(), Valid: true}
	}
	_, err := j.db.SQL().ExecContext(ctx,
		`INSERT INTO save_ops (save_id, kind, item_key, remote_id, fields, status, error, at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		saveID, string(op.Kind), string(op.Key), op.ID, strings.Join(op.Fields, ","),
		status, errText, localdb.FormatTime(j.now()))
	if err != nil {
		return fmt.Errorf("insert save op: %w", err)
	}
	return nil
}

// FinishSave records the outcome of a save.
func (j *Journal) FinishSave(ctx context.Context, saveID int64, saveErr error) error {
	status, errText := StatusOK, sql.NullString{}
	if saveErr != nil {
		status = StatusFailed
		errText = sql.NullString{String: saveErr.Error(), Valid: true}
	}
	_, err := j.db.SQL().ExecContext(ctx,
		`UPDATE save_attempts SET status = ?, error = ?, finished_at = ? WHERE id = ?`,
		status, errText, localdb.FormatTime(j.now()), saveID)
	if err != nil {
		return fmt.Errorf("update save attempt: %w", err)
	}
	return nil
}

// Recent returns the latest save attempts, newest first, with their
// operations.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Save, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := j.db.SQL().QueryContext(ctx,
		`SELECT id, chapter_id, kind, status, error, started_at, finished_at
		 FROM save_attempts ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query save attempts: %w", err)
	}

	var saves []Save
	for rows.Next() {
		var (
			s         Save
			errText   sql.NullString
			startedAt string
			finished  sql.NullString
		)
		if err := rows.Scan(&s.ID, &s.ChapterID, &s.Kind, &s.Status, &errText, &startedAt, &finished); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan save attempt: %w", err)
		}
		s.Error = errText.String
		if s.StartedAt, err = localdb.ParseTime(startedAt); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("parse started_at: %w", err)
		}
		if s.FinishedAt, err = localdb.ParseNullableTime(finished); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("parse finished_at: %w", err)
		}
		saves = append(saves, s)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("iterate save attempts: %w", err)
	}
	_ = rows.Close()

	for i := range saves {
		ops, err := j.ops(ctx, saves[i].ID)
		if err != nil {
			return nil, err
		}
		saves[i].Ops = ops
	}
	return saves, nil
}

func (j *Journal) ops(ctx context.Context, saveID int64) ([]Op, error) {
	rows, err := j.db.SQL().QueryContext(ctx,
		`SELECT kind, item_key, remote_id, fields, status, error, at
		 FROM save_ops WHERE save_id = ? ORDER BY id`, saveID)
	if err != nil {
		return nil, fmt.Errorf("query save ops: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ops []Op
	for rows.Next() {
		var (
			op      Op
			kind    string
			key     string
			fields  string
			errText sql.NullString
			at      string
		)
		if err := rows.Scan(&kind, &key, &op.RemoteID, &fields, &op.Status, &errText, &at); err != nil {
			return nil, fmt.Errorf("scan save op: %w", err)
		}
		op.Kind, op.Key, op.Error = editor.OpKind(kind), editor.Key(key), errText.String
		if fields != "" {
			op.Fields = strings.Split(fields, ",")
		}
		if op.At, err = localdb.ParseTime(at); err != nil {
			return nil, fmt.Errorf("parse op time: %w", err)
		}
		ops = append(ops, op)
	}
	return ops, rows.Err()
}

// Interrupted marks saves still "running" as failed. Call it at startup:
// such rows belong to a process that exited mid-save.
func (j *Journal) Interrupted(ctx context.Context) (int64, error) {
	res, err := j.db.SQL().ExecContext(ctx,
		`UPDATE save_attempts SET status = ?, error = ?, finished_at = ? WHERE status = ?`,
		StatusFailed, "interrupted", localdb.FormatTime(j.now()), StatusRunning)
	if err != nil {
		return 0, fmt.Errorf("mark interrupted saves: %w", err)
	}
	return res.RowsAffected()
}
