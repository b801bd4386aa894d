package journal

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liaGregorio/GeoDUA-sub000/internal/editor"
	"github.com/liaGregorio/GeoDUA-sub000/internal/localdb"
)

var _ editor.Journal = (*Journal)(nil)

func newTestJournal(t *testing.T) *Journal {
	t.Helper()
	db, err := localdb.Open(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	j := New(db)
	clock := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	j.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return j
}

func TestJournal_RecordsPartialSave(t *testing.T) {
	j := newTestJournal(t)
	ctx := context.Background()

	saveID, err := j.BeginSave(ctx, 7, editor.SaveKindChapter)
	require.NoError(t, err)

	require.NoError(t, j.RecordOp(ctx, saveID, editor.Op{
		Kind: editor.OpUpdateSection, Key: "1", ID: 1, Fields: []string{"title", "order"},
	}, nil))
	failure := errors.New("POST /api/sections: service unavailable")
	require.NoError(t, j.RecordOp(ctx, saveID, editor.Op{Kind: editor.OpCreateSection, Key: "tmp-x"}, failure))
	require.NoError(t, j.FinishSave(ctx, saveID, failure))

	saves, err := j.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, saves, 1)

	s := saves[0]
	assert.Equal(t, int64(7), s.ChapterID)
	assert.Equal(t, editor.SaveKindChapter, s.Kind)
	assert.Equal(t, StatusFailed, s.Status)
	assert.Contains(t, s.Error, "service unavailable")
	require.NotNil(t, s.FinishedAt)
	assert.True(t, s.FinishedAt.After(s.StartedAt))

	require.Len(t, s.Ops, 2)
	assert.Equal(t, editor.OpUpdateSection, s.Ops[0].Kind)
	assert.Equal(t, []string{"title", "order"}, s.Ops[0].Fields)
	assert.Equal(t, StatusOK, s.Ops[0].Status)
	assert.Equal(t, int64(1), s.Ops[0].RemoteID)
	assert.Equal(t, editor.Key("tmp-x"), s.Ops[1].Key)
	assert.Equal(t, StatusFailed, s.Ops[1].Status)
	assert.Nil(t, s.Ops[1].Fields)
}

func TestJournal_RecentNewestFirst(t *testing.T) {
	j := newTestJournal(t)
	ctx := context.Background()

	for chapter := int64(1); chapter <= 3; chapter++ {
		id, err := j.BeginSave(ctx, chapter, editor.SaveKindDraft)
		require.NoError(t, err)
		require.NoError(t, j.FinishSave(ctx, id, nil))
	}

	saves, err := j.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, saves, 2)
	assert.Equal(t, int64(3), saves[0].ChapterID)
	assert.Equal(t, int64(2), saves[1].ChapterID)
	assert.Equal(t, StatusOK, saves[0].Status)
	assert.Empty(t, saves[0].Ops)
}

func TestJournal_Interrupted(t *testing.T) {
	j := newTestJournal(t)
	ctx := context.Background()

	_, err := j.BeginSave(ctx, 1, editor.SaveKindChapter)
	require.NoError(t, err)

	n, err := j.Interrupted(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	saves, err := j.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, saves[0].Status)
	assert.Equal(t, "interrupted", saves[0].Error)
}
