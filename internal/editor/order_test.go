package editor

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liaGregorio/GeoDUA-sub000/internal/content"
)

func TestRenumber(t *testing.T) {
	in := []string{"a", "b", "c", "d"}

	assert.Equal(t, []string{"b", "c", "a", "d"}, Renumber(in, 0, 2))
	assert.Equal(t, []string{"d", "a", "b", "c"}, Renumber(in, 3, 0))
	assert.Equal(t, []string{"b", "c", "d", "a"}, Renumber(in, 0, 99), "drop target is clamped")
	assert.Equal(t, []string{"c", "a", "b", "d"}, Renumber(in, 2, -5), "drop target is clamped")
	assert.Equal(t, in, Renumber(in, 7, 0), "unknown source leaves order unchanged")
	assert.Equal(t, []string{"a", "b", "c", "d"}, in, "input is not modified")
}

func TestArrowTarget(t *testing.T) {
	assert.Equal(t, 4, ArrowTarget(0, 5, Up))
	assert.Equal(t, 0, ArrowTarget(4, 5, Down))
	assert.Equal(t, 2, ArrowTarget(1, 5, Down))
	assert.Equal(t, 0, ArrowTarget(1, 5, Up))
	assert.Equal(t, 0, ArrowTarget(0, 0, Up))
}

func fiveSections() *fakeAPI {
	var secs []content.Section
	for i := 1; i <= 5; i++ {
		secs = append(secs, content.Section{ID: int64(i), Order: i, Body: "body"})
	}
	return newFakeAPI(secs...)
}

func TestMove_FirstUpWrapsToLast(t *testing.T) {
	s := newTestSession(t, fiveSections())

	require.NoError(t, s.Move(KeyOf(1), Up))

	items := s.Items()
	assert.Equal(t, []Key{"2", "3", "4", "5", "1"}, keys(items))
	assert.Equal(t, []int{1, 2, 3, 4, 5}, orders(items))
	item, ok := s.Item(KeyOf(1))
	require.True(t, ok)
	assert.Equal(t, 5, item.Section.Order)
}

func TestMove_LastDownWrapsToFirst(t *testing.T) {
	s := newTestSession(t, fiveSections())

	require.NoError(t, s.Move(KeyOf(5), Down))

	assert.Equal(t, []Key{"5", "1", "2", "3", "4"}, keys(s.Items()))
}

func TestMove_ThereAndBackCollapses(t *testing.T) {
	s := newTestSession(t, fiveSections())

	require.NoError(t, s.Move(KeyOf(2), Down))
	assert.True(t, s.HasPendingChanges())
	require.NoError(t, s.Move(KeyOf(2), Up))
	assert.False(t, s.HasPendingChanges())
}

func TestEditField_OrderMovesSection(t *testing.T) {
	s := newTestSession(t, fiveSections())

	require.NoError(t, s.EditField(KeyOf(4), FieldOrder, " 1 "))
	assert.Equal(t, []Key{"4", "1", "2", "3", "5"}, keys(s.Items()))

	require.NoError(t, s.EditField(KeyOf(4), FieldOrder, "40"))
	assert.Equal(t, []Key{"1", "2", "3", "5", "4"}, keys(s.Items()), "order past the end is clamped")
}

// Any mix of adds, moves and removes keeps orders a permutation of 1..N.
func TestOrderInvariant(t *testing.T) {
	s := newTestSession(t, fiveSections())
	rng := rand.New(rand.NewPCG(1, 2))

	for step := range 300 {
		items := s.Items()
		switch op := rng.IntN(5); {
		case op == 0:
			_, err := s.AddSection()
			require.NoError(t, err)
		case op == 1 && len(items) > 1:
			victim := items[rng.IntN(len(items))].Key
			require.NoError(t, s.RemoveSection(victim))
		case op == 2 && len(items) > 0:
			require.NoError(t, s.MoveTo(items[rng.IntN(len(items))].Key, rng.IntN(len(items)+2)-1))
		case len(items) > 0:
			dir := Up
			if rng.IntN(2) == 0 {
				dir = Down
			}
			require.NoError(t, s.Move(items[rng.IntN(len(items))].Key, dir))
		}

		got := orders(s.Items())
		want := make([]int, len(got))
		for i := range want {
			want[i] = i + 1
		}
		sorted := slices.Clone(got)
		slices.Sort(sorted)
		require.Equal(t, want, sorted, "step %d", step)
	}
}
