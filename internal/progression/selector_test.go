package progression

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lishyamuchiri/skillboost-kenya-coach/internal/domain/catalog"
)

type fakeCatalog struct {
	lessons []catalog.TrackLesson
}

func (f *fakeCatalog) ListEnrolledLessons(_ context.Context, _ int64) ([]catalog.TrackLesson, error) {
	out := make([]catalog.TrackLesson, len(f.lessons))
	copy(out, f.lessons)
	return out, nil
}

type fakeProgress struct {
	completed map[int64]struct{}
}

func (f *fakeProgress) CompletedIDs(_ context.Context, _ int64) (map[int64]struct{}, error) {
	return f.completed, nil
}

func lesson(id, trackID int64, number int, title string) catalog.TrackLesson {
	return catalog.TrackLesson{
		Lesson: catalog.Lesson{ID: id, TrackID: trackID, LessonNumber: number, Title: title},
	}
}

func TestNext_PicksSmallestLessonNumberAcrossTracks(t *testing.T) {
	t.Parallel()

	cat := &fakeCatalog{lessons: []catalog.TrackLesson{
		lesson(10, 1, 2, "digital 2"),
		lesson(20, 2, 1, "english 1"),
		lesson(11, 1, 1, "digital 1"),
	}}
	sel := NewSelector(cat, &fakeProgress{completed: map[int64]struct{}{}})

	got, err := sel.Next(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, got)
	// lesson_number 1 ties between ids 11 and 20; smaller id wins
	assert.Equal(t, int64(11), got.ID)
}

func TestNext_SkipsCompleted(t *testing.T) {
	t.Parallel()

	cat := &fakeCatalog{lessons: []catalog.TrackLesson{
		lesson(1, 1, 1, "a"),
		lesson(2, 1, 2, "b"),
		lesson(3, 1, 3, "c"),
	}}
	prog := &fakeProgress{completed: map[int64]struct{}{1: {}, 2: {}}}

	got, err := NewSelector(cat, prog).Next(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(3), got.ID)
}

func TestNext_NoEnrollments(t *testing.T) {
	t.Parallel()

	got, err := NewSelector(&fakeCatalog{}, &fakeProgress{}).Next(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestNext_CurriculumExhausted(t *testing.T) {
	t.Parallel()

	cat := &fakeCatalog{lessons: []catalog.TrackLesson{
		lesson(1, 1, 1, "a"),
		lesson(2, 1, 2, "b"),
	}}
	prog := &fakeProgress{completed: map[int64]struct{}{1: {}, 2: {}}}

	got, err := NewSelector(cat, prog).Next(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestNext_Deterministic(t *testing.T) {
	t.Parallel()

	cat := &fakeCatalog{lessons: []catalog.TrackLesson{
		lesson(5, 1, 3, "c"),
		lesson(6, 2, 3, "c2"),
		lesson(7, 1, 4, "d"),
	}}
	prog := &fakeProgress{completed: map[int64]struct{}{}}
	sel := NewSelector(cat, prog)

	first, err := sel.Next(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, first)

	for range 5 {
		again, err := sel.Next(context.Background(), 1)
		require.NoError(t, err)
		require.NotNil(t, again)
		assert.Equal(t, first.ID, again.ID)
	}
}

func TestNext_DrainsAllLessonsExactlyOnce(t *testing.T) {
	t.Parallel()

	cat := &fakeCatalog{lessons: []catalog.TrackLesson{
		lesson(1, 1, 1, "a"), lesson(2, 1, 2, "b"),
		lesson(3, 2, 1, "x"), lesson(4, 2, 2, "y"),
	}}
	prog := &fakeProgress{completed: map[int64]struct{}{}}
	sel := NewSelector(cat, prog)

	seen := map[int64]bool{}
	for i := 0; i < 4; i++ {
		l, err := sel.Next(context.Background(), 1)
		require.NoError(t, err)
		require.NotNil(t, l)
		assert.False(t, seen[l.ID], "lesson %d delivered twice", l.ID)
		seen[l.ID] = true
		prog.completed[l.ID] = struct{}{}
	}

	l, err := sel.Next(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, l)
}
