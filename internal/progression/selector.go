// Package progression picks the next undelivered lesson for a user across
// every track they are enrolled in.
package progression

import (
	"context"
	"fmt"
	"sort"

	"github.com/lishyamuchiri/skillboost-kenya-coach/internal/domain/catalog"
)

type EnrolledLessonLister interface {
	ListEnrolledLessons(ctx context.Context, userID int64) ([]catalog.TrackLesson, error)
}

type CompletedIDSource interface {
	CompletedIDs(ctx context.Context, userID int64) (map[int64]struct{}, error)
}

type Selector struct {
	catalog  EnrolledLessonLister
	progress CompletedIDSource
}

func NewSelector(catalog EnrolledLessonLister, progress CompletedIDSource) *Selector {
	return &Selector{catalog: catalog, progress: progress}
}

// Next returns the eligible lesson with the globally smallest
// (lesson_number, id) across the user's active enrollments, skipping lessons
// already in the progress ledger. nil means curriculum exhausted or no
// enrollments; that is a terminal signal, not an error. Stable across
// repeated calls while the underlying data is unchanged.
func (s *Selector) Next(ctx context.Context, userID int64) (*catalog.TrackLesson, error) {
	lessons, err := s.catalog.ListEnrolledLessons(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list enrolled lessons: %w", err)
	}
	if len(lessons) == 0 {
		return nil, nil
	}

	completed, err := s.progress.CompletedIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list completed lessons: %w", err)
	}

	// sorted here as well so the ordering invariant does not depend on the
	// data source
	sort.Slice(lessons, func(i, j int) bool {
		if lessons[i].LessonNumber != lessons[j].LessonNumber {
			return lessons[i].LessonNumber < lessons[j].LessonNumber
		}
		return lessons[i].ID < lessons[j].ID
	})

	for i := range lessons {
		if _, done := completed[lessons[i].ID]; !done {
			return &lessons[i], nil
		}
	}
	return nil, nil
}
