// Package scheduler runs the once-daily lesson dispatch: one pass creating
// today's schedule entries, one pass delivering whatever is due.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/lishyamuchiri/skillboost-kenya-coach/internal/domain/catalog"
	"github.com/lishyamuchiri/skillboost-kenya-coach/internal/domain/messages"
	"github.com/lishyamuchiri/skillboost-kenya-coach/internal/domain/schedule"
	"github.com/lishyamuchiri/skillboost-kenya-coach/internal/domain/users"
	"github.com/lishyamuchiri/skillboost-kenya-coach/internal/metrics"
	"github.com/lishyamuchiri/skillboost-kenya-coach/internal/whatsapp"
)

type UserSource interface {
	ListSchedulable(ctx context.Context) ([]users.User, error)
}

type LessonSelector interface {
	Next(ctx context.Context, userID int64) (*catalog.TrackLesson, error)
}

type ScheduleStore interface {
	ExistsForDay(ctx context.Context, userID int64, day string) (bool, error)
	Create(ctx context.Context, userID, lessonID int64, scheduledFor time.Time, day string) (int64, bool, error)
	ListDue(ctx context.Context, now time.Time) ([]schedule.DueEntry, error)
	MarkSent(ctx context.Context, id int64, at time.Time) error
	MarkFailed(ctx context.Context, id int64) error
}

type ProgressRecorder interface {
	Record(ctx context.Context, userID, lessonID int64, completedAt time.Time) error
}

type MessageLog interface {
	Insert(ctx context.Context, userID *int64, phone, msgType, content string, delivered bool) error
}

type Stats struct {
	Scheduled int `json:"scheduled"`
	Sent      int `json:"sent"`
	Failed    int `json:"failed"`
}

type Scheduler struct {
	users    UserSource
	selector LessonSelector
	store    ScheduleStore
	progress ProgressRecorder
	msgs     MessageLog
	sender   whatsapp.Sender
	loc      *time.Location
	log      *slog.Logger
}

func New(users UserSource, selector LessonSelector, store ScheduleStore,
	progress ProgressRecorder, msgs MessageLog, sender whatsapp.Sender,
	loc *time.Location, log *slog.Logger) *Scheduler {

	return &Scheduler{
		users: users, selector: selector, store: store,
		progress: progress, msgs: msgs, sender: sender,
		loc: loc, log: log,
	}
}

const defaultPreferredTime = "07:00"

// Run executes one scheduling invocation. Safe to call repeatedly: the
// one-entry-per-user-per-day guard makes overlapping triggers harmless.
// Per-user failures are logged and never abort the batch.
func (s *Scheduler) Run(ctx context.Context, now time.Time) Stats {
	var st Stats

	local := now.In(s.loc)
	day := local.Format("2006-01-02")

	batch, err := s.users.ListSchedulable(ctx)
	if err != nil {
		s.log.Error("scheduler: list users failed", "err", err)
		return st
	}

	for _, u := range batch {
		created, err := s.scheduleUser(ctx, u, local, day)
		if err != nil {
			s.log.Error("scheduler: scheduling failed", "user_id", u.ID, "err", err)
			continue
		}
		if created {
			st.Scheduled++
		}
	}

	// dispatch sweep: everything due by now, including entries just created
	// for a preferred slot that is not in the future
	due, err := s.store.ListDue(ctx, now)
	if err != nil {
		s.log.Error("scheduler: list due failed", "err", err)
		return st
	}

	for _, e := range due {
		if err := s.deliver(ctx, e, now); err != nil {
			st.Failed++
			metrics.LessonsFailed.Inc()
			s.log.Error("scheduler: delivery failed", "entry_id", e.ID, "user_id", e.UserID, "err", err)
			continue
		}
		st.Sent++
		metrics.LessonsSent.Inc()
	}

	s.log.Info("scheduler run completed", "scheduled", st.Scheduled, "sent", st.Sent, "failed", st.Failed)
	return st
}

// scheduleUser creates today's entry for one user, reporting whether a new
// entry was created.
func (s *Scheduler) scheduleUser(ctx context.Context, u users.User, local time.Time, day string) (bool, error) {
	exists, err := s.store.ExistsForDay(ctx, u.ID, day)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	lesson, err := s.selector.Next(ctx, u.ID)
	if err != nil {
		return false, err
	}
	if lesson == nil {
		// curriculum exhausted: no schedule noise for this user
		return false, nil
	}

	at := s.dispatchTime(u.PreferredTime, local)
	entryDay := at.Format("2006-01-02")

	_, created, err := s.store.Create(ctx, u.ID, lesson.ID, at, entryDay)
	if err != nil {
		return false, err
	}
	// created == false means a concurrent invocation won the insert
	return created, nil
}

// dispatchTime is "today at the preferred wall-clock time" in the app
// timezone, rolled to tomorrow when that instant has already passed.
func (s *Scheduler) dispatchTime(preferred string, local time.Time) time.Time {
	t, err := time.Parse("15:04", preferred)
	if err != nil {
		s.log.Warn("scheduler: bad preferred time, using default", "preferred", preferred)
		t, _ = time.Parse("15:04", defaultPreferredTime)
	}

	at := time.Date(local.Year(), local.Month(), local.Day(), t.Hour(), t.Minute(), 0, 0, s.loc)
	if at.Before(local) {
		at = at.AddDate(0, 0, 1)
	}
	return at
}

func (s *Scheduler) deliver(ctx context.Context, e schedule.DueEntry, now time.Time) error {
	body := whatsapp.LessonMessage(e.LessonTitle, e.TrackTitle, e.LessonContent, e.LessonTip, e.DurationMinutes)

	if err := s.sender.Send(ctx, e.WhatsAppNumber, body); err != nil {
		// no progress row on failure: the lesson stays deliverable
		if markErr := s.store.MarkFailed(ctx, e.ID); markErr != nil {
			s.log.Error("scheduler: mark failed errored", "entry_id", e.ID, "err", markErr)
		}
		if logErr := s.msgs.Insert(ctx, &e.UserID, e.WhatsAppNumber, messages.TypeLesson, body, false); logErr != nil {
			s.log.Error("scheduler: message log failed", "entry_id", e.ID, "err", logErr)
		}
		return err
	}

	if err := s.store.MarkSent(ctx, e.ID, now); err != nil {
		return err
	}
	if err := s.progress.Record(ctx, e.UserID, e.LessonID, now); err != nil {
		return err
	}
	if err := s.msgs.Insert(ctx, &e.UserID, e.WhatsAppNumber, messages.TypeLesson, body, true); err != nil {
		s.log.Error("scheduler: message log failed", "entry_id", e.ID, "err", err)
	}
	return nil
}
