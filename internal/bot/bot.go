// Package bot is the inbound command surface: a stateless keyword
// dispatcher over the WhatsApp channel.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lishyamuchiri/skillboost-kenya-coach/internal/domain/catalog"
	"github.com/lishyamuchiri/skillboost-kenya-coach/internal/domain/messages"
	"github.com/lishyamuchiri/skillboost-kenya-coach/internal/domain/users"
	"github.com/lishyamuchiri/skillboost-kenya-coach/internal/whatsapp"
)

type UserStore interface {
	GetByPhone(ctx context.Context, phone string) (*users.User, error)
	SetActive(ctx context.Context, id int64, active bool) error
}

type LessonSelector interface {
	Next(ctx context.Context, userID int64) (*catalog.TrackLesson, error)
}

type ProgressStore interface {
	Record(ctx context.Context, userID, lessonID int64, completedAt time.Time) error
	CountCompleted(ctx context.Context, userID int64) (int, error)
}

type EnrollmentCounter interface {
	CountActiveEnrollments(ctx context.Context, userID int64) (int, error)
}

type MessageLog interface {
	Insert(ctx context.Context, userID *int64, phone, msgType, content string, delivered bool) error
	MarkDeliveredLatest(ctx context.Context, phone string, delivered bool, at time.Time) error
}

type Bot struct {
	users    UserStore
	selector LessonSelector
	progress ProgressStore
	catalog  EnrollmentCounter
	msgs     MessageLog
	sender   whatsapp.Sender
	log      *slog.Logger
	now      func() time.Time
}

func New(users UserStore, selector LessonSelector, progress ProgressStore,
	catalog EnrollmentCounter, msgs MessageLog, sender whatsapp.Sender, log *slog.Logger) *Bot {

	return &Bot{
		users: users, selector: selector, progress: progress,
		catalog: catalog, msgs: msgs, sender: sender,
		log: log, now: time.Now,
	}
}

// HandleMessage processes one inbound message: log it, dispatch the keyword,
// send and log the reply. from is the canonical digits-only sender id.
// User resolution failure is soft: commands needing a user degrade to an
// enrollment nudge.
func (b *Bot) HandleMessage(ctx context.Context, from, body string) error {
	cmd := strings.ToLower(strings.TrimSpace(body))

	user, err := b.users.GetByPhone(ctx, from)
	if err != nil {
		return fmt.Errorf("resolve user: %w", err)
	}

	var userID *int64
	if user != nil {
		userID = &user.ID
	}
	if err := b.msgs.Insert(ctx, userID, from, messages.TypeIncoming, cmd, true); err != nil {
		b.log.Error("bot: log inbound failed", "from", from, "err", err)
	}

	reply, sentLesson, err := b.dispatch(ctx, user, cmd)
	if err != nil {
		return err
	}

	delivered := true
	if err := b.sender.Send(ctx, from, reply); err != nil {
		delivered = false
		b.log.Error("bot: reply send failed", "from", from, "err", err)
	}
	if err := b.msgs.Insert(ctx, userID, from, messages.TypeResponse, reply, delivered); err != nil {
		b.log.Error("bot: log reply failed", "from", from, "err", err)
	}

	// the progress row for NEXT is written only once the lesson actually
	// went out; a failed send leaves the lesson deliverable
	if delivered && sentLesson != nil {
		if err := b.progress.Record(ctx, user.ID, sentLesson.ID, b.now()); err != nil {
			return fmt.Errorf("record progress: %w", err)
		}
	}
	return nil
}

// dispatch returns the reply text and, for a NEXT that produced a lesson,
// the lesson whose progress row must be written after a successful send.
func (b *Bot) dispatch(ctx context.Context, user *users.User, cmd string) (string, *catalog.TrackLesson, error) {
	switch cmd {
	case "help":
		return helpReply, nil, nil

	case "stop":
		if user != nil {
			if err := b.users.SetActive(ctx, user.ID, false); err != nil {
				return "", nil, fmt.Errorf("pause user: %w", err)
			}
		}
		return stopReply, nil, nil

	case "start":
		if user != nil {
			if err := b.users.SetActive(ctx, user.ID, true); err != nil {
				return "", nil, fmt.Errorf("resume user: %w", err)
			}
		}
		return startReply, nil, nil

	case "next":
		return b.nextLesson(ctx, user)

	case "status":
		reply, err := b.status(ctx, user)
		return reply, nil, err

	case "upgrade":
		return upgradeReply, nil, nil

	default:
		return unknownReply(cmd), nil, nil
	}
}

func (b *Bot) nextLesson(ctx context.Context, user *users.User) (string, *catalog.TrackLesson, error) {
	if user == nil {
		return enrollFirstReply, nil, nil
	}

	lesson, err := b.selector.Next(ctx, user.ID)
	if err != nil {
		return "", nil, fmt.Errorf("next lesson: %w", err)
	}
	if lesson == nil {
		return completedReply, nil, nil
	}
	return whatsapp.LessonMessage(lesson.Title, lesson.TrackTitle, lesson.Content, lesson.Tip, lesson.DurationMinutes), lesson, nil
}

func (b *Bot) status(ctx context.Context, user *users.User) (string, error) {
	if user == nil {
		return enrollFirstReply, nil
	}

	completed, err := b.progress.CountCompleted(ctx, user.ID)
	if err != nil {
		return "", fmt.Errorf("count progress: %w", err)
	}
	tracks, err := b.catalog.CountActiveEnrollments(ctx, user.ID)
	if err != nil {
		return "", fmt.Errorf("count enrollments: %w", err)
	}
	return statusReply(completed, tracks, completed/10), nil
}

// HandleStatus applies a channel delivery-status update to the most recent
// outbound message for that recipient.
func (b *Bot) HandleStatus(ctx context.Context, st whatsapp.StatusUpdate) error {
	at := st.Time()
	if at.IsZero() {
		at = b.now()
	}
	return b.msgs.MarkDeliveredLatest(ctx, st.RecipientID, st.Delivered(), at)
}

// SendWelcome greets a freshly enrolled user with their track list.
func (b *Bot) SendWelcome(ctx context.Context, user *users.User, trackTitles []string) error {
	body := whatsapp.WelcomeMessage(user.Name, trackTitles)

	delivered := true
	if err := b.sender.Send(ctx, user.WhatsAppNumber, body); err != nil {
		delivered = false
		b.log.Error("bot: welcome send failed", "user_id", user.ID, "err", err)
	}
	return b.msgs.Insert(ctx, &user.ID, user.WhatsAppNumber, messages.TypeWelcome, body, delivered)
}
