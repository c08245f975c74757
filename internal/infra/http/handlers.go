package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/lishyamuchiri/skillboost-kenya-coach/internal/domain/users"
	"github.com/lishyamuchiri/skillboost-kenya-coach/internal/phone"
	"github.com/lishyamuchiri/skillboost-kenya-coach/internal/whatsapp"
)

// MessageHandler is the conversational surface behind the WhatsApp webhook.
type MessageHandler interface {
	HandleMessage(ctx context.Context, from, body string) error
	HandleStatus(ctx context.Context, st whatsapp.StatusUpdate) error
}

// WebhookHandler accepts Cloud API webhook deliveries and feeds each message
// and status update to the bot. Per-item failures are logged and do not fail
// the batch: the provider retries the whole payload otherwise.
type WebhookHandler struct {
	bot MessageHandler
	log *slog.Logger
}

func NewWebhookHandler(bot MessageHandler, log *slog.Logger) *WebhookHandler {
	return &WebhookHandler{bot: bot, log: log}
}

func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "read body", http.StatusBadRequest)
		return
	}
	msgs, statuses, err := whatsapp.ParseWebhook(raw)
	if err != nil {
		h.log.Warn("malformed whatsapp webhook", "err", err)
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	for _, m := range msgs {
		if err := h.bot.HandleMessage(r.Context(), m.From, m.Body()); err != nil {
			h.log.Error("handle inbound message", "from", m.From, "err", err)
		}
	}
	for _, st := range statuses {
		if err := h.bot.HandleStatus(r.Context(), st); err != nil {
			h.log.Error("handle status update", "recipient", st.RecipientID, "err", err)
		}
	}
	w.WriteHeader(http.StatusOK)
}

// RunHandler exposes the scheduler as a manual trigger for operators.
type RunHandler struct {
	run func(ctx context.Context) any
}

func NewRunHandler(run func(ctx context.Context) any) *RunHandler {
	return &RunHandler{run: run}
}

func (h *RunHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	stats := h.run(r.Context())
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(stats)
}

// ReportWriter renders the progress workbook.
type ReportWriter interface {
	Write(ctx context.Context, w io.Writer) error
}

type ReportHandler struct {
	builder ReportWriter
	log     *slog.Logger
}

func NewReportHandler(builder ReportWriter, log *slog.Logger) *ReportHandler {
	return &ReportHandler{builder: builder, log: log}
}

func (h *ReportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="progress.xlsx"`)
	if err := h.builder.Write(r.Context(), w); err != nil {
		h.log.Error("build progress report", "err", err)
	}
}

type enrollRequest struct {
	Name          string  `json:"name"`
	Phone         string  `json:"phone"`
	PreferredTime string  `json:"preferred_time"`
	TrackIDs      []int64 `json:"track_ids"`
}

type UserUpserter interface {
	Upsert(ctx context.Context, name, phone, preferredTime string) (*users.User, error)
}

type Enroller interface {
	Enroll(ctx context.Context, userID, trackID int64) error
	TrackTitles(ctx context.Context, trackIDs []int64) ([]string, error)
}

type WelcomeSender interface {
	SendWelcome(ctx context.Context, user *users.User, trackTitles []string) error
}

// EnrollHandler registers a user and enrolls them into the requested tracks.
type EnrollHandler struct {
	users    UserUpserter
	enroller Enroller
	welcome  WelcomeSender
	log      *slog.Logger
}

func NewEnrollHandler(userRepo UserUpserter, enroller Enroller, welcome WelcomeSender, log *slog.Logger) *EnrollHandler {
	return &EnrollHandler{users: userRepo, enroller: enroller, welcome: welcome, log: log}
}

func (h *EnrollHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req enrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	canonical, err := phone.Normalize(req.Phone)
	if err != nil {
		http.Error(w, "invalid phone number", http.StatusBadRequest)
		return
	}
	if len(req.TrackIDs) == 0 {
		http.Error(w, "at least one track required", http.StatusBadRequest)
		return
	}

	user, err := h.users.Upsert(r.Context(), req.Name, canonical, req.PreferredTime)
	if err != nil {
		h.log.Error("upsert user", "phone", canonical, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	for _, trackID := range req.TrackIDs {
		if err := h.enroller.Enroll(r.Context(), user.ID, trackID); err != nil {
			h.log.Error("enroll user", "user_id", user.ID, "track_id", trackID, "err", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
	}

	titles, err := h.enroller.TrackTitles(r.Context(), req.TrackIDs)
	if err != nil {
		h.log.Error("resolve track titles", "err", err)
		titles = nil
	}
	if err := h.welcome.SendWelcome(r.Context(), user, titles); err != nil {
		// Enrollment already succeeded; the welcome is best effort.
		h.log.Error("send welcome", "user_id", user.ID, "err", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"user_id": user.ID,
		"phone":   user.WhatsAppNumber,
	})
}
