package http

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lishyamuchiri/skillboost-kenya-coach/internal/domain/users"
	"github.com/lishyamuchiri/skillboost-kenya-coach/internal/whatsapp"
)

func discard() *slog.Logger { return slog.New(slog.DiscardHandler) }

func TestVerifyHandshake(t *testing.T) {
	h := verifyHandler("secret-token", discard())

	req := httptest.NewRequest(http.MethodGet,
		"/webhooks/whatsapp?hub.mode=subscribe&hub.verify_token=secret-token&hub.challenge=12345", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "12345", rec.Body.String())
}

func TestVerifyHandshakeRejectsBadToken(t *testing.T) {
	h := verifyHandler("secret-token", discard())

	req := httptest.NewRequest(http.MethodGet,
		"/webhooks/whatsapp?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=12345", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, rec.Body.String())
}

type fakeBot struct {
	messages []string
	statuses []whatsapp.StatusUpdate
}

func (f *fakeBot) HandleMessage(_ context.Context, from, body string) error {
	f.messages = append(f.messages, from+":"+body)
	return nil
}

func (f *fakeBot) HandleStatus(_ context.Context, st whatsapp.StatusUpdate) error {
	f.statuses = append(f.statuses, st)
	return nil
}

func TestWebhookDispatchesMessages(t *testing.T) {
	bot := &fakeBot{}
	h := NewWebhookHandler(bot, discard())

	payload := `{"entry":[{"changes":[{"value":{"messages":[
		{"from":"254712345678","id":"wamid.1","text":{"body":"NEXT"}}
	]}}]}]}`
	req := httptest.NewRequest(http.MethodPost, "/webhooks/whatsapp", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, bot.messages, 1)
	assert.Equal(t, "254712345678:NEXT", bot.messages[0])
}

func TestWebhookDispatchesStatuses(t *testing.T) {
	bot := &fakeBot{}
	h := NewWebhookHandler(bot, discard())

	payload := `{"entry":[{"changes":[{"value":{"statuses":[
		{"recipient_id":"254712345678","status":"delivered","timestamp":"1756627200"}
	]}}]}]}`
	req := httptest.NewRequest(http.MethodPost, "/webhooks/whatsapp", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, bot.statuses, 1)
	assert.True(t, bot.statuses[0].Delivered())
}

func TestWebhookRejectsMalformedJSON(t *testing.T) {
	h := NewWebhookHandler(&fakeBot{}, discard())

	req := httptest.NewRequest(http.MethodPost, "/webhooks/whatsapp", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type fakeEnrollStore struct {
	upserted    []string
	enrollments [][2]int64
	welcomes    int
}

func (f *fakeEnrollStore) Upsert(_ context.Context, name, phone, preferredTime string) (*users.User, error) {
	f.upserted = append(f.upserted, phone)
	return &users.User{ID: 7, Name: name, WhatsAppNumber: phone, PreferredTime: preferredTime, IsActive: true}, nil
}

func (f *fakeEnrollStore) Enroll(_ context.Context, userID, trackID int64) error {
	f.enrollments = append(f.enrollments, [2]int64{userID, trackID})
	return nil
}

func (f *fakeEnrollStore) TrackTitles(_ context.Context, _ []int64) ([]string, error) {
	return []string{"Digital Marketing Basics"}, nil
}

func (f *fakeEnrollStore) SendWelcome(_ context.Context, _ *users.User, _ []string) error {
	f.welcomes++
	return nil
}

func TestEnrollCanonicalizesPhone(t *testing.T) {
	store := &fakeEnrollStore{}
	h := NewEnrollHandler(store, store, store, discard())

	body := `{"name":"Amina","phone":"0712345678","preferred_time":"07:00","track_ids":[1,2]}`
	req := httptest.NewRequest(http.MethodPost, "/enroll", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, store.upserted, 1)
	assert.Equal(t, "254712345678", store.upserted[0])
	assert.Equal(t, [][2]int64{{7, 1}, {7, 2}}, store.enrollments)
	assert.Equal(t, 1, store.welcomes)
}

func TestEnrollRejectsInvalidPhone(t *testing.T) {
	store := &fakeEnrollStore{}
	h := NewEnrollHandler(store, store, store, discard())

	body := `{"name":"Amina","phone":"12345","track_ids":[1]}`
	req := httptest.NewRequest(http.MethodPost, "/enroll", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, store.upserted)
}

func TestEnrollRequiresTracks(t *testing.T) {
	store := &fakeEnrollStore{}
	h := NewEnrollHandler(store, store, store, discard())

	body := `{"name":"Amina","phone":"0712345678","track_ids":[]}`
	req := httptest.NewRequest(http.MethodPost, "/enroll", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, store.upserted)
}
