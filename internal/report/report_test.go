package report

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/lishyamuchiri/skillboost-kenya-coach/internal/domain/subscriptions"
	"github.com/lishyamuchiri/skillboost-kenya-coach/internal/domain/users"
)

type fakeSource struct {
	users     []users.User
	completed map[int64]int
	tracks    map[int64]int
	subs      map[int64]*subscriptions.Subscription
}

func (f *fakeSource) ListAll(_ context.Context) ([]users.User, error) { return f.users, nil }

func (f *fakeSource) CountCompleted(_ context.Context, userID int64) (int, error) {
	return f.completed[userID], nil
}

func (f *fakeSource) CountActiveEnrollments(_ context.Context, userID int64) (int, error) {
	return f.tracks[userID], nil
}

func (f *fakeSource) GetActive(_ context.Context, userID int64) (*subscriptions.Subscription, error) {
	return f.subs[userID], nil
}

func TestWriteProgressWorkbook(t *testing.T) {
	expiry := time.Date(2026, 9, 15, 7, 0, 0, 0, time.UTC)
	src := &fakeSource{
		users: []users.User{
			{ID: 1, Name: "Amina", WhatsAppNumber: "254712345678", IsActive: true},
			{ID: 2, Name: "Brian", WhatsAppNumber: "254101234567", IsActive: false},
		},
		completed: map[int64]int{1: 25, 2: 3},
		tracks:    map[int64]int{1: 2, 2: 1},
		subs: map[int64]*subscriptions.Subscription{
			1: {ID: 9, UserID: 1, PlanType: subscriptions.PlanMonthly, ExpiresAt: expiry, Status: "active"},
		},
	}

	var buf bytes.Buffer
	b := NewBuilder(src, src, src, src)
	require.NoError(t, b.Write(context.Background(), &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "user_id", rows[0][0])
	assert.Equal(t, "subscription_expires_at", rows[0][8])

	amina := rows[1]
	assert.Equal(t, "Amina", amina[1])
	assert.Equal(t, "254712345678", amina[2])
	assert.Equal(t, "25", amina[4])
	assert.Equal(t, "2", amina[5]) // two certificates at 25 lessons
	assert.Equal(t, "monthly", amina[7])
	assert.Equal(t, "2026-09-15 07:00", amina[8])

	brian := rows[2]
	assert.Equal(t, "Brian", brian[1])
	assert.Equal(t, "0", brian[5])

	plan, err := f.GetCellValue(sheet, "H3")
	require.NoError(t, err)
	assert.Empty(t, plan)
}
