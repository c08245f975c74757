// Package report builds the admin progress workbook: one row per user with
// completion counts and subscription state.
package report

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/lishyamuchiri/skillboost-kenya-coach/internal/domain/subscriptions"
	"github.com/lishyamuchiri/skillboost-kenya-coach/internal/domain/users"
)

type UserLister interface {
	ListAll(ctx context.Context) ([]users.User, error)
}

type ProgressCounter interface {
	CountCompleted(ctx context.Context, userID int64) (int, error)
}

type EnrollmentCounter interface {
	CountActiveEnrollments(ctx context.Context, userID int64) (int, error)
}

type SubscriptionSource interface {
	GetActive(ctx context.Context, userID int64) (*subscriptions.Subscription, error)
}

type Builder struct {
	users    UserLister
	progress ProgressCounter
	catalog  EnrollmentCounter
	subs     SubscriptionSource
}

func NewBuilder(userRepo UserLister, progress ProgressCounter, catalog EnrollmentCounter, subs SubscriptionSource) *Builder {
	return &Builder{users: userRepo, progress: progress, catalog: catalog, subs: subs}
}

// Write renders the workbook to w.
func (b *Builder) Write(ctx context.Context, w io.Writer) error {
	list, err := b.users.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	header := []interface{}{
		"user_id",
		"name",
		"whatsapp_number",
		"active",
		"lessons_completed",
		"certificates",
		"active_tracks",
		"subscription_plan",
		"subscription_expires_at",
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	row := 2
	for _, u := range list {
		completed, err := b.progress.CountCompleted(ctx, u.ID)
		if err != nil {
			return fmt.Errorf("count progress for user %d: %w", u.ID, err)
		}
		tracks, err := b.catalog.CountActiveEnrollments(ctx, u.ID)
		if err != nil {
			return fmt.Errorf("count enrollments for user %d: %w", u.ID, err)
		}

		plan, expires := "", ""
		if sub, err := b.subs.GetActive(ctx, u.ID); err == nil && sub != nil {
			plan = string(sub.PlanType)
			expires = sub.ExpiresAt.Format("2006-01-02 15:04")
		}

		excelRow := []interface{}{
			u.ID,
			u.Name,
			u.WhatsAppNumber,
			u.IsActive,
			completed,
			completed / 10,
			tracks,
			plan,
			expires,
		}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &excelRow); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
		row++
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
