package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ekip-platform/ekip-api/internal/db"
	"github.com/ekip-platform/ekip-api/internal/notifications/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const notificationCols = `id, created_at, COALESCE(updated_at, created_at), title, message, type_id, COALESCE(type, ''), COALESCE(category, ''),
	source_id, audience, auth_user_id, link_url`

// NotificationRepository stores notifications and per-user read/delete
// state. It runs as the service role: states belong to the caller but are
// written on their behalf.
type NotificationRepository struct {
	runner db.Runner
}

func NewNotificationRepository(runner db.Runner) *NotificationRepository {
	return &NotificationRepository{runner: runner}
}

// Visible returns up to limit personal and limit global notifications for
// the user, newest first within each group.
func (r *NotificationRepository) Visible(ctx context.Context, userID string, limit int) ([]domain.Notification, error) {
	const personal = `SELECT ` + notificationCols + ` FROM notifications
WHERE audience = 'user' AND auth_user_id = $1 ORDER BY created_at DESC LIMIT $2`
	const global = `SELECT ` + notificationCols + ` FROM notifications
WHERE audience = 'all' ORDER BY created_at DESC LIMIT $1`

	var out []domain.Notification
	err := r.runner.InTx(ctx, func(tx db.Querier) error {
		rows, err := tx.Query(ctx, personal, userID, limit)
		if err != nil {
			return err
		}
		mine, err := pgx.CollectRows(rows, scanNotification)
		if err != nil {
			return err
		}
		rows, err = tx.Query(ctx, global, limit)
		if err != nil {
			return err
		}
		all, err := pgx.CollectRows(rows, scanNotification)
		if err != nil {
			return err
		}
		out = append(mine, all...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return out, nil
}

func (r *NotificationRepository) States(ctx context.Context, userID string, ids []int64) (map[int64]domain.State, error) {
	out := make(map[int64]domain.State, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	const q = `
SELECT notification_id, COALESCE(is_read, false), read_at, COALESCE(is_deleted, false)
FROM notifications_all_users_state
WHERE auth_user_id = $1 AND notification_id = ANY($2)`
	err := r.runner.InTx(ctx, func(tx db.Querier) error {
		rows, err := tx.Query(ctx, q, userID, ids)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var s domain.State
			if err := rows.Scan(&s.NotificationID, &s.IsRead, &s.ReadAt, &s.IsDeleted); err != nil {
				return err
			}
			out[s.NotificationID] = s
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("load notification states: %w", err)
	}
	return out, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, userID string, id int64) error {
	const q = `
INSERT INTO notifications_all_users_state (notification_id, auth_user_id, is_read, read_at, is_deleted)
VALUES ($1, $2, true, now(), false)
ON CONFLICT (notification_id, auth_user_id) DO UPDATE
SET is_read = true, read_at = now(), is_deleted = false`
	return r.exec(ctx, "mark notification read", q, id, userID)
}

// MarkAllRead marks every notification visible to the user as read.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	const q = `
INSERT INTO notifications_all_users_state (notification_id, auth_user_id, is_read, read_at, is_deleted)
SELECT n.id, $1, true, now(), false
FROM notifications n
WHERE n.audience = 'all' OR (n.audience = 'user' AND n.auth_user_id = $1)
ON CONFLICT (notification_id, auth_user_id) DO UPDATE
SET is_read = true, read_at = now(), is_deleted = false`
	var n int64
	err := r.runner.InTx(ctx, func(tx db.Querier) error {
		tag, err := tx.Exec(ctx, q, userID)
		n = tag.RowsAffected()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	return n, nil
}

func (r *NotificationRepository) Delete(ctx context.Context, userID string, id int64) error {
	const q = `
INSERT INTO notifications_all_users_state (notification_id, auth_user_id, is_deleted, deleted_at)
VALUES ($1, $2, true, now())
ON CONFLICT (notification_id, auth_user_id) DO UPDATE
SET is_deleted = true, deleted_at = now()`
	return r.exec(ctx, "delete notification", q, id, userID)
}

func (r *NotificationRepository) Insert(ctx context.Context, in domain.NewNotification) (*domain.Notification, error) {
	const q = `
INSERT INTO notifications (title, message, type_id, type, category, source_id, audience, auth_user_id, link_url)
VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6, $7, $8, $9)
RETURNING ` + notificationCols
	var out domain.Notification
	err := r.runner.InTx(ctx, func(tx db.Querier) error {
		rows, err := tx.Query(ctx, q, in.Title, in.Message, in.TypeID, in.Type, in.Category,
			in.SourceID, string(in.Audience), in.AuthUserID, in.LinkURL)
		if err != nil {
			return err
		}
		out, err = pgx.CollectExactlyOneRow(rows, scanNotification)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("insert notification: %w", err)
	}
	return &out, nil
}

// Purge removes notifications created before cutoff and any state rows
// left without a notification.
func (r *NotificationRepository) Purge(ctx context.Context, cutoff time.Time) (notifications, states int64, err error) {
	err = r.runner.InTx(ctx, func(tx db.Querier) error {
		tag, err := tx.Exec(ctx, `
DELETE FROM notifications_all_users_state s
WHERE s.notification_id IN (SELECT id FROM notifications WHERE created_at < $1)
   OR NOT EXISTS (SELECT 1 FROM notifications n WHERE n.id = s.notification_id)`, cutoff)
		if err != nil {
			return err
		}
		states = tag.RowsAffected()
		tag, err = tx.Exec(ctx, `DELETE FROM notifications WHERE created_at < $1`, cutoff)
		if err != nil {
			return err
		}
		notifications = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, 0, fmt.Errorf("purge notifications: %w", err)
	}
	return notifications, states, nil
}

func (r *NotificationRepository) exec(ctx context.Context, what, q string, args ...any) error {
	err := r.runner.InTx(ctx, func(tx db.Querier) error {
		_, err := tx.Exec(ctx, q, args...)
		return err
	})
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	return nil
}

func scanNotification(row pgx.CollectableRow) (domain.Notification, error) {
	var n domain.Notification
	var audience string
	err := row.Scan(&n.ID, &n.CreatedAt, &n.UpdatedAt, &n.Title, &n.Message, &n.TypeID, &n.Type, &n.Category,
		&n.SourceID, &audience, &n.AuthUserID, &n.LinkURL)
	n.Audience = domain.Audience(audience)
	return n, err
}
