package postgres

import (
	"context"

	"github.com/banseok/hajaro"
	"github.com/google/uuid"
)

// NotificationService is the PostgreSQL implementation of
// hajaro.NotificationService.
type NotificationService struct {
	db *DB
}

var _ hajaro.NotificationService = (*NotificationService)(nil)

// CreateNotification persists a status-change notification.
func (s *NotificationService) CreateNotification(ctx context.Context, n *hajaro.Notification) error {
	err := s.db.pool.QueryRow(ctx, `
		INSERT INTO notifications (resident_id, defect_id, status, message, thumbnail)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, read, created_at
	`, n.ResidentID, n.DefectID, n.Status, n.Message, n.Thumbnail).
		Scan(&n.ID, &n.Read, &n.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return hajaro.NotFound("referenced resident or defect does not exist")
		}
		return hajaro.Internal("failed to create notification", err)
	}
	return nil
}

// FindNotificationsByResident returns a resident's feed, newest first.
func (s *NotificationService) FindNotificationsByResident(ctx context.Context, residentID uuid.UUID) ([]*hajaro.Notification, error) {
	rows, err := s.db.pool.Query(ctx, `
		SELECT id, resident_id, defect_id, status, message, thumbnail, read, created_at
		FROM notifications
		WHERE resident_id = $1
		ORDER BY created_at DESC
	`, residentID)
	if err != nil {
		return nil, hajaro.Internal("failed to query notifications", err)
	}
	defer rows.Close()

	notifications := []*hajaro.Notification{}
	for rows.Next() {
		var n hajaro.Notification
		err := rows.Scan(&n.ID, &n.ResidentID, &n.DefectID, &n.Status,
			&n.Message, &n.Thumbnail, &n.Read, &n.CreatedAt)
		if err != nil {
			return nil, hajaro.Internal("failed to scan notification", err)
		}
		notifications = append(notifications, &n)
	}
	return notifications, nil
}

// MarkNotificationsRead marks the given unread notifications as read.
func (s *NotificationService) MarkNotificationsRead(ctx context.Context, residentID uuid.UUID, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.db.pool.Exec(ctx, `
		UPDATE notifications
		SET read = TRUE
		WHERE resident_id = $1 AND id = ANY($2) AND read = FALSE
	`, residentID, ids)
	if err != nil {
		return hajaro.Internal("failed to mark notifications read", err)
	}
	return nil
}

// DeviceTokenService is the PostgreSQL implementation of
// hajaro.DeviceTokenService.
type DeviceTokenService struct {
	db *DB
}

var _ hajaro.DeviceTokenService = (*DeviceTokenService)(nil)

// RegisterDeviceToken upserts a device token. Re-registering an existing
// token moves it to the new user, covering device handovers.
func (s *DeviceTokenService) RegisterDeviceToken(ctx context.Context, token *hajaro.DeviceToken) error {
	err := s.db.pool.QueryRow(ctx, `
		INSERT INTO device_tokens (user_id, token, platform)
		VALUES ($1, $2, $3)
		ON CONFLICT (token)
		DO UPDATE SET user_id = EXCLUDED.user_id, platform = EXCLUDED.platform
		RETURNING id, created_at
	`, token.UserID, token.Token, token.Platform).Scan(&token.ID, &token.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return hajaro.NotFound("user not found")
		}
		return hajaro.Internal("failed to register device token", err)
	}
	return nil
}

// FindDeviceTokensByUser lists a user's registered tokens.
func (s *DeviceTokenService) FindDeviceTokensByUser(ctx context.Context, userID uuid.UUID) ([]*hajaro.DeviceToken, error) {
	rows, err := s.db.pool.Query(ctx, `
		SELECT id, user_id, token, platform, created_at
		FROM device_tokens
		WHERE user_id = $1
		ORDER BY created_at
	`, userID)
	if err != nil {
		return nil, hajaro.Internal("failed to query device tokens", err)
	}
	defer rows.Close()

	tokens := []*hajaro.DeviceToken{}
	for rows.Next() {
		var t hajaro.DeviceToken
		if err := rows.Scan(&t.ID, &t.UserID, &t.Token, &t.Platform, &t.CreatedAt); err != nil {
			return nil, hajaro.Internal("failed to scan device token", err)
		}
		tokens = append(tokens, &t)
	}
	return tokens, nil
}

// DeleteDeviceToken removes a token.
func (s *DeviceTokenService) DeleteDeviceToken(ctx context.Context, userID uuid.UUID, token string) error {
	tag, err := s.db.pool.Exec(ctx, `
		DELETE FROM device_tokens WHERE user_id = $1 AND token = $2
	`, userID, token)
	if err != nil {
		return hajaro.Internal("failed to delete device token", err)
	}
	if tag.RowsAffected() == 0 {
		return hajaro.NotFound("device token not found")
	}
	return nil
}
