package hajaro

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Notification is a persisted status-change message for a resident. It
// carries a denormalized snapshot so the feed renders without re-fetching
// the defect.
type Notification struct {
	ID         uuid.UUID    `json:"id"`
	ResidentID uuid.UUID    `json:"residentId"`
	DefectID   uuid.UUID    `json:"defectId"`
	Status     DefectStatus `json:"status"`
	Message    string       `json:"message"`
	Thumbnail  string       `json:"thumbnail"`
	Read       bool         `json:"read"`
	CreatedAt  time.Time    `json:"createdAt"`
}

// NotificationService defines operations for the resident notification feed.
type NotificationService interface {
	// CreateNotification persists a status-change notification.
	CreateNotification(ctx context.Context, n *Notification) error

	// FindNotificationsByResident returns a resident's feed, newest
	// first.
	FindNotificationsByResident(ctx context.Context, residentID uuid.UUID) ([]*Notification, error)

	// MarkNotificationsRead marks the given unread notifications as
	// read. IDs already read are skipped.
	MarkNotificationsRead(ctx context.Context, residentID uuid.UUID, ids []uuid.UUID) error
}

// DeviceToken registers one device of a user for push delivery.
type DeviceToken struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	Token     string    `json:"token"`
	Platform  string    `json:"platform"`
	CreatedAt time.Time `json:"createdAt"`
}

// DeviceTokenService defines operations for push device registration.
type DeviceTokenService interface {
	// RegisterDeviceToken upserts a device token for a user. Re-registering
	// the same token moves it to the new user.
	RegisterDeviceToken(ctx context.Context, token *DeviceToken) error

	// FindDeviceTokensByUser lists a user's registered tokens.
	FindDeviceTokensByUser(ctx context.Context, userID uuid.UUID) ([]*DeviceToken, error)

	// DeleteDeviceToken removes a token, e.g. on logout.
	DeleteDeviceToken(ctx context.Context, userID uuid.UUID, token string) error
}

// PushSender delivers a push message to a set of device tokens. Delivery is
// best effort; a failure is logged by the caller and never propagated back
// into the transition that triggered it.
type PushSender interface {
	Send(ctx context.Context, tokens []string, msg PushMessage, thumbnail string) error
}
