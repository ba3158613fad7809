package mock

import (
	"context"
	"sync"

	"github.com/banseok/hajaro"
	"github.com/google/uuid"
)

// Compile-time interface checks
var (
	_ hajaro.NotificationService = (*NotificationService)(nil)
	_ hajaro.DeviceTokenService  = (*DeviceTokenService)(nil)
	_ hajaro.PushSender          = (*PushSender)(nil)
)

// NotificationService is a mock implementation of hajaro.NotificationService.
type NotificationService struct {
	CreateNotificationFn          func(ctx context.Context, n *hajaro.Notification) error
	FindNotificationsByResidentFn func(ctx context.Context, residentID uuid.UUID) ([]*hajaro.Notification, error)
	MarkNotificationsReadFn       func(ctx context.Context, residentID uuid.UUID, ids []uuid.UUID) error
}

func (s *NotificationService) CreateNotification(ctx context.Context, n *hajaro.Notification) error {
	if s.CreateNotificationFn != nil {
		return s.CreateNotificationFn(ctx, n)
	}
	return nil
}

func (s *NotificationService) FindNotificationsByResident(ctx context.Context, residentID uuid.UUID) ([]*hajaro.Notification, error) {
	if s.FindNotificationsByResidentFn != nil {
		return s.FindNotificationsByResidentFn(ctx, residentID)
	}
	return []*hajaro.Notification{}, nil
}

func (s *NotificationService) MarkNotificationsRead(ctx context.Context, residentID uuid.UUID, ids []uuid.UUID) error {
	if s.MarkNotificationsReadFn != nil {
		return s.MarkNotificationsReadFn(ctx, residentID, ids)
	}
	return nil
}

// DeviceTokenService is a mock implementation of hajaro.DeviceTokenService.
type DeviceTokenService struct {
	RegisterDeviceTokenFn    func(ctx context.Context, token *hajaro.DeviceToken) error
	FindDeviceTokensByUserFn func(ctx context.Context, userID uuid.UUID) ([]*hajaro.DeviceToken, error)
	DeleteDeviceTokenFn      func(ctx context.Context, userID uuid.UUID, token string) error
}

func (s *DeviceTokenService) RegisterDeviceToken(ctx context.Context, token *hajaro.DeviceToken) error {
	if s.RegisterDeviceTokenFn != nil {
		return s.RegisterDeviceTokenFn(ctx, token)
	}
	return nil
}

func (s *DeviceTokenService) FindDeviceTokensByUser(ctx context.Context, userID uuid.UUID) ([]*hajaro.DeviceToken, error) {
	if s.FindDeviceTokensByUserFn != nil {
		return s.FindDeviceTokensByUserFn(ctx, userID)
	}
	return []*hajaro.DeviceToken{}, nil
}

func (s *DeviceTokenService) DeleteDeviceToken(ctx context.Context, userID uuid.UUID, token string) error {
	if s.DeleteDeviceTokenFn != nil {
		return s.DeleteDeviceTokenFn(ctx, userID, token)
	}
	return nil
}

// PushSender is a mock implementation of hajaro.PushSender that records
// every delivery.
type PushSender struct {
	SendFn func(ctx context.Context, tokens []string, msg hajaro.PushMessage, thumbnail string) error

	mu   sync.Mutex
	sent []SentPush
}

// SentPush records a single Send call.
type SentPush struct {
	Tokens    []string
	Message   hajaro.PushMessage
	Thumbnail string
}

func (s *PushSender) Send(ctx context.Context, tokens []string, msg hajaro.PushMessage, thumbnail string) error {
	s.mu.Lock()
	s.sent = append(s.sent, SentPush{Tokens: tokens, Message: msg, Thumbnail: thumbnail})
	s.mu.Unlock()

	if s.SendFn != nil {
		return s.SendFn(ctx, tokens, msg, thumbnail)
	}
	return nil
}

// Sent returns a copy of all recorded deliveries.
func (s *PushSender) Sent() []SentPush {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]SentPush, len(s.sent))
	copy(out, s.sent)
	return out
}
