// Package push delivers mobile push notifications to resident devices.
package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/banseok/hajaro"
)

const fcmEndpoint = "https://fcm.googleapis.com/fcm/send"

// Config holds configuration for push delivery
type Config struct {
	Provider  string // "mock" or "fcm"
	ServerKey string
	Timeout   time.Duration
}

// NewSender creates a push sender based on the provider configuration
func NewSender(logger *slog.Logger, config Config) hajaro.PushSender {
	switch config.Provider {
	case "fcm":
		return newFCMSender(logger, config)
	default:
		return newMockSender(logger)
	}
}

// mockSender logs notifications instead of sending them
type mockSender struct {
	logger *slog.Logger
}

func newMockSender(logger *slog.Logger) *mockSender {
	return &mockSender{logger: logger}
}

// Send logs the push notification instead of sending it
func (s *mockSender) Send(ctx context.Context, tokens []string, msg hajaro.PushMessage, thumbnail string) error {
	s.logger.Info("📱 MOCK PUSH: notification",
		slog.Int("tokens", len(tokens)),
		slog.String("title", msg.Title),
		slog.String("body", msg.Body),
	)
	return nil
}

// fcmSender sends notifications through Firebase Cloud Messaging
type fcmSender struct {
	client *http.Client
	logger *slog.Logger
	config Config
}

func newFCMSender(logger *slog.Logger, config Config) *fcmSender {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &fcmSender{
		client: &http.Client{Timeout: timeout},
		logger: logger,
		config: config,
	}
}

type fcmRequest struct {
	RegistrationIDs []string        `json:"registration_ids"`
	Notification    fcmNotification `json:"notification"`
}

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Image string `json:"image,omitempty"`
}

type fcmResponse struct {
	Success int `json:"success"`
	Failure int `json:"failure"`
}

// Send delivers the notification to all registered tokens via FCM
func (s *fcmSender) Send(ctx context.Context, tokens []string, msg hajaro.PushMessage, thumbnail string) error {
	if len(tokens) == 0 {
		return nil
	}

	body, err := json.Marshal(fcmRequest{
		RegistrationIDs: tokens,
		Notification: fcmNotification{
			Title: msg.Title,
			Body:  msg.Body,
			Image: thumbnail,
		},
	})
	if err != nil {
		return fmt.Errorf("marshaling push request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fcmEndpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "key="+s.config.ServerKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending push notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		s.logger.Error("push delivery rejected",
			slog.Int("status", resp.StatusCode),
			slog.String("response", string(data)),
		)
		return fmt.Errorf("push delivery rejected with status %d", resp.StatusCode)
	}

	var result fcmResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decoding push response: %w", err)
	}

	s.logger.Info("push notification sent",
		slog.Int("success", result.Success),
		slog.Int("failure", result.Failure),
	)
	return nil
}
