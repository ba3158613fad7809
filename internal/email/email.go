package email

import (
	"fmt"
	"log/slog"

	"github.com/keighl/postmark"
)

// EmailService defines the interface for sending emails
type EmailService interface {
	SendWelcomeEmail(to, name, tempPassword string) error
	SendDefectAssignedEmail(to, complexName, dong, ho, location string) error
}

// EmailConfig holds configuration for email services
type EmailConfig struct {
	Provider        string // "mock" or "postmark"
	PostmarkToken   string
	PostmarkAccount string
	FromAddress     string
	FromName        string
	LoginURL        string
}

// NewEmailService creates an email service based on the provider configuration
func NewEmailService(logger *slog.Logger, config EmailConfig) EmailService {
	switch config.Provider {
	case "postmark":
		return newPostmarkEmailService(logger, config)
	default:
		return newMockEmailService(logger, config)
	}
}

// mockEmailService is a mock implementation that logs instead of sending emails
type mockEmailService struct {
	logger *slog.Logger
	config EmailConfig
}

// newMockEmailService creates a new mock email service
func newMockEmailService(logger *slog.Logger, config EmailConfig) *mockEmailService {
	return &mockEmailService{
		logger: logger,
		config: config,
	}
}

// SendWelcomeEmail logs the welcome email instead of sending it
func (s *mockEmailService) SendWelcomeEmail(to, name, tempPassword string) error {
	s.logger.Info("📧 MOCK EMAIL: Welcome email",
		slog.String("to", to),
		slog.String("name", name),
		slog.String("login_url", s.config.LoginURL),
	)
	return nil
}

// SendDefectAssignedEmail logs the assignment email instead of sending it
func (s *mockEmailService) SendDefectAssignedEmail(to, complexName, dong, ho, location string) error {
	s.logger.Info("📧 MOCK EMAIL: Defect assigned email",
		slog.String("to", to),
		slog.String("complex", complexName),
		slog.String("dong", dong),
		slog.String("ho", ho),
		slog.String("location", location),
	)
	return nil
}

// postmarkEmailService sends emails via Postmark
type postmarkEmailService struct {
	client *postmark.Client
	logger *slog.Logger
	config EmailConfig
}

// newPostmarkEmailService creates a new Postmark email service
func newPostmarkEmailService(logger *slog.Logger, config EmailConfig) *postmarkEmailService {
	client := postmark.NewClient(config.PostmarkToken, config.PostmarkAccount)
	return &postmarkEmailService{
		client: client,
		logger: logger,
		config: config,
	}
}

// SendWelcomeEmail sends account credentials to a newly registered user
func (s *postmarkEmailService) SendWelcomeEmail(to, name, tempPassword string) error {
	email := postmark.Email{
		From:     fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromAddress),
		To:       to,
		Subject:  "계정이 생성되었습니다",
		TextBody: fmt.Sprintf("%s님, 계정이 생성되었습니다. 임시 비밀번호: %s\n로그인: %s", name, tempPassword, s.config.LoginURL),
		HtmlBody: fmt.Sprintf(`
			<h2>계정이 생성되었습니다</h2>
			<p>%s님, 하자 관리 서비스 계정이 생성되었습니다.</p>
			<p>임시 비밀번호: <b>%s</b></p>
			<p><a href="%s">로그인하기</a></p>
			<p>로그인 후 비밀번호를 변경해 주세요.</p>
		`, name, tempPassword, s.config.LoginURL),
		Tag:        "welcome",
		TrackOpens: true,
	}

	_, err := s.client.SendEmail(email)
	if err != nil {
		s.logger.Error("failed to send welcome email via Postmark",
			slog.String("to", to),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to send welcome email: %w", err)
	}

	s.logger.Info("welcome email sent via Postmark",
		slog.String("to", to),
	)
	return nil
}

// SendDefectAssignedEmail notifies a partner admin of a newly assigned defect
func (s *postmarkEmailService) SendDefectAssignedEmail(to, complexName, dong, ho, location string) error {
	email := postmark.Email{
		From:     fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromAddress),
		To:       to,
		Subject:  "새로운 하자가 배정되었습니다",
		TextBody: fmt.Sprintf("%s %s동 %s호 (%s)에 새로운 하자가 배정되었습니다.", complexName, dong, ho, location),
		HtmlBody: fmt.Sprintf(`
			<h2>새로운 하자가 배정되었습니다</h2>
			<p><b>%s %s동 %s호</b></p>
			<p>위치: %s</p>
			<p>관리 페이지에서 일정을 확인해 주세요.</p>
		`, complexName, dong, ho, location),
		Tag:        "defect-assigned",
		TrackOpens: true,
	}

	_, err := s.client.SendEmail(email)
	if err != nil {
		s.logger.Error("failed to send assignment email via Postmark",
			slog.String("to", to),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to send assignment email: %w", err)
	}

	s.logger.Info("assignment email sent via Postmark",
		slog.String("to", to),
	)
	return nil
}
