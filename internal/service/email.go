package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"
)

type EmailService struct {
	client    *resend.Client
	fromEmail string
	isDev     bool
	appURL    string
	appName   string
}

func NewEmailService(apiKey, fromEmail, appURL, appName string, isDev bool) *EmailService {
	var client *resend.Client
	if apiKey != "" && !isDev {
		client = resend.NewClient(apiKey)
	}

	return &EmailService{
		client:    client,
		fromEmail: fromEmail,
		isDev:     isDev,
		appURL:    appURL,
		appName:   appName,
	}
}

func (s *EmailService) SendRoomInvite(ctx context.Context, email, inviterName, inviteCode string) error {
	joinURL := fmt.Sprintf("%s/join/%s", s.appURL, inviteCode)
	subject, body := roomInviteEmailTemplate(inviterName, inviteCode, joinURL, s.appName)

	if s.isDev {
		slog.Info("email sent (dev mode)", "type", "room_invite", "to", email, "subject", subject, "url", joinURL)
		return nil
	}

	if s.client == nil {
		return fmt.Errorf("email service not configured (missing RESEND_API_KEY)")
	}

	params := &resend.SendEmailRequest{
		From:    s.fromEmail,
		To:      []string{email},
		Subject: subject,
		Text:    body,
	}

	_, err := s.client.Emails.SendWithContext(ctx, params)
	if err == nil {
		slog.Info("email sent", "type", "room_invite", "to", email)
	}
	return err
}
