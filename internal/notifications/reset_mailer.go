package notifications

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/sxo6luxe/sxo6-backend/pkg/db/models"
	"github.com/sxo6luxe/sxo6-backend/pkg/enums"
	"github.com/sxo6luxe/sxo6-backend/pkg/logger"
	"github.com/sxo6luxe/sxo6-backend/pkg/mailer"
)

// ResetMailer sends password reset emails synchronously. Resets carry a
// short-lived token, so they skip the queue the order emails go through.
type ResetMailer struct {
	repo        *Repository
	mail        sender
	frontendURL string
	logg        *logger.Logger
}

// NewResetMailer builds the password reset sender.
func NewResetMailer(repo *Repository, mail sender, frontendURL string, logg *logger.Logger) (*ResetMailer, error) {
	if repo == nil {
		return nil, fmt.Errorf("email log repository required")
	}
	if mail == nil {
		return nil, fmt.Errorf("mailer required")
	}
	if strings.TrimSpace(frontendURL) == "" {
		return nil, fmt.Errorf("frontend url required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &ResetMailer{
		repo:        repo,
		mail:        mail,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		logg:        logg,
	}, nil
}

// SendPasswordReset delivers the reset link for the given token.
func (m *ResetMailer) SendPasswordReset(ctx context.Context, email string, fullName *string, token string) error {
	data := mailer.PasswordResetData{
		ResetURL: m.resetURL(token),
	}
	if fullName != nil {
		data.FullName = *fullName
	}

	subject, html, err := mailer.RenderPasswordReset(data)
	if err != nil {
		return err
	}

	_, sendErr := m.mail.Send(ctx, mailer.Message{
		To:      email,
		Subject: subject,
		HTML:    html,
	})

	log := &models.EmailLog{
		EmailType: enums.EmailTypePasswordReset,
		Recipient: email,
		Success:   sendErr == nil,
	}
	if sendErr != nil {
		detail := sendErr.Error()
		log.Error = &detail
	}
	if err := m.repo.CreateLog(ctx, log); err != nil {
		m.logg.Warn(ctx, fmt.Sprintf("record email log: %v", err))
	}

	return sendErr
}

func (m *ResetMailer) resetURL(token string) string {
	return fmt.Sprintf("%s/reset-password?token=%s", m.frontendURL, url.QueryEscape(token))
}
