// internal/app/system/mailer/mailer.go

// Package mailer builds and sends the application's outbound email. SMTP
// transport is handled by waffle's email sender; this package owns the
// message bodies.
package mailer

import (
	"context"
	"fmt"

	"github.com/dalemusser/waffle/pantry/email"
	"go.uber.org/zap"
)

// Mailer sends application email through a configured SMTP sender.
type Mailer struct {
	sender   *email.Sender
	siteName string
	log      *zap.Logger
}

// New creates a Mailer over the given SMTP configuration.
func New(cfg email.Config, siteName string, logger *zap.Logger) *Mailer {
	return &Mailer{
		sender:   email.NewSender(cfg),
		siteName: siteName,
		log:      logger,
	}
}

// SendPasswordReset emails a reset link to the given address.
func (m *Mailer) SendPasswordReset(ctx context.Context, to string, data ResetEmailData) error {
	if data.SiteName == "" {
		data.SiteName = m.siteName
	}
	msg := BuildPasswordResetEmail(data)
	msg.To = []string{to}
	if err := m.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("mailer: send password reset: %w", err)
	}
	m.log.Info("password reset email sent", zap.String("to", to))
	return nil
}
