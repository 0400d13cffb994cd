// Package notify delivers digest and alert emails over SMTP.
package notify

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"github.com/abhilashdr/jobscout/internal/config"
	"github.com/abhilashdr/jobscout/internal/job"
	"github.com/abhilashdr/jobscout/internal/secrets"
)

// Sender sends email notifications. A disabled sender accepts every call
// and does nothing, so callers never need to branch.
type Sender struct {
	cfg      config.Email
	password string
	enabled  bool
	logger   *zap.Logger
}

// NewSender resolves the SMTP credentials and returns a ready sender. When
// email is disabled or credentials are missing the sender is inert and the
// reason is logged once.
func NewSender(cfg config.Email, logger *zap.Logger) *Sender {
	s := &Sender{cfg: cfg, logger: logger}

	if !cfg.Enabled {
		return s
	}

	password, err := secrets.Load(secrets.Source{
		Name: "smtp password",
		File: cfg.PasswordFile,
	})
	if err != nil {
		logger.Warn("email notifications disabled", zap.Error(err))
		return s
	}

	if cfg.Sender == "" || cfg.Recipient == "" || cfg.SMTPHost == "" {
		logger.Warn("email notifications disabled",
			zap.String("reason", "sender, recipient and smtp host are all required"))
		return s
	}

	s.password = password
	s.enabled = true
	return s
}

// Enabled reports whether the sender will actually deliver mail.
func (s *Sender) Enabled() bool { return s.enabled }

// SendDigest delivers the run digest email.
func (s *Sender) SendDigest(ctx context.Context, d Digest) error {
	if !s.enabled || !s.cfg.SendDigest {
		return nil
	}

	html, err := renderDigestHTML(d)
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("Daily Job Intel - %d New Matches - %s", d.NewJobs, d.Date.Format("Jan 2"))
	return s.send(ctx, subject, renderDigestText(d), html)
}

// SendAlert delivers an immediate alert for a single high-scoring posting.
func (s *Sender) SendAlert(ctx context.Context, p job.Posting) error {
	if !s.enabled || !s.cfg.SendAlerts {
		return nil
	}

	html, err := renderAlertHTML(p)
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("HIGH MATCH (%.0f%%) - %s at %s", p.RelevanceScore, p.Title, p.Company)
	text := fmt.Sprintf("%s at %s (%s)\nMatch: %.2f%%\nApply: %s\n",
		p.Title, p.Company, p.Location, p.RelevanceScore, p.ApplicationLink)

	return s.send(ctx, subject, text, html)
}

func (s *Sender) send(ctx context.Context, subject, text, html string) error {
	msg := mail.NewMsg()
	if err := msg.From(s.cfg.Sender); err != nil {
		return fmt.Errorf("setting sender: %w", err)
	}
	if err := msg.To(s.cfg.Recipient); err != nil {
		return fmt.Errorf("setting recipient: %w", err)
	}

	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, text)
	msg.AddAlternativeString(mail.TypeTextHTML, html)

	client, err := mail.NewClient(s.cfg.SMTPHost,
		mail.WithPort(s.cfg.SMTPPort),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.cfg.Sender),
		mail.WithPassword(s.password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return fmt.Errorf("creating smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("sending %q: %w", subject, err)
	}

	s.logger.Info("email sent", zap.String("subject", subject))
	return nil
}
