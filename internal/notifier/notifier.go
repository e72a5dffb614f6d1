// Package notifier emails a digest of scored matches through the SendGrid
// v3 REST API.
package notifier

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"aidhunter-engine/internal/domain"
)

type Config struct {
	APIKey        string
	From          string
	To            string
	SubjectPrefix string
	// MaxPerSection caps each digest section so a backlog does not produce
	// an unreadable email.
	MaxPerSection int
	// BaseURL overrides the SendGrid host, used in tests. Empty means the
	// production API.
	BaseURL string
}

type Notifier struct {
	cfg Config
	log *zap.Logger
}

func New(cfg Config, log *zap.Logger) (*Notifier, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("sendgrid api key is required")
	}
	if strings.TrimSpace(cfg.From) == "" || strings.TrimSpace(cfg.To) == "" {
		return nil, errors.New("notifier from/to addresses are required")
	}
	if cfg.MaxPerSection <= 0 {
		cfg.MaxPerSection = 20
	}
	return &Notifier{cfg: cfg, log: log}, nil
}

// SendDigest renders and sends the digest. It returns the fingerprints of
// the records that made it into the email, so the caller can mark them
// digested only after a successful send.
func (n *Notifier) SendDigest(ctx context.Context, high, good []domain.JobRecord, stats DigestStats) ([]string, error) {
	high = capSection(high, n.cfg.MaxPerSection)
	good = capSection(good, n.cfg.MaxPerSection)
	if len(high)+len(good) == 0 {
		n.log.Info("digest skipped, nothing to send")
		return nil, nil
	}

	html, err := RenderDigest(high, good, stats, time.Now())
	if err != nil {
		return nil, err
	}

	subject := fmt.Sprintf("%d New Job Matches - %s",
		len(high)+len(good), time.Now().Format("Jan 2, 2006"))
	if p := strings.TrimSpace(n.cfg.SubjectPrefix); p != "" {
		subject = p + " " + subject
	}

	if err := n.send(ctx, subject, html); err != nil {
		return nil, err
	}

	fps := make([]string, 0, len(high)+len(good))
	for _, r := range high {
		fps = append(fps, r.Fingerprint)
	}
	for _, r := range good {
		fps = append(fps, r.Fingerprint)
	}
	n.log.Info("digest sent",
		zap.Int("high", len(high)),
		zap.Int("good", len(good)),
		zap.String("to", n.cfg.To))
	return fps, nil
}

func (n *Notifier) send(ctx context.Context, subject, html string) error {
	m := mail.NewV3Mail()
	m.SetFrom(mail.NewEmail("AidHunter", n.cfg.From))
	m.Subject = subject

	p := mail.NewPersonalization()
	p.AddTos(mail.NewEmail("", n.cfg.To))
	m.AddPersonalizations(p)
	m.AddContent(mail.NewContent("text/html", html))

	req := sendgrid.GetRequest(n.cfg.APIKey, "/v3/mail/send", n.cfg.BaseURL)
	req.Method = "POST"
	req.Body = mail.GetRequestBody(m)

	resp, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("send digest: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := resp.Body
		if len(detail) > 2048 {
			detail = detail[:2048]
		}
		return fmt.Errorf("sendgrid returned %d: %s", resp.StatusCode, strings.TrimSpace(detail))
	}
	return nil
}

func capSection(recs []domain.JobRecord, max int) []domain.JobRecord {
	if len(recs) > max {
		return recs[:max]
	}
	return recs
}
