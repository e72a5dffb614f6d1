// Package emailalert collects postings out of job-alert emails (ReliefWeb
// and Devex subscriptions) over IMAP. Messages are fetched with BODY.PEEK[]
// and stay unseen until Commit, which the pipeline calls after the run's
// records were persisted; a run that fails before persisting leaves the
// messages unread for the next run.
package emailalert

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"

	"aidhunter-engine/internal/domain"
)

type Config struct {
	Host     string // host:port
	Username string
	Password string
	// Senders restricts which From addresses count as job alerts.
	Senders []string
	MaxMsgs int
	Donors  []string
}

type Collector struct {
	cfg Config

	// pending holds the UIDs parsed by the last Fetch. They are flagged
	// seen only in Commit, once the batch made it into the store.
	pending []imap.UID
}

func New(cfg Config) *Collector {
	return &Collector{cfg: cfg}
}

func (c *Collector) Name() string { return "emailalert" }

func (c *Collector) Fetch(ctx context.Context) ([]domain.JobRecord, error) {
	client, err := dialAndLogin(ctx, c.cfg)
	if err != nil {
		return nil, err
	}
	defer logoutAndClose(client)

	if _, err := client.Select("INBOX", &imap.SelectOptions{ReadOnly: true}).Wait(); err != nil {
		return nil, fmt.Errorf("imap select inbox: %w", err)
	}

	msgs, err := fetchUnseen(ctx, client, c.cfg.MaxMsgs)
	if err != nil {
		return nil, err
	}

	var out []domain.JobRecord
	var processed []imap.UID
	seen := map[string]bool{}

	for _, m := range msgs {
		if !c.fromKnownSender(m.From) {
			continue
		}
		for _, rec := range ParseAlertHTML(string(m.Body), c.cfg.Donors) {
			if seen[rec.SourceID] {
				continue
			}
			seen[rec.SourceID] = true
			out = append(out, rec)
		}
		processed = append(processed, m.UID)
	}

	c.pending = processed
	return out, nil
}

// Commit flags the messages from the last Fetch as seen. Called by the
// pipeline after a successful persist.
func (c *Collector) Commit(ctx context.Context) error {
	if len(c.pending) == 0 {
		return nil
	}

	client, err := dialAndLogin(ctx, c.cfg)
	if err != nil {
		return err
	}
	defer logoutAndClose(client)

	if _, err := client.Select("INBOX", &imap.SelectOptions{ReadOnly: false}).Wait(); err != nil {
		return fmt.Errorf("imap select inbox: %w", err)
	}
	if err := markSeen(client, c.pending); err != nil {
		return err
	}
	c.pending = nil
	return nil
}

func (c *Collector) fromKnownSender(from string) bool {
	if len(c.cfg.Senders) == 0 {
		return false
	}
	lf := strings.ToLower(from)
	for _, s := range c.cfg.Senders {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" && strings.Contains(lf, s) {
			return true
		}
	}
	return false
}

type message struct {
	UID  imap.UID
	From string
	Body []byte
}

func dialAndLogin(ctx context.Context, cfg Config) (*imapclient.Client, error) {
	if cfg.Host == "" {
		return nil, errors.New("imap host is required")
	}
	if cfg.Username == "" || cfg.Password == "" {
		return nil, errors.New("imap username/password is required")
	}

	client, err := imapclient.DialTLS(cfg.Host, &imapclient.Options{
		TLSConfig: &tls.Config{MinVersion: tls.VersionTLS12},
	})
	if err != nil {
		return nil, fmt.Errorf("imap dial tls: %w", err)
	}

	// best-effort close on context cancel
	go func() {
		<-ctx.Done()
		_ = client.Close()
	}()

	if err := client.Login(cfg.Username, cfg.Password).Wait(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("imap login: %w", err)
	}
	return client, nil
}

func fetchUnseen(ctx context.Context, client *imapclient.Client, max int) ([]message, error) {
	if max <= 0 {
		max = 50
	}

	criteria := &imap.SearchCriteria{
		NotFlag: []imap.Flag{imap.FlagSeen},
		Since:   time.Now().AddDate(0, -1, 0),
	}

	searchData, err := client.UIDSearch(criteria, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("imap uid search unseen: %w", err)
	}

	uids := searchData.AllUIDs()
	if len(uids) == 0 {
		return nil, nil
	}

	// newest first
	for i, j := 0, len(uids)-1; i < j; i, j = i+1, j-1 {
		uids[i], uids[j] = uids[j], uids[i]
	}
	if len(uids) > max {
		uids = uids[:max]
	}

	bodyAll := &imap.FetchItemBodySection{
		Specifier: imap.PartSpecifierNone,
		Peek:      true,
	}
	fetchCmd := client.Fetch(imap.UIDSetNum(uids...), &imap.FetchOptions{
		UID:         true,
		Envelope:    true,
		BodySection: []*imap.FetchItemBodySection{bodyAll},
	})

	var out []message
	for {
		select {
		case <-ctx.Done():
			_ = fetchCmd.Close()
			return nil, ctx.Err()
		default:
		}

		msgData := fetchCmd.Next()
		if msgData == nil {
			break
		}
		buf, err := msgData.Collect()
		if err != nil {
			_ = fetchCmd.Close()
			return nil, fmt.Errorf("imap fetch collect: %w", err)
		}

		var m message
		m.UID = buf.UID
		if buf.Envelope != nil && len(buf.Envelope.From) > 0 {
			m.From = buf.Envelope.From[0].Addr()
		}
		if b := buf.FindBodySection(bodyAll); b != nil {
			m.Body = append([]byte(nil), b...)
		}
		out = append(out, m)
	}

	if err := fetchCmd.Close(); err != nil {
		return nil, fmt.Errorf("imap fetch close: %w", err)
	}
	return out, nil
}

func markSeen(client *imapclient.Client, uids []imap.UID) error {
	if len(uids) == 0 {
		return nil
	}
	cmd := client.Store(imap.UIDSetNum(uids...), &imap.StoreFlags{
		Op:     imap.StoreFlagsAdd,
		Silent: true,
		Flags:  []imap.Flag{imap.FlagSeen},
	}, nil)
	if err := cmd.Close(); err != nil {
		return fmt.Errorf("imap store add seen: %w", err)
	}
	return nil
}

func logoutAndClose(client *imapclient.Client) {
	if client == nil {
		return
	}
	_ = client.Logout().Wait()
	_ = client.Close()
}
