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
)

// message is one fetched alert email: envelope plus full raw RFC822 bytes.
// BODY.PEEK[] keeps \Seen untouched so a failed run can re-read the mailbox.
type message struct {
	UID     imap.UID
	Subject string
	Date    time.Time
	Raw     []byte
}

func dialAndLogin(ctx context.Context, addr, username, password string) (*imapclient.Client, error) {
	if addr == "" {
		return nil, errors.New("imap addr is required")
	}
	if username == "" || password == "" {
		return nil, errors.New("imap username/password is required")
	}

	host := addr
	if i := strings.LastIndex(addr, ":"); i > 0 {
		host = addr[:i]
	}

	c, err := imapclient.DialTLS(addr, &imapclient.Options{
		TLSConfig: &tls.Config{MinVersion: tls.VersionTLS12, ServerName: host},
	})
	if err != nil {
		return nil, fmt.Errorf("imap dial tls: %w", err)
	}

	go func() {
		<-ctx.Done()
		_ = c.Close()
	}()

	if err := c.Login(username, password).Wait(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("imap login: %w", err)
	}
	return c, nil
}

func fetchUnseen(ctx context.Context, c *imapclient.Client, mailbox string, max int) ([]message, error) {
	if mailbox == "" {
		mailbox = "INBOX"
	}
	if max <= 0 {
		max = 50
	}
	if _, err := c.Select(mailbox, &imap.SelectOptions{ReadOnly: true}).Wait(); err != nil {
		return nil, fmt.Errorf("imap select %s: %w", mailbox, err)
	}

	// alerts older than 3 months are stale anyway
	cutoff := time.Now().AddDate(0, -3, 0)

	criteria := &imap.SearchCriteria{
		NotFlag: []imap.Flag{imap.FlagSeen},
		Since:   cutoff,
	}
	searchData, err := c.UIDSearch(criteria, nil).Wait()
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
	fetchCmd := c.Fetch(imap.UIDSetNum(uids...), &imap.FetchOptions{
		UID:         true,
		Envelope:    true,
		BodySection: []*imap.FetchItemBodySection{bodyAll},
	})
	defer func() { _ = fetchCmd.Close() }()

	var out []message
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		msgData := fetchCmd.Next()
		if msgData == nil {
			break
		}
		buf, err := msgData.Collect()
		if err != nil {
			return nil, fmt.Errorf("imap fetch collect: %w", err)
		}

		var m message
		m.UID = buf.UID
		if buf.Envelope != nil {
			m.Subject = buf.Envelope.Subject
			m.Date = buf.Envelope.Date
		}
		if b := buf.FindBodySection(bodyAll); b != nil {
			m.Raw = b
		}
		out = append(out, m)
	}
	return out, nil
}
