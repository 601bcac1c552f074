// Package mail implements the mailbox probe: an IMAP search for an expected
// notification email, plus a local sqlite archive of matched messages.
package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
)

// SearchFilter selects the messages the probe is waiting for. Sender and
// Subject are substring matches per IMAP SEARCH semantics; Since is a lower
// bound on the message date.
type SearchFilter struct {
	Mailbox    string
	Sender     string
	Subject    string
	Since      time.Time
	UnreadOnly bool
}

// Message is the envelope of one matched message.
type Message struct {
	ID      string
	From    string
	Subject string
	Date    time.Time
}

// Searcher runs one mailbox query and returns the matching messages.
type Searcher interface {
	Search(ctx context.Context, filter SearchFilter) ([]Message, error)
}

// IMAPClient connects to an IMAP server for each search. Reconnecting per
// probe keeps the long poll window immune to dropped sessions.
type IMAPClient struct {
	host     string
	port     int
	username string
	password string
}

// NewIMAPClient creates a client for the given IMAP endpoint. A zero port
// defaults to 993 (IMAPS).
func NewIMAPClient(host string, port int, username, password string) *IMAPClient {
	if port == 0 {
		port = 993
	}
	return &IMAPClient{
		host:     host,
		port:     port,
		username: username,
		password: password,
	}
}

// Search logs in, runs the filter against the mailbox and fetches the
// envelopes of every match. The dial honors ctx, and a ctx deadline bounds
// the whole session so cancellation is never stuck behind a hung server.
func (c *IMAPClient) Search(ctx context.Context, filter SearchFilter) ([]Message, error) {
	addr := net.JoinHostPort(c.host, strconv.Itoa(c.port))

	var d net.Dialer
	raw, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = raw.SetDeadline(deadline)
	}

	conn, err := client.New(tls.Client(raw, &tls.Config{ServerName: c.host}))
	if err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("imap handshake with %s: %w", addr, err)
	}
	defer func() { _ = conn.Logout() }()

	if err := conn.Login(c.username, c.password); err != nil {
		return nil, fmt.Errorf("imap login: %w", err)
	}

	mailbox := filter.Mailbox
	if mailbox == "" {
		mailbox = "INBOX"
	}
	if _, err := conn.Select(mailbox, true); err != nil {
		return nil, fmt.Errorf("selecting %s: %w", mailbox, err)
	}

	criteria := imap.NewSearchCriteria()
	if filter.UnreadOnly {
		criteria.WithoutFlags = []string{imap.SeenFlag}
	}
	if filter.Sender != "" {
		criteria.Header.Add("From", filter.Sender)
	}
	if filter.Subject != "" {
		criteria.Header.Add("Subject", filter.Subject)
	}
	if !filter.Since.IsZero() {
		criteria.Since = filter.Since
	}

	ids, err := conn.Search(criteria)
	if err != nil {
		return nil, fmt.Errorf("imap search: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(ids...)

	ch := make(chan *imap.Message, len(ids))
	if err := conn.Fetch(seqset, []imap.FetchItem{imap.FetchEnvelope}, ch); err != nil {
		return nil, fmt.Errorf("fetching envelopes: %w", err)
	}

	var messages []Message
	for msg := range ch {
		if msg.Envelope == nil {
			continue
		}
		m := Message{
			ID:      msg.Envelope.MessageId,
			Subject: msg.Envelope.Subject,
			Date:    msg.Envelope.Date,
		}
		if len(msg.Envelope.From) > 0 {
			m.From = msg.Envelope.From[0].Address()
		}
		messages = append(messages, m)
	}
	return messages, nil
}
