package mailbox

import (
	"fmt"
	"sort"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-sasl"

	"mailview/log"
	"mailview/utils"
)

// Client wraps one authenticated IMAP session. Each sync or fresh-fetch
// opens its own session and must Close it on every exit path.
type Client struct {
	client *client.Client
	email  string
}

// xoauth2 implements the SASL XOAUTH2 mechanism Gmail expects for
// OAuth-authenticated IMAP logins.
type xoauth2 struct {
	email string
	token string
}

var _ sasl.Client = (*xoauth2)(nil)

func (x *xoauth2) Start() (string, []byte, error) {
	resp := fmt.Sprintf("user=%s\x01auth=Bearer %s\x01\x01", x.email, x.token)
	return "XOAUTH2", []byte(resp), nil
}

func (x *xoauth2) Next(challenge []byte) ([]byte, error) {
	// On failure the server sends a base64 JSON blob as a challenge; an
	// empty response makes it finish with a tagged NO.
	return []byte{}, nil
}

// Dialer opens authenticated sessions against a fixed IMAP endpoint.
type Dialer struct {
	Server string
	Port   int
}

// Connect dials the endpoint and authenticates with XOAUTH2.
func (d *Dialer) Connect(email, accessToken string) (*Client, error) {
	return Connect(d.Server, d.Port, email, accessToken)
}

// Connect establishes an authenticated IMAP session.
func Connect(server string, port int, email, accessToken string) (*Client, error) {
	c, err := client.DialTLS(fmt.Sprintf("%s:%d", server, port), nil)
	if err != nil {
		log.Error().Err(err).Str("server", server).Int("port", port).Msg("imap dial failed")
		return nil, utils.ConnectionError("connection error", err)
	}

	if err := c.Authenticate(&xoauth2{email: email, token: accessToken}); err != nil {
		c.Logout()
		log.Error().Err(err).Str("email", email).Msg("imap authentication failed")
		return nil, utils.AuthRequiredError("authentication failed", err)
	}

	return &Client{client: c, email: email}, nil
}

// Close logs out and releases the connection.
func (c *Client) Close() error {
	return c.client.Logout()
}

// SelectFolder opens a mailbox folder and returns its status.
func (c *Client) SelectFolder(folder string, readOnly bool) (*imap.MailboxStatus, error) {
	status, err := c.client.Select(folder, readOnly)
	if err != nil {
		return nil, utils.FolderError(fmt.Sprintf("cannot open folder %s", folder), err)
	}

	return status, nil
}

// fetchWindow computes the sequence number range of a page counted from
// the end of the mailbox. The returned flag is false when the offset is
// past the oldest message.
func fetchWindow(total, limit, offset int) (start, end int, ok bool) {
	start = total - offset - limit + 1
	if start < 1 {
		start = 1
	}

	end = total - offset
	if end < 1 {
		end = 1
	}

	return start, end, start <= end
}

// FetchRange fetches a window of the most recent messages of a folder.
// The window is computed from the end of the mailbox: with offset 0 the
// newest limit messages are returned. The second return value is the total
// number of messages in the folder regardless of the window.
func (c *Client) FetchRange(folder string, limit, offset int) ([]Email, int, error) {
	status, err := c.SelectFolder(folder, true)
	if err != nil {
		return nil, 0, err
	}

	total := int(status.Messages)
	if total == 0 {
		return []Email{}, 0, nil
	}

	start, end, ok := fetchWindow(total, limit, offset)
	if !ok {
		return []Email{}, total, nil
	}

	seqSet := new(imap.SeqSet)
	seqSet.AddRange(uint32(start), uint32(end))

	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{
		imap.FetchEnvelope,
		imap.FetchFlags,
		imap.FetchUid,
		section.FetchItem(),
	}

	messages := make(chan *imap.Message, end-start+1)
	done := make(chan error, 1)
	go func() {
		done <- c.client.Fetch(seqSet, items, messages)
	}()

	var emails []Email
	for msg := range messages {
		emails = append(emails, normalize(msg, section))
	}

	if err := <-done; err != nil {
		return nil, 0, utils.ConnectionError("fetch error", err)
	}

	// The protocol range is ordered by sequence number; present newest
	// first by received time instead.
	sort.SliceStable(emails, func(i, j int) bool {
		ti, tj := emails[i].ReceivedAt, emails[j].ReceivedAt
		switch {
		case ti == nil:
			return false
		case tj == nil:
			return true
		default:
			return ti.After(*tj)
		}
	})

	if emails == nil {
		emails = []Email{}
	}

	return emails, total, nil
}

// FetchByUID fetches a single message of a folder by its IMAP UID.
func (c *Client) FetchByUID(folder string, uid uint32) (*Email, error) {
	if _, err := c.SelectFolder(folder, true); err != nil {
		return nil, err
	}

	seqSet := new(imap.SeqSet)
	seqSet.AddNum(uid)

	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{
		imap.FetchEnvelope,
		imap.FetchFlags,
		imap.FetchUid,
		section.FetchItem(),
	}

	messages := make(chan *imap.Message, 1)
	done := make(chan error, 1)
	go func() {
		done <- c.client.UidFetch(seqSet, items, messages)
	}()

	var msg *imap.Message
	for m := range messages {
		if msg == nil {
			msg = m
		}
	}

	if err := <-done; err != nil {
		return nil, utils.ConnectionError("fetch error", err)
	}

	if msg == nil {
		return nil, utils.NotFoundError(fmt.Sprintf("message %d not found", uid), nil)
	}

	email := normalize(msg, section)
	return &email, nil
}
