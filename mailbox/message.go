package mailbox

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/emersion/go-imap"
	"golang.org/x/net/html"

	"mailview/log"
	"mailview/utils"
)

// snippetLength is the number of characters of body text kept for list
// previews.
const snippetLength = 200

// maxPartDepth bounds the multipart nesting the parser will follow.
const maxPartDepth = 10

// Email is one normalized message as fetched from the remote mailbox.
type Email struct {
	UID            uint32       `json:"uid"`
	SeqNum         uint32       `json:"-"`
	MessageID      string       `json:"message_id"`
	Subject        string       `json:"subject"`
	SenderName     string       `json:"sender_name"`
	SenderEmail    string       `json:"sender_email"`
	RecipientEmail string       `json:"recipient_email"`
	ReceivedAt     *time.Time   `json:"received_at"`
	BodyText       string       `json:"body_text"`
	BodyHTML       string       `json:"body_html"`
	Snippet        string       `json:"snippet"`
	IsRead         bool         `json:"is_read"`
	IsStarred      bool         `json:"is_starred"`
	HasAttachments bool         `json:"has_attachments"`
	Attachments    []Attachment `json:"attachments,omitempty"`
}

// Attachment describes an attachment part. Content is not retained.
type Attachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Size        int    `json:"size"`
}

// normalize turns a raw fetched message into the canonical Email shape.
// Body parse failures degrade to a raw-byte snippet and are never fatal.
func normalize(msg *imap.Message, section *imap.BodySectionName) Email {
	email := Email{UID: msg.Uid, SeqNum: msg.SeqNum}

	for _, flag := range msg.Flags {
		switch flag {
		case imap.SeenFlag:
			email.IsRead = true
		case imap.FlaggedFlag:
			email.IsStarred = true
		}
	}

	if env := msg.Envelope; env != nil {
		email.MessageID = env.MessageId
		email.Subject = env.Subject

		if !env.Date.IsZero() {
			date := env.Date
			email.ReceivedAt = &date
		}

		if len(env.From) > 0 && env.From[0] != nil {
			email.SenderName = env.From[0].PersonalName
			email.SenderEmail = env.From[0].Address()
		}

		if len(env.To) > 0 && env.To[0] != nil {
			email.RecipientEmail = env.To[0].Address()
		}
	}

	if email.MessageID == "" {
		// Synthetic fallback id. Not stable across syncs, which means a
		// message without a Message-ID header is cached anew every pass.
		email.MessageID = fmt.Sprintf("gen-%d-%d", time.Now().UnixMilli(), msg.SeqNum)
	}

	if email.Subject == "" {
		email.Subject = "(No Subject)"
	}

	var raw []byte
	if r := msg.GetBody(section); r != nil {
		raw, _ = io.ReadAll(r)
	}

	if len(raw) > 0 {
		if err := parseBody(raw, &email); err != nil {
			log.Warn().Err(err).Str("messageId", email.MessageID).Msg("body parse failed")
			email.Snippet = truncate(string(raw), snippetLength)
		}
	}

	if email.Snippet == "" {
		switch {
		case email.BodyText != "":
			email.Snippet = truncate(email.BodyText, snippetLength)
		case email.BodyHTML != "":
			email.Snippet = truncate(htmlToText(email.BodyHTML), snippetLength)
		}
	}

	email.HasAttachments = len(email.Attachments) > 0

	return email
}

func parseBody(raw []byte, email *Email) error {
	m, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		return utils.ParseError("malformed message", err)
	}

	walkPart(
		m.Header.Get("Content-Type"),
		m.Header.Get("Content-Transfer-Encoding"),
		m.Header.Get("Content-Disposition"),
		m.Body, email, 0)

	return nil
}

// walkPart descends into multipart containers and collects the first
// text/plain and text/html parts plus attachment metadata.
func walkPart(contentType, encoding, disposition string, r io.Reader, email *Email, depth int) {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = "text/plain"
	}

	if strings.HasPrefix(mediaType, "multipart/") && depth < maxPartDepth {
		mr := multipart.NewReader(r, params["boundary"])
		for {
			p, err := mr.NextPart()
			if err == io.EOF {
				break
			}
			if err != nil {
				log.Debug().Err(err).Msg("skipping unreadable part")
				break
			}

			walkPart(
				p.Header.Get("Content-Type"),
				p.Header.Get("Content-Transfer-Encoding"),
				p.Header.Get("Content-Disposition"),
				p, email, depth+1)
		}
		return
	}

	if disposition != "" {
		dispType, dispParams, dispErr := mime.ParseMediaType(disposition)
		if dispErr == nil && dispType == "attachment" {
			data, _ := io.ReadAll(decodeTransfer(r, encoding))

			filename := dispParams["filename"]
			if filename == "" {
				filename = "unknown"
			}

			email.Attachments = append(email.Attachments, Attachment{
				Filename:    filename,
				ContentType: mediaType,
				Size:        len(data),
			})
			return
		}
	}

	switch {
	case strings.HasPrefix(mediaType, "text/plain"):
		if email.BodyText == "" {
			data, _ := io.ReadAll(decodeTransfer(r, encoding))
			email.BodyText = string(data)
		}
	case strings.HasPrefix(mediaType, "text/html"):
		if email.BodyHTML == "" {
			data, _ := io.ReadAll(decodeTransfer(r, encoding))
			email.BodyHTML = utils.SanitizeHTML(string(data))
		}
	}
}

func decodeTransfer(r io.Reader, encoding string) io.Reader {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "base64":
		return base64.NewDecoder(base64.StdEncoding, r)
	case "quoted-printable":
		return quotedprintable.NewReader(r)
	default:
		return r
	}
}

// truncate limits s to n characters without splitting a rune.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)
var spacePattern = regexp.MustCompile(`\s+`)

// htmlToText is a crude HTML to text conversion used only for snippets.
func htmlToText(htmlStr string) string {
	text := strings.NewReplacer(
		"<br>", "\n",
		"<br/>", "\n",
		"<br />", "\n",
		"<p>", "\n",
		"</p>", "\n",
		"&nbsp;", " ",
	).Replace(htmlStr)

	text = tagPattern.ReplaceAllString(text, "")
	text = html.UnescapeString(text)
	text = spacePattern.ReplaceAllString(strings.TrimSpace(text), " ")

	return text
}
