package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Email is a cached copy of one remote mailbox entry.
type Email struct {
	ID             int64      `db:"id" json:"id"`
	AccountID      int64      `db:"account_id" json:"-"`
	MessageID      string     `db:"message_id" json:"message_id"`
	UID            *int64     `db:"uid" json:"uid"` // IMAP UID, nil until synced via IMAP
	ThreadID       *string    `db:"thread_id" json:"thread_id,omitempty"`
	Subject        string     `db:"subject" json:"subject"`
	SenderEmail    string     `db:"sender_email" json:"sender_email"`
	SenderName     string     `db:"sender_name" json:"sender_name"`
	RecipientEmail string     `db:"recipient_email" json:"recipient_email"`
	Snippet        string     `db:"snippet" json:"snippet"`
	BodyText       string     `db:"body_text" json:"body_text,omitempty"`
	BodyHTML       string     `db:"body_html" json:"body_html,omitempty"`
	ReceivedAt     *time.Time `db:"received_at" json:"received_at"`
	IsRead         bool       `db:"is_read" json:"is_read"`
	IsStarred      bool       `db:"is_starred" json:"is_starred"`
	Labels         StringList `db:"labels" json:"labels"`
	HasAttachments bool       `db:"has_attachments" json:"has_attachments"`
	Folder         string     `db:"folder" json:"folder"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// StringList is an ordered list of strings stored as a JSON text column.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}

	raw, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}

	return string(raw), nil
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case string:
		return json.Unmarshal([]byte(v), l)
	case []byte:
		return json.Unmarshal(v, l)
	default:
		return fmt.Errorf("cannot scan %T into StringList", src)
	}
}

// FolderStat is one row of the per-folder aggregation.
type FolderStat struct {
	Folder string `db:"folder" json:"folder"`
	Total  int64  `db:"total" json:"total"`
	Unread int64  `db:"unread" json:"unread"`
}
