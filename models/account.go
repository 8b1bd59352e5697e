package models

import "time"

// Account represents one authenticated end user and their Gmail credentials.
type Account struct {
	ID           int64      `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	Name         string     `db:"name" json:"name"`
	Picture      string     `db:"picture" json:"picture"`
	GoogleID     string     `db:"google_id" json:"-"`
	AccessToken  string     `db:"access_token" json:"-"` // Never expose in JSON
	RefreshToken string     `db:"refresh_token" json:"-"`
	TokenExpiry  *time.Time `db:"token_expiry" json:"-"`
	LastSync     *time.Time `db:"last_sync" json:"last_sync"`
	IsActive     bool       `db:"is_active" json:"is_active"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// IsTokenExpired reports whether the stored access token is past its expiry.
// An account without a known expiry is treated as expired.
func (a *Account) IsTokenExpired() bool {
	if a.TokenExpiry == nil {
		return true
	}
	return !time.Now().Before(*a.TokenExpiry)
}

// AccountStats summarizes the cached mailbox of one account.
type AccountStats struct {
	TotalEmails   int64      `json:"totalEmails"`
	UnreadEmails  int64      `json:"unreadEmails"`
	StarredEmails int64      `json:"starredEmails"`
	LastSync      *time.Time `json:"lastSync"`
}
