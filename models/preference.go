package models

import "time"

// Preference holds per-account display and sync settings. Exactly zero or
// one row exists per account; it is created lazily on first access.
type Preference struct {
	ID                   int64     `db:"id" json:"id"`
	AccountID            int64     `db:"account_id" json:"-"`
	EmailsPerPage        int       `db:"emails_per_page" json:"emails_per_page"`
	DefaultFolder        string    `db:"default_folder" json:"default_folder"`
	Theme                string    `db:"theme" json:"theme"` // light, dark or system
	NotificationsEnabled bool      `db:"notifications_enabled" json:"notifications_enabled"`
	AutoSyncInterval     int       `db:"auto_sync_interval" json:"auto_sync_interval"` // minutes
	CreatedAt            time.Time `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time `db:"updated_at" json:"updated_at"`
}

// PreferenceUpdate carries a partial preferences change. Nil fields are
// left untouched.
type PreferenceUpdate struct {
	EmailsPerPage        *int    `json:"emails_per_page"`
	DefaultFolder        *string `json:"default_folder"`
	Theme                *string `json:"theme"`
	NotificationsEnabled *bool   `json:"notifications_enabled"`
	AutoSyncInterval     *int    `json:"auto_sync_interval"`
}
