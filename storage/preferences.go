package storage

import (
	"context"

	"github.com/jmoiron/sqlx"

	"mailview/models"
)

// PreferenceStore persists per-account settings.
type PreferenceStore struct {
	db *sqlx.DB
}

// NewPreferenceStore creates a new PreferenceStore.
func NewPreferenceStore(db *sqlx.DB) *PreferenceStore {
	return &PreferenceStore{db: db}
}

const preferenceColumns = `
	"id", "account_id", "emails_per_page", "default_folder", "theme",
	"notifications_enabled", "auto_sync_interval", "created_at", "updated_at"
`

// GetOrCreate returns the account's preference row, creating it with
// defaults when it does not exist yet.
func (s *PreferenceStore) GetOrCreate(ctx context.Context, accountID int64) (*models.Preference, error) {
	pref, err := s.get(ctx, accountID)
	if err == nil {
		return pref, nil
	}
	if !IsErrNoRows(err) {
		return nil, err
	}

	const insert = `
		insert into "preferences" ( "account_id" ) values ( ? )
		on conflict ( "account_id" ) do nothing ;
	`

	if _, err := s.db.ExecContext(ctx, insert, accountID); err != nil {
		return nil, err
	}

	return s.get(ctx, accountID)
}

// Update applies a partial change and returns the updated row.
func (s *PreferenceStore) Update(ctx context.Context, accountID int64, change models.PreferenceUpdate) (*models.Preference, error) {
	pref, err := s.GetOrCreate(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if change.EmailsPerPage != nil {
		pref.EmailsPerPage = *change.EmailsPerPage
	}
	if change.DefaultFolder != nil {
		pref.DefaultFolder = *change.DefaultFolder
	}
	if change.Theme != nil {
		pref.Theme = *change.Theme
	}
	if change.NotificationsEnabled != nil {
		pref.NotificationsEnabled = *change.NotificationsEnabled
	}
	if change.AutoSyncInterval != nil {
		pref.AutoSyncInterval = *change.AutoSyncInterval
	}

	const update = `
		update "preferences"
		set "emails_per_page" = :emails_per_page ,
		    "default_folder" = :default_folder ,
		    "theme" = :theme ,
		    "notifications_enabled" = :notifications_enabled ,
		    "auto_sync_interval" = :auto_sync_interval ,
		    "updated_at" = current_timestamp
		where "account_id" = :account_id ;
	`

	if _, err := sqlx.NamedExecContext(ctx, s.db, update, pref); err != nil {
		return nil, err
	}

	return s.get(ctx, accountID)
}

func (s *PreferenceStore) get(ctx context.Context, accountID int64) (*models.Preference, error) {
	const query = `
		select ` + preferenceColumns + `
		from "preferences"
		where "account_id" = ? ;
	`

	var pref models.Preference
	if err := s.db.GetContext(ctx, &pref, query, accountID); err != nil {
		return nil, err
	}

	return &pref, nil
}
