package storage

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"mailview/models"
	"mailview/utils"
)

// AccountStore persists accounts and their OAuth tokens.
type AccountStore struct {
	db *sqlx.DB
}

// NewAccountStore creates a new AccountStore.
func NewAccountStore(db *sqlx.DB) *AccountStore {
	return &AccountStore{db: db}
}

const accountColumns = `
	"id", "email", "name", "picture", "google_id",
	"access_token", "refresh_token", "token_expiry",
	"last_sync", "is_active", "created_at", "updated_at"
`

// GetByID returns one account or a not-found error.
func (s *AccountStore) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	const query = `
		select ` + accountColumns + `
		from "accounts"
		where "id" = ? ;
	`

	var account models.Account
	if err := s.db.GetContext(ctx, &account, query, id); err != nil {
		if IsErrNoRows(err) {
			return nil, utils.NotFoundError("account not found", err)
		}
		return nil, err
	}

	return &account, nil
}

// GetByGoogleID returns the account linked to a Google profile id.
func (s *AccountStore) GetByGoogleID(ctx context.Context, googleID string) (*models.Account, error) {
	const query = `
		select ` + accountColumns + `
		from "accounts"
		where "google_id" = ? ;
	`

	var account models.Account
	if err := s.db.GetContext(ctx, &account, query, googleID); err != nil {
		if IsErrNoRows(err) {
			return nil, utils.NotFoundError("account not found", err)
		}
		return nil, err
	}

	return &account, nil
}

// FindOrCreateByGoogleID looks up the account by its Google profile id and
// creates it with the given initial values when missing. The returned flag
// reports whether a new row was created.
func (s *AccountStore) FindOrCreateByGoogleID(ctx context.Context, account *models.Account) (*models.Account, bool, error) {
	existing, err := s.GetByGoogleID(ctx, account.GoogleID)
	if err == nil {
		return existing, false, nil
	}
	if utils.KindOf(err) != utils.KindNotFound {
		return nil, false, err
	}

	const query = `
		insert into "accounts" (
			"email", "name", "picture", "google_id",
			"access_token", "refresh_token", "token_expiry"
		) values (
			:email, :name, :picture, :google_id,
			:access_token, :refresh_token, :token_expiry
		) ;
	`

	result, err := sqlx.NamedExecContext(ctx, s.db, query, account)
	if err != nil {
		if IsErrUnique(err) {
			return nil, false, utils.ConflictError("account already exists", err)
		}
		return nil, false, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, false, err
	}

	created, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}

	return created, true, nil
}

// UpdateTokens persists a fresh set of OAuth credentials. An empty refresh
// token keeps the stored one, since Google only returns it on first consent.
func (s *AccountStore) UpdateTokens(ctx context.Context, id int64, accessToken, refreshToken string, expiry *time.Time) error {
	const query = `
		update "accounts"
		set "access_token" = ? ,
		    "refresh_token" = case when ? = '' then "refresh_token" else ? end ,
		    "token_expiry" = coalesce(?, "token_expiry") ,
		    "updated_at" = current_timestamp
		where "id" = ? ;
	`

	result, err := s.db.ExecContext(ctx, query, accessToken, refreshToken, refreshToken, expiry, id)
	if err != nil {
		return err
	}

	return ensureRowsAffected(result)
}

// UpdateProfile refreshes name and picture from the provider profile.
func (s *AccountStore) UpdateProfile(ctx context.Context, id int64, name, picture string) error {
	const query = `
		update "accounts"
		set "name" = ? , "picture" = ? , "updated_at" = current_timestamp
		where "id" = ? ;
	`

	result, err := s.db.ExecContext(ctx, query, name, picture, id)
	if err != nil {
		return err
	}

	return ensureRowsAffected(result)
}

// UpdateLastSync records the time of the latest completed sync pass.
func (s *AccountStore) UpdateLastSync(ctx context.Context, id int64, t time.Time) error {
	const query = `
		update "accounts"
		set "last_sync" = ? , "updated_at" = current_timestamp
		where "id" = ? ;
	`

	result, err := s.db.ExecContext(ctx, query, t, id)
	if err != nil {
		return err
	}

	return ensureRowsAffected(result)
}

// Delete removes an account together with its cached emails and
// preferences. The cascade is applied here, not by the schema.
func (s *AccountStore) Delete(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, query := range []string{
		`delete from "emails" where "account_id" = ? ;`,
		`delete from "preferences" where "account_id" = ? ;`,
		`delete from "accounts" where "id" = ? ;`,
	} {
		if _, err := tx.ExecContext(ctx, query, id); err != nil {
			return err
		}
	}

	return tx.Commit()
}
