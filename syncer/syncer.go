package syncer

import (
	"context"
	"time"

	"golang.org/x/oauth2"

	"mailview/log"
	"mailview/mailbox"
	"mailview/models"
	"mailview/utils"
)

const (
	// DefaultFolder is synced when no folder is requested.
	DefaultFolder = "INBOX"
	// DefaultLimit is the window size when none is requested.
	DefaultLimit = 50
)

// Mailbox is one authenticated session against the remote mailbox.
type Mailbox interface {
	FetchRange(folder string, limit, offset int) ([]mailbox.Email, int, error)
	FetchByUID(folder string, uid uint32) (*mailbox.Email, error)
	ListFolders() ([]mailbox.Folder, error)
	Close() error
}

// DialFunc opens a session for the given mailbox credentials.
type DialFunc func(email, accessToken string) (Mailbox, error)

// TokenRefresher renews an access token from a refresh token.
type TokenRefresher interface {
	Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error)
}

// AccountStore is the slice of the account storage the syncer needs.
type AccountStore interface {
	GetByID(ctx context.Context, id int64) (*models.Account, error)
	UpdateTokens(ctx context.Context, id int64, accessToken, refreshToken string, expiry *time.Time) error
	UpdateLastSync(ctx context.Context, id int64, t time.Time) error
}

// EmailStore is the slice of the email storage the syncer needs.
type EmailStore interface {
	Upsert(ctx context.Context, email *models.Email) error
}

// ItemFailure records one message that could not be cached.
type ItemFailure struct {
	MessageID string `json:"message_id"`
	Reason    string `json:"reason"`
}

// Report summarizes one sync pass. Synced counts successful upserts only;
// Total is the full remote folder size regardless of the window.
type Report struct {
	Synced   int           `json:"synced"`
	Total    int           `json:"total"`
	Failures []ItemFailure `json:"failures,omitempty"`
}

// Syncer coordinates sync passes for accounts. Collaborators are injected
// once at construction.
type Syncer struct {
	accounts  AccountStore
	emails    EmailStore
	dial      DialFunc
	refresher TokenRefresher
}

// New creates a Syncer.
func New(accounts AccountStore, emails EmailStore, dial DialFunc, refresher TokenRefresher) *Syncer {
	return &Syncer{
		accounts:  accounts,
		emails:    emails,
		dial:      dial,
		refresher: refresher,
	}
}

// Sync performs one best-effort sync pass for one account and folder. A
// failure upserting a single message is recorded in the report and does
// not abort the pass. The connection is closed on every path.
func (s *Syncer) Sync(ctx context.Context, accountID int64, folder string, limit int) (*Report, error) {
	if folder == "" {
		folder = DefaultFolder
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	account, err := s.readyAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	session, err := s.dial(account.Email, account.AccessToken)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	fetched, total, err := session.FetchRange(folder, limit, 0)
	if err != nil {
		return nil, err
	}

	report := &Report{Total: total}

	for i := range fetched {
		row := toRow(accountID, folder, &fetched[i])

		if err := s.emails.Upsert(ctx, row); err != nil {
			log.Error().
				Err(err).
				Int64("accountId", accountID).
				Str("messageId", row.MessageID).
				Msg("error syncing email")

			report.Failures = append(report.Failures, ItemFailure{
				MessageID: row.MessageID,
				Reason:    err.Error(),
			})
			continue
		}

		report.Synced++
	}

	if err := s.accounts.UpdateLastSync(ctx, accountID, time.Now()); err != nil {
		return nil, err
	}

	log.Info().
		Int64("accountId", accountID).
		Str("folder", folder).
		Int("synced", report.Synced).
		Int("total", report.Total).
		Msg("sync pass completed")

	return report, nil
}

// FetchFresh bypasses the local cache and fetches one message live from
// the remote mailbox. It does not update the store.
func (s *Syncer) FetchFresh(ctx context.Context, accountID int64, uid uint32, folder string) (*mailbox.Email, error) {
	if folder == "" {
		folder = DefaultFolder
	}

	account, err := s.readyAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	session, err := s.dial(account.Email, account.AccessToken)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	return session.FetchByUID(folder, uid)
}

// ListFolders fetches the live folder hierarchy for an account.
func (s *Syncer) ListFolders(ctx context.Context, accountID int64) ([]mailbox.Folder, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if account.AccessToken == "" {
		return nil, utils.AuthRequiredError("no access token available", nil)
	}

	session, err := s.dial(account.Email, account.AccessToken)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	return session.ListFolders()
}

// readyAccount resolves the account and makes sure its access token is
// usable, refreshing and persisting it first when expired. A fetch is
// never attempted with a known-expired token while a refresh token exists.
func (s *Syncer) readyAccount(ctx context.Context, accountID int64) (*models.Account, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if account.AccessToken == "" {
		return nil, utils.AuthRequiredError("no access token available", nil)
	}

	if account.IsTokenExpired() && account.RefreshToken != "" {
		token, err := s.refresher.Refresh(ctx, account.RefreshToken)
		if err != nil {
			return nil, err
		}

		var expiry *time.Time
		if !token.Expiry.IsZero() {
			expiry = &token.Expiry
		}

		if err := s.accounts.UpdateTokens(ctx, accountID, token.AccessToken, token.RefreshToken, expiry); err != nil {
			return nil, err
		}

		account.AccessToken = token.AccessToken
		if expiry != nil {
			account.TokenExpiry = expiry
		}
	}

	return account, nil
}

// toRow converts a fetched message into its cached representation.
func toRow(accountID int64, folder string, email *mailbox.Email) *models.Email {
	uid := int64(email.UID)

	return &models.Email{
		AccountID:      accountID,
		MessageID:      email.MessageID,
		UID:            &uid,
		Subject:        email.Subject,
		SenderEmail:    email.SenderEmail,
		SenderName:     email.SenderName,
		RecipientEmail: email.RecipientEmail,
		Snippet:        email.Snippet,
		BodyText:       email.BodyText,
		BodyHTML:       email.BodyHTML,
		ReceivedAt:     email.ReceivedAt,
		IsRead:         email.IsRead,
		IsStarred:      email.IsStarred,
		HasAttachments: email.HasAttachments,
		Folder:         folder,
	}
}
