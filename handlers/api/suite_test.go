package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/suite"
	"golang.org/x/oauth2"

	"mailview/mailbox"
	"mailview/middleware"
	"mailview/models"
	"mailview/storage"
	"mailview/syncer"
	"mailview/utils"
)

// fakeSession stands in for a live IMAP session.
type fakeSession struct {
	emails  []mailbox.Email
	folders []mailbox.Folder
	total   int
	dialErr error
}

func (f *fakeSession) FetchRange(folder string, limit, offset int) ([]mailbox.Email, int, error) {
	return f.emails, f.total, nil
}

func (f *fakeSession) FetchByUID(folder string, uid uint32) (*mailbox.Email, error) {
	for i := range f.emails {
		if f.emails[i].UID == uid {
			return &f.emails[i], nil
		}
	}
	return nil, utils.NotFoundError("message not found", nil)
}

func (f *fakeSession) ListFolders() ([]mailbox.Folder, error) {
	return f.folders, nil
}

func (f *fakeSession) Close() error {
	return nil
}

type staticRefresher struct{}

func (staticRefresher) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	return &oauth2.Token{
		AccessToken: "refreshed",
		Expiry:      time.Now().Add(time.Hour),
	}, nil
}

// baseHandlerTestSuite wires the handlers onto a fiber app backed by an
// in-memory database and a fake mailbox session.
type baseHandlerTestSuite struct {
	suite.Suite

	ctx context.Context
	db  *sqlx.DB
	app *fiber.App

	accounts *storage.AccountStore
	emails   *storage.EmailStore
	prefs    *storage.PreferenceStore
	session  *fakeSession

	accountID int64
}

func (s *baseHandlerTestSuite) SetupTest() {
	s.ctx = context.Background()

	db, err := storage.OpenInMemory()
	s.Require().NoError(err)

	s.db = db
	s.accounts = storage.NewAccountStore(db)
	s.emails = storage.NewEmailStore(db)
	s.prefs = storage.NewPreferenceStore(db)
	s.session = &fakeSession{}

	account, _, err := s.accounts.FindOrCreateByGoogleID(s.ctx, &models.Account{
		Email:       "someone@example.com",
		Name:        "Someone",
		GoogleID:    "google-1",
		AccessToken: "access",
	})
	s.Require().NoError(err)
	s.accountID = account.ID

	expiry := time.Now().Add(time.Hour)
	s.Require().NoError(s.accounts.UpdateTokens(s.ctx, s.accountID, "access", "refresh", &expiry))

	sync := syncer.New(s.accounts, s.emails,
		func(email, accessToken string) (syncer.Mailbox, error) {
			if s.session.dialErr != nil {
				return nil, s.session.dialErr
			}
			return s.session, nil
		},
		staticRefresher{})

	emailHandler := NewEmailHandler(s.emails, sync)
	userHandler := NewUserHandler(s.accounts, s.emails, s.prefs)

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})

	// Stands in for the session token middleware.
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(middleware.AccountIDKey, s.accountID)
		return c.Next()
	})

	app.Post("/api/emails/sync", emailHandler.Sync)
	app.Get("/api/emails/", emailHandler.List)
	app.Get("/api/emails/search", emailHandler.Search)
	app.Get("/api/emails/folders", emailHandler.Folders)
	app.Get("/api/emails/stats", emailHandler.Stats)
	app.Get("/api/emails/:id", emailHandler.GetByID)
	app.Get("/api/emails/:id/fresh", emailHandler.Fresh)
	app.Patch("/api/emails/:id/read", emailHandler.MarkRead)
	app.Patch("/api/emails/:id/star", emailHandler.ToggleStar)

	app.Get("/api/users/profile", userHandler.Profile)
	app.Get("/api/users/preferences", userHandler.GetPreferences)
	app.Put("/api/users/preferences", userHandler.UpdatePreferences)
	app.Get("/api/users/stats", userHandler.Stats)
	app.Delete("/api/users/account", userHandler.DeleteAccount)

	s.app = app
}

func (s *baseHandlerTestSuite) TearDownTest() {
	s.Require().NoError(s.db.Close())
}

// request performs one in-process request and decodes the JSON body.
func (s *baseHandlerTestSuite) request(method, target, body string) (int, map[string]interface{}) {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}

	resp, err := s.app.Test(req, -1)
	s.Require().NoError(err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)

	var decoded map[string]interface{}
	if len(raw) > 0 {
		s.Require().NoError(json.Unmarshal(raw, &decoded))
	}

	return resp.StatusCode, decoded
}

func (s *baseHandlerTestSuite) seedEmail(email *models.Email) int64 {
	email.AccountID = s.accountID
	if email.Folder == "" {
		email.Folder = "INBOX"
	}

	s.Require().NoError(s.emails.Upsert(s.ctx, email))
	return email.ID
}
