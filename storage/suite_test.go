package storage

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/suite"

	"mailview/models"
)

// baseStorageTestSuite opens a fresh in-memory database per test.
type baseStorageTestSuite struct {
	suite.Suite

	ctx context.Context
	db  *sqlx.DB
}

func (s *baseStorageTestSuite) SetupTest() {
	s.ctx = context.Background()

	db, err := OpenInMemory()
	s.Require().NoError(err)

	s.db = db
}

func (s *baseStorageTestSuite) TearDownTest() {
	s.Require().NoError(s.db.Close())
}

// seedAccount inserts a minimal account and returns its id.
func (s *baseStorageTestSuite) seedAccount(email, googleID string) int64 {
	result, err := s.db.ExecContext(s.ctx,
		`
			insert into "accounts" ( "email", "google_id", "access_token" )
			values ( ?, ?, 'token' ) ;
		`,
		email, googleID)
	s.Require().NoError(err)

	id, err := result.LastInsertId()
	s.Require().NoError(err)

	return id
}

// seedEmail inserts a cached message owned by the given account.
func (s *baseStorageTestSuite) seedEmail(accountID int64, email *models.Email) int64 {
	store := NewEmailStore(s.db)

	email.AccountID = accountID
	if email.Folder == "" {
		email.Folder = "INBOX"
	}

	s.Require().NoError(store.Upsert(s.ctx, email))
	s.Require().NotZero(email.ID)

	return email.ID
}

func timePtr(t time.Time) *time.Time {
	return &t
}
