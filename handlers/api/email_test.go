package api

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"mailview/mailbox"
	"mailview/models"
)

func TestEmailHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(EmailHandlerTestSuite))
}

type EmailHandlerTestSuite struct {
	baseHandlerTestSuite
}

func (s *EmailHandlerTestSuite) TestSync() {
	date := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s.session.emails = []mailbox.Email{
		{UID: 101, MessageID: "<m1@example.com>", Subject: "one", ReceivedAt: &date},
		{UID: 102, MessageID: "<m2@example.com>", Subject: "two", ReceivedAt: &date},
	}
	s.session.total = 80

	status, body := s.request("POST", "/api/emails/sync", `{"folder":"INBOX","limit":10}`)

	s.Require().Equal(200, status)
	s.Assert().Equal("Emails synced successfully", body["message"])
	s.Assert().EqualValues(2, body["synced"])
	s.Assert().EqualValues(80, body["total"])
	s.Assert().NotContains(body, "failures")

	// The fetched messages are now served from the cache.
	status, body = s.request("GET", "/api/emails/", "")
	s.Require().Equal(200, status)
	s.Assert().Len(body["emails"], 2)
}

func (s *EmailHandlerTestSuite) TestSyncEmptyBody() {
	status, body := s.request("POST", "/api/emails/sync", "")

	s.Require().Equal(200, status)
	s.Assert().EqualValues(0, body["synced"])
}

func (s *EmailHandlerTestSuite) TestSyncLimitTooLarge() {
	status, _ := s.request("POST", "/api/emails/sync", `{"limit":501}`)

	s.Assert().Equal(400, status)
}

func (s *EmailHandlerTestSuite) TestListPagination() {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		at := base.Add(time.Duration(i) * time.Hour)
		s.seedEmail(&models.Email{
			MessageID:  fmt.Sprintf("<m%d@example.com>", i),
			Subject:    fmt.Sprintf("message %d", i),
			ReceivedAt: &at,
		})
	}

	status, body := s.request("GET", "/api/emails/?page=2&limit=2", "")
	s.Require().Equal(200, status)

	s.Assert().Len(body["emails"], 2)

	pagination := body["pagination"].(map[string]interface{})
	s.Assert().EqualValues(5, pagination["total"])
	s.Assert().EqualValues(2, pagination["page"])
	s.Assert().EqualValues(2, pagination["limit"])
	s.Assert().EqualValues(3, pagination["totalPages"])
	s.Assert().Equal(true, pagination["hasMore"])
}

func (s *EmailHandlerTestSuite) TestListEmptyFolder() {
	status, body := s.request("GET", "/api/emails/?folder=Archive", "")

	s.Require().Equal(200, status)
	s.Assert().Empty(body["emails"])

	pagination := body["pagination"].(map[string]interface{})
	s.Assert().EqualValues(0, pagination["total"])
	s.Assert().EqualValues(0, pagination["totalPages"])
	s.Assert().Equal(false, pagination["hasMore"])
}

func (s *EmailHandlerTestSuite) TestListInvalidLimit() {
	status, _ := s.request("GET", "/api/emails/?limit=101", "")
	s.Assert().Equal(400, status)

	status, _ = s.request("GET", "/api/emails/?page=0", "")
	s.Assert().Equal(400, status)
}

func (s *EmailHandlerTestSuite) TestSearch() {
	s.seedEmail(&models.Email{MessageID: "<m1@example.com>", Subject: "Quarterly report"})
	s.seedEmail(&models.Email{MessageID: "<m2@example.com>", Subject: "Lunch"})

	status, body := s.request("GET", "/api/emails/search?q=report", "")

	s.Require().Equal(200, status)
	s.Assert().Len(body["emails"], 1)
	s.Assert().Equal("report", body["query"])
}

func (s *EmailHandlerTestSuite) TestSearchQueryTooShort() {
	status, _ := s.request("GET", "/api/emails/search?q=a", "")
	s.Assert().Equal(400, status)

	// Whitespace does not count towards the minimum length.
	status, _ = s.request("GET", "/api/emails/search?q=++a++", "")
	s.Assert().Equal(400, status)
}

func (s *EmailHandlerTestSuite) TestFolders() {
	s.session.folders = []mailbox.Folder{
		{Name: "INBOX", FullName: "INBOX"},
		{Name: "Receipts", FullName: "Archive/Receipts", Delimiter: "/"},
	}

	status, body := s.request("GET", "/api/emails/folders", "")

	s.Require().Equal(200, status)
	s.Assert().Len(body["folders"], 2)
}

func (s *EmailHandlerTestSuite) TestStats() {
	s.seedEmail(&models.Email{MessageID: "<m1@example.com>", Folder: "INBOX"})
	s.seedEmail(&models.Email{MessageID: "<m2@example.com>", Folder: "INBOX", IsRead: true})
	s.seedEmail(&models.Email{MessageID: "<m3@example.com>", Folder: "Archive"})

	status, body := s.request("GET", "/api/emails/stats", "")

	s.Require().Equal(200, status)
	s.Assert().Len(body["stats"], 2)
}

func (s *EmailHandlerTestSuite) TestGetByIDMarksRead() {
	id := s.seedEmail(&models.Email{MessageID: "<m1@example.com>", Subject: "Hello"})

	status, body := s.request("GET", fmt.Sprintf("/api/emails/%d", id), "")

	s.Require().Equal(200, status)
	email := body["email"].(map[string]interface{})
	s.Assert().Equal("Hello", email["subject"])
	s.Assert().Equal(true, email["is_read"])

	stored, err := s.emails.GetByID(s.ctx, s.accountID, id)
	s.Require().NoError(err)
	s.Assert().True(stored.IsRead)
}

func (s *EmailHandlerTestSuite) TestGetByIDNotFound() {
	status, _ := s.request("GET", "/api/emails/404", "")
	s.Assert().Equal(404, status)
}

func (s *EmailHandlerTestSuite) TestGetByIDInvalid() {
	status, _ := s.request("GET", "/api/emails/abc", "")
	s.Assert().Equal(400, status)
}

func (s *EmailHandlerTestSuite) TestFresh() {
	uid := int64(101)
	id := s.seedEmail(&models.Email{MessageID: "<m1@example.com>", UID: &uid})

	s.session.emails = []mailbox.Email{
		{UID: 101, MessageID: "<m1@example.com>", Subject: "live copy"},
	}

	status, body := s.request("GET", fmt.Sprintf("/api/emails/%d/fresh", id), "")

	s.Require().Equal(200, status)
	email := body["email"].(map[string]interface{})
	s.Assert().Equal("live copy", email["subject"])
}

func (s *EmailHandlerTestSuite) TestFreshWithoutUID() {
	id := s.seedEmail(&models.Email{MessageID: "<m1@example.com>"})

	status, body := s.request("GET", fmt.Sprintf("/api/emails/%d/fresh", id), "")

	s.Require().Equal(400, status)
	s.Assert().Equal("Cannot fetch fresh - no UID available", body["message"])
}

func (s *EmailHandlerTestSuite) TestMarkRead() {
	id := s.seedEmail(&models.Email{MessageID: "<m1@example.com>"})

	status, body := s.request("PATCH", fmt.Sprintf("/api/emails/%d/read", id), "")

	s.Require().Equal(200, status)
	s.Assert().Equal("Email marked as read", body["message"])
}

func (s *EmailHandlerTestSuite) TestMarkReadNotFound() {
	status, _ := s.request("PATCH", "/api/emails/404/read", "")
	s.Assert().Equal(404, status)
}

func (s *EmailHandlerTestSuite) TestToggleStar() {
	id := s.seedEmail(&models.Email{MessageID: "<m1@example.com>"})

	status, body := s.request("PATCH", fmt.Sprintf("/api/emails/%d/star", id), "")
	s.Require().Equal(200, status)
	s.Assert().Equal("Star status toggled", body["message"])
	s.Assert().Equal(true, body["is_starred"])

	status, body = s.request("PATCH", fmt.Sprintf("/api/emails/%d/star", id), "")
	s.Require().Equal(200, status)
	s.Assert().Equal(false, body["is_starred"])
}
