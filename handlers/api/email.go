package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"mailview/middleware"
	"mailview/models"
	"mailview/storage"
	"mailview/syncer"
	"mailview/utils"
)

// EmailHandler serves the cached mailbox: sync, listing, search and the
// single-message operations.
type EmailHandler struct {
	emails *storage.EmailStore
	sync   *syncer.Syncer
}

// NewEmailHandler creates a new EmailHandler.
func NewEmailHandler(emails *storage.EmailStore, sync *syncer.Syncer) *EmailHandler {
	return &EmailHandler{
		emails: emails,
		sync:   sync,
	}
}

// SyncRequest is the body of POST /api/emails/sync.
type SyncRequest struct {
	Folder string `json:"folder"`
	Limit  int    `json:"limit"`
}

// Sync triggers one sync pass. Partial failures are reported, not fatal.
func (h *EmailHandler) Sync(c *fiber.Ctx) error {
	var req SyncRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return utils.BadRequestError("Invalid request body", err)
	}

	if len(req.Folder) > 100 {
		return utils.ValidationError("Folder name too long", nil)
	}

	if req.Limit < 0 || req.Limit > 500 {
		return utils.ValidationError("Sync limit must be between 1 and 500", nil)
	}

	report, err := h.sync.Sync(c.Context(), middleware.AccountID(c), req.Folder, req.Limit)
	if err != nil {
		return err
	}

	resp := fiber.Map{
		"message": "Emails synced successfully",
		"synced":  report.Synced,
		"total":   report.Total,
	}
	if len(report.Failures) > 0 {
		resp["failures"] = report.Failures
	}

	return c.JSON(resp)
}

// List returns one page of a folder from the local cache.
func (h *EmailHandler) List(c *fiber.Ctx) error {
	page, err := queryInt(c, "page", 1, 1, 1<<30)
	if err != nil {
		return err
	}

	limit, err := queryInt(c, "limit", 20, 1, 100)
	if err != nil {
		return err
	}

	folder := c.Query("folder", "INBOX")
	sortBy := c.Query("sortBy", "received_at")
	sortOrder := c.Query("sortOrder", "DESC")

	emails, total, err := h.emails.ListByFolder(c.Context(), middleware.AccountID(c), page, limit, folder, sortBy, sortOrder)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"emails":     emails,
		"pagination": models.NewPagination(total, page, limit),
	})
}

// Search returns one page of substring matches from the local cache.
func (h *EmailHandler) Search(c *fiber.Ctx) error {
	q := strings.TrimSpace(c.Query("q"))
	if len(q) < 2 || len(q) > 200 {
		return utils.ValidationError("Search query must be between 2 and 200 characters", nil)
	}

	page, err := queryInt(c, "page", 1, 1, 1<<30)
	if err != nil {
		return err
	}

	limit, err := queryInt(c, "limit", 20, 1, 100)
	if err != nil {
		return err
	}

	emails, total, err := h.emails.Search(c.Context(), middleware.AccountID(c), q, page, limit)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"emails":     emails,
		"pagination": models.NewPagination(total, page, limit),
		"query":      q,
	})
}

// Folders lists the live folder hierarchy from the remote mailbox.
func (h *EmailHandler) Folders(c *fiber.Ctx) error {
	folders, err := h.sync.ListFolders(c.Context(), middleware.AccountID(c))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"folders": folders,
	})
}

// Stats returns per-folder total and unread counts.
func (h *EmailHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.emails.FolderStats(c.Context(), middleware.AccountID(c))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"stats": stats,
	})
}

// GetByID returns one cached message and marks it read.
func (h *EmailHandler) GetByID(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	accountID := middleware.AccountID(c)

	email, err := h.emails.GetByID(c.Context(), accountID, id)
	if err != nil {
		return err
	}

	// Opening a message marks it read.
	if _, err := h.emails.MarkRead(c.Context(), accountID, id); err != nil {
		return err
	}
	email.IsRead = true

	return c.JSON(fiber.Map{
		"email": email,
	})
}

// Fresh re-fetches one message live from the remote mailbox, bypassing the
// local cache.
func (h *EmailHandler) Fresh(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	accountID := middleware.AccountID(c)

	cached, err := h.emails.GetByID(c.Context(), accountID, id)
	if err != nil {
		return err
	}

	if cached.UID == nil {
		return utils.BadRequestError("Cannot fetch fresh - no UID available", nil)
	}

	email, err := h.sync.FetchFresh(c.Context(), accountID, uint32(*cached.UID), cached.Folder)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"email": email,
	})
}

// MarkRead sets the read flag of one message.
func (h *EmailHandler) MarkRead(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	updated, err := h.emails.MarkRead(c.Context(), middleware.AccountID(c), id)
	if err != nil {
		return err
	}

	if !updated {
		return utils.NotFoundError("Email not found", nil)
	}

	return c.JSON(fiber.Map{
		"message": "Email marked as read",
	})
}

// ToggleStar flips the starred flag of one message.
func (h *EmailHandler) ToggleStar(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	email, err := h.emails.ToggleStar(c.Context(), middleware.AccountID(c), id)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message":    "Star status toggled",
		"is_starred": email.IsStarred,
	})
}
