package api

import (
	"github.com/gofiber/fiber/v2"

	"mailview/middleware"
	"mailview/models"
	"mailview/storage"
	"mailview/utils"
)

// UserHandler serves the account profile, preferences and aggregate stats.
type UserHandler struct {
	accounts *storage.AccountStore
	emails   *storage.EmailStore
	prefs    *storage.PreferenceStore
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(accounts *storage.AccountStore, emails *storage.EmailStore, prefs *storage.PreferenceStore) *UserHandler {
	return &UserHandler{
		accounts: accounts,
		emails:   emails,
		prefs:    prefs,
	}
}

// Profile returns the authenticated account.
func (h *UserHandler) Profile(c *fiber.Ctx) error {
	account, err := h.accounts.GetByID(c.Context(), middleware.AccountID(c))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"user": account,
	})
}

// GetPreferences returns the account preferences, creating the default row
// on first access.
func (h *UserHandler) GetPreferences(c *fiber.Ctx) error {
	prefs, err := h.prefs.GetOrCreate(c.Context(), middleware.AccountID(c))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"preferences": prefs,
	})
}

// UpdatePreferences applies a partial preferences change. Absent fields keep
// their stored values.
func (h *UserHandler) UpdatePreferences(c *fiber.Ctx) error {
	var change models.PreferenceUpdate
	if err := c.BodyParser(&change); err != nil {
		return utils.BadRequestError("Invalid request body", err)
	}

	if err := validatePreferences(&change); err != nil {
		return err
	}

	prefs, err := h.prefs.Update(c.Context(), middleware.AccountID(c), change)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message":     "Preferences updated successfully",
		"preferences": prefs,
	})
}

func validatePreferences(change *models.PreferenceUpdate) error {
	if v := change.EmailsPerPage; v != nil && (*v < 10 || *v > 100) {
		return utils.ValidationError("emails_per_page must be between 10 and 100", nil)
	}

	if v := change.Theme; v != nil {
		switch *v {
		case "light", "dark", "system":
		default:
			return utils.ValidationError("theme must be one of light, dark or system", nil)
		}
	}

	if v := change.AutoSyncInterval; v != nil && (*v < 1 || *v > 60) {
		return utils.ValidationError("auto_sync_interval must be between 1 and 60 minutes", nil)
	}

	if v := change.DefaultFolder; v != nil && (len(*v) == 0 || len(*v) > 100) {
		return utils.ValidationError("default_folder must be between 1 and 100 characters", nil)
	}

	return nil
}

// Stats returns account-wide email counters and the last sync time.
func (h *UserHandler) Stats(c *fiber.Ctx) error {
	accountID := middleware.AccountID(c)

	account, err := h.accounts.GetByID(c.Context(), accountID)
	if err != nil {
		return err
	}

	total, unread, starred, err := h.emails.CountStats(c.Context(), accountID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"stats": models.AccountStats{
			TotalEmails:   total,
			UnreadEmails:  unread,
			StarredEmails: starred,
			LastSync:      account.LastSync,
		},
	})
}

// DeleteAccount removes the account and all its cached data.
func (h *UserHandler) DeleteAccount(c *fiber.Ctx) error {
	if err := h.accounts.Delete(c.Context(), middleware.AccountID(c)); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message": "Account deleted successfully",
	})
}
