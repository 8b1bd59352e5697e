package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"mailview/auth"
	"mailview/storage"
	"mailview/utils"
)

// AccountIDKey is the locals key the authenticated account id is stored
// under.
const AccountIDKey = "accountID"

// Authenticate verifies the bearer session token and checks the account
// still exists and is active.
func Authenticate(secret string, accounts *storage.AccountStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)

		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":   "Authentication required",
				"message": "Please provide a valid token",
			})
		}

		token := strings.TrimPrefix(header, "Bearer ")

		accountID, err := auth.ParseToken(token, secret)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":   "Invalid token",
				"message": err.Error(),
			})
		}

		account, err := accounts.GetByID(c.Context(), accountID)
		if err != nil {
			if utils.KindOf(err) == utils.KindNotFound {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error":   "User not found",
					"message": "The user associated with this token no longer exists",
				})
			}
			return err
		}

		if !account.IsActive {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":   "Account disabled",
				"message": "This account has been disabled",
			})
		}

		c.Locals(AccountIDKey, account.ID)

		return c.Next()
	}
}

// AccountID returns the authenticated account id set by Authenticate.
func AccountID(c *fiber.Ctx) int64 {
	id, _ := c.Locals(AccountIDKey).(int64)
	return id
}
