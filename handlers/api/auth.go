package api

import (
	"fmt"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"

	"mailview/auth"
	"mailview/config"
	"mailview/log"
	"mailview/middleware"
	"mailview/models"
	"mailview/storage"
	"mailview/utils"
)

// AuthHandler serves the OAuth login flow and session endpoints.
type AuthHandler struct {
	config   *config.Config
	google   *auth.GoogleAuth
	accounts *storage.AccountStore
	prefs    *storage.PreferenceStore
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(cfg *config.Config, google *auth.GoogleAuth, accounts *storage.AccountStore, prefs *storage.PreferenceStore) *AuthHandler {
	return &AuthHandler{
		config:   cfg,
		google:   google,
		accounts: accounts,
		prefs:    prefs,
	}
}

// GoogleLogin returns the Google consent page URL.
func (h *AuthHandler) GoogleLogin(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"authUrl": h.google.AuthURL(""),
	})
}

// GoogleCallback finishes the OAuth flow: exchanges the code, loads the
// profile, finds or creates the account and redirects to the frontend with
// a session token.
func (h *AuthHandler) GoogleCallback(c *fiber.Ctx) error {
	if authError := c.Query("error"); authError != "" {
		log.Error().Str("error", authError).Msg("oauth error")
		return h.redirectError(c, authError)
	}

	code := c.Query("code")
	if code == "" {
		return h.redirectError(c, "No authorization code provided")
	}

	ctx := c.Context()

	token, err := h.google.Exchange(ctx, code)
	if err != nil {
		log.Error().Err(err).Msg("oauth callback error")
		return h.redirectError(c, "Authentication failed")
	}

	profile, err := h.google.UserInfo(ctx, token)
	if err != nil {
		log.Error().Err(err).Msg("oauth callback error")
		return h.redirectError(c, "Authentication failed")
	}

	var expiry *time.Time
	if !token.Expiry.IsZero() {
		expiry = &token.Expiry
	}

	account, created, err := h.accounts.FindOrCreateByGoogleID(ctx, &models.Account{
		Email:        profile.Email,
		Name:         profile.Name,
		Picture:      profile.Picture,
		GoogleID:     profile.ID,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenExpiry:  expiry,
	})
	if err != nil {
		log.Error().Err(err).Msg("oauth callback error")
		return h.redirectError(c, "Authentication failed")
	}

	if created {
		if _, err := h.prefs.GetOrCreate(ctx, account.ID); err != nil {
			log.Error().Err(err).Int64("accountId", account.ID).Msg("failed to create preferences")
		}
	} else {
		if err := h.accounts.UpdateTokens(ctx, account.ID, token.AccessToken, token.RefreshToken, expiry); err != nil {
			log.Error().Err(err).Msg("oauth callback error")
			return h.redirectError(c, "Authentication failed")
		}

		if err := h.accounts.UpdateProfile(ctx, account.ID, profile.Name, profile.Picture); err != nil {
			log.Error().Err(err).Msg("oauth callback error")
			return h.redirectError(c, "Authentication failed")
		}
	}

	lifetime := time.Duration(h.config.JWT.ExpiryDays) * 24 * time.Hour

	sessionToken, err := auth.GenerateToken(account.ID, h.config.JWT.Secret, lifetime)
	if err != nil {
		log.Error().Err(err).Msg("oauth callback error")
		return h.redirectError(c, "Authentication failed")
	}

	return c.Redirect(fmt.Sprintf("%s/auth/callback?token=%s", h.config.Server.FrontendURL, sessionToken))
}

func (h *AuthHandler) redirectError(c *fiber.Ctx, message string) error {
	return c.Redirect(fmt.Sprintf("%s/auth/error?message=%s", h.config.Server.FrontendURL, url.QueryEscape(message)))
}

// Me returns the authenticated account with its preferences.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	accountID := middleware.AccountID(c)

	account, err := h.accounts.GetByID(c.Context(), accountID)
	if err != nil {
		return err
	}

	prefs, err := h.prefs.GetOrCreate(c.Context(), accountID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"user": fiber.Map{
			"id":          account.ID,
			"email":       account.Email,
			"name":        account.Name,
			"picture":     account.Picture,
			"last_sync":   account.LastSync,
			"preferences": prefs,
		},
	})
}

// Logout acknowledges a logout. Session tokens are stateless, so there is
// nothing to invalidate server side.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	log.Info().Int64("accountId", middleware.AccountID(c)).Msg("user logged out")

	return c.JSON(fiber.Map{
		"message": "Logged out successfully",
	})
}

// RefreshToken renews the stored Google access token on request.
func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	accountID := middleware.AccountID(c)
	ctx := c.Context()

	account, err := h.accounts.GetByID(ctx, accountID)
	if err != nil {
		return err
	}

	if account.RefreshToken == "" {
		return utils.BadRequestError("No refresh token available. Please re-authenticate.", nil)
	}

	token, err := h.google.Refresh(ctx, account.RefreshToken)
	if err != nil {
		return err
	}

	var expiry *time.Time
	if !token.Expiry.IsZero() {
		expiry = &token.Expiry
	}

	if err := h.accounts.UpdateTokens(ctx, accountID, token.AccessToken, token.RefreshToken, expiry); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message": "Token refreshed successfully",
	})
}
