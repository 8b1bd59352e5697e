package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"mailview/config"
	"mailview/utils"
)

const userInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// scopes requested on consent. Full mail scope is required for IMAP access.
var scopes = []string{
	"https://mail.google.com/",
	"https://www.googleapis.com/auth/userinfo.email",
	"https://www.googleapis.com/auth/userinfo.profile",
}

// GoogleProfile is the subset of the userinfo response the app keeps.
type GoogleProfile struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// GoogleAuth handles the OAuth2 flow against Google. Construct once at
// process start and inject where needed.
type GoogleAuth struct {
	oauth *oauth2.Config
}

// NewGoogleAuth creates a GoogleAuth from the application config.
func NewGoogleAuth(cfg *config.Config) *GoogleAuth {
	return &GoogleAuth{
		oauth: &oauth2.Config{
			ClientID:     cfg.Google.ClientID,
			ClientSecret: cfg.Google.ClientSecret,
			RedirectURL:  cfg.Google.RedirectURI,
			Scopes:       scopes,
			Endpoint:     google.Endpoint,
		},
	}
}

// AuthURL returns the consent page URL. Offline access and the consent
// prompt are forced so a refresh token is always issued.
func (g *GoogleAuth) AuthURL(state string) string {
	return g.oauth.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"))
}

// Exchange trades an authorization code for a token set.
func (g *GoogleAuth) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, utils.AuthRequiredError("failed to exchange authorization code", err)
	}

	return token, nil
}

// UserInfo fetches the Google profile for an access token.
func (g *GoogleAuth) UserInfo(ctx context.Context, token *oauth2.Token) (*GoogleProfile, error) {
	client := g.oauth.Client(ctx, token)

	resp, err := client.Get(userInfoURL)
	if err != nil {
		return nil, fmt.Errorf("userinfo request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo request: unexpected status %d", resp.StatusCode)
	}

	var profile GoogleProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("userinfo decode: %w", err)
	}

	return &profile, nil
}

// Refresh obtains a fresh access token through the refresh-token grant.
func (g *GoogleAuth) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	source := g.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})

	token, err := source.Token()
	if err != nil {
		return nil, utils.AuthRequiredError("failed to refresh access token", err)
	}

	return token, nil
}
