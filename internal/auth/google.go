package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/sakif/studybuddy/internal/model"
)

// userinfoEndpoint returns the profile of the user the access token belongs
// to. Only the email is consumed.
const userinfoEndpoint = "https://www.googleapis.com/oauth2/v2/userinfo"

// Scopes requested at consent time:
//   - documents   → create and populate the exported Google Doc
//   - drive.file  → access limited to files this app creates
//   - userinfo.email → identify the user for the session and history store
var googleScopes = []string{
	"https://www.googleapis.com/auth/documents",
	"https://www.googleapis.com/auth/drive.file",
	"https://www.googleapis.com/auth/userinfo.email",
}

// GoogleProvider wraps golang.org/x/oauth2 for the Google Authorization Code
// flow.
//
// The code-for-token exchange happens server-to-server using the client
// secret; access tokens never reach the browser. The anti-forgery state is
// generated by the caller and persisted in the server-side session, not in a
// cookie, so a callback hit without a live session can be rejected outright.
type GoogleProvider struct {
	config      *oauth2.Config
	userinfoURL string
}

// NewGoogleProvider creates a GoogleProvider for the registered OAuth app.
// redirectURL must exactly match an authorized redirect URI of the app.
func NewGoogleProvider(clientID, clientSecret, redirectURL string) *GoogleProvider {
	return &GoogleProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       googleScopes,
			Endpoint:     google.Endpoint,
		},
		userinfoURL: userinfoEndpoint,
	}
}

// Config exposes the underlying OAuth2 config (token endpoint, client id and
// secret, scopes). The Docs export path needs it to build a refreshing
// TokenSource from stored credentials.
func (p *GoogleProvider) Config() *oauth2.Config {
	return p.config
}

// AuthURL returns the consent-screen URL for the given anti-forgery state.
// Offline access is requested so Google issues a refresh token on first
// consent.
func (p *GoogleProvider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Exchange trades the authorization code for a token bundle.
func (p *GoogleProvider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("auth: exchanging OAuth code: %w", err)
	}
	return token, nil
}

// FetchEmail calls the userinfo endpoint with the freshly exchanged token and
// returns the account's email address.
func (p *GoogleProvider) FetchEmail(ctx context.Context, token *oauth2.Token) (string, error) {
	// Config.Client returns an *http.Client that attaches the bearer token
	// to every request.
	client := p.config.Client(ctx, token)

	resp, err := client.Get(p.userinfoURL)
	if err != nil {
		return "", fmt.Errorf("auth: calling userinfo endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("auth: userinfo endpoint returned status %d", resp.StatusCode)
	}

	var info struct {
		Email         string `json:"email"`
		VerifiedEmail bool   `json:"verified_email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return "", fmt.Errorf("auth: decoding userinfo response: %w", err)
	}

	if info.Email == "" {
		return "", fmt.Errorf("auth: userinfo response has no email")
	}

	return info.Email, nil
}

// CredentialsFromToken converts an exchanged oauth2.Token into the bundle
// persisted on the session.
func CredentialsFromToken(token *oauth2.Token) *model.OAuthCredentials {
	return &model.OAuthCredentials{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.TokenType,
		Expiry:       token.Expiry,
		Scopes:       googleScopes,
	}
}

// TokenFromCredentials rebuilds the oauth2.Token for a stored bundle so a
// TokenSource can refresh it when expired.
func TokenFromCredentials(c *model.OAuthCredentials) *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  c.AccessToken,
		RefreshToken: c.RefreshToken,
		TokenType:    c.TokenType,
		Expiry:       c.Expiry,
	}
}
