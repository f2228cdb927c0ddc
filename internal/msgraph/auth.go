package msgraph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"

	"github.com/Tiliavir/ojt-tracker/internal/config"
	"github.com/Tiliavir/ojt-tracker/internal/logging"
)

var requiredScopes = []string{
	"https://graph.microsoft.com/Calendars.Read",
	"offline_access",
}

func msEndpoint(tenantID, path string) string {
	return "https://login.microsoftonline.com/" + tenantID + "/oauth2/v2.0/" + path
}

// TokenCache persists OAuth2 tokens in a single JSON file.
type TokenCache struct {
	Path string
}

// DefaultTokenCache returns the cache at ~/.ojt/auth/msgraph_tokens.json.
func DefaultTokenCache() (TokenCache, error) {
	base, err := config.BaseDir()
	if err != nil {
		return TokenCache{}, err
	}
	return TokenCache{Path: filepath.Join(base, "auth", "msgraph_tokens.json")}, nil
}

// Load returns the saved token, or nil if none has been saved yet.
func (c TokenCache) Load() (*oauth2.Token, error) {
	data, err := os.ReadFile(c.Path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading token file: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("corrupt token file (delete %s to re-authenticate): %w", c.Path, err)
	}
	return &tok, nil
}

// Save atomically writes tok to the cache file.
func (c TokenCache) Save(tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(c.Path), 0o700); err != nil {
		return fmt.Errorf("creating auth directory: %w", err)
	}
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling token: %w", err)
	}
	tmpPath := c.Path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}
	if err := os.Rename(tmpPath, c.Path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("saving token file: %w", err)
	}
	return nil
}

// OAuth2Config returns the oauth2.Config for Microsoft Graph using the
// provided tenant and client IDs.
func OAuth2Config(tenantID, clientID string) *oauth2.Config {
	return &oauth2.Config{
		ClientID: clientID,
		Scopes:   requiredScopes,
		Endpoint: oauth2.Endpoint{
			DeviceAuthURL: msEndpoint(tenantID, "devicecode"),
			TokenURL:      msEndpoint(tenantID, "token"),
			AuthStyle:     oauth2.AuthStyleInParams,
		},
	}
}

// Authenticate returns a usable token for Microsoft Graph. It reuses the
// cached token, refreshes it if needed, or runs the device code flow and
// writes the sign-in instructions to prompt.
func Authenticate(ctx context.Context, cfg *oauth2.Config, cache TokenCache, prompt io.Writer) (*oauth2.Token, error) {
	log := logging.FromContext(ctx)

	tok, err := cache.Load()
	if err != nil {
		log.Warn("ignoring cached token", "err", err)
		tok = nil
	}

	if tok != nil && tok.Valid() {
		return tok, nil
	}

	if tok != nil && tok.RefreshToken != "" {
		refreshed, err := cfg.TokenSource(ctx, tok).Token()
		if err == nil {
			if err := cache.Save(refreshed); err != nil {
				log.Warn("could not save refreshed token", "err", err)
			}
			return refreshed, nil
		}
		log.Info("token refresh failed, re-authenticating", "err", err)
	}

	resp, err := cfg.DeviceAuth(ctx)
	if err != nil {
		return nil, fmt.Errorf("device auth request failed: %w", err)
	}

	fmt.Fprintln(prompt)
	fmt.Fprintln(prompt, "To sign in, use a web browser to open the page:")
	fmt.Fprintf(prompt, "  %s\n", resp.VerificationURI)
	fmt.Fprintf(prompt, "Enter the code: %s\n", resp.UserCode)
	fmt.Fprintln(prompt)

	newTok, err := cfg.DeviceAccessToken(ctx, resp)
	if err != nil {
		return nil, fmt.Errorf("device authentication failed: %w", err)
	}
	if err := cache.Save(newTok); err != nil {
		log.Warn("could not save token", "err", err)
	}
	return newTok, nil
}
