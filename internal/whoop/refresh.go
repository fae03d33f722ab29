package whoop

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Refresh exchanges a refresh token for a new access/refresh pair using the
// form-encoded refresh_token grant.
//
// The returned pair fully replaces the old one. If the response omits a
// refresh token the old one is kept. Callers must not retry a failed
// refresh; the operator has to re-run the authorization flow.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (Credentials, error) {
	form := url.Values{
		"grant_type":    []string{"refresh_token"},
		"refresh_token": []string{refreshToken},
		"client_id":     []string{c.clientID},
		"client_secret": []string{c.clientSecret},
		"scope":         []string{"offline"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return Credentials{}, fmt.Errorf("failed to create refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Credentials{}, fmt.Errorf("refresh request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Credentials{}, fmt.Errorf("failed to read refresh response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Credentials{}, &RefreshError{Status: resp.StatusCode, Body: string(body)}
	}

	var tokens struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.Unmarshal(body, &tokens); err != nil {
		return Credentials{}, &RefreshError{Status: resp.StatusCode, Body: fmt.Sprintf("undecodable token response: %v", err)}
	}

	if tokens.AccessToken == "" {
		return Credentials{}, &RefreshError{Status: resp.StatusCode, Body: "no access_token in response"}
	}
	if tokens.RefreshToken == "" {
		tokens.RefreshToken = refreshToken
	}

	return Credentials{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken}, nil
}
