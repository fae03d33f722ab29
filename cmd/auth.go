package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/bandctl/internal/server"
	"github.com/desertthunder/bandctl/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// authTimeout bounds how long the flow waits for the operator to finish the
// browser dance before giving up.
const authTimeout = 5 * time.Minute

// Authorize runs the OAuth2 authorization-code flow for one band.
//
// Starts a one-shot local HTTP server on the configured redirect URI, opens
// the browser for user authorization, exchanges the auth code for tokens, and
// persists the pair for the band.
func (r *Runner) Authorize(ctx context.Context, cmd *cli.Command) error {
	band := cmd.Int("band")
	if band == 0 {
		return fmt.Errorf("%w: --band is required for the authorization flow", shared.ErrMissingArgument)
	}

	// Probe the store up front so an out-of-range band fails before the
	// browser opens.
	if _, _, err := r.store.BandTokens(band); err != nil {
		return err
	}

	clientID, clientSecret, err := r.store.ClientCredentials()
	if err != nil {
		return err
	}
	if clientID == "" || clientSecret == "" {
		return fmt.Errorf("%w: client_id/client_secret missing in %s, fill them and rerun", shared.ErrMissingCredentials, r.store.Path())
	}

	addr, path, err := server.CallbackAddr(r.config.API.RedirectURI)
	if err != nil {
		return err
	}

	conf := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  r.config.API.RedirectURI,
		Scopes:       strings.Fields(r.config.API.Scope),
		Endpoint: oauth2.Endpoint{
			AuthURL:  r.config.API.AuthURL,
			TokenURL: r.config.API.TokenURL,
		},
	}

	state := shared.GenerateID()
	handler := server.NewOAuthHandler(conf, state)
	authURL := conf.AuthCodeURL(state)

	r.logger.Info("authorizing band", "band", band)
	fmt.Fprintf(r.errOutput, "Open this URL to authorize band %d:\n%s\n", band, authURL)

	if !cmd.Bool("no-browser") {
		if err := shared.OpenBrowser(authURL); err != nil {
			r.logger.Warnf("failed to open browser: %v", err)
		}
	}

	waitCtx, cancel := context.WithTimeout(ctx, authTimeout)
	defer cancel()

	result, err := server.WaitForCallback(waitCtx, addr, path, handler)
	if err != nil {
		return err
	}
	if result.Error() != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, result.Error())
	}

	token := result.Token
	if token.AccessToken == "" || token.RefreshToken == "" {
		return fmt.Errorf("%w: provider returned an incomplete token pair", shared.ErrAuthFailed)
	}

	if err := r.store.SetBandTokens(band, token.AccessToken, token.RefreshToken); err != nil {
		return err
	}
	r.logger.Info("tokens saved", "band", band)

	return r.writeJSON(map[string]string{
		"access_token":  token.AccessToken,
		"refresh_token": token.RefreshToken,
	}, true)
}
