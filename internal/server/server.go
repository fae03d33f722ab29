package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// CallbackAddr extracts the host:port listen address and path from a
// configured redirect URI. The URI must carry an explicit host and port so
// the listener binds exactly where the OAuth provider will redirect.
func CallbackAddr(redirectURI string) (addr string, path string, err error) {
	parsed, err := url.Parse(redirectURI)
	if err != nil {
		return "", "", fmt.Errorf("invalid redirect URI %q: %w", redirectURI, err)
	}
	if parsed.Hostname() == "" || parsed.Port() == "" {
		return "", "", fmt.Errorf("redirect URI must include hostname and port, e.g. http://localhost:8765/callback")
	}

	path = parsed.Path
	if path == "" {
		path = "/callback"
	}
	return parsed.Host, path, nil
}

// WaitForCallback serves the OAuth handler on addr until it produces a result
// or the context is cancelled, then shuts the listener down.
func WaitForCallback(ctx context.Context, addr, path string, handler *OAuthHandler) (OAuthResult, error) {
	mux := http.NewServeMux()
	mux.Handle(path, handler)

	srv := &http.Server{Addr: addr, Handler: mux}
	errChan := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	select {
	case result := <-handler.Result():
		return result, nil
	case err := <-errChan:
		return OAuthResult{}, fmt.Errorf("callback server failed: %w", err)
	case <-ctx.Done():
		return OAuthResult{}, fmt.Errorf("authorization wait cancelled: %w", ctx.Err())
	}
}
