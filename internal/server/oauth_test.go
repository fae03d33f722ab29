package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	tu "github.com/desertthunder/bandctl/internal/testing"
	"golang.org/x/oauth2"
)

func testConfig(tokenURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     "test_client_id",
		ClientSecret: "test_client_secret",
		RedirectURL:  "http://localhost:8765/callback",
		Endpoint: oauth2.Endpoint{
			AuthURL:  "http://localhost/auth",
			TokenURL: tokenURL,
		},
	}
}

func TestOAuthHandler(t *testing.T) {
	t.Run("rejects state mismatch", func(t *testing.T) {
		handler := NewOAuthHandler(testConfig("http://unused"), "expected-state")

		req := httptest.NewRequest("GET", "/callback?code=abc&state=wrong", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
		result := <-handler.Result()
		if result.Error() == nil {
			t.Error("expected error result for state mismatch")
		}
	})

	t.Run("surfaces provider error parameters", func(t *testing.T) {
		handler := NewOAuthHandler(testConfig("http://unused"), "state")

		req := httptest.NewRequest("GET", "/callback?error=access_denied&state=state", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		result := <-handler.Result()
		if result.Error() == nil {
			t.Error("expected error result when provider denies authorization")
		}
	})

	t.Run("exchanges the code and delivers the token", func(t *testing.T) {
		token := tu.NewScriptedServer(tu.StubResponse{
			Status: 200,
			Body:   `{"access_token":"fresh-access","refresh_token":"fresh-refresh","token_type":"bearer"}`,
		})
		defer token.Close()

		handler := NewOAuthHandler(testConfig(token.URL()), "state")

		req := httptest.NewRequest("GET", "/callback?code=auth-code&state=state", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}

		result := <-handler.Result()
		if result.Error() != nil {
			t.Fatalf("expected success, got %v", result.Error())
		}
		if result.Token.AccessToken != "fresh-access" {
			t.Errorf("expected exchanged access token, got %s", result.Token.AccessToken)
		}
		if result.Token.RefreshToken != "fresh-refresh" {
			t.Errorf("expected exchanged refresh token, got %s", result.Token.RefreshToken)
		}
	})

	t.Run("processes only one callback", func(t *testing.T) {
		token := tu.NewScriptedServer(tu.StubResponse{
			Status: 200,
			Body:   `{"access_token":"a","token_type":"bearer"}`,
		})
		defer token.Close()

		handler := NewOAuthHandler(testConfig(token.URL()), "state")

		first := httptest.NewRecorder()
		handler.ServeHTTP(first, httptest.NewRequest("GET", "/callback?code=c&state=state", nil))

		second := httptest.NewRecorder()
		handler.ServeHTTP(second, httptest.NewRequest("GET", "/callback?code=c&state=state", nil))

		if second.Code != http.StatusBadRequest {
			t.Errorf("expected second callback rejected, got %d", second.Code)
		}
	})
}

func TestCallbackAddr(t *testing.T) {
	t.Run("extracts host and path", func(t *testing.T) {
		addr, path, err := CallbackAddr("http://localhost:8765/callback")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if addr != "localhost:8765" {
			t.Errorf("expected localhost:8765, got %s", addr)
		}
		if path != "/callback" {
			t.Errorf("expected /callback, got %s", path)
		}
	})

	t.Run("requires an explicit port", func(t *testing.T) {
		if _, _, err := CallbackAddr("http://localhost/callback"); err == nil {
			t.Error("expected error for missing port")
		}
	})
}
