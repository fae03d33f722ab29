package whoop

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/desertthunder/bandctl/internal/shared"
	tu "github.com/desertthunder/bandctl/internal/testing"
)

func newTestClient(dataURL, tokenURL string) *Client {
	return NewClient(ClientOpts{
		BaseURL:      dataURL,
		TokenURL:     tokenURL,
		ClientID:     "test_client_id",
		ClientSecret: "test_client_secret",
		Logger:       shared.NewLogger(io.Discard),
	})
}

func TestClient(t *testing.T) {
	creds := Credentials{AccessToken: "stale-access", RefreshToken: "good-refresh"}

	t.Run("success decodes payload and keeps credentials", func(t *testing.T) {
		data := tu.NewScriptedServer(tu.StubResponse{Status: 200, Body: `{"records":[{"id":1}],"next_token":null}`})
		defer data.Close()

		client := newTestClient(data.URL(), "http://unused")
		payload, updated, err := client.Sleep(context.Background(), creds, PageParams{})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if updated != creds {
			t.Errorf("expected unchanged credentials, got %+v", updated)
		}
		if data.Authorization(0) != "Bearer stale-access" {
			t.Errorf("expected bearer header, got %s", data.Authorization(0))
		}
		page, ok := payload.(map[string]any)
		if !ok {
			t.Fatalf("expected object payload, got %T", payload)
		}
		if len(page["records"].([]any)) != 1 {
			t.Errorf("expected one record, got %v", page["records"])
		}
	})

	t.Run("sends limit, nextToken and range parameters", func(t *testing.T) {
		data := tu.NewScriptedServer(tu.StubResponse{Status: 200, Body: `{"records":[]}`})
		defer data.Close()

		client := newTestClient(data.URL(), "http://unused")
		_, _, err := client.Cycle(context.Background(), creds, PageParams{
			Limit:     10,
			NextToken: "abc",
			Start:     "2024-01-15T00:00:00.000Z",
			End:       "2024-01-15T23:59:59.999Z",
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if data.Path(0) != "/developer/v2/cycle" {
			t.Errorf("unexpected path %s", data.Path(0))
		}
		if data.QueryParam(0, "limit") != "10" {
			t.Errorf("expected limit=10, got %s", data.QueryParam(0, "limit"))
		}
		if data.QueryParam(0, "nextToken") != "abc" {
			t.Errorf("expected nextToken=abc, got %s", data.QueryParam(0, "nextToken"))
		}
		if data.QueryParam(0, "start") != "2024-01-15T00:00:00.000Z" {
			t.Errorf("unexpected start %s", data.QueryParam(0, "start"))
		}
	})

	t.Run("401 triggers one refresh and one retry with the new token", func(t *testing.T) {
		data := tu.NewScriptedServer(
			tu.StubResponse{Status: 401, Body: `{"error":"expired"}`},
			tu.StubResponse{Status: 200, Body: `{"records":[]}`},
		)
		defer data.Close()
		token := tu.NewScriptedServer(tu.StubResponse{Status: 200, Body: `{"access_token":"fresh-access","refresh_token":"fresh-refresh"}`})
		defer token.Close()

		client := newTestClient(data.URL(), token.URL())
		_, updated, err := client.Recovery(context.Background(), creds, PageParams{})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if data.Hits() != 2 {
			t.Fatalf("expected exactly 2 data requests, got %d", data.Hits())
		}
		if data.Authorization(1) != "Bearer fresh-access" {
			t.Errorf("expected retry to carry the new bearer token, got %s", data.Authorization(1))
		}
		if updated.AccessToken != "fresh-access" || updated.RefreshToken != "fresh-refresh" {
			t.Errorf("expected rotated credentials, got %+v", updated)
		}

		if token.FormValue(0, "grant_type") != "refresh_token" {
			t.Errorf("expected refresh_token grant, got %s", token.FormValue(0, "grant_type"))
		}
		if token.FormValue(0, "refresh_token") != "good-refresh" {
			t.Errorf("expected old refresh token in grant, got %s", token.FormValue(0, "refresh_token"))
		}
		if token.FormValue(0, "scope") != "offline" {
			t.Errorf("expected offline scope, got %s", token.FormValue(0, "scope"))
		}
	})

	t.Run("repeated 401 after refresh is a hard failure without a second refresh", func(t *testing.T) {
		data := tu.NewScriptedServer(
			tu.StubResponse{Status: 401, Body: `{}`},
			tu.StubResponse{Status: 401, Body: `{}`},
		)
		defer data.Close()
		token := tu.NewScriptedServer(tu.StubResponse{Status: 200, Body: `{"access_token":"fresh-access"}`})
		defer token.Close()

		client := newTestClient(data.URL(), token.URL())
		_, _, err := client.Sleep(context.Background(), creds, PageParams{})

		var httpErr *HTTPError
		if !errors.As(err, &httpErr) || httpErr.Status != 401 {
			t.Fatalf("expected HTTPError with status 401, got %v", err)
		}
		if token.Hits() != 1 {
			t.Errorf("expected exactly one refresh attempt, got %d", token.Hits())
		}
	})

	t.Run("401 without a refresh token fails fast", func(t *testing.T) {
		data := tu.NewScriptedServer(tu.StubResponse{Status: 401, Body: `{}`})
		defer data.Close()

		client := newTestClient(data.URL(), "http://unused")
		_, _, err := client.Sleep(context.Background(), Credentials{AccessToken: "stale"}, PageParams{})
		if !errors.Is(err, shared.ErrNoRefreshToken) {
			t.Errorf("expected ErrNoRefreshToken, got %v", err)
		}
		if data.Hits() != 1 {
			t.Errorf("expected no retry, got %d requests", data.Hits())
		}
	})

	t.Run("refresh failure propagates as fatal", func(t *testing.T) {
		data := tu.NewScriptedServer(tu.StubResponse{Status: 401, Body: `{}`})
		defer data.Close()
		token := tu.NewScriptedServer(tu.StubResponse{Status: 400, Body: `{"error":"invalid_grant"}`})
		defer token.Close()

		client := newTestClient(data.URL(), token.URL())
		_, _, err := client.Sleep(context.Background(), creds, PageParams{})
		if !errors.Is(err, shared.ErrRefreshFailed) {
			t.Fatalf("expected ErrRefreshFailed, got %v", err)
		}

		var refreshErr *RefreshError
		if !errors.As(err, &refreshErr) || refreshErr.Status != 400 {
			t.Errorf("expected RefreshError with status 400, got %v", err)
		}
		if data.Hits() != 1 {
			t.Errorf("expected no retry after failed refresh, got %d requests", data.Hits())
		}
	})

	t.Run("non-401 errors map to HTTPError", func(t *testing.T) {
		data := tu.NewScriptedServer(tu.StubResponse{Status: 503, Body: "unavailable"})
		defer data.Close()

		client := newTestClient(data.URL(), "http://unused")
		_, _, err := client.Workout(context.Background(), creds, PageParams{})

		var httpErr *HTTPError
		if !errors.As(err, &httpErr) || httpErr.Status != 503 {
			t.Fatalf("expected HTTPError with status 503, got %v", err)
		}
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected error to match ErrAPIRequest sentinel")
		}
	})
}

func TestRefresh(t *testing.T) {
	t.Run("keeps old refresh token when response omits one", func(t *testing.T) {
		token := tu.NewScriptedServer(tu.StubResponse{Status: 200, Body: `{"access_token":"fresh-access"}`})
		defer token.Close()

		client := newTestClient("http://unused", token.URL())
		refreshed, err := client.Refresh(context.Background(), "old-refresh")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if refreshed.RefreshToken != "old-refresh" {
			t.Errorf("expected old refresh token kept, got %s", refreshed.RefreshToken)
		}
	})

	t.Run("fails when response lacks an access token", func(t *testing.T) {
		token := tu.NewScriptedServer(tu.StubResponse{Status: 200, Body: `{"refresh_token":"r"}`})
		defer token.Close()

		client := newTestClient("http://unused", token.URL())
		_, err := client.Refresh(context.Background(), "old-refresh")
		if !errors.Is(err, shared.ErrRefreshFailed) {
			t.Errorf("expected ErrRefreshFailed, got %v", err)
		}
	})
}
