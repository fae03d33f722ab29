package whoop

import (
	"errors"
	"testing"

	"github.com/desertthunder/bandctl/internal/shared"
)

func TestAPITimestamp(t *testing.T) {
	t.Run("start of day", func(t *testing.T) {
		got, err := APITimestamp("2024-01-15", false)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got != "2024-01-15T00:00:00.000Z" {
			t.Errorf("expected start-of-day timestamp, got %s", got)
		}
	})

	t.Run("end of day", func(t *testing.T) {
		got, err := APITimestamp("2024-01-15", true)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got != "2024-01-15T23:59:59.999Z" {
			t.Errorf("expected end-of-day timestamp, got %s", got)
		}
	})

	t.Run("passes through values with a time component", func(t *testing.T) {
		in := "2024-01-15T12:30:00.000Z"
		got, err := APITimestamp(in, true)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got != in {
			t.Errorf("expected passthrough, got %s", got)
		}
	})

	t.Run("empty input stays empty", func(t *testing.T) {
		got, err := APITimestamp("", false)
		if err != nil || got != "" {
			t.Errorf("expected empty/nil, got (%q, %v)", got, err)
		}
	})

	t.Run("rejects malformed dates", func(t *testing.T) {
		for _, in := range []string{"2024-13-40", "15-01-2024", "not-a-date", "2024-02-30"} {
			if _, err := APITimestamp(in, false); !errors.Is(err, shared.ErrInvalidDate) {
				t.Errorf("%q: expected ErrInvalidDate, got %v", in, err)
			}
		}
	})
}

func TestFilterByStart(t *testing.T) {
	records := []any{
		map[string]any{"start": "2024-01-01T10:00:00Z"},
		map[string]any{"start": "2024-01-02T10:00:00Z"},
	}

	t.Run("drops records that started before the range", func(t *testing.T) {
		got := FilterByStart(records, "2024-01-02T00:00:00Z")
		if len(got) != 1 {
			t.Fatalf("expected 1 record, got %d", len(got))
		}
		if got[0].(map[string]any)["start"] != "2024-01-02T10:00:00Z" {
			t.Errorf("expected the later record to survive, got %v", got[0])
		}
	})

	t.Run("empty start is a no-op", func(t *testing.T) {
		got := FilterByStart(records, "")
		if len(got) != 2 {
			t.Errorf("expected all records, got %d", len(got))
		}
	})

	t.Run("drops records without a start field", func(t *testing.T) {
		got := FilterByStart([]any{map[string]any{"score": 1.0}}, "2024-01-02T00:00:00Z")
		if len(got) != 0 {
			t.Errorf("expected record without start to be dropped, got %d", len(got))
		}
	})

	t.Run("non-object entries pass through", func(t *testing.T) {
		got := FilterByStart([]any{"opaque"}, "2024-01-02T00:00:00Z")
		if len(got) != 1 || got[0] != "opaque" {
			t.Errorf("expected opaque entry to pass through, got %v", got)
		}
	})
}

func TestFilterOpenBefore(t *testing.T) {
	t.Run("drops open records that started before the window", func(t *testing.T) {
		records := []any{
			map[string]any{"start": "2024-01-01T00:00:00Z", "end": nil},
		}
		got := FilterOpenBefore(records, "2024-01-02T00:00:00Z")
		if len(got) != 0 {
			t.Errorf("expected ongoing pre-window record to be dropped, got %d", len(got))
		}
	})

	t.Run("keeps closed records that started before the window", func(t *testing.T) {
		records := []any{
			map[string]any{"start": "2024-01-01T00:00:00Z", "end": "2024-01-02T08:00:00Z"},
		}
		got := FilterOpenBefore(records, "2024-01-02T00:00:00Z")
		if len(got) != 1 {
			t.Errorf("expected closed record to survive, got %d", len(got))
		}
	})

	t.Run("keeps open records inside the window", func(t *testing.T) {
		records := []any{
			map[string]any{"start": "2024-01-02T10:00:00Z", "end": nil},
		}
		got := FilterOpenBefore(records, "2024-01-02T00:00:00Z")
		if len(got) != 1 {
			t.Errorf("expected in-window open record to survive, got %d", len(got))
		}
	})

	t.Run("non-object entries pass through", func(t *testing.T) {
		got := FilterOpenBefore([]any{42.0}, "2024-01-02T00:00:00Z")
		if len(got) != 1 {
			t.Errorf("expected opaque entry to pass through, got %v", got)
		}
	})
}
