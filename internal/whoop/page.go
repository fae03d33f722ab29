package whoop

import (
	"fmt"
	"strings"
)

// Records extracts the record list from a decoded page payload.
//
// Collection endpoints normally return an object with a "records" list, but
// the shape has drifted between API versions, so the fallbacks are explicit:
// an object whose "records" key is not a list contributes zero records, a
// bare list is taken as the records themselves, and any other payload is
// wrapped whole as a single opaque record rather than guessed at.
func Records(payload any) []any {
	switch page := payload.(type) {
	case map[string]any:
		if raw, ok := page["records"]; ok {
			if records, ok := raw.([]any); ok {
				return records
			}
			return []any{}
		}
	case []any:
		return page
	}
	return []any{payload}
}

// cursor extracts the pagination continuation token from a page payload.
// Non-string truthy values are coerced to their string form; anything that
// trims to empty means pagination is complete.
func cursor(payload any) string {
	page, ok := payload.(map[string]any)
	if !ok {
		return ""
	}

	raw, ok := page["next_token"]
	if !ok || raw == nil {
		return ""
	}

	token, ok := raw.(string)
	if !ok {
		token = fmt.Sprint(raw)
	}
	if strings.TrimSpace(token) == "" {
		return ""
	}
	return token
}

// metadata copies every key except records and next_token from a page
// payload. Only the first page's metadata is preserved by aggregation.
func metadata(payload any) map[string]any {
	page, ok := payload.(map[string]any)
	if !ok {
		return map[string]any{}
	}

	meta := make(map[string]any, len(page))
	for key, value := range page {
		if key == "records" || key == "next_token" {
			continue
		}
		meta[key] = value
	}
	return meta
}
