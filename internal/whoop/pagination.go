package whoop

import (
	"context"
)

// FetchPage fetches one page of a collection. The returned credentials may
// differ from the input if a token refresh occurred during the call.
type FetchPage func(ctx context.Context, creds Credentials, params PageParams) (any, Credentials, error)

// FetchAll drives fetch across every page of a cursor-based collection and
// merges the results into a single response-shaped document.
//
// Token rotations are threaded forward: a refresh on one page is used for all
// later pages and surfaces in the returned credentials. Metadata keys other
// than records/next_token are taken verbatim from the first page. Any page
// failure aborts the whole aggregation; partial results are discarded.
//
// The loop terminates when the cursor is missing, empty, or whitespace-only,
// and when the API repeats a cursor it already served.
func (c *Client) FetchAll(ctx context.Context, fetch FetchPage, creds Credentials, params PageParams) (map[string]any, Credentials, error) {
	records := []any{}
	meta := map[string]any{}
	seen := make(map[string]struct{})
	nextToken := ""
	page := 0

	for {
		page++
		if nextToken == "" {
			c.logger.Info("fetching page", "page", page)
		} else {
			c.logger.Info("fetching page", "page", page, "next_token", truncate(nextToken, 30))
		}

		params.NextToken = nextToken
		payload, updated, err := fetch(ctx, creds, params)
		if err != nil {
			return nil, creds, err
		}
		creds = updated

		if page == 1 {
			meta = metadata(payload)
		}

		pageRecords := Records(payload)
		records = append(records, pageRecords...)
		c.logger.Info("fetched records", "page", page, "count", len(pageRecords), "total", len(records))

		token := cursor(payload)
		if token == "" {
			break
		}
		if token == nextToken {
			c.logger.Warn("same next_token returned twice, stopping pagination")
			break
		}
		if _, ok := seen[token]; ok {
			c.logger.Warn("next_token seen before, stopping pagination")
			break
		}
		seen[token] = struct{}{}
		nextToken = token
	}

	c.logger.Info("pagination complete", "pages", page, "records", len(records))

	combined := make(map[string]any, len(meta)+2)
	for key, value := range meta {
		combined[key] = value
	}
	combined["records"] = records
	combined["next_token"] = nil

	return combined, creds, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
