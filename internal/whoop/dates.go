package whoop

import (
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/bandctl/internal/shared"
)

const calendarLayout = "2006-01-02"

// ValidDate reports whether date is a real calendar date in YYYY-MM-DD form.
func ValidDate(date string) bool {
	_, err := time.Parse(calendarLayout, date)
	return err == nil
}

// APITimestamp converts an operator-supplied YYYY-MM-DD date to the API's
// ISO 8601 timestamp convention: start of day for range starts, last
// millisecond of the day for range ends. A value that already carries a time
// component passes through unchanged, and an empty input stays empty.
func APITimestamp(date string, isEnd bool) (string, error) {
	if date == "" {
		return "", nil
	}
	if strings.Contains(date, "T") {
		return date, nil
	}
	if !ValidDate(date) {
		return "", fmt.Errorf("%w: %q (expected YYYY-MM-DD, e.g. 2024-01-15)", shared.ErrInvalidDate, date)
	}

	if isEnd {
		return date + "T23:59:59.999Z", nil
	}
	return date + "T00:00:00.000Z", nil
}

// FilterByStart drops records that started before start.
//
// The API's server-side range filter includes records that merely intersect
// the window, so results have to be re-filtered on their start field. ISO
// 8601 strings compare lexicographically. Records without a start field are
// dropped too; non-object entries pass through unfiltered.
func FilterByStart(records []any, start string) []any {
	if start == "" || len(records) == 0 {
		return records
	}

	filtered := make([]any, 0, len(records))
	for _, raw := range records {
		record, ok := raw.(map[string]any)
		if !ok {
			filtered = append(filtered, raw)
			continue
		}
		recordStart, _ := record["start"].(string)
		if recordStart != "" && recordStart >= start {
			filtered = append(filtered, record)
		}
	}
	return filtered
}

// FilterOpenBefore drops records that started before start and are still
// ongoing (null end). For compliance purposes an open record that began
// before the window does not count as present in the window.
func FilterOpenBefore(records []any, start string) []any {
	if len(records) == 0 {
		return records
	}

	filtered := make([]any, 0, len(records))
	for _, raw := range records {
		record, ok := raw.(map[string]any)
		if !ok {
			filtered = append(filtered, raw)
			continue
		}
		recordStart, _ := record["start"].(string)
		if recordStart != "" && recordStart < start && record["end"] == nil {
			continue
		}
		filtered = append(filtered, record)
	}
	return filtered
}
