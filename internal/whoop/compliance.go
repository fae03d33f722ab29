package whoop

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/bandctl/internal/secrets"
	"github.com/desertthunder/bandctl/internal/shared"
)

// ComplianceEndpoints are the collections a band must have produced at least
// one record on for a day to count as compliant. Workout is deliberately
// excluded: a rest day is still a compliant day.
var ComplianceEndpoints = []string{"sleep", "cycle", "recovery"}

// ComplianceReport maps band id ("1".."10") to the endpoints that had no
// records for the checked day. An empty report means full compliance.
type ComplianceReport map[string][]string

// Checker scans every band against the compliance endpoints for a single day.
//
// Unlike the fetch commands, the checker downgrades fetch and refresh errors
// to per-endpoint failure markers so one dead band cannot abort the scan.
type Checker struct {
	client *Client
	store  *secrets.Store
	logger *log.Logger
}

// NewChecker creates a compliance checker over the given client and store.
func NewChecker(client *Client, store *secrets.Store, logger *log.Logger) *Checker {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Checker{
		client: client,
		store:  store,
		logger: shared.WithLogger(logger, "component", "compliance"),
	}
}

// CheckDay verifies that every band produced at least one sleep, cycle, and
// recovery record on the given YYYY-MM-DD date.
//
// Bands with missing tokens fail all three endpoints without any network
// call. Each authenticated band gets one page per endpoint over the day's
// range; open records that began before the day are not counted. Token
// rotations are persisted immediately per band so a refresh during the scan
// survives a later crash.
func (c *Checker) CheckDay(ctx context.Context, date string) (ComplianceReport, error) {
	if !ValidDate(date) {
		return nil, fmt.Errorf("%w: %q (expected YYYY-MM-DD, e.g. 2024-01-15)", shared.ErrInvalidDate, date)
	}

	startISO := date + "T00:00:00.000Z"
	endISO := date + "T23:59:59.999Z"

	endpoints := []struct {
		name  string
		fetch FetchPage
	}{
		{"sleep", c.client.Sleep},
		{"cycle", c.client.Cycle},
		{"recovery", c.client.Recovery},
	}

	report := ComplianceReport{}
	c.logger.Info("checking daily compliance", "date", date)

	for band := 1; band <= secrets.NumBands; band++ {
		access, refresh, err := c.store.BandTokens(band)
		if err != nil {
			return nil, err
		}

		key := strconv.Itoa(band)
		if access == "" || refresh == "" {
			report[key] = append([]string{}, ComplianceEndpoints...)
			c.logger.Warn("band not authenticated", "band", band)
			continue
		}

		creds := Credentials{AccessToken: access, RefreshToken: refresh}
		var failed []string

		for _, endpoint := range endpoints {
			payload, updated, err := endpoint.fetch(ctx, creds, PageParams{
				Limit: DefaultPageLimit,
				Start: startISO,
				End:   endISO,
			})
			if err != nil {
				c.logger.Warn("endpoint check failed", "band", band, "endpoint", endpoint.name, "err", err)
				failed = append(failed, endpoint.name)
				continue
			}

			if updated != creds {
				creds = updated
				if err := c.store.SetBandTokens(band, creds.AccessToken, creds.RefreshToken); err != nil {
					c.logger.Warn("failed to persist refreshed tokens", "band", band, "err", err)
				} else {
					c.logger.Info("tokens refreshed and saved", "band", band)
				}
			}

			records := FilterOpenBefore(Records(payload), startISO)
			if len(records) == 0 {
				failed = append(failed, endpoint.name)
			}
		}

		if len(failed) > 0 {
			report[key] = failed
			c.logger.Warn("band missing records", "band", band, "endpoints", failed)
		} else {
			c.logger.Info("band compliant", "band", band)
		}
	}

	return report, nil
}
