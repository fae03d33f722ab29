package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/bandctl/internal/shared"
	"github.com/desertthunder/bandctl/internal/whoop"
	"github.com/urfave/cli/v3"
)

// GetSleep fetches sleep records for a band.
func (r *Runner) GetSleep(ctx context.Context, cmd *cli.Command) error {
	return r.runGet(ctx, cmd, "sleep", r.client.Sleep)
}

// GetCycle fetches physiological cycle records for a band.
func (r *Runner) GetCycle(ctx context.Context, cmd *cli.Command) error {
	return r.runGet(ctx, cmd, "cycle", r.client.Cycle)
}

// GetRecovery fetches recovery records for a band.
func (r *Runner) GetRecovery(ctx context.Context, cmd *cli.Command) error {
	return r.runGet(ctx, cmd, "recovery", r.client.Recovery)
}

// GetWorkout fetches workout records for a band.
func (r *Runner) GetWorkout(ctx context.Context, cmd *cli.Command) error {
	return r.runGet(ctx, cmd, "workout", r.client.Workout)
}

// runGet is the shared fetch pipeline behind the four get_* commands:
// resolve credentials, fetch one page or all pages, persist rotated tokens,
// re-filter on the start date, and print the result as JSON on stdout.
//
// Every error here is fatal for the command; there is no retry beyond the
// client's single refresh-and-retry pass.
func (r *Runner) runGet(ctx context.Context, cmd *cli.Command, name string, fetch whoop.FetchPage) error {
	band := cmd.Int("band")
	pretty := cmd.Bool("pretty")

	start, err := whoop.APITimestamp(cmd.String("start"), false)
	if err != nil {
		return err
	}
	end, err := whoop.APITimestamp(cmd.String("end"), true)
	if err != nil {
		return err
	}

	clientID, clientSecret, err := r.store.ClientCredentials()
	if err != nil {
		return err
	}
	if clientID == "" || clientSecret == "" {
		return fmt.Errorf("%w: client_id/client_secret missing in %s, fill them and rerun", shared.ErrMissingCredentials, r.store.Path())
	}

	access, refresh, err := r.store.BandTokens(band)
	if err != nil {
		return err
	}
	if access == "" || refresh == "" {
		return fmt.Errorf("%w: band %d has no tokens in %s, run the authorization flow first", shared.ErrMissingCredentials, band, r.store.Path())
	}

	r.logger.Info("fetching data", "endpoint", name, "band", band, "start", start, "end", end, "all", cmd.Bool("all"))

	creds := whoop.Credentials{AccessToken: access, RefreshToken: refresh}
	params := whoop.PageParams{Limit: cmd.Int("limit"), Start: start, End: end}

	var payload any
	var updated whoop.Credentials
	if cmd.Bool("all") {
		payload, updated, err = r.client.FetchAll(ctx, fetch, creds, params)
	} else {
		payload, updated, err = fetch(ctx, creds, params)
	}
	if err != nil {
		return err
	}

	if updated != creds {
		if err := r.store.SetBandTokens(band, updated.AccessToken, updated.RefreshToken); err != nil {
			return err
		}
		r.logger.Info("tokens refreshed and saved", "band", band)
	}

	// The server-side range filter over-includes records that merely
	// intersect the window, so re-filter on start here.
	if start != "" {
		if page, ok := payload.(map[string]any); ok {
			if records, ok := page["records"].([]any); ok {
				filtered := whoop.FilterByStart(records, start)
				if dropped := len(records) - len(filtered); dropped > 0 {
					r.logger.Info("filtered records that started before range", "dropped", dropped, "start", start)
				}
				page["records"] = filtered
			}
		}
	}

	return r.writeJSON(payload, pretty)
}
