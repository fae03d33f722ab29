package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/bandctl/internal/history"
	"github.com/desertthunder/bandctl/internal/secrets"
	"github.com/desertthunder/bandctl/internal/shared"
	"github.com/desertthunder/bandctl/internal/whoop"
	"github.com/urfave/cli/v3"
)

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")).Bold(true)
)

// CheckDailyCompliance scans every band for sleep, cycle, and recovery
// records on the given date and reports failures as JSON on stdout.
func (r *Runner) CheckDailyCompliance(ctx context.Context, cmd *cli.Command) error {
	date := cmd.String("date")

	checker := whoop.NewChecker(r.client, r.store, r.logger)
	report, err := checker.CheckDay(ctx, date)
	if err != nil {
		return err
	}

	r.renderComplianceSummary(report)

	if cmd.Bool("save") {
		store, err := history.Open(r.config.Database.Path, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.RecordRun(date, report); err != nil {
			return err
		}
		r.logger.Info("compliance run recorded", "date", date, "db", r.config.Database.Path)
	}

	if len(report) == 0 {
		return r.writePlain("DAILY COMPLIANCE SUCCESSFUL FOR ALL BANDS\n")
	}
	return r.writeJSON(report, true)
}

// renderComplianceSummary prints a styled per-band line to stderr; stdout
// stays machine-readable.
func (r *Runner) renderComplianceSummary(report whoop.ComplianceReport) {
	for band := 1; band <= secrets.NumBands; band++ {
		key := strconv.Itoa(band)
		if missing, ok := report[key]; ok {
			fmt.Fprintf(r.errOutput, "%s band %s missing: %s\n", failStyle.Render("✗"), key, strings.Join(missing, ", "))
		} else {
			fmt.Fprintf(r.errOutput, "%s band %s ok\n", okStyle.Render("✓"), key)
		}
	}
}

// History lists recorded compliance runs for a date.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	date := cmd.String("date")
	if !whoop.ValidDate(date) {
		return fmt.Errorf("%w: %q (expected YYYY-MM-DD)", shared.ErrInvalidDate, date)
	}

	store, err := history.Open(r.config.Database.Path, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.Runs(date)
	if err != nil {
		return err
	}
	if runs == nil {
		runs = []history.Run{}
	}
	return r.writeJSON(runs, cmd.Bool("pretty"))
}

// SetupFiles writes the example config, creates the secrets skeleton, and
// initializes the compliance history database.
func (r *Runner) SetupFiles(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if err := shared.CreateConfigFile(configPath); err != nil {
		r.logger.Warnf("config not created: %v", err)
	} else {
		r.logger.Info("config created", "path", configPath)
	}

	if _, err := r.store.Load(); err != nil {
		return err
	}
	r.logger.Info("secrets file ready", "path", r.store.Path())

	store, err := history.Open(r.config.Database.Path, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
	if err != nil {
		return err
	}
	defer store.Close()
	r.logger.Info("history database ready", "path", r.config.Database.Path)

	return r.writePlain("✓ Setup complete. Fill client_id/client_secret in %s and run bandctl --band N to authorize.\n", r.store.Path())
}
