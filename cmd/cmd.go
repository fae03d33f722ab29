// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// rootFlags apply to the whole application; the band/no-browser pair also
// serves the default action, the OAuth authorization flow.
func rootFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
			Value:   "config.toml",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Enable debug logging",
		},
		&cli.IntFlag{
			Name:    "band",
			Aliases: []string{"b"},
			Usage:   "Band number to authorize (1-10)",
		},
		&cli.BoolFlag{
			Name:  "no-browser",
			Usage: "Do not auto-open the browser; print the authorization URL instead",
		},
	}
}

// dataFlags are shared by the four get_* commands.
func dataFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:     "band",
			Aliases:  []string{"b"},
			Usage:    "Band number to fetch data for (1-10)",
			Required: true,
		},
		&cli.IntFlag{
			Name:  "limit",
			Usage: "Maximum number of records per page",
			Value: 25,
		},
		&cli.BoolFlag{
			Name:  "all",
			Usage: "Fetch all pages of data (follows next_token)",
		},
		&cli.StringFlag{
			Name:  "start",
			Usage: "Start date in YYYY-MM-DD format; returns records from the beginning of this day",
		},
		&cli.StringFlag{
			Name:  "end",
			Usage: "End date in YYYY-MM-DD format; returns records until the end of this day",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print JSON output",
			Value: true,
		},
	}
}

func getSleepCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "get_sleep",
		Usage:  "Fetch sleep records for a band",
		Flags:  dataFlags(),
		Action: r.GetSleep,
	}
}

func getCycleCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "get_cycle",
		Usage:  "Fetch physiological cycle records for a band",
		Flags:  dataFlags(),
		Action: r.GetCycle,
	}
}

func getRecoveryCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "get_recovery",
		Usage:  "Fetch recovery records for a band",
		Flags:  dataFlags(),
		Action: r.GetRecovery,
	}
}

func getWorkoutCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "get_workout",
		Usage:  "Fetch workout records for a band",
		Flags:  dataFlags(),
		Action: r.GetWorkout,
	}
}

func complianceCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "check_daily_compliance",
		Usage: "Check that every band produced sleep, cycle & recovery records for a day",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "date",
				Usage:    "Date to check in YYYY-MM-DD format",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "save",
				Usage: "Record the result in the compliance history database",
			},
		},
		Action: r.CheckDailyCompliance,
	}
}

func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List recorded compliance runs for a date",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "date",
				Usage:    "Date to list in YYYY-MM-DD format",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print JSON output",
				Value: true,
			},
		},
		Action: r.History,
	}
}

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Write an example config, create the secrets skeleton, and initialize the history database",
		Action: r.SetupFiles,
	}
}
