package main

import "github.com/urfave/cli/v2"

func (s *srv) loadApp() {
	app := cli.NewApp()
	app.Action = cli.ShowAppHelp
	app.Name = "ledger"
	app.Usage = "Reward ledger services"
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Usage:   "Path to the toml config file",
			EnvVars: []string{"LEDGER_CONFIG"},
		},
	}
	app.Before = s.prepare
	app.Commands = []*cli.Command{
		{
			Action:      s.startApi,
			Name:        "api",
			Usage:       "Start service api",
			Category:    "Api",
			Description: `Serves the reward apis and the prometheus endpoint.`,
		},
		{
			Action:      s.startSubscriber,
			Name:        "subscriber",
			Usage:       "Start service subscriber",
			Category:    "Worker",
			Description: `Consumes counter events to fold daily aggregates and activate referrals.`,
		},
		{
			Action:      s.startRelay,
			Name:        "relay",
			Usage:       "Start service relay",
			Category:    "Worker",
			Description: `Publishes committed outbox events to the message queue.`,
		},
		{
			Action:      s.startCron,
			Name:        "cron",
			Usage:       "Start cron jobs",
			Category:    "Worker",
			Description: `Takes leaderboard snapshots and sweeps daily aggregates.`,
		},
		{
			Action:   s.startMigrate,
			Name:     "migrate",
			Usage:    "Apply a data migration",
			Category: "Database",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "version",
					Usage:    "Migration version, e.g. 0001",
					Required: true,
				},
			},
		},
		{
			Action:    s.issueToken,
			Name:      "token",
			Usage:     "Issue an access token",
			ArgsUsage: "<userID>",
			Category:  "Tool",
		},
	}

	s.app = app
}
