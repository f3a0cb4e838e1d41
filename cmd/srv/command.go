package main

import "github.com/urfave/cli/v2"

// NewApp creates an app with sane defaults.
func (s *srv) loadApp() {
	configFlag := &cli.StringFlag{
		Name:  "config",
		Usage: "The path of the configuration file",
	}

	app := cli.NewApp()
	app.Action = cli.ShowAppHelp
	app.Name = "TaskForge"
	app.Usage = ""
	app.Commands = []*cli.Command{
		{
			Action:      server.startApi,
			Name:        "api",
			Usage:       "Start service api",
			Flags:       []cli.Flag{configFlag},
			Category:    "Api",
			Description: `Used for start service api, the main service included all apis.`,
		},
		{
			Action: server.startMigrate,
			Name:   "migrate",
			Usage:  "Migrate the database",
			Flags: []cli.Flag{
				configFlag,
				&cli.StringFlag{
					Name:  "version",
					Usage: "The version to migrate the database to",
					Value: "auto",
				},
			},
			Category:    "Database",
			Description: `Used to bring the database schema to a specific version.`,
		},
		{
			Action:      server.startSubscriber,
			Name:        "subscriber",
			Usage:       "Start service subscriber",
			Flags:       []cli.Flag{configFlag},
			Category:    "Worker",
			Description: `Used to start worker that consumes notification events from the message queue.`,
		},
	}

	s.app = app
}
