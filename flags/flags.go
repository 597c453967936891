// Package flags defines the CLI application skeleton and the flag sets
// shared across launchpad commands.
package flags

import (
	"os"

	cli "gopkg.in/urfave/cli.v1"
)

// NewApp returns the base CLI application for the launchpad toolkit.
func NewApp() *cli.App {
	app := cli.NewApp()
	app.Name = "launchpad"
	app.Usage = "Permissioned token-launchpad platform toolkit"
	app.Version = "1.0.0"
	app.Writer = os.Stdout
	return app
}

// CommonFlags returns the flags shared by every command.
func CommonFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "log.format",
			Usage: "Log output format (text|json)",
			Value: "text",
		},
		cli.IntFlag{
			Name:  "log.verbosity",
			Usage: "Logging verbosity (0=panic,1=fatal,2=error,3=warn,4=info,5=debug)",
			Value: 4,
		},
		cli.StringFlag{
			Name:  "sentry.dsn",
			Usage: "Sentry DSN for error reporting (disabled when empty)",
		},
	}
}

// DemoFlags returns the flags of the demo command.
func DemoFlags() []cli.Flag {
	return []cli.Flag{
		cli.Uint64Flag{
			Name:  "demo.participants",
			Usage: "Number of simulated participants",
			Value: 3,
		},
		cli.Uint64Flag{
			Name:  "demo.hardcap",
			Usage: "Hard cap of the simulated sale, in whole quote tokens",
			Value: 100000,
		},
	}
}
