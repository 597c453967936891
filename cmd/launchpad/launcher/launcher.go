// Package launcher wires the CLI commands: flag parsing, logging setup
// (including the optional Sentry hook) and the demo scenario runner.
package launcher

import (
	"fmt"

	"github.com/evalphobia/logrus_sentry"
	"github.com/sirupsen/logrus"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/launchforge/go-launchpad/flags"
)

// Launch parses the arguments and runs the selected command.
func Launch(args []string) error {
	app := flags.NewApp()
	app.Flags = flags.CommonFlags()
	app.Before = setupLogging
	app.Commands = []cli.Command{
		{
			Name:   "demo",
			Usage:  "Run a full simulated sale lifecycle against the in-memory host",
			Flags:  append(flags.CommonFlags(), flags.DemoFlags()...),
			Action: runDemo,
		},
	}
	return app.Run(args)
}

// setupLogging configures the global logger from the common flags.
func setupLogging(ctx *cli.Context) error {
	switch ctx.String("log.format") {
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return fmt.Errorf("unknown log format %q", ctx.String("log.format"))
	}

	verbosity := ctx.Int("log.verbosity")
	if verbosity < 0 || verbosity > 5 {
		return fmt.Errorf("log verbosity %d outside [0, 5]", verbosity)
	}
	logrus.SetLevel(logrus.Level(verbosity))

	if dsn := ctx.String("sentry.dsn"); dsn != "" {
		hook, err := logrus_sentry.NewSentryHook(dsn, []logrus.Level{
			logrus.PanicLevel,
			logrus.FatalLevel,
			logrus.ErrorLevel,
		})
		if err != nil {
			return fmt.Errorf("sentry hook: %v", err)
		}
		logrus.AddHook(hook)
	}
	return nil
}
