package main

import "github.com/urfave/cli/v3"

type appFlags struct {
	from       string
	report     string
	configPath string
	logLevel   string
	logFormat  string
	debug      bool
}

func orderFlags(f *appFlags) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "from",
			Usage:       "byte order of the source checkpoint (little, big, native)",
			Value:       "little",
			Destination: &f.from,
		},
	}
}

func outputFlags(f *appFlags) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "report",
			Usage:       "completion report format (text, json)",
			Value:       "text",
			Destination: &f.report,
		},
		&cli.StringFlag{
			Name:        "config",
			Usage:       "path to config.yaml (default: user config dir)",
			Destination: &f.configPath,
		},
	}
}

func loggingFlags(f *appFlags) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &f.logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (pretty, json, text)",
			Value:       "pretty",
			Destination: &f.logFormat,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "enable debug logging (shorthand for --log-level=debug)",
			Destination: &f.debug,
		},
	}
}
