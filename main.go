package main

import (
	"os"

	"cgctl/constant"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

const usage = `cgctl inspects cgroup hierarchies and manages device access rules.`

func main() {
	app := cli.NewApp()
	app.Name = "cgctl"
	app.Usage = usage

	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "debug",
			Usage: "enable debug logging",
		},
		cli.StringFlag{
			Name:  "log",
			Value: "",
			Usage: "set the log file to write logs to (default is '/dev/stderr')",
		},
		cli.StringFlag{
			Name:  "log-format",
			Value: "text",
			Usage: "set the log format ('text' (default), or 'json')",
		},
	}
	app.Commands = []cli.Command{
		modeCommand,
		subsystemsCommand,
		devicesCommand,
		applyCommand,
	}
	app.Before = configLogrus

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func configLogrus(context *cli.Context) error {
	log.SetOutput(os.Stderr)
	if context.GlobalBool("debug") {
		log.SetLevel(log.DebugLevel)
		log.SetReportCaller(true)
	}

	switch f := context.GlobalString("log-format"); f {
	case "", "text":
		// do nothing
	case "json":
		log.SetFormatter(new(log.JSONFormatter))
	default:
		return errors.New("invalid log-format: " + f)
	}

	if file := context.GlobalString("log"); file != "" {
		f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND|os.O_SYNC, constant.Perm0644)
		if err != nil {
			return err
		}
		log.SetOutput(f)
	}
	return nil
}
