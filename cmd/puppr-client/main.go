package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/teamlint/puppr/client"
	"github.com/teamlint/puppr/config"
	"github.com/teamlint/puppr/event"
	"github.com/teamlint/puppr/logger"
	"github.com/teamlint/puppr/subject"
)

var version = "0.0.1"

func main() {
	app := &cli.App{
		Name:    "puppr-client",
		Usage:   "tail puppr change notifications",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to config file",
			},
			&cli.StringFlag{
				Name:    "url",
				Aliases: []string{"u"},
				Usage:   "server events `URL`",
			},
			&cli.StringSliceFlag{
				Name:    "names",
				Aliases: []string{"n"},
				Usage:   "event names to follow, all when empty",
			},
		},
		Action: tail,
	}
	if err := app.Run(os.Args); err != nil {
		logrus.Fatal(err)
	}
}

func tail(c *cli.Context) error {
	cfg := config.Default()
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			logrus.WithError(err).Fatalln("config.Load error")
		}
		cfg = *loaded
	}
	if url := c.String("url"); url != "" {
		cfg.Client.URL = url
	}
	if names := c.StringSlice("names"); len(names) > 0 {
		cfg.Client.Names = names
	}
	if err := cfg.ValidateClient(); err != nil {
		logrus.WithError(err).Fatalln("validate config error")
	}
	logger.Init(cfg.Logger)

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cl, err := client.Dial(ctx, cfg.Client)
	if err != nil {
		return err
	}
	defer cl.Close()

	_, err = cl.Subscribe(subject.Func(func(_ context.Context, evt event.Event) error {
		logrus.WithFields(logrus.Fields{
			"id":        evt.ID,
			"name":      evt.Name,
			"old_value": evt.OldValue,
			"new_value": evt.NewValue,
		}).Infoln("event")
		return nil
	}))
	if err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		return nil
	case <-cl.Done():
		return cl.Err()
	}
}
