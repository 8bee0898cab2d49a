package main

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/teamlint/puppr/bridge/nats"
	"github.com/teamlint/puppr/config"
	"github.com/teamlint/puppr/logger"
	"github.com/teamlint/puppr/model"
	"github.com/teamlint/puppr/server"
	"github.com/teamlint/puppr/store"
)

// go build -ldflags "-X main.version=1.0.1" main.go
var version = "0.0.1"

func main() {
	app := &cli.App{
		Name:    "puppr-server",
		Usage:   "serve puppr change notifications",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Value:   "config.yml",
				Aliases: []string{"c"},
				Usage:   "path to config file",
			},
			&cli.BoolFlag{
				Name:    "memory",
				Aliases: []string{"m"},
				Usage:   "keep data in memory instead of postgres",
			},
		},
		Action: func(c *cli.Context) error {
			// config
			cfg, err := config.Load(c.String("config"))
			if err != nil {
				logrus.WithError(err).Fatalln("config.Load error")
			}
			memory := c.Bool("memory")
			if err = cfg.ValidateServer(memory); err != nil {
				logrus.WithError(err).Fatalln("validate config error")
			}
			// logger
			logger.Init(cfg.Logger)
			// store
			st, err := openStore(c.Context, cfg, memory)
			if err != nil {
				logrus.Fatal(err)
			}
			srv := server.New(cfg, st)
			// publisher
			mirror, err := nats.Register(cfg.Publisher, srv.Subject())
			if err != nil {
				logrus.Fatal(err)
			}
			if mirror != nil {
				srv.AddCloser(mirror)
			}
			return srv.Process()
		},
	}
	if err := app.Run(os.Args); err != nil {
		logrus.Fatal(err)
	}
}

func openStore(ctx context.Context, cfg *config.Config, memory bool) (model.Store, error) {
	if memory {
		logrus.Infoln("using in-memory store")
		return store.NewMemStore(), nil
	}
	pg, err := store.Connect(cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := pg.EnsureSchema(ctx); err != nil {
		_ = pg.Close()
		return nil, err
	}
	return pg, nil
}
