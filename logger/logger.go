package logger

import (
	"github.com/sirupsen/logrus"

	"github.com/teamlint/puppr/config"
)

// Init sets up the standard logrus logger from cfg.
func Init(cfg config.LoggerCfg) {
	if !cfg.HumanReadable {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	logrus.SetReportCaller(cfg.Caller)

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		logrus.WithError(err).WithField("level", cfg.Level).Warnln("unknown logger level, using info")
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}
