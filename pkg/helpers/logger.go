package helpers

import (
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger returns a logrus logger writing to stdout. Development uses the
// text formatter at debug level; every other env logs JSON at info. A valid
// level string overrides the env default.
func NewLogger(appName, env, level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	if env == "development" {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetLevel(logrus.InfoLevel)
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	if level != "" {
		lvl, err := logrus.ParseLevel(level)
		if err != nil {
			logger.WithField("level", level).Warn("invalid log level, keeping default")
		} else {
			logger.SetLevel(lvl)
		}
	}
	logger.WithFields(logrus.Fields{"app": appName, "env": env, "level": logger.GetLevel().String()}).Info("logger initialized")
	return logger
}

// LogError logs msg at error level with err attached to fields.
func LogError(logger *logrus.Logger, msg string, err error, fields logrus.Fields) {
	if fields == nil {
		fields = logrus.Fields{}
	}
	if err != nil {
		fields[logrus.ErrorKey] = err.Error()
	}
	logger.WithFields(fields).Error(msg)
}

func LogInfo(logger *logrus.Logger, msg string, fields logrus.Fields) {
	logger.WithFields(fields).Info(msg)
}
