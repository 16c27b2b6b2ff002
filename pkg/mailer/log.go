package mailer

import (
	"context"

	"github.com/sirupsen/logrus"
)

// LogSender writes messages to the log instead of delivering them.
type LogSender struct {
	Logger *logrus.Logger
}

func NewLogSender(logger *logrus.Logger) *LogSender {
	return &LogSender{Logger: logger}
}

func (l *LogSender) Send(_ context.Context, to, subject, text, _ string) error {
	l.Logger.WithFields(logrus.Fields{
		"to":      to,
		"subject": subject,
	}).Info("mail sending disabled; message logged\n" + text)
	return nil
}
