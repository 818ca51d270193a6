package notify

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Log "sends" mail by logging it. Used when no SMTP server is configured.
type Log struct {
	log logrus.FieldLogger
}

func NewLog(log logrus.FieldLogger) *Log {
	return &Log{log: log}
}

func (l *Log) Send(ctx context.Context, to, subject, html string) bool {
	if to == "" {
		return false
	}
	l.log.WithFields(logrus.Fields{"to": to, "subject": subject, "bytes": len(html)}).Info("mail (not sent, no smtp host)")
	return true
}
