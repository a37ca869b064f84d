package sms

import (
	"context"

	"github.com/sirupsen/logrus"
)

// LogGateway writes messages to the log instead of sending them. It is the
// default for development and for deployments without an SMS account.
type LogGateway struct {
	logger *logrus.Logger
}

// NewLogGateway creates a gateway that only logs
func NewLogGateway(logger *logrus.Logger) *LogGateway {
	return &LogGateway{logger: logger}
}

// Name returns the gateway name
func (g *LogGateway) Name() string {
	return "log"
}

// Send logs the message once per valid recipient
func (g *LogGateway) Send(_ context.Context, phones []string, message string) error {
	recipients, err := normalizeRecipients(phones)
	if err != nil {
		return err
	}
	for _, r := range recipients {
		g.logger.WithFields(logrus.Fields{
			"to":      r,
			"message": message,
		}).Info("SMS (log gateway)")
	}
	return nil
}
