// Package log add logging utilities.
package log

import (
	"strings"
	"time"

	"ssvp/internal/pkg/wire"

	"github.com/sirupsen/logrus"
)

// SetLogger sets the default logger's level.
func SetLogger(level string) {
	logrus.SetLevel(logrus.ErrorLevel)
	customFormatter := new(logrus.TextFormatter)
	customFormatter.TimestampFormat = time.RFC3339
	logrus.SetFormatter(customFormatter)
	customFormatter.FullTimestamp = true
	switch strings.ToLower(level) {
	case "trace":
		logrus.SetLevel(logrus.TraceLevel)
	case "debug":
		logrus.SetLevel(logrus.DebugLevel)
	case "info":
		logrus.SetLevel(logrus.InfoLevel)
	case "warn":
		logrus.SetLevel(logrus.WarnLevel)
	case "error":
		logrus.SetLevel(logrus.ErrorLevel)
	default:
		logrus.SetLevel(logrus.ErrorLevel)
	}
}

func RecordToFields(rec wire.Record) logrus.Fields {
	return logrus.Fields{
		"step_id":      rec.StepID,
		"wait_seconds": rec.WaitSeconds,
		"payload_size": len(rec.Payload),
	}
}

func ResponseToFields(resp wire.Response) logrus.Fields {
	return logrus.Fields{
		"step_id": resp.StepID,
		"code":    resp.Code.String(),
	}
}
