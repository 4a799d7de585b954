package obs

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

type ctxKey string

const (
	RequestIDKey ctxKey = "req_id"
	loggerKey    ctxKey = "logger"
)

// WithRequestID stores id on ctx so timed operations can be correlated with the request.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

// WithLogger attaches a request-scoped logger to ctx.
func WithLogger(ctx context.Context, log logrus.FieldLogger) context.Context {
	return context.WithValue(ctx, loggerKey, log)
}

// Logger returns the logger stored by WithLogger, or the standard logger.
func Logger(ctx context.Context) logrus.FieldLogger {
	if log, ok := ctx.Value(loggerKey).(logrus.FieldLogger); ok && log != nil {
		return log
	}
	return logrus.StandardLogger()
}

// Time logs the duration of op at debug level once the returned func runs.
// Usage: defer obs.Time(ctx, log, "store.Get")(&err)
func Time(ctx context.Context, log logrus.FieldLogger, name string) func(errp *error) {
	start := time.Now()

	return func(errp *error) {
		if log == nil {
			return
		}
		fields := logrus.Fields{
			"op":     name,
			"dur_ms": time.Since(start).Milliseconds(),
		}
		if id := RequestID(ctx); id != "" {
			fields["req_id"] = id
		}

		if errp != nil && *errp != nil {
			log.WithFields(fields).WithError(*errp).Debug("operation failed")
			return
		}
		log.WithFields(fields).Debug("operation done")
	}
}
