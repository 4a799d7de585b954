package obs

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	log, err := NewLogger("warn", "json")
	require.NoError(t, err)
	assert.Equal(t, logrus.WarnLevel, log.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)

	_, err = NewLogger("loud", "text")
	assert.Error(t, err)

	_, err = NewLogger("info", "xml")
	assert.Error(t, err)
}

func TestTimeLogsErrorAndRequestID(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)
	log.SetLevel(logrus.DebugLevel)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	ctx := WithRequestID(context.Background(), "req-1")
	err := errors.New("boom")
	Time(ctx, log, "store.Put")(&err)

	out := buf.String()
	assert.Contains(t, out, "op=store.Put")
	assert.Contains(t, out, "req_id=req-1")
	assert.Contains(t, out, "error=boom")
}

func TestLoggerFromContext(t *testing.T) {
	assert.Equal(t, logrus.StandardLogger(), Logger(context.Background()))

	log := Discard()
	ctx := WithLogger(context.Background(), log)
	assert.Same(t, log, Logger(ctx))
}
