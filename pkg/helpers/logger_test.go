package helpers

import (
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_Levels(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, NewLogger("svc", "development", "").GetLevel())
	assert.Equal(t, logrus.InfoLevel, NewLogger("svc", "production", "").GetLevel())
	assert.Equal(t, logrus.WarnLevel, NewLogger("svc", "production", "warn").GetLevel())
	assert.Equal(t, logrus.InfoLevel, NewLogger("svc", "production", "loud").GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, NewLogger("svc", "production", "").Formatter)
}

func TestLogError(t *testing.T) {
	logger, hook := test.NewNullLogger()

	LogError(logger, "upload failed", errors.New("boom"), logrus.Fields{"user_id": "u1"})

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, "upload failed", entry.Message)
	assert.Equal(t, "boom", entry.Data[logrus.ErrorKey])
	assert.Equal(t, "u1", entry.Data["user_id"])
}
