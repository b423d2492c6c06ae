package logging

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestNew_DebugModeUsesTextFormatterAndDebugLevel(t *testing.T) {
	logger := New("debug")
	assert.IsType(t, &logrus.TextFormatter{}, logger.Formatter)
	assert.Equal(t, logrus.DebugLevel, logger.Level)
}

func TestNew_AnyOtherModeDefaultsToJSONAndInfoLevel(t *testing.T) {
	for _, mode := range []string{"release", "", "production"} {
		logger := New(mode)
		assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)
		assert.Equal(t, logrus.InfoLevel, logger.Level)
	}
}
