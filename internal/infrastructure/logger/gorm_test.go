package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

func TestMapGormLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected gormlogger.LogLevel
	}{
		{"silent", gormlogger.Silent},
		{"debug", gormlogger.Info},
		{"info", gormlogger.Info},
		{"warn", gormlogger.Warn},
		{"error", gormlogger.Error},
		{"unknown", gormlogger.Warn},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, MapGormLogLevel(tt.input))
		})
	}
}

func TestGormLoggerLogMode(t *testing.T) {
	l := NewGormLogger(zap.NewNop(), gormlogger.Warn)

	updated := l.LogMode(gormlogger.Error)

	assert.NotSame(t, l, updated)
	assert.Equal(t, gormlogger.Warn, l.logLevel)
}
