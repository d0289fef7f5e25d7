package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func sqlOf(s string) func() (string, int64) {
	return func() (string, int64) { return s, 0 }
}

func TestZapLogger_SkipsRecordNotFound(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := newZapLogger(zap.New(core))

	l.Trace(context.Background(), time.Now(), sqlOf("SELECT * FROM clients WHERE phone = '+1'"), gorm.ErrRecordNotFound)
	assert.Zero(t, logs.Len())

	l.Trace(context.Background(), time.Now(), sqlOf("INSERT INTO bookings"), errors.New("disk full"))
	entries := logs.FilterMessage("query failed").All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
		assert.Equal(t, "INSERT INTO bookings", entries[0].ContextMap()["sql"])
	}
}

func TestZapLogger_SlowQueryAndSilent(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := newZapLogger(zap.New(core))

	l.Trace(context.Background(), time.Now().Add(-time.Second), sqlOf("SELECT 1"), nil)
	assert.Equal(t, 1, logs.FilterMessage("slow query").Len())

	silent := l.LogMode(logger.Silent)
	silent.Trace(context.Background(), time.Now(), sqlOf("INSERT"), errors.New("boom"))
	assert.Equal(t, 1, logs.Len())

	// fast successful queries stay quiet at the default level
	l.Trace(context.Background(), time.Now(), sqlOf("SELECT 2"), nil)
	assert.Equal(t, 1, logs.Len())
}
