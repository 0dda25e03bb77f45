package postgres

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"credcore/config"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestGormLogger(t *testing.T, debug bool) (logger.Interface, *bytes.Buffer) {
	t.Helper()

	buf := &bytes.Buffer{}
	base := slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	cfg := &config.Config{}
	cfg.Env.Debug = debug

	return newGormSlogLogger(base, cfg), buf
}

func sqlFn() (string, int64) {
	return `SELECT * FROM "users" WHERE email = $1`, 1
}

func TestGormSlogLogger_TraceError(t *testing.T) {
	l, buf := newTestGormLogger(t, false)

	l.Trace(context.Background(), time.Now(), sqlFn, errors.New("boom"))

	assert.Contains(t, buf.String(), "gorm query failed")
	assert.Contains(t, buf.String(), "boom")
}

func TestGormSlogLogger_TraceIgnoresRecordNotFound(t *testing.T) {
	l, buf := newTestGormLogger(t, false)

	l.Trace(context.Background(), time.Now(), sqlFn, gorm.ErrRecordNotFound)

	assert.Empty(t, buf.String())
}

func TestGormSlogLogger_TraceSlowQuery(t *testing.T) {
	l, buf := newTestGormLogger(t, false)

	l.Trace(context.Background(), time.Now().Add(-time.Second), sqlFn, nil)

	assert.Contains(t, buf.String(), "gorm slow query")
}

func TestGormSlogLogger_TraceQueryOnlyInDebug(t *testing.T) {
	quiet, quietBuf := newTestGormLogger(t, false)
	quiet.Trace(context.Background(), time.Now(), sqlFn, nil)
	assert.Empty(t, quietBuf.String())

	verbose, verboseBuf := newTestGormLogger(t, true)
	verbose.Trace(context.Background(), time.Now(), sqlFn, nil)
	assert.Contains(t, verboseBuf.String(), "gorm query")
}

func TestGormSlogLogger_LogModeSilent(t *testing.T) {
	l, buf := newTestGormLogger(t, true)

	l.LogMode(logger.Silent).Trace(context.Background(), time.Now(), sqlFn, errors.New("boom"))
	l.LogMode(logger.Silent).Error(context.Background(), "failed %s", "x")

	assert.Empty(t, buf.String())
}

func TestGormSlogLogger_ParamsFilterDropsValues(t *testing.T) {
	l, _ := newTestGormLogger(t, false)

	filter, ok := l.(gorm.ParamsFilter)
	require.True(t, ok)

	sql, params := filter.ParamsFilter(context.Background(), "INSERT INTO users VALUES ($1)", "secret-record")
	assert.Equal(t, "INSERT INTO users VALUES ($1)", sql)
	assert.Empty(t, params)
}
