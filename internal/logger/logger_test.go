package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoggerService_WritesJSONAudit(t *testing.T) {
	dir := t.TempDir()
	l := NewLoggerService(map[string]interface{}{"folder_path": dir, "format": "json", "level": "info", "console": false})
	require.NoError(t, l.Start())

	l.LogAudit("price ceilings replaced", zap.Int("rows", 3))
	l.Logger().Debug("filtered out")
	require.NoError(t, l.Stop())

	data, err := os.ReadFile(l.currentLog)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, `"msg":"price ceilings replaced"`)
	assert.Contains(t, out, `"audit":true`)
	assert.Contains(t, out, `"rows":3`)
	assert.NotContains(t, out, "filtered out")
}

func TestLoggerService_RotatesOnSize(t *testing.T) {
	dir := t.TempDir()
	l := NewLoggerService(map[string]interface{}{"folder_path": dir, "console": false})
	l.maxFileBytes = 64
	require.NoError(t, l.Start())
	defer l.Stop()

	first := l.currentLog
	l.Logger().Info(strings.Repeat("x", 128))
	time.Sleep(2 * time.Millisecond)
	require.NoError(t, l.rotateIfNeeded())
	assert.NotEqual(t, first, l.currentLog)
}

func TestZipAndCleanOldLogs(t *testing.T) {
	dir := t.TempDir()
	l := NewLoggerService(map[string]interface{}{"folder_path": dir, "retention_days": 7})

	old := filepath.Join(dir, "gtn_old.log")
	fresh := filepath.Join(dir, "gtn_fresh.log")
	require.NoError(t, os.WriteFile(old, []byte("old"), 0644))
	require.NoError(t, os.WriteFile(fresh, []byte("fresh"), 0644))
	past := time.Now().AddDate(0, 0, -30)
	require.NoError(t, os.Chtimes(old, past, past))

	assert.Equal(t, 1, l.zipAndCleanOldLogs(time.Now()))
	_, err := os.Stat(old)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(fresh)
	assert.NoError(t, err)

	zips, err := filepath.Glob(filepath.Join(dir, "logs_*.zip"))
	require.NoError(t, err)
	assert.Len(t, zips, 1)
}

func TestNew_ConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	lg := New("warn", "console", &buf)
	lg.Info("hidden")
	lg.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}
