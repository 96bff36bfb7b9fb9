package logging_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spanlens/spanlens/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	uu := map[string]struct {
		in  string
		lvl zapcore.Level
		err bool
	}{
		"empty":   {in: "", lvl: zapcore.InfoLevel},
		"debug":   {in: "debug", lvl: zapcore.DebugLevel},
		"upper":   {in: "ERROR", lvl: zapcore.ErrorLevel},
		"warning": {in: "warning", lvl: zapcore.WarnLevel},
		"bogus":   {in: "chatty", err: true},
	}

	for k := range uu {
		u := uu[k]
		t.Run(k, func(t *testing.T) {
			lvl, err := logging.ParseLevel(u.in)
			if u.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, u.lvl, lvl)
		})
	}
}

func TestNewWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "spanlens.log")
	l, err := logging.New("warn", path)
	require.NoError(t, err)

	l.Info("dropped")
	l.Warn("kept", zap.String("rid", "spans@p1"))
	_ = l.Sync()

	bb, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(bb), `"msg":"kept"`)
	assert.Contains(t, string(bb), `"rid":"spans@p1"`)
	assert.NotContains(t, string(bb), "dropped")
}

func TestNewNoFile(t *testing.T) {
	l, err := logging.New("info", "")
	require.NoError(t, err)
	assert.NotNil(t, l)

	_, err = logging.New("loud", "")
	assert.Error(t, err)
}
