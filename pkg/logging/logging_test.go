package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		name      string
		verbosity int
		wantLevel zerolog.Level
	}{
		{"default warn level", 0, zerolog.WarnLevel},
		{"info level", 1, zerolog.InfoLevel},
		{"debug level", 2, zerolog.DebugLevel},
		{"trace level", 3, zerolog.TraceLevel},
		{"high verbosity defaults to trace", 5, zerolog.TraceLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tempDir := t.TempDir()
			t.Cleanup(xdg.Reload)
			t.Setenv("XDG_STATE_HOME", tempDir)
			xdg.Reload()

			SetupLogger(tt.verbosity)

			assert.Equal(t, tt.wantLevel, zerolog.GlobalLevel())
			_, err := os.Stat(filepath.Join(tempDir, "encap", "encap.log"))
			assert.NoError(t, err)
		})
	}
}

func TestGetLogFilePath(t *testing.T) {
	t.Cleanup(xdg.Reload)

	t.Setenv("XDG_STATE_HOME", "/custom/state")
	xdg.Reload()
	assert.Equal(t, "/custom/state/encap/encap.log", getLogFilePath())

	t.Setenv("XDG_STATE_HOME", "")
	xdg.Reload()
	got := getLogFilePath()
	assert.Contains(t, got, filepath.Join(".local", "state", "encap", "encap.log"))
}

func TestLogOperationStart(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	done := LogOperationStart(logger, "install")
	require.Contains(t, buf.String(), "Operation started")
	done()
	assert.Contains(t, buf.String(), "Operation completed")
	assert.Contains(t, buf.String(), `"operation":"install"`)
}
