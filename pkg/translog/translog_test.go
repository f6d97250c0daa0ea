package translog

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/encap/pkg/testutil"
	"github.com/arthur-debert/encap/pkg/types"
)

func TestFormatEntry(t *testing.T) {
	ts := time.Date(2026, time.October, 8, 14, 5, 9, 0, time.Local)
	assert.Equal(t,
		"Oct  8 2026 14:05 /usr/local           foo-1.0                  install success\n",
		FormatEntry(ts, "/usr/local", "foo-1.0", "install", "success"))

	ts = time.Date(2026, time.March, 18, 9, 30, 0, 0, time.Local)
	assert.Equal(t,
		"Mar 18 2026 09:30 /opt                 a-very-long-package-name-1.0 remove  partial\n",
		FormatEntry(ts, "/opt", "a-very-long-package-name-1.0", "remove", "partial"))
}

func TestRecord(t *testing.T) {
	for _, envType := range testutil.AllEnvTypes {
		t.Run(envType.String(), func(t *testing.T) {
			env := testutil.NewTestEnvironment(t, envType)
			l := New(env.FS, env.Source, env.Target)
			l.now = func() time.Time { return time.Date(2026, time.October, 18, 8, 0, 0, 0, time.Local) }

			require.NoError(t, l.Record("foo-1.0", types.ModeInstall, types.OutcomeSuccess))
			require.NoError(t, l.Record("foo-1.0", types.ModeInstall, types.OutcomeNoop))
			require.NoError(t, l.Record("bar-2.0", types.ModeRemove, types.OutcomeFailed))
			assert.Error(t, l.Record("bar-2.0", types.ModeCheck, types.OutcomeSuccess))

			data, err := os.ReadFile(l.Path())
			require.NoError(t, err)
			lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
			require.Len(t, lines, 2)
			assert.True(t, strings.HasPrefix(lines[0], "Oct 18 2026 08:00 "+env.Target))
			assert.True(t, strings.HasSuffix(lines[0], "install success"))
			assert.Contains(t, lines[1], "bar-2.0")
			assert.True(t, strings.HasSuffix(lines[1], "remove  failed"))
		})
	}
}

func TestRecord_UnwritableSource(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvIsolated)
	l := New(env.FS, env.SourcePath("missing"), env.Target)
	assert.Error(t, l.Record("foo-1.0", types.ModeInstall, types.OutcomeSuccess))
}
