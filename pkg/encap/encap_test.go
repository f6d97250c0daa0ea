// pkg/encap/encap_test.go
// TEST TYPE: Integration Test
// DEPENDENCIES: testutil, engine, encapinfo, prereq
// PURPOSE: Test the package lifecycle: scripts, README, prerequisites and outcomes

package encap

import (
	"context"
	stderrors "errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/encap/pkg/errors"
	"github.com/arthur-debert/encap/pkg/testutil"
	"github.com/arthur-debert/encap/pkg/types"
)

func openPkg(t *testing.T, env *testutil.TestEnvironment, name string, opts types.Options) (*Package, *testutil.Recorder) {
	t.Helper()
	rec := testutil.NewRecorder()
	p, err := Open(env.FS, env.Source, env.Target, name, opts, rec)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p, rec
}

func TestOpen(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvIsolated)
	env.SimplePackage("foo-1.0", "foo")
	env.WriteFile(env.SourcePath("notadir-1.0"), "x")
	env.SetupPackage("future-1.0", testutil.PackageConfig{Info: "encap 3.0\n"})

	t.Run("opens a package", func(t *testing.T) {
		p, err := Open(env.FS, env.Source, env.Target, "foo-1.0", types.DefaultOptions, nil)
		require.NoError(t, err)
		assert.Equal(t, "foo-1.0", p.Name())
		assert.Equal(t, env.Source, p.SourceDir())
		assert.Equal(t, env.Target, p.TargetDir())
		assert.Equal(t, env.SourcePath("foo-1.0"), p.Dir())
		assert.Equal(t, "1.0", p.Info().Format)
		assert.NoError(t, p.Close())
	})

	t.Run("missing package", func(t *testing.T) {
		_, err := Open(env.FS, env.Source, env.Target, "nope-1.0", types.DefaultOptions, nil)
		assert.True(t, errors.IsErrorCode(err, errors.ErrPackageNotFound))
	})

	t.Run("not a directory", func(t *testing.T) {
		_, err := Open(env.FS, env.Source, env.Target, "notadir-1.0", types.DefaultOptions, nil)
		assert.True(t, errors.IsErrorCode(err, errors.ErrPackageInvalid))
	})

	t.Run("unsupported format", func(t *testing.T) {
		_, err := Open(env.FS, env.Source, env.Target, "future-1.0", types.DefaultOptions, nil)
		assert.True(t, errors.IsErrorCode(err, errors.ErrPackageFormat))
	})
}

func TestReportf_AttachesTrailingError(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvIsolated)
	env.SimplePackage("foo-1.0", "foo")
	p, rec := openPkg(t, env, "foo-1.0", types.DefaultOptions)

	cause := stderrors.New("boom")
	p.Reportf(nil, nil, types.EventPkgError, "mkdir: %v", cause)
	p.Reportf(nil, nil, types.EventPkgInfo, "plain %s", "message")

	events := rec.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "mkdir: boom", events[0].Message)
	assert.Equal(t, cause, events[0].Err)
	assert.Equal(t, "foo-1.0", events[0].Package)
	assert.NoError(t, events[1].Err)
}

func TestInstall_Outcomes(t *testing.T) {
	ctx := context.Background()

	t.Run("success then no-op", func(t *testing.T) {
		env := testutil.NewTestEnvironment(t, testutil.EnvIsolated)
		env.SimplePackage("foo-1.0", "foo")

		p, _ := openPkg(t, env, "foo-1.0", types.DefaultOptions)
		outcome, err := p.Install(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, types.OutcomeSuccess, outcome)

		outcome, err = p.Install(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, types.OutcomeNoop, outcome)
	})

	t.Run("partial", func(t *testing.T) {
		env := testutil.NewTestEnvironment(t, testutil.EnvIsolated)
		env.SetupPackage("foo-1.0", testutil.PackageConfig{
			Files: map[string]string{"bin/foo": "x", "bin/bar": "x"},
		})
		env.WriteFile(env.TargetPath("bin", "foo"), "mine")

		p, _ := openPkg(t, env, "foo-1.0", types.DefaultOptions)
		outcome, err := p.Install(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, types.OutcomePartial, outcome)
	})

	t.Run("failed without any success", func(t *testing.T) {
		env := testutil.NewTestEnvironment(t, testutil.EnvIsolated)
		env.SetupPackage("foo-1.0", testutil.PackageConfig{
			Files: map[string]string{"bin/foo": "x"},
		})
		env.WriteFile(env.TargetPath("bin", "foo"), "mine")

		p, rec := openPkg(t, env, "foo-1.0", types.DefaultOptions)
		outcome, err := p.Install(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, types.OutcomeFailed, outcome)
		assert.True(t, rec.Has(types.EventInstFail, "not a symlink"))
	})

	t.Run("failed on required entry", func(t *testing.T) {
		env := testutil.NewTestEnvironment(t, testutil.EnvIsolated)
		env.SetupPackage("foo-1.0", testutil.PackageConfig{
			Info:  "encap 2.0\nrequire bin/foo\n",
			Files: map[string]string{"bin/foo": "x", "lib/libfoo.a": "x"},
		})
		env.WriteFile(env.TargetPath("bin", "foo"), "mine")

		p, _ := openPkg(t, env, "foo-1.0", types.DefaultOptions)
		outcome, err := p.Install(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, types.OutcomeFailed, outcome)
		assert.False(t, env.Exists("lib"))
	})
}

func TestRemove_Outcomes(t *testing.T) {
	ctx := context.Background()

	t.Run("success then no-op", func(t *testing.T) {
		env := testutil.NewTestEnvironment(t, testutil.EnvIsolated)
		env.SimplePackage("foo-1.0", "foo")
		before := env.Snapshot()

		p, _ := openPkg(t, env, "foo-1.0", types.DefaultOptions)
		_, err := p.Install(ctx, nil)
		require.NoError(t, err)

		outcome, err := p.Remove(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, types.OutcomeSuccess, outcome)
		assert.Equal(t, before, env.Snapshot())

		outcome, err = p.Remove(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, types.OutcomeNoop, outcome)
	})

	t.Run("partial when some links are already gone", func(t *testing.T) {
		env := testutil.NewTestEnvironment(t, testutil.EnvIsolated)
		env.SimplePackage("foo-1.0", "foo")

		p, _ := openPkg(t, env, "foo-1.0", types.DefaultOptions)
		_, err := p.Install(ctx, nil)
		require.NoError(t, err)
		require.NoError(t, os.Remove(env.TargetPath("share", "doc", "foo", "README")))

		outcome, err := p.Remove(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, types.OutcomePartial, outcome)
	})
}

func TestCheck_Outcomes(t *testing.T) {
	ctx := context.Background()
	env := testutil.NewTestEnvironment(t, testutil.EnvIsolated)
	env.SimplePackage("foo-1.0", "foo")
	p, _ := openPkg(t, env, "foo-1.0", types.DefaultOptions)

	outcome, err := p.Check(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, types.OutcomeFailed, outcome)

	_, err = p.Install(ctx, nil)
	require.NoError(t, err)

	outcome, err = p.Check(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, types.OutcomeSuccess, outcome)

	// one missing link still leaves the package checked
	require.NoError(t, os.Remove(env.TargetPath("bin", "foo")))
	outcome, err = p.Check(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, types.OutcomeSuccess, outcome)
}

func TestReductions(t *testing.T) {
	const (
		none   = types.WalkStatus(0)
		noNeed = types.StatusNoNeed
		ok     = types.StatusOK
		err    = types.StatusErr
		fatal  = types.StatusFatal
	)

	tests := []struct {
		name    string
		status  types.WalkStatus
		install types.Outcome
		remove  types.Outcome
		check   types.Outcome
	}{
		{"nothing", none, types.OutcomeNoop, types.OutcomeNoop, types.OutcomeFailed},
		{"no need", noNeed, types.OutcomeNoop, types.OutcomeNoop, types.OutcomeFailed},
		{"ok", ok, types.OutcomeSuccess, types.OutcomeSuccess, types.OutcomeSuccess},
		{"ok and no need", ok | noNeed, types.OutcomeSuccess, types.OutcomePartial, types.OutcomeSuccess},
		{"error only", err, types.OutcomeFailed, types.OutcomeFailed, types.OutcomeFailed},
		{"ok and error", ok | err, types.OutcomePartial, types.OutcomeFailed, types.OutcomeSuccess},
		{"no need and error", noNeed | err, types.OutcomeNoop, types.OutcomeFailed, types.OutcomeFailed},
		{"fatal", ok | fatal, types.OutcomeFailed, types.OutcomeFailed, types.OutcomeFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.install, reduceInstall(tt.status), "install")
			assert.Equal(t, tt.remove, reduceRemove(tt.status), "remove")
			assert.Equal(t, tt.check, reduceCheck(tt.status), "check")
		})
	}
}

const recordingScript = `#!/bin/sh
echo "$ENCAP_PKGNAME $ENCAP_MODE" > "$ENCAP_TARGET/$(basename "$0").ran"
echo "hello from $(basename "$0")"
`

func scriptedPackage(env *testutil.TestEnvironment, info string, scripts map[string]string) {
	env.SetupPackage("foo-1.0", testutil.PackageConfig{
		Info:        info,
		Files:       map[string]string{"bin/foo": "x"},
		Executables: scripts,
	})
}

func TestScripts(t *testing.T) {
	ctx := context.Background()
	all := map[string]string{
		"preinstall":  recordingScript,
		"postinstall": recordingScript,
		"preremove":   recordingScript,
		"postremove":  recordingScript,
	}

	t.Run("install runs pre and post scripts", func(t *testing.T) {
		env := testutil.NewTestEnvironment(t, testutil.EnvIsolated)
		scriptedPackage(env, "encap 2.0\n", all)

		p, rec := openPkg(t, env, "foo-1.0", types.DefaultOptions)
		outcome, err := p.Install(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, types.OutcomeSuccess, outcome)

		data, err := os.ReadFile(env.TargetPath("preinstall.ran"))
		require.NoError(t, err)
		assert.Equal(t, "foo-1.0 install\n", string(data))
		assert.True(t, env.Exists("postinstall.ran"))
		assert.True(t, rec.Has(types.EventPkgInfo, "executing preinstall script"))
		assert.Equal(t, []string{"hello from preinstall", "hello from postinstall"}, rec.Messages(types.EventPkgRaw))
		env.AssertLinkTo("bin/foo", "foo-1.0", "bin/foo")
	})

	t.Run("remove runs pre and post scripts", func(t *testing.T) {
		env := testutil.NewTestEnvironment(t, testutil.EnvIsolated)
		scriptedPackage(env, "encap 2.0\n", all)

		p, _ := openPkg(t, env, "foo-1.0", types.DefaultOptions)
		_, err := p.Install(ctx, nil)
		require.NoError(t, err)

		outcome, err := p.Remove(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, types.OutcomeSuccess, outcome)

		data, err := os.ReadFile(env.TargetPath("preremove.ran"))
		require.NoError(t, err)
		assert.Equal(t, "foo-1.0 remove\n", string(data))
		assert.True(t, env.Exists("postremove.ran"))
	})

	t.Run("failing pre script aborts", func(t *testing.T) {
		env := testutil.NewTestEnvironment(t, testutil.EnvIsolated)
		scriptedPackage(env, "encap 2.0\n", map[string]string{"preinstall": "#!/bin/sh\nexit 3\n"})

		p, rec := openPkg(t, env, "foo-1.0", types.DefaultOptions)
		outcome, err := p.Install(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, types.OutcomeFailed, outcome)
		assert.Equal(t, []string{"preinstall script returned 3"}, rec.Messages(types.EventPkgFail))
		assert.False(t, env.Exists("bin"))
	})

	t.Run("failing post script fails the install", func(t *testing.T) {
		env := testutil.NewTestEnvironment(t, testutil.EnvIsolated)
		scriptedPackage(env, "encap 2.0\n", map[string]string{"postinstall": "#!/bin/sh\nexit 1\n"})

		p, rec := openPkg(t, env, "foo-1.0", types.DefaultOptions)
		outcome, err := p.Install(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, types.OutcomeFailed, outcome)
		assert.True(t, rec.Has(types.EventPkgFail, "postinstall script returned 1"))
		env.AssertLinkTo("bin/foo", "foo-1.0", "bin/foo")
	})

	t.Run("post script needs a success", func(t *testing.T) {
		env := testutil.NewTestEnvironment(t, testutil.EnvIsolated)
		scriptedPackage(env, "encap 2.0\n", all)

		p, _ := openPkg(t, env, "foo-1.0", types.DefaultOptions)
		_, err := p.Install(ctx, nil)
		require.NoError(t, err)
		require.NoError(t, os.Remove(env.TargetPath("postinstall.ran")))

		outcome, err := p.Install(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, types.OutcomeNoop, outcome)
		assert.False(t, env.Exists("postinstall.ran"))
	})

	t.Run("show-only reports without running", func(t *testing.T) {
		env := testutil.NewTestEnvironment(t, testutil.EnvIsolated)
		scriptedPackage(env, "encap 2.0\n", all)

		p, rec := openPkg(t, env, "foo-1.0", types.DefaultOptions.Set(types.OptShowOnly))
		outcome, err := p.Install(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, types.OutcomeSuccess, outcome)
		assert.False(t, env.Exists("preinstall.ran"))
		assert.False(t, env.Exists("bin"))
		assert.Equal(t, []string{"executing preinstall script", "executing postinstall script"}, rec.Messages(types.EventPkgInfo))
	})

	t.Run("disabled scripts", func(t *testing.T) {
		env := testutil.NewTestEnvironment(t, testutil.EnvIsolated)
		scriptedPackage(env, "encap 2.0\n", all)

		p, _ := openPkg(t, env, "foo-1.0", types.DefaultOptions.Clear(types.OptRunScripts))
		outcome, err := p.Install(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, types.OutcomeSuccess, outcome)
		assert.False(t, env.Exists("preinstall.ran"))
		assert.False(t, env.Exists("postinstall.ran"))
	})

	t.Run("format 1.0 never runs scripts", func(t *testing.T) {
		env := testutil.NewTestEnvironment(t, testutil.EnvIsolated)
		scriptedPackage(env, "encap 1.0\n", all)

		p, _ := openPkg(t, env, "foo-1.0", types.DefaultOptions)
		_, err := p.Install(ctx, nil)
		require.NoError(t, err)
		assert.False(t, env.Exists("preinstall.ran"))
	})

	t.Run("long output lines", func(t *testing.T) {
		env := testutil.NewTestEnvironment(t, testutil.EnvIsolated)
		scriptedPackage(env, "encap 2.0\n", map[string]string{
			"preinstall": "#!/bin/sh\nhead -c 400000 /dev/zero | tr '\\0' x\necho\necho done\nexit 0\n",
		})

		ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()

		p, rec := openPkg(t, env, "foo-1.0", types.DefaultOptions)
		outcome, err := p.Install(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, types.OutcomeSuccess, outcome, rec.String())

		lines := rec.Messages(types.EventPkgRaw)
		require.Len(t, lines, 2)
		assert.Equal(t, strings.Repeat("x", 400000), lines[0])
		assert.Equal(t, "done", lines[1])
		env.AssertLinkTo("bin/foo", "foo-1.0", "bin/foo")
	})

	t.Run("stderr is reported with stdout", func(t *testing.T) {
		env := testutil.NewTestEnvironment(t, testutil.EnvIsolated)
		scriptedPackage(env, "encap 2.0\n", map[string]string{
			"preinstall": "#!/bin/sh\necho out\necho err >&2\nexit 0\n",
		})

		p, rec := openPkg(t, env, "foo-1.0", types.DefaultOptions)
		outcome, err := p.Install(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, types.OutcomeSuccess, outcome)
		assert.Equal(t, []string{"out", "err"}, rec.Messages(types.EventPkgRaw))
	})

	t.Run("scripts only", func(t *testing.T) {
		env := testutil.NewTestEnvironment(t, testutil.EnvIsolated)
		scriptedPackage(env, "", all)

		p, _ := openPkg(t, env, "foo-1.0", types.DefaultOptions.Set(types.OptScriptsOnly))
		assert.Equal(t, "1.1", p.Info().Format)

		outcome, err := p.Install(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, types.OutcomeNoop, outcome)
		assert.True(t, env.Exists("preinstall.ran"))
		assert.True(t, env.Exists("postinstall.ran"))
		assert.False(t, env.Exists("bin"))
	})
}

func TestInstall_Readme(t *testing.T) {
	ctx := context.Background()
	env := testutil.NewTestEnvironment(t, testutil.EnvIsolated)
	env.SetupPackage("foo-2.0", testutil.PackageConfig{
		Info:  "encap 2.0\n",
		Files: map[string]string{"README": "line one\nline two\n", "bin/foo": "x"},
	})
	env.SetupPackage("foo-1.0", testutil.PackageConfig{
		Files: map[string]string{"README": "old\n", "bin/old": "x"},
	})

	p, rec := openPkg(t, env, "foo-2.0", types.DefaultOptions)
	_, err := p.Install(ctx, nil)
	require.NoError(t, err)
	assert.True(t, rec.Has(types.EventPkgInfo, "Displaying README file..."))
	assert.Equal(t, []string{"line one", "line two"}, rec.Messages(types.EventPkgRaw))
	assert.False(t, env.Exists("README"))

	legacy, rec := openPkg(t, env, "foo-1.0", types.DefaultOptions)
	_, err = legacy.Install(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, rec.Messages(types.EventPkgRaw))
}

func TestInstall_Prerequisites(t *testing.T) {
	ctx := context.Background()
	setup := func(t *testing.T) *testutil.TestEnvironment {
		env := testutil.NewTestEnvironment(t, testutil.EnvIsolated)
		env.SetupPackage("foo-1.0", testutil.PackageConfig{
			Info:  "encap 2.0\nprereq pkgspec >= bar-1.0\n",
			Files: map[string]string{"bin/foo": "x"},
		})
		return env
	}

	t.Run("unmet prerequisite fails before linking", func(t *testing.T) {
		env := setup(t)
		p, rec := openPkg(t, env, "foo-1.0", types.DefaultOptions)
		outcome, err := p.Install(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, types.OutcomeFailed, outcome)
		assert.True(t, rec.Has(types.EventPkgFail, "prerequisite not met"))
		assert.False(t, env.Exists("bin"))
	})

	t.Run("met prerequisite", func(t *testing.T) {
		env := setup(t)
		env.Mkdir(env.SourcePath("bar-1.2"))
		p, _ := openPkg(t, env, "foo-1.0", types.DefaultOptions)
		outcome, err := p.Install(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, types.OutcomeSuccess, outcome)
	})

	t.Run("prerequisites disabled", func(t *testing.T) {
		env := setup(t)
		p, _ := openPkg(t, env, "foo-1.0", types.DefaultOptions.Clear(types.OptPrereqs))
		outcome, err := p.Install(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, types.OutcomeSuccess, outcome)
	})
}

func TestInstall_DecisionFunction(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvAfero)
	env.SimplePackage("foo-1.0", "foo")
	p, _ := openPkg(t, env, "foo-1.0", types.DefaultOptions)

	var seen []string
	decide := func(h types.Handle, src *types.SourceInfo, tgt *types.TargetInfo) types.Action {
		assert.Equal(t, "foo-1.0", h.Name())
		seen = append(seen, src.TargetRelative)
		if src.TargetRelative == "share" {
			return types.ActionSkip
		}
		return types.ActionOK
	}

	outcome, err := p.Install(context.Background(), decide)
	require.NoError(t, err)
	assert.Equal(t, types.OutcomeSuccess, outcome)
	assert.Equal(t, []string{"bin", "bin/foo", "share"}, seen)
	assert.False(t, env.Exists("share"))
}
