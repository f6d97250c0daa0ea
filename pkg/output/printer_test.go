package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arthur-debert/encap/pkg/types"
)

func src(rel string, flags types.SourceFlags) *types.SourceInfo {
	return &types.SourceInfo{
		Flags:          flags,
		TargetRelative: rel,
		TargetPath:     "/usr/local/" + rel,
		LinkExpecting:  "../encap/foo-1.0/" + rel,
	}
}

func render(verbosity int, events ...types.Event) string {
	var buf bytes.Buffer
	p := NewPrinter(&buf, verbosity, false, nil)
	for _, ev := range events {
		p.Report(ev)
	}
	return buf.String()
}

func TestPrinter_Lines(t *testing.T) {
	tests := []struct {
		name      string
		verbosity int
		event     types.Event
		want      string
	}{
		{"link created", Changes,
			types.Event{Kind: types.EventInstOK, Source: src("bin/foo", 0)},
			"     + bin/foo\n"},
		{"directory created", Changes,
			types.Event{Kind: types.EventInstOK, Source: src("share/doc", types.SrcIsDir)},
			"     + share/doc/\n"},
		{"linkdir created", Changes,
			types.Event{Kind: types.EventInstOK, Source: src("lib/perl", types.SrcIsDir|types.SrcLinkDir)},
			"     + lib/perl\n"},
		{"absolute paths", Paths,
			types.Event{Kind: types.EventInstOK, Source: src("bin/foo", 0)},
			"     + /usr/local/bin/foo -> ../encap/foo-1.0/bin/foo\n"},
		{"forced replacement", Quiet,
			types.Event{Kind: types.EventInstRepl, Source: src("bin/foo", 0), Message: "forced replacement"},
			"     + bin/foo (forced replacement)\n"},
		{"replaced stale link", Normal,
			types.Event{Kind: types.EventInstRepl, Source: src("bin/foo", 0),
				Target: &types.TargetInfo{Flags: types.TgtExists | types.TgtIsLink, LinkExistingPkg: "foo-0.9"}},
			"     + bin/foo (replaced link to non-existent package foo-0.9)\n"},
		{"install conflict", Quiet,
			types.Event{Kind: types.EventInstFail, Source: src("bin/foo", 0), Message: "conflicting link to package bar-1.0"},
			"    !  bin/foo: conflicting link to package bar-1.0\n"},
		{"clean failure", Quiet,
			types.Event{Kind: types.EventClnFail, Source: src("etc/foreign", 0), Message: "not an Encap link"},
			"  !  etc/foreign: not an Encap link\n"},
		{"already installed", Everything,
			types.Event{Kind: types.EventInstNoop, Source: src("bin/foo", 0)},
			"     * bin/foo: already installed\n"},
		{"already removed", Everything,
			types.Event{Kind: types.EventRemNoop, Source: src("bin/foo", 0)},
			"     * bin/foo: already removed\n"},
		{"valid link", Everything,
			types.Event{Kind: types.EventChkNoop, Source: src("bin/foo", 0)},
			"     * bin/foo: valid link\n"},
		{"valid link while cleaning", Everything,
			types.Event{Kind: types.EventClnNoop, Source: src("bin/foo", 0)},
			"   * bin/foo: valid link\n"},
		{"link removed", Changes,
			types.Event{Kind: types.EventRemOK, Source: src("bin/foo", 0), Target: &types.TargetInfo{}},
			"     - bin/foo\n"},
		{"directory removed", Changes,
			types.Event{Kind: types.EventRemOK, Source: src("bin", types.SrcIsDir), Target: &types.TargetInfo{Flags: types.TgtIsDir}},
			"     - bin/\n"},
		{"stale link cleaned", Changes,
			types.Event{Kind: types.EventClnOK, Source: src("bin/gone", 0), Target: &types.TargetInfo{}},
			"   - bin/gone\n"},
		{"check failure", Quiet,
			types.Event{Kind: types.EventChkFail, Source: src("bin/foo", 0), Message: "link does not exist"},
			"    !  bin/foo: link does not exist\n"},
		{"check failure without message", Quiet,
			types.Event{Kind: types.EventChkFail, Source: src("bin/foo", 0)},
			"    !  bin/foo: not installed\n"},
		{"package info", Normal,
			types.Event{Kind: types.EventPkgInfo, Message: "executing preinstall script"},
			"    > executing preinstall script\n"},
		{"package info with entry", Normal,
			types.Event{Kind: types.EventPkgInfo, Source: src("share/info/dir", 0), Message: "excluding"},
			"    > share/info/dir: excluding\n"},
		{"clean info", Normal,
			types.Event{Kind: types.EventClnInfo, Message: "read /usr/local/encap.exclude"},
			"  > read /usr/local/encap.exclude\n"},
		{"package failure", Quiet,
			types.Event{Kind: types.EventPkgFail, Message: "preinstall script returned 1"},
			"    ! preinstall script returned 1\n"},
		{"raw line", Quiet,
			types.Event{Kind: types.EventPkgRaw, Message: "  output from a script"},
			"  output from a script\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, render(tt.verbosity, tt.event))
		})
	}
}

func TestPrinter_Verbosity(t *testing.T) {
	events := []types.Event{
		{Kind: types.EventPkgInfo, Message: "installing package foo-1.0"},
		{Kind: types.EventInstOK, Source: src("bin/foo", 0)},
		{Kind: types.EventInstNoop, Source: src("bin/bar", 0)},
		{Kind: types.EventRemFail, Source: src("bin/baz", 0), Message: "link to package baz-1.0"},
		{Kind: types.EventInstFail, Source: src("bin/qux", 0), Message: "not a symlink"},
	}

	tests := []struct {
		verbosity int
		lines     int
	}{
		{Quiet, 1},
		{Normal, 2},
		{Changes, 3},
		{Paths, 3},
		{Everything, 5},
	}

	for _, tt := range tests {
		out := strings.TrimSuffix(render(tt.verbosity, events...), "\n")
		assert.Len(t, strings.Split(out, "\n"), tt.lines, "verbosity %d:\n%s", tt.verbosity, out)
	}
}

func TestPrinter_Summary(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, Normal, false, nil)

	p.Summary(types.ModeInstall, types.OutcomeSuccess)
	p.Summary(types.ModeRemove, types.OutcomePartial)
	p.Summary(types.ModeCheck, types.OutcomeFailed)
	p.Summary(types.ModeInstall, types.OutcomeNoop)

	assert.Equal(t, "    > installation successful\n"+
		"    > removal partially successful\n"+
		"    ! check failed\n", buf.String())

	buf.Reset()
	quiet := NewPrinter(&buf, Quiet, false, nil)
	quiet.Summary(types.ModeInstall, types.OutcomeFailed)
	quiet.Header("epkg: installing package %s...", "foo")
	quiet.Blank(Normal)
	assert.Empty(t, buf.String())

	quiet.Errorf("  ! cannot open package %s", "foo-1.0")
	assert.Equal(t, "  ! cannot open package foo-1.0\n", buf.String())
}

func TestPrinter_Color(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, Normal, true, nil)
	p.Report(types.Event{Kind: types.EventPkgFail, Message: "prerequisites not met"})

	out := buf.String()
	assert.Contains(t, out, "prerequisites not met")
	assert.Contains(t, out, "\x1b[")
}

func TestParseColorMode(t *testing.T) {
	for in, want := range map[string]ColorMode{"": ColorAuto, "auto": ColorAuto, "always": ColorAlways, "NEVER": ColorNever} {
		got, err := ParseColorMode(in)
		assert.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseColorMode("sometimes")
	assert.Error(t, err)

	assert.False(t, UseColor(&bytes.Buffer{}, ColorAuto))
	assert.True(t, UseColor(&bytes.Buffer{}, ColorAlways))
	assert.False(t, UseColor(&bytes.Buffer{}, ColorNever))
}
