package encap

import (
	"bufio"
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/encap/pkg/logging"
	"github.com/arthur-debert/encap/pkg/types"
)

// ReadmeFile is displayed before a package of format 2.0 or newer is
// installed.
const ReadmeFile = "README"

type scriptPhase string

const (
	scriptPre  scriptPhase = "pre"
	scriptPost scriptPhase = "post"
)

// scriptEnv returns the variables passed to lifecycle scripts.
func (p *Package) scriptEnv(mode types.Mode) []string {
	return []string{
		"ENCAP_PKGNAME=" + p.name,
		"ENCAP_SOURCE=" + p.source,
		"ENCAP_TARGET=" + p.target,
		"ENCAP_MODE=" + mode.String(),
	}
}

// runScript runs the pre or post script of mode if the package has one,
// streaming its output as raw events. It reports false when the script
// could not be run or exited unsuccessfully.
func (p *Package) runScript(ctx context.Context, phase scriptPhase, mode types.Mode) bool {
	logger := logging.GetLogger("encap.script")

	path := p.scriptPath(phase, mode)
	name := filepath.Base(path)
	if _, err := p.fs.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return true
		}
		p.Reportf(nil, nil, types.EventPkgError, "stat(%q): %v", path, err)
		return false
	}

	p.Reportf(nil, nil, types.EventPkgInfo, "executing %s script", name)
	if p.opts.Has(types.OptShowOnly) {
		return true
	}

	cmd := exec.CommandContext(ctx, path)
	cmd.Dir = p.Dir()
	cmd.Env = append(os.Environ(), p.scriptEnv(mode)...)

	// stdout and stderr share one pipe so lines keep their order
	output, w := io.Pipe()
	cmd.Stdout = w
	cmd.Stderr = w

	logger.Info().Str("package", p.name).Str("script", path).Msg("executing lifecycle script")
	if err := cmd.Start(); err != nil {
		p.Reportf(nil, nil, types.EventPkgError, "exec(%q): %v", path, err)
		return false
	}

	done := make(chan error, 1)
	go func() {
		err := cmd.Wait()
		_ = w.Close()
		done <- err
	}()

	if err := p.reportLines(output); err != nil {
		logger.Warn().Err(err).Str("script", path).Msg("reading script output")
		_, _ = io.Copy(io.Discard, output)
	}

	err := <-done
	if err == nil {
		return true
	}

	var exitErr *exec.ExitError
	if stderrors.As(err, &exitErr) {
		if code := exitErr.ExitCode(); code >= 0 {
			p.Reportf(nil, nil, types.EventPkgFail, "%s script returned %d", name, code)
		} else {
			p.Reportf(nil, nil, types.EventPkgFail, "%s script terminated: %s", name, exitErr.String())
		}
		return false
	}
	p.Reportf(nil, nil, types.EventPkgError, "%s script: %v", name, err)
	return false
}

// displayReadme streams the package README as raw events. A missing
// README is not an error.
func (p *Package) displayReadme() {
	path := filepath.Join(p.Dir(), ReadmeFile)
	data, err := p.fs.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			p.Reportf(nil, nil, types.EventPkgError, "cannot read %s: %v", path, err)
		}
		return
	}

	p.Reportf(nil, nil, types.EventPkgInfo, "Displaying README file...")
	_ = p.reportLines(bytes.NewReader(data))
}

// reportLines reports every line read from r as a raw event. Lines have
// no length limit.
func (p *Package) reportLines(r io.Reader) error {
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			p.Reportf(nil, nil, types.EventPkgRaw, "%s", strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r"))
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// scriptPath returns where the script of phase and mode lives.
func (p *Package) scriptPath(phase scriptPhase, mode types.Mode) string {
	return filepath.Join(p.Dir(), fmt.Sprintf("%s%s", phase, mode))
}
