// Package epkg implements the version-aware package operations on top of
// single package handles: picking versions from the source directory,
// removing superseded versions, batch installs, target cleaning and the
// transaction log.
package epkg

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/arthur-debert/encap/pkg/clean"
	"github.com/arthur-debert/encap/pkg/errors"
	"github.com/arthur-debert/encap/pkg/filesystem"
	"github.com/arthur-debert/encap/pkg/logging"
	"github.com/arthur-debert/encap/pkg/policy"
	"github.com/arthur-debert/encap/pkg/translog"
	"github.com/arthur-debert/encap/pkg/types"
)

// DefaultCacheSize bounds the number of package names whose version
// scans are cached.
const DefaultCacheSize = 256

// Settings configures a Session.
type Settings struct {
	Source  string
	Target  string
	Options types.Options

	// Excludes are target relative paths never touched
	Excludes []string
	// Overrides name packages whose links an install may replace
	Overrides []string

	// Versioning keeps one version of each package linked
	Versioning bool
	// Backoff selects the second newest version when none is requested
	Backoff bool
	// WriteLog appends transactions to the source directory log
	WriteLog bool
	// LegacyExcludes honors the source directory encap.exclude file in
	// batch mode
	LegacyExcludes bool
	// CheckConcurrency bounds parallel checks in CheckAll
	CheckConcurrency int
	CacheSize        int

	Reporter types.Reporter
	FS       types.FS
}

// Session holds everything one command invocation operates with.
type Session struct {
	settings Settings
	fs       types.FS
	reporter types.Reporter
	versions *lru.Cache[string, []string]
	txlog    *translog.Log
}

// NewSession validates settings and returns a session.
func NewSession(settings Settings) (*Session, error) {
	if settings.Source == "" || settings.Target == "" {
		return nil, errors.New(errors.ErrInvalidInput, "source and target directories are required")
	}
	if settings.FS == nil {
		settings.FS = filesystem.NewOS()
	}
	if settings.Reporter == nil {
		settings.Reporter = types.Discard
	}
	if settings.CheckConcurrency < 1 {
		settings.CheckConcurrency = 1
	}
	if settings.CacheSize < 1 {
		settings.CacheSize = DefaultCacheSize
	}

	cache, err := lru.New[string, []string](settings.CacheSize)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "cannot create version cache")
	}

	logger := logging.GetLogger("epkg")
	logger.Debug().
		Str("source", settings.Source).
		Str("target", settings.Target).
		Str("options", settings.Options.String()).
		Bool("versioning", settings.Versioning).
		Msg("session created")

	return &Session{
		settings: settings,
		fs:       settings.FS,
		reporter: settings.Reporter,
		versions: cache,
		txlog:    translog.New(settings.FS, settings.Source, settings.Target),
	}, nil
}

// Settings returns the session configuration.
func (s *Session) Settings() Settings { return s.settings }

// LogPath returns the transaction log location.
func (s *Session) LogPath() string { return s.txlog.Path() }

func (s *Session) showOnly() bool {
	return s.settings.Options.Has(types.OptShowOnly)
}

// Clean removes stale links from the target directory.
func (s *Session) Clean(ctx context.Context) (clean.Stats, error) {
	return clean.Clean(ctx, clean.Params{
		Source:   s.settings.Source,
		Target:   s.settings.Target,
		Options:  s.settings.Options,
		Reporter: s.reporter,
		Decision: policy.ExcludeDecision(s.settings.Excludes),
		FS:       s.fs,
	})
}
