package epkg

import (
	"context"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/arthur-debert/encap/pkg/logging"
	"github.com/arthur-debert/encap/pkg/types"
)

// CheckReport is the result of checking one command line argument.
type CheckReport struct {
	Spec    string
	Results []Result
	Err     error
}

// eventBuffer holds the events of one check until its turn to be
// replayed.
type eventBuffer struct {
	mu     sync.Mutex
	events []types.Event
}

func (b *eventBuffer) Report(ev types.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, ev)
}

func (b *eventBuffer) replay(to types.Reporter) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ev := range b.events {
		to.Report(ev)
	}
	b.events = nil
}

// CheckAll checks every spec, running up to CheckConcurrency checks at
// once. Events reach the session reporter grouped by spec and in
// argument order, as if the checks had run one after another.
func (s *Session) CheckAll(ctx context.Context, specs []string) []CheckReport {
	logger := logging.GetLogger("epkg.checkall")
	done := logging.LogOperationStart(logger, "check")
	defer done()

	reports := make([]CheckReport, len(specs))
	buffers := make([]*eventBuffer, len(specs))
	finished := make([]chan struct{}, len(specs))

	for i := range specs {
		buffers[i] = &eventBuffer{}
		finished[i] = make(chan struct{})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.settings.CheckConcurrency)

	// replay in argument order while later checks are still running
	replayed := make(chan struct{})
	go func() {
		defer close(replayed)
		for i := range specs {
			<-finished[i]
			buffers[i].replay(s.reporter)
		}
	}()

	for i, spec := range specs {
		g.Go(func() error {
			defer close(finished[i])
			spec = filepath.Base(spec)
			results, err := s.check(gctx, spec, buffers[i])
			reports[i] = CheckReport{Spec: spec, Results: results, Err: err}
			return nil
		})
	}

	_ = g.Wait()
	<-replayed

	logger.Debug().Int("specs", len(specs)).Int("concurrency", s.settings.CheckConcurrency).Msg("checks finished")
	return reports
}
