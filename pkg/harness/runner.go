// pkg/harness/runner.go
package harness

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/xkilldash9x/chatdriver/internal/config"
)

// Runner acquires sessions for scenarios and guarantees their release.
// Browser launches are rate-limited: a burst of Chrome processes starting at
// once can starve the host and fail launches spuriously.
type Runner struct {
	logger       *zap.Logger
	launch       LaunchFunc
	limiter      *rate.Limiter
	closeTimeout time.Duration
}

// NewRunner wires a runner over the given launcher.
func NewRunner(cfg *config.Config, logger *zap.Logger, launch LaunchFunc) *Runner {
	return &Runner{
		logger:       logger.Named("runner"),
		launch:       launch,
		limiter:      rate.NewLimiter(rate.Limit(cfg.Harness.LaunchRate), cfg.Harness.LaunchBurst),
		closeTimeout: cfg.Harness.CloseTimeout,
	}
}

// WithSession runs fn with a freshly launched session for username and
// closes the session on every exit path. A close failure after a successful
// scenario is still reported; a close failure after a scenario failure is
// logged and the scenario's error wins.
func (r *Runner) WithSession(ctx context.Context, username string, fn Scenario) (err error) {
	if lerr := r.limiter.Wait(ctx); lerr != nil {
		return lerr
	}

	d, lerr := r.launch(ctx, username)
	if lerr != nil {
		return fmt.Errorf("launch session for %q: %w", username, lerr)
	}

	defer func() {
		// Teardown gets its own deadline so a cancelled scenario context
		// cannot strand the browser process.
		closeCtx, cancel := context.WithTimeout(context.Background(), r.closeTimeout)
		defer cancel()

		cerr := d.Close(closeCtx)
		if cerr == nil {
			return
		}
		if err == nil {
			err = fmt.Errorf("close session for %q: %w", username, cerr)
			return
		}
		r.logger.Warn("Session close failed after scenario error.",
			zap.String("username", username), zap.Error(cerr))
	}()

	return fn(ctx, d)
}

// Run executes one scenario per username concurrently, each as an
// independent flow with its own session. The first failure cancels the
// shared context; every session is still closed.
func (r *Runner) Run(ctx context.Context, scenarios map[string]Scenario) error {
	g, gctx := errgroup.WithContext(ctx)
	for username, fn := range scenarios {
		g.Go(func() error {
			return r.WithSession(gctx, username, fn)
		})
	}
	return g.Wait()
}
