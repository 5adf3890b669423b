// pkg/session/session.go

// Package session drives one headless browser per simulated chat user. A
// Session exclusively owns a browser process and a single tab, records the
// tab's console and network activity into append-only log buffers, and
// exposes the query, interaction, navigation, and wait primitives that test
// scenarios compose. Multiple sessions run as independent flows with no
// shared state beyond the process logger.
package session

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/chatdriver/internal/config"
)

// Session owns one browser+page pair used to drive one simulated test user.
// The page lives and dies with the browser; Close is the sole release point.
type Session struct {
	id            string
	username      string
	displayURL    string
	homeserverURL string

	defaultWait  time.Duration
	closeTimeout time.Duration
	keyDelay     time.Duration

	logger *zap.Logger
	actor  *ActorLogger

	// allocCtx manages the browser process; tabCtx is the single tab
	// derived from it. Both are owned exclusively by this session.
	allocCtx    context.Context
	allocCancel context.CancelFunc
	tabCtx      context.Context
	tabCancel   context.CancelFunc

	consoleLog *LogBuffer
	networkLog *LogBuffer

	mu     sync.Mutex
	closed bool
}

// New launches a browser, opens its tab with the configured viewport, and
// wires the console and network log buffers before returning. A browser that
// fails to start or respond within the launch timeout yields a LaunchError
// with the process already released.
func New(ctx context.Context, cfg *config.Config, username string, logger *zap.Logger) (*Session, error) {
	id := uuid.New().String()
	log := logger.Named("session").With(
		zap.String("session_id", id[:8]),
		zap.String("username", username),
	)

	s := &Session{
		id:            id,
		username:      username,
		displayURL:    cfg.Harness.DisplayURL,
		homeserverURL: cfg.Harness.HomeserverURL,
		defaultWait:   cfg.Harness.DefaultWaitTimeout,
		closeTimeout:  cfg.Harness.CloseTimeout,
		keyDelay:      cfg.Harness.KeyDelay,
		logger:        log,
		actor:         NewActorLogger(username, logger),
	}

	// The allocator deliberately does not inherit the caller's context:
	// Close is the only release point for the browser process.
	s.allocCtx, s.allocCancel = chromedp.NewExecAllocator(context.Background(), buildAllocatorOptions(cfg.Browser)...)
	s.tabCtx, s.tabCancel = chromedp.NewContext(s.allocCtx)

	launchCtx, cancelLaunch := context.WithTimeout(s.tabCtx, cfg.Harness.LaunchTimeout)
	stop := context.AfterFunc(ctx, cancelLaunch)
	defer stop()
	defer cancelLaunch()

	err := chromedp.Run(launchCtx,
		chromedp.EmulateViewport(int64(cfg.Browser.Viewport.Width), int64(cfg.Browser.Viewport.Height)),
		chromedp.ActionFunc(func(ctx context.Context) error {
			// Request events are not delivered until the network domain is on.
			return network.Enable().Do(ctx)
		}),
		chromedp.Navigate("about:blank"),
	)
	if err != nil {
		s.allocCancel()
		return nil, &LaunchError{Err: err}
	}

	var bufOpts []BufferOption
	if cfg.Harness.MaxLogEntries > 0 {
		bufOpts = append(bufOpts, WithMaxEntries(cfg.Harness.MaxLogEntries))
	}
	s.consoleLog = NewLogBuffer(s.tabCtx, log, EventConsole, ConsoleFormatter, bufOpts...)
	s.networkLog = NewLogBuffer(s.tabCtx, log, EventRequestFinished, RequestFinishedFormatter, bufOpts...)

	log.Info("Browser session launched.",
		zap.Int("viewport_width", cfg.Browser.Viewport.Width),
		zap.Int("viewport_height", cfg.Browser.Viewport.Height),
	)
	return s, nil
}

// buildAllocatorOptions assembles launch flags for one browser process. The
// configured args are forwarded verbatim.
func buildAllocatorOptions(cfg config.BrowserConfig) []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)

	opts = append(opts,
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("ignore-certificate-errors", cfg.IgnoreTLSErrors),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-gpu", cfg.Headless),
	)
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}

	for _, arg := range cfg.Args {
		parts := strings.SplitN(arg, "=", 2)
		name := strings.TrimPrefix(parts[0], "--")
		if len(parts) == 2 {
			opts = append(opts, chromedp.Flag(name, parts[1]))
		} else {
			opts = append(opts, chromedp.Flag(name, true))
		}
	}

	// Flags required when running inside containers (e.g. Docker on Linux).
	if runtime.GOOS == "linux" {
		opts = append(opts,
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.Flag("disable-setuid-sandbox", true),
		)
	}

	return opts
}

// ID returns the unique identifier for this session.
func (s *Session) ID() string { return s.id }

// Username returns the simulated user this session drives.
func (s *Session) Username() string { return s.username }

// ConsoleLog returns the buffer of captured console messages.
func (s *Session) ConsoleLog() *LogBuffer { return s.consoleLog }

// NetworkLog returns the buffer of captured request completions.
func (s *Session) NetworkLog() *LogBuffer { return s.networkLog }

// Log returns the username-labeled diagnostic logger.
func (s *Session) Log() *ActorLogger { return s.actor }

// HomeserverURL returns the configured homeserver base. The session itself
// never contacts it; scenario scripts do.
func (s *Session) HomeserverURL() string { return s.homeserverURL }

// URL builds an absolute URL from the display-server base and path. Pure
// concatenation, no normalization.
func (s *Session) URL(path string) string {
	return s.displayURL + path
}

// Goto navigates the tab. Resolution follows the engine's definition of a
// completed navigation; engine failures propagate unwrapped.
func (s *Session) Goto(ctx context.Context, url string) error {
	if err := s.guard("goto"); err != nil {
		return err
	}
	s.logger.Debug("Navigating.", zap.String("url", url))
	return s.run(ctx, chromedp.Navigate(url))
}

// Delay suspends the calling flow without blocking other sessions.
func (s *Session) Delay(ctx context.Context, d time.Duration) error {
	if err := s.guard("delay"); err != nil {
		return err
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-s.tabCtx.Done():
		return s.tabCtx.Err()
	}
}

// Close terminates the browser process and, with it, the page. It is
// idempotent: the second and later calls return nil without touching the
// process. Every other operation fails with ClosedSessionError afterwards.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.tabCancel()
	s.allocCancel()

	waitCtx, cancel := context.WithTimeout(ctx, s.closeTimeout)
	defer cancel()
	select {
	case <-s.allocCtx.Done():
		s.logger.Debug("Browser session closed.")
	case <-waitCtx.Done():
		s.logger.Warn("Deadline exceeded waiting for browser to exit.", zap.Error(waitCtx.Err()))
	}
	return nil
}

// guard rejects operations on a closed session.
func (s *Session) guard(op string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return &ClosedSessionError{Op: op}
	}
	return nil
}

// run executes actions on the tab context, honoring cancellation of the
// caller's context without tying the tab's lifetime to it.
func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(s.tabCtx)
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	defer cancel()

	if err := chromedp.Run(runCtx, actions...); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

// String implements fmt.Stringer for log lines.
func (s *Session) String() string {
	return fmt.Sprintf("session(%s, %s)", s.id[:8], s.username)
}
