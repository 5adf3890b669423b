// pkg/harness/harness.go

// Package harness runs multi-user test scenarios. Each simulated user gets
// an exclusively owned browser session; the runner guarantees teardown on
// every exit path so a failing scenario never leaks a browser process.
package harness

import (
	"context"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"go.uber.org/zap"

	"github.com/xkilldash9x/chatdriver/internal/config"
	"github.com/xkilldash9x/chatdriver/pkg/session"
)

// Driver is the operation surface a scenario steers one simulated user
// through. *session.Session satisfies it; tests substitute fakes.
type Driver interface {
	URL(path string) string
	Goto(ctx context.Context, url string) error
	Query(ctx context.Context, selector string) (*cdp.Node, error)
	QueryAll(ctx context.Context, selector string) ([]*cdp.Node, error)
	WaitAndQuery(ctx context.Context, selector string, opts ...session.WaitOption) (*cdp.Node, error)
	WaitAndQueryAll(ctx context.Context, selector string, opts ...session.WaitOption) ([]*cdp.Node, error)
	InnerText(ctx context.Context, node *cdp.Node) (string, error)
	Text(ctx context.Context, selector string, opts ...session.WaitOption) (string, error)
	ReplaceInputText(ctx context.Context, input *cdp.Node, text string) error
	Click(ctx context.Context, selector string) error
	WaitForReload(ctx context.Context, opts ...session.WaitOption) error
	WaitForNewPage(ctx context.Context, opts ...session.WaitOption) (*session.Page, error)
	Delay(ctx context.Context, d time.Duration) error
	ConsoleLog() *session.LogBuffer
	NetworkLog() *session.LogBuffer
	Log() *session.ActorLogger
	Close(ctx context.Context) error
}

var _ Driver = (*session.Session)(nil)

// Scenario is one simulated user's script.
type Scenario func(ctx context.Context, d Driver) error

// LaunchFunc creates the session for one username.
type LaunchFunc func(ctx context.Context, username string) (Driver, error)

// ChromeLauncher is the production LaunchFunc: one headless Chrome per user.
func ChromeLauncher(cfg *config.Config, logger *zap.Logger) LaunchFunc {
	return func(ctx context.Context, username string) (Driver, error) {
		return session.New(ctx, cfg, username, logger)
	}
}
