// pkg/session/query.go
package session

import (
	"context"
	"errors"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
)

// WaitOption tunes a wait-style operation.
type WaitOption func(*waitOptions)

type waitOptions struct {
	timeout time.Duration
}

// WithTimeout overrides the session's default wait bound for one call.
func WithTimeout(d time.Duration) WaitOption {
	return func(o *waitOptions) { o.timeout = d }
}

func (s *Session) waitTimeout(opts []WaitOption) time.Duration {
	o := waitOptions{timeout: s.defaultWait}
	for _, opt := range opts {
		opt(&o)
	}
	return o.timeout
}

// Query returns the first element matching selector, or nil if none exists
// right now. It never waits.
func (s *Session) Query(ctx context.Context, selector string) (*cdp.Node, error) {
	nodes, err := s.QueryAll(ctx, selector)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, nil
	}
	return nodes[0], nil
}

// QueryAll returns all elements matching selector, possibly none. It never
// waits.
func (s *Session) QueryAll(ctx context.Context, selector string) ([]*cdp.Node, error) {
	if err := s.guard("queryAll"); err != nil {
		return nil, err
	}
	var nodes []*cdp.Node
	if err := s.run(ctx, chromedp.Nodes(selector, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0))); err != nil {
		return nil, err
	}
	return nodes, nil
}

// WaitAndQuery waits until an element matching selector exists and is
// visible, then returns it. A selector that never matches fails with
// TimeoutError once the bound elapses; one already present resolves
// promptly.
func (s *Session) WaitAndQuery(ctx context.Context, selector string, opts ...WaitOption) (*cdp.Node, error) {
	if err := s.waitVisible(ctx, "waitAndQuery", selector, opts); err != nil {
		return nil, err
	}
	node, err := s.Query(ctx, selector)
	if err != nil {
		return nil, err
	}
	if node == nil {
		// The element vanished between the wait and the query; to the
		// caller this is indistinguishable from never appearing.
		return nil, &TimeoutError{Op: "waitAndQuery", Selector: selector, Timeout: s.waitTimeout(opts)}
	}
	return node, nil
}

// WaitAndQueryAll waits for at least one visible match, then returns all
// current matches. This is wait-then-query-all, not wait-for-N: the count
// observed may be any value >= 1 and callers needing an exact count must
// re-check.
func (s *Session) WaitAndQueryAll(ctx context.Context, selector string, opts ...WaitOption) ([]*cdp.Node, error) {
	if err := s.waitVisible(ctx, "waitAndQueryAll", selector, opts); err != nil {
		return nil, err
	}
	return s.QueryAll(ctx, selector)
}

// waitVisible runs the engine's visibility wait under the configured bound
// and translates its deadline into the harness timeout taxonomy.
func (s *Session) waitVisible(ctx context.Context, op, selector string, opts []WaitOption) error {
	if err := s.guard(op); err != nil {
		return err
	}
	timeout := s.waitTimeout(opts)

	waitCtx, cancel := context.WithTimeout(s.tabCtx, timeout)
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	defer cancel()

	if err := chromedp.Run(waitCtx, chromedp.WaitVisible(selector, chromedp.ByQuery)); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return &TimeoutError{Op: op, Selector: selector, Timeout: timeout}
		}
		return err
	}
	return nil
}

// InnerText extracts the rendered text of an element via a live property
// read, not static HTML.
func (s *Session) InnerText(ctx context.Context, node *cdp.Node) (string, error) {
	if err := s.guard("innerText"); err != nil {
		return "", err
	}
	var text string
	if err := s.run(ctx, chromedp.Text([]cdp.NodeID{node.NodeID}, &text, chromedp.ByNodeID)); err != nil {
		return "", err
	}
	return text, nil
}

// Text waits for the selector and returns its rendered text.
func (s *Session) Text(ctx context.Context, selector string, opts ...WaitOption) (string, error) {
	node, err := s.WaitAndQuery(ctx, selector, opts...)
	if err != nil {
		return "", err
	}
	return s.InnerText(ctx, node)
}

// OuterHTML returns the outer HTML of the passed element.
func (s *Session) OuterHTML(ctx context.Context, node *cdp.Node) (string, error) {
	if err := s.guard("outerHTML"); err != nil {
		return "", err
	}
	var html string
	if err := s.run(ctx, chromedp.OuterHTML([]cdp.NodeID{node.NodeID}, &html, chromedp.ByNodeID)); err != nil {
		return "", err
	}
	return html, nil
}
