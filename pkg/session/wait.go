// pkg/session/wait.go
package session

import (
	"context"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
)

// WaitForReload resolves on the tab's next DOM-content-loaded event. The
// listener is registered through a derived context and cancelled on both the
// success and timeout paths, so repeated calls never accumulate handlers.
func (s *Session) WaitForReload(ctx context.Context, opts ...WaitOption) error {
	if err := s.guard("waitForReload"); err != nil {
		return err
	}
	timeout := s.waitTimeout(opts)

	listenCtx, cancel := context.WithCancel(s.tabCtx)
	defer cancel()

	fired := make(chan struct{}, 1)
	chromedp.ListenTarget(listenCtx, func(ev interface{}) {
		if _, ok := ev.(*page.EventDomContentEventFired); ok {
			select {
			case fired <- struct{}{}:
			default:
			}
		}
	})

	_, err := awaitEvent(ctx, s.tabCtx, "waitForReload", "DOMContentLoaded", timeout, fired)
	return err
}

// WaitForNewPage resolves with a handle to the next page the browser opens,
// for example after a click on a target="_blank" link. Non-page targets such
// as background workers never resolve it. The target listener is
// deregistered on both the success and timeout paths.
func (s *Session) WaitForNewPage(ctx context.Context, opts ...WaitOption) (*Page, error) {
	if err := s.guard("waitForNewPage"); err != nil {
		return nil, err
	}
	timeout := s.waitTimeout(opts)

	listenCtx, cancel := context.WithCancel(s.tabCtx)
	defer cancel()

	ch := chromedp.WaitNewTarget(listenCtx, func(info *target.Info) bool {
		return info.Type == "page"
	})

	id, err := awaitEvent(ctx, s.tabCtx, "waitForNewPage", "new page target", timeout, ch)
	if err != nil {
		return nil, err
	}

	pageCtx, pageCancel := chromedp.NewContext(s.tabCtx, chromedp.WithTargetID(id))
	return &Page{id: id, ctx: pageCtx, cancel: pageCancel}, nil
}

// Page is a handle to an additional tab the browser opened during a
// scenario. It remains a child of the session's browser: closing the session
// closes it too.
type Page struct {
	id     target.ID
	ctx    context.Context
	cancel context.CancelFunc
}

// TargetID identifies the underlying browser target.
func (p *Page) TargetID() target.ID { return p.id }

// CurrentURL reads the page's current location.
func (p *Page) CurrentURL(ctx context.Context) (string, error) {
	runCtx, cancel := context.WithCancel(p.ctx)
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	defer cancel()

	var url string
	if err := chromedp.Run(runCtx, chromedp.Location(&url)); err != nil {
		return "", err
	}
	return url, nil
}

// Text waits for selector on this page and returns its rendered text.
func (p *Page) Text(ctx context.Context, selector string) (string, error) {
	runCtx, cancel := context.WithCancel(p.ctx)
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	defer cancel()

	var text string
	if err := chromedp.Run(runCtx, chromedp.Text(selector, &text, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return text, nil
}

// Close detaches and closes this tab only; the owning session is unaffected.
func (p *Page) Close() {
	p.cancel()
}
