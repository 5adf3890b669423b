// pkg/session/input.go
package session

import (
	"context"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
)

// ReplaceInputText clears an input's existing value with a triple-click
// select plus a delete keystroke, then types the new text one simulated
// keystroke at a time. The application under test attaches input-event
// listeners that only fire on real key events, so a programmatic value
// assignment would not exercise them.
func (s *Session) ReplaceInputText(ctx context.Context, input *cdp.Node, text string) error {
	if err := s.guard("replaceInputText"); err != nil {
		return err
	}

	actions := []chromedp.Action{
		chromedp.MouseClickNode(input, chromedp.ClickCount(3)),
		chromedp.KeyEventNode(input, kb.Delete),
	}
	for _, r := range text {
		actions = append(actions, chromedp.KeyEventNode(input, string(r)))
		if s.keyDelay > 0 {
			actions = append(actions, chromedp.Sleep(s.keyDelay))
		}
	}
	return s.run(ctx, actions...)
}

// Click clicks the first element matching selector, waiting for it to be
// visible first.
func (s *Session) Click(ctx context.Context, selector string) error {
	if err := s.guard("click"); err != nil {
		return err
	}
	return s.run(ctx, chromedp.Click(selector, chromedp.ByQuery, chromedp.NodeVisible))
}
