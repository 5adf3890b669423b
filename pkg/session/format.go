// pkg/session/format.go
package session

import (
	"fmt"
	"strings"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/runtime"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Event stream names the built-in buffers subscribe to.
const (
	EventConsole         = "console"
	EventRequestFinished = "requestfinished"
)

// ConsoleFormatter renders console API calls as "[level] arg arg ...".
func ConsoleFormatter(ev interface{}) (string, error) {
	e, ok := ev.(*runtime.EventConsoleAPICalled)
	if !ok {
		return "", ErrSkipEvent
	}

	parts := make([]string, 0, len(e.Args))
	for _, arg := range e.Args {
		parts = append(parts, formatRemoteObject(arg))
	}
	return fmt.Sprintf("[%s] %s", e.Type, strings.Join(parts, " ")), nil
}

// formatRemoteObject renders one console argument. Primitive values arrive
// as raw JSON; objects without a serialized value fall back to the
// protocol's description string.
func formatRemoteObject(obj *runtime.RemoteObject) string {
	if obj == nil {
		return "<nil>"
	}
	if len(obj.Value) > 0 {
		return string(obj.Value)
	}
	if obj.Description != "" {
		return obj.Description
	}
	return string(obj.Type)
}

// requestRecord is the JSON shape of one network-completion entry.
type requestRecord struct {
	URL      string `json:"url"`
	Status   int64  `json:"status"`
	MimeType string `json:"mimeType,omitempty"`
	Resource string `json:"resource,omitempty"`
}

// RequestFinishedFormatter records completed requests as compact JSON lines.
// The protocol's loading-finished event carries only a request ID, so the
// completion record is taken from the response-received event, which has the
// URL and status in hand.
func RequestFinishedFormatter(ev interface{}) (string, error) {
	e, ok := ev.(*network.EventResponseReceived)
	if !ok {
		return "", ErrSkipEvent
	}
	if e.Response == nil {
		return "", fmt.Errorf("response event %s carried no response", e.RequestID)
	}

	out, err := json.Marshal(requestRecord{
		URL:      e.Response.URL,
		Status:   e.Response.Status,
		MimeType: e.Response.MimeType,
		Resource: string(e.Type),
	})
	if err != nil {
		return "", fmt.Errorf("marshal request record: %w", err)
	}
	return string(out), nil
}
