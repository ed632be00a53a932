// Package chatwoot handles the message-passing integration with the Chatwoot
// dashboard-app widget. The host delivers payloads either as structured JSON
// objects or as JSON-encoded strings; both shapes are accepted from this
// untrusted source and anything else is a parse error.
package chatwoot

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"
)

// FetchInfoMessage is the outbound request the widget host understands.
const FetchInfoMessage = "chatwoot-dashboard-app:fetch-info"

// ResponseTimeout bounds how long a fetch-info request waits for a payload.
const ResponseTimeout = 5 * time.Second

// ErrNoResponse is returned when no payload arrives before the deadline.
var ErrNoResponse = errors.New("No response received from Chatwoot")

// ParseError reports a payload that is neither a JSON object nor a
// JSON-encoded string holding one.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return "Failed to process Chatwoot data: " + e.Reason
}

// Payload is the widget message shape. Unknown fields are preserved in Raw
// for operator display.
type Payload struct {
	Event string                 `json:"event,omitempty"`
	Data  PayloadData            `json:"data"`
	Raw   map[string]interface{} `json:"-"`
}

type PayloadData struct {
	Contact      *Person       `json:"contact,omitempty"`
	CurrentAgent *Person       `json:"currentAgent,omitempty"`
	Conversation *Conversation `json:"conversation,omitempty"`
}

type Person struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

type Conversation struct {
	ID       int               `json:"id"`
	Messages []json.RawMessage `json:"messages"`
}

// ParseMessage decodes a widget message. A JSON string payload is unwrapped
// and parsed as JSON; an object payload is used as-is.
func ParseMessage(raw []byte) (*Payload, error) {
	var encoded string
	if err := json.Unmarshal(raw, &encoded); err == nil {
		raw = []byte(encoded)
	}

	var rawFields map[string]interface{}
	if err := json.Unmarshal(raw, &rawFields); err != nil || rawFields == nil {
		return nil, &ParseError{Reason: "invalid data format"}
	}

	var payload Payload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, &ParseError{Reason: "invalid data format"}
	}
	payload.Raw = rawFields
	return &payload, nil
}

// Inbox holds the most recent widget payload and lets a fetch-info request
// wait for the next delivery.
type Inbox struct {
	mu      sync.Mutex
	latest  *Payload
	waiters []chan *Payload
}

func NewInbox() *Inbox {
	return &Inbox{}
}

// Deliver stores a payload and wakes every waiter.
func (in *Inbox) Deliver(payload *Payload) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.latest = payload
	for _, waiter := range in.waiters {
		waiter <- payload
	}
	in.waiters = nil
}

// Latest returns the most recently delivered payload, if any.
func (in *Inbox) Latest() *Payload {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.latest
}

// Await blocks until the next payload is delivered or the response timeout
// elapses, whichever comes first.
func (in *Inbox) Await(ctx context.Context) (*Payload, error) {
	waiter := make(chan *Payload, 1)
	in.mu.Lock()
	in.waiters = append(in.waiters, waiter)
	in.mu.Unlock()

	timer := time.NewTimer(ResponseTimeout)
	defer timer.Stop()

	select {
	case payload := <-waiter:
		return payload, nil
	case <-timer.C:
		return nil, ErrNoResponse
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
