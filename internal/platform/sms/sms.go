// Package sms sends text messages through a Junebug HTTP channel.
package sms

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-resty/resty/v2"
)

// Sender is the interface for sending SMS messages. Send returns the message
// id assigned by the gateway.
type Sender interface {
	Send(ctx context.Context, to, content string) (messageID string, err error)
}

// JunebugSender delivers messages through a Junebug channel endpoint. The
// channel URL already identifies the channel, e.g.
// https://junebug.example.org/channels/<id>.
type JunebugSender struct {
	client         *resty.Client
	channelURL     string
	eventURL       string
	eventAuthToken string
}

// NewJunebugSender creates a sender for the given channel. eventURL and
// eventAuthToken are passed along so delivery events come back to our event
// webhook; both may be empty.
func NewJunebugSender(channelURL, eventURL, eventAuthToken string) *JunebugSender {
	return &JunebugSender{
		client:         resty.New(),
		channelURL:     channelURL,
		eventURL:       eventURL,
		eventAuthToken: eventAuthToken,
	}
}

type junebugRequest struct {
	To             string `json:"to"`
	Content        string `json:"content"`
	EventURL       string `json:"event_url,omitempty"`
	EventAuthToken string `json:"event_auth_token,omitempty"`
}

type junebugResponse struct {
	Status int `json:"status"`
	Result struct {
		MessageID string `json:"message_id"`
	} `json:"result"`
}

func (s *JunebugSender) Send(ctx context.Context, to, content string) (string, error) {
	if s.channelURL == "" {
		return "", errors.New("junebug channel URL is not configured")
	}

	var out junebugResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(junebugRequest{
			To:             to,
			Content:        content,
			EventURL:       s.eventURL,
			EventAuthToken: s.eventAuthToken,
		}).
		SetResult(&out).
		Post(s.channelURL + "/messages/")
	if err != nil {
		return "", fmt.Errorf("junebug send: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("junebug send: unexpected status %d", resp.StatusCode())
	}
	if out.Result.MessageID == "" {
		return "", errors.New("junebug send: response missing message_id")
	}

	return out.Result.MessageID, nil
}

// Call records a single call to a MockSender.
type Call struct {
	To      string
	Content string
}

// MockSender is a test double for Sender.
type MockSender struct {
	mu         sync.Mutex
	calls      []Call
	MessageID  string
	ShouldFail bool
	FailError  string
}

// Send records the call and optionally returns an error.
func (m *MockSender) Send(_ context.Context, to, content string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ShouldFail {
		return "", errors.New(m.FailError)
	}
	m.calls = append(m.calls, Call{To: to, Content: content})
	id := m.MessageID
	if id == "" {
		id = "the-message-id"
	}
	return id, nil
}

// Calls returns a copy of recorded calls.
func (m *MockSender) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}
