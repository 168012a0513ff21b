// Package ws implements the agent client over a websocket connection
// to the local agent process, speaking a typed JSON protocol. Stream
// event frames are fanned into the channel broker by channel name;
// request/response frames are correlated by request id.
package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/terryso/proxycast/internal/channel"
	"github.com/terryso/proxycast/internal/types"
	"github.com/terryso/proxycast/pkg/agent"
)

// Frame types on the wire.
const (
	TypeStartAgent    = "agent_start"
	TypeStopAgent     = "agent_stop"
	TypeAgentStatus   = "agent_status"
	TypeCreateSession = "create_session"
	TypeSendMessage   = "send_message"
	TypeListSessions  = "list_sessions"
	TypeGetMessages   = "get_messages"
	TypeDeleteSession = "delete_session"
	TypeResponse      = "response"
	TypeEvent         = "event"
)

// frame is the wire envelope for both directions. Only the fields
// matching Type are populated.
type frame struct {
	Type      string `json:"type"`
	RequestID string `json:"request_id,omitempty"`
	Ts        int64  `json:"ts,omitempty"`

	// requests
	Provider     string            `json:"provider_id,omitempty"`
	Model        string            `json:"model,omitempty"`
	SystemPrompt string            `json:"system_prompt,omitempty"`
	Extra        map[string]string `json:"extra,omitempty"`
	Text         string            `json:"text,omitempty"`
	Images       []types.Image     `json:"images,omitempty"`
	SessionID    string            `json:"session_id,omitempty"`
	Channel      string            `json:"channel,omitempty"`

	// responses
	OK       bool                      `json:"ok,omitempty"`
	Error    string                    `json:"error,omitempty"`
	Running  bool                      `json:"running,omitempty"`
	Sessions []types.Session           `json:"sessions,omitempty"`
	Messages []types.RawHistoryMessage `json:"messages,omitempty"`

	// event frames
	Event *types.StreamEvent `json:"event,omitempty"`
}

// Client is a websocket-backed agent.Client.
type Client struct {
	conn   *websocket.Conn
	broker *channel.Broker

	writeMu sync.Mutex

	pendingMu sync.Mutex
	pending   map[string]chan frame

	closeOnce sync.Once
	done      chan struct{}
}

var _ agent.Client = (*Client)(nil)

// DialOption adjusts the connection handshake.
type DialOption func(*dialConfig)

type dialConfig struct {
	header http.Header
}

// WithAPIKey sends the key as a bearer token during the handshake.
func WithAPIKey(key string) DialOption {
	return func(c *dialConfig) {
		if key != "" {
			c.header.Set("Authorization", "Bearer "+key)
		}
	}
}

// Dial connects to the agent process at the given websocket URL and
// starts the reader. Stream events are published into broker.
func Dial(ctx context.Context, url string, broker *channel.Broker, opts ...DialOption) (*Client, error) {
	cfg := dialConfig{header: make(http.Header)}
	for _, opt := range opts {
		opt(&cfg)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, cfg.header)
	if err != nil {
		return nil, fmt.Errorf("dial agent: %w", err)
	}

	c := &Client{
		conn:    conn,
		broker:  broker,
		pending: make(map[string]chan frame),
		done:    make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

// Close shuts the connection down. In-flight calls fail with a closed
// transport error.
func (c *Client) Close() error {
	c.closeOnce.Do(func() { close(c.done) })
	return c.conn.Close()
}

// readLoop decodes incoming frames: events go to the broker, responses
// to their waiting caller. Malformed frames are logged and dropped.
func (c *Client) readLoop() {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
			default:
				slog.Warn("agent connection read failed", "error", err)
			}
			c.failPending(err)
			return
		}

		var f frame
		if err := json.Unmarshal(data, &f); err != nil {
			slog.Warn("dropping malformed agent frame", "error", err)
			continue
		}

		switch f.Type {
		case TypeEvent:
			if f.Event == nil || f.Channel == "" {
				slog.Warn("dropping event frame without event or channel")
				continue
			}
			c.broker.Publish(types.ChannelName(f.Channel), *f.Event)
		case TypeResponse:
			c.pendingMu.Lock()
			ch, ok := c.pending[f.RequestID]
			if ok {
				delete(c.pending, f.RequestID)
			}
			c.pendingMu.Unlock()
			if ok {
				ch <- f
			} else {
				slog.Debug("dropping response with no waiter", "request_id", f.RequestID)
			}
		default:
			slog.Debug("dropping unrecognized agent frame", "type", f.Type)
		}
	}
}

// failPending unblocks every waiting caller after the transport dies.
func (c *Client) failPending(err error) {
	c.pendingMu.Lock()
	defer c.pendingMu.Unlock()
	for id, ch := range c.pending {
		delete(c.pending, id)
		ch <- frame{Type: TypeResponse, RequestID: id, Error: fmt.Sprintf("connection closed: %v", err)}
	}
}

// call sends a request frame and waits for its response.
func (c *Client) call(ctx context.Context, req frame) (frame, error) {
	req.RequestID = uuid.New().String()
	req.Ts = time.Now().UnixMilli()

	ch := make(chan frame, 1)
	c.pendingMu.Lock()
	c.pending[req.RequestID] = ch
	c.pendingMu.Unlock()

	c.writeMu.Lock()
	err := c.conn.WriteJSON(req)
	c.writeMu.Unlock()
	if err != nil {
		c.pendingMu.Lock()
		delete(c.pending, req.RequestID)
		c.pendingMu.Unlock()
		return frame{}, fmt.Errorf("write %s: %w", req.Type, err)
	}

	select {
	case resp := <-ch:
		if resp.Error != "" {
			return frame{}, fmt.Errorf("%s: %s", req.Type, resp.Error)
		}
		return resp, nil
	case <-ctx.Done():
		c.pendingMu.Lock()
		delete(c.pending, req.RequestID)
		c.pendingMu.Unlock()
		return frame{}, ctx.Err()
	case <-c.done:
		return frame{}, fmt.Errorf("%s: connection closed", req.Type)
	}
}

// StartAgent launches the agent process.
func (c *Client) StartAgent(ctx context.Context) error {
	_, err := c.call(ctx, frame{Type: TypeStartAgent})
	return err
}

// StopAgent stops the agent process.
func (c *Client) StopAgent(ctx context.Context) error {
	_, err := c.call(ctx, frame{Type: TypeStopAgent})
	return err
}

// Status reports whether the agent process is running.
func (c *Client) Status(ctx context.Context) (agent.Status, error) {
	resp, err := c.call(ctx, frame{Type: TypeAgentStatus})
	if err != nil {
		return agent.Status{}, err
	}
	return agent.Status{Running: resp.Running}, nil
}

// CreateSession creates a backend session and returns its id.
func (c *Client) CreateSession(ctx context.Context, req agent.CreateSessionRequest) (types.SessionID, error) {
	resp, err := c.call(ctx, frame{
		Type:         TypeCreateSession,
		Provider:     req.Provider,
		Model:        req.Model,
		SystemPrompt: req.SystemPrompt,
		Extra:        req.Extra,
	})
	if err != nil {
		return "", err
	}
	if resp.SessionID == "" {
		return "", fmt.Errorf("create_session: empty session id")
	}
	return types.SessionID(resp.SessionID), nil
}

// SendMessage issues a streaming generation request. Events arrive on
// req.Channel via the broker.
func (c *Client) SendMessage(ctx context.Context, req agent.SendRequest) error {
	_, err := c.call(ctx, frame{
		Type:      TypeSendMessage,
		Text:      req.Text,
		Images:    req.Images,
		SessionID: string(req.SessionID),
		Channel:   string(req.Channel),
		Provider:  req.Provider,
		Model:     req.Model,
	})
	return err
}

// ListSessions returns all known sessions.
func (c *Client) ListSessions(ctx context.Context) ([]types.Session, error) {
	resp, err := c.call(ctx, frame{Type: TypeListSessions})
	if err != nil {
		return nil, err
	}
	return resp.Sessions, nil
}

// SessionMessages returns the raw stored messages of a session.
func (c *Client) SessionMessages(ctx context.Context, id types.SessionID) ([]types.RawHistoryMessage, error) {
	resp, err := c.call(ctx, frame{Type: TypeGetMessages, SessionID: string(id)})
	if err != nil {
		return nil, err
	}
	return resp.Messages, nil
}

// DeleteSession removes a session.
func (c *Client) DeleteSession(ctx context.Context, id types.SessionID) error {
	_, err := c.call(ctx, frame{Type: TypeDeleteSession, SessionID: string(id)})
	return err
}
