// Package client is the Go socket client for the realtime surface:
// connect, stay connected, send chat events, surface inbound ones.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/fasthttp/websocket"

	"feedgram/domain/chat"
	"feedgram/domain/event"
	"feedgram/errors"
)

const (
	initialBackoff = 500 * time.Millisecond
	maxBackoff     = 15 * time.Second

	// typingIdleWindow is how long after the last keystroke the client
	// reports typing stopped.
	typingIdleWindow = 2 * time.Second
)

type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Handlers are the subscription points for inbound events. Nil fields are
// skipped. Called from the read loop goroutine.
type Handlers struct {
	OnGroupMessage func(event.NewGroupMessage)
	OnTyping       func(event.TypingStatus)
	OnRead         func(event.MessagesRead)
	OnPost         func(event.NewPost)
}

// Client keeps one identified socket to the server, reconnecting with
// exponential backoff when the connection drops. Sends are serialized
// under a lock; a send while disconnected fails fast rather than queuing.
type Client struct {
	serverURL string
	userID    string
	log       *slog.Logger
	handlers  Handlers

	mu       sync.Mutex
	conn     *websocket.Conn
	started  bool
	cancel   context.CancelFunc
	typingIn map[string]*time.Timer // conversationID -> idle timer
}

func New(serverURL, userID string, handlers Handlers, log *slog.Logger) *Client {
	return &Client{
		serverURL: serverURL,
		userID:    userID,
		log:       log,
		handlers:  handlers,
		typingIn:  make(map[string]*time.Timer),
	}
}

// Connect starts the connection loop. Idempotent: a second call while
// running is a no-op. The loop redials with backoff until ctx is
// canceled or Close is called.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return nil
	}
	loopCtx, cancel := context.WithCancel(ctx)
	c.started = true
	c.cancel = cancel
	c.mu.Unlock()

	endpoint, err := c.endpoint()
	if err != nil {
		cancel()
		return err
	}

	go c.loop(loopCtx, endpoint)
	return nil
}

func (c *Client) endpoint() (string, error) {
	u, err := url.Parse(c.serverURL)
	if err != nil {
		return "", fmt.Errorf("invalid server url %q: %w", c.serverURL, err)
	}
	u.Path = "/ws"
	q := u.Query()
	q.Set("userId", c.userID)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *Client) loop(ctx context.Context, endpoint string) {
	backoff := initialBackoff
	for {
		if ctx.Err() != nil {
			return
		}

		conn, _, err := websocket.DefaultDialer.DialContext(ctx, endpoint, nil)
		if err != nil {
			c.log.Warn("dial failed, retrying", "endpoint", endpoint, "backoff", backoff, "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			backoff = min(backoff*2, maxBackoff)
			continue
		}

		backoff = initialBackoff
		c.mu.Lock()
		c.conn = conn
		c.mu.Unlock()
		c.log.Info("connected", "endpoint", endpoint)

		c.readLoop(ctx, conn)

		c.mu.Lock()
		c.conn = nil
		c.mu.Unlock()
		_ = conn.Close()
	}
}

func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		if ctx.Err() != nil {
			return
		}
		var f frame
		if err := conn.ReadJSON(&f); err != nil {
			c.log.Debug("read failed, reconnecting", "error", err)
			return
		}
		c.handle(f)
	}
}

func (c *Client) handle(f frame) {
	switch f.Event {
	case "new_group_message":
		var e event.NewGroupMessage
		if json.Unmarshal(f.Data, &e) == nil && c.handlers.OnGroupMessage != nil {
			c.handlers.OnGroupMessage(e)
		}
	case "typing_status":
		var e event.TypingStatus
		if json.Unmarshal(f.Data, &e) == nil && c.handlers.OnTyping != nil {
			c.handlers.OnTyping(e)
		}
	case "messages_read":
		var e event.MessagesRead
		if json.Unmarshal(f.Data, &e) == nil && c.handlers.OnRead != nil {
			c.handlers.OnRead(e)
		}
	case "new_post":
		var e event.NewPost
		if json.Unmarshal(f.Data, &e) == nil && c.handlers.OnPost != nil {
			c.handlers.OnPost(e)
		}
	default:
		c.log.Debug("ignoring unknown event", "event", f.Event)
	}
}

func (c *Client) send(eventName string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return errors.ErrNotConnected
	}
	return c.conn.WriteJSON(frame{Event: eventName, Data: data})
}

// SendGroupMessage publishes to the global group chat.
func (c *Client) SendGroupMessage(text string) error {
	return c.send("send_group_message", map[string]string{
		"userId": c.userID,
		"text":   text,
	})
}

// Keystroke reports typing activity in a conversation. The first call
// sends typing=true; each call pushes back the idle timer, and once it
// fires typing=false goes out.
func (c *Client) Keystroke(conversationID string) {
	c.mu.Lock()
	timer, active := c.typingIn[conversationID]
	if active {
		timer.Reset(typingIdleWindow)
		c.mu.Unlock()
		return
	}
	c.typingIn[conversationID] = time.AfterFunc(typingIdleWindow, func() {
		c.stopTyping(conversationID)
	})
	c.mu.Unlock()

	if err := c.sendTyping(conversationID, true); err != nil {
		c.log.Debug("typing signal lost", "error", err)
	}
}

// StopTyping reports typing stopped immediately, e.g. when a direct
// message is sent before the idle window elapses.
func (c *Client) StopTyping(conversationID string) {
	c.mu.Lock()
	timer, active := c.typingIn[conversationID]
	if active {
		timer.Stop()
	}
	c.mu.Unlock()
	if active {
		c.stopTyping(conversationID)
	}
}

func (c *Client) stopTyping(conversationID string) {
	c.mu.Lock()
	delete(c.typingIn, conversationID)
	c.mu.Unlock()
	if err := c.sendTyping(conversationID, false); err != nil {
		c.log.Debug("typing signal lost", "error", err)
	}
}

func (c *Client) sendTyping(conversationID string, isTyping bool) error {
	return c.send("typing_status", map[string]any{
		"conversationId": conversationID,
		"userId":         c.userID,
		"isTyping":       isTyping,
	})
}

// OpenConversation is what a view calls when the user opens a
// conversation: a read receipt goes out only when something in it is
// still unread by this identity. Opening an already-read conversation
// emits nothing.
func (c *Client) OpenConversation(convo chat.Conversation) error {
	if !convo.HasUnreadFor(c.userID) {
		return nil
	}
	return c.MarkConversationRead(convo.ID)
}

// MarkConversationRead acknowledges everything in a conversation, e.g.
// when it is opened with unread messages.
func (c *Client) MarkConversationRead(conversationID string) error {
	return c.send("messages_read", map[string]string{
		"conversationId": conversationID,
		"userId":         c.userID,
	})
}

// Close stops the connection loop and tears down the socket.
func (c *Client) Close() {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	conn := c.conn
	c.conn = nil
	c.started = false
	for id, timer := range c.typingIn {
		timer.Stop()
		delete(c.typingIn, id)
	}
	c.mu.Unlock()
	if conn != nil {
		_ = conn.Close()
	}
}
