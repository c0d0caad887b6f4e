package gateway

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gofiber/contrib/websocket"

	"feedgram/domain/chat"
	"feedgram/realtime"
)

// handleWebSocket owns one socket connection end to end: register a
// session, pump outbound events, translate inbound frames into commands.
// The handshake identity is the userId query parameter; a connection
// without one stays open but never joins any room.
func (g *Gateway) handleWebSocket(c *websocket.Conn) {
	userID := c.Query("userId")

	session := realtime.NewSession(userID, g.sessionBuffer)
	sessionID := session.ID()
	defer session.Close()

	if err := g.registry.Connect(sessionID, userID, session); err != nil {
		g.log.Warn("socket connected without identity, realtime features inert", "session_id", sessionID)
	} else {
		defer g.registry.Disconnect(sessionID)
		g.log.Info("socket connected", "session_id", sessionID, "user_id", userID)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go g.writePump(ctx, c, session)

	for {
		_, raw, err := c.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				g.log.Debug("socket closed by client", "session_id", sessionID)
			} else {
				g.log.Debug("socket read error", "session_id", sessionID, "error", err)
			}
			return
		}

		var frame Frame
		if err := json.Unmarshal(raw, &frame); err != nil {
			g.log.Debug("malformed frame, dropping", "session_id", sessionID, "error", err)
			continue
		}
		g.handleFrame(frame, userID, sessionID)
	}
}

// writePump drains the session's event buffer onto the wire until either
// side closes.
func (g *Gateway) writePump(ctx context.Context, c *websocket.Conn, session *realtime.Session) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-session.Done():
			return
		case e := <-session.Events():
			frame, err := outboundFrame(e)
			if err != nil {
				g.log.Error("encoding outbound frame", "event", e.Name(), "error", err)
				continue
			}
			if err := c.WriteJSON(frame); err != nil {
				g.log.Debug("socket write failed, closing", "error", err)
				session.Close()
				return
			}
		}
	}
}

// handleFrame validates an inbound frame and enqueues the matching
// command. Bad frames are dropped with a log; the protocol has no error
// reply.
func (g *Gateway) handleFrame(frame Frame, sessionUserID, sessionID string) {
	switch frame.Event {
	case EventSendGroupMessage:
		var p SendGroupMessagePayload
		if !g.decode(frame, &p, sessionID) {
			return
		}
		g.dispatcher.Dispatch(chat.SendGroupMessage{
			UserID: identity(p.UserID, sessionUserID),
			Text:   p.Text,
		})
	case EventTypingStatus:
		var p TypingStatusPayload
		if !g.decode(frame, &p, sessionID) {
			return
		}
		g.dispatcher.Dispatch(chat.TypingStatus{
			ConversationID: p.ConversationID,
			UserID:         identity(p.UserID, sessionUserID),
			IsTyping:       p.IsTyping,
		})
	case EventMessagesRead:
		var p MessagesReadPayload
		if !g.decode(frame, &p, sessionID) {
			return
		}
		g.dispatcher.Dispatch(chat.MessagesRead{
			ConversationID: p.ConversationID,
			UserID:         identity(p.UserID, sessionUserID),
		})
	default:
		g.log.Debug(fmt.Sprintf("unknown inbound event %q, dropping", frame.Event), "session_id", sessionID)
	}
}

func (g *Gateway) decode(frame Frame, payload any, sessionID string) bool {
	if err := json.Unmarshal(frame.Data, payload); err != nil {
		g.log.Debug("malformed payload, dropping", "event", frame.Event, "session_id", sessionID, "error", err)
		return false
	}
	if err := validate.Struct(payload); err != nil {
		g.log.Debug("invalid payload, dropping", "event", frame.Event, "session_id", sessionID, "error", err)
		return false
	}
	return true
}

func identity(payloadID, sessionID string) string {
	if payloadID != "" {
		return payloadID
	}
	return sessionID
}
