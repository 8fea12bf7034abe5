package http

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/graph-gophers/graphql-go"

	"restaurant-orders/internal/logger"
)

const (
	protocolTransportWS = "graphql-transport-ws"
	// subscriptions-transport-ws, still used by older Apollo clients
	protocolLegacyWS = "graphql-ws"

	writeWait = 10 * time.Second
)

type wsMessage struct {
	ID      string          `json:"id,omitempty"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type wsSession struct {
	conn   *websocket.Conn
	legacy bool
	schema *graphql.Schema
	log    *logger.Logger

	writeMu sync.Mutex
	mu      sync.Mutex
	subs    map[string]context.CancelFunc
	wg      sync.WaitGroup
}

func (h *Handler) serveWebSocket(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("WS", fmt.Sprintf("upgrade failed: %v", err))
		return
	}

	s := &wsSession{
		conn:   conn,
		legacy: conn.Subprotocol() == protocolLegacyWS,
		schema: h.schema,
		log:    h.log,
		subs:   map[string]context.CancelFunc{},
	}
	s.run(c.Request.Context())
}

func (s *wsSession) run(parent context.Context) {
	ctx, cancel := context.WithCancel(parent)
	defer func() {
		cancel()
		s.wg.Wait()
		s.conn.Close()
	}()

	for {
		var msg wsMessage
		if err := s.conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Debug("WS", fmt.Sprintf("read: %v", err))
			}
			return
		}

		switch msg.Type {
		case "connection_init":
			s.send(wsMessage{Type: "connection_ack"})
		case "ping":
			s.send(wsMessage{Type: "pong"})
		case "pong":
		case "subscribe", "start":
			s.start(ctx, msg)
		case "complete", "stop":
			s.stop(msg.ID)
		case "connection_terminate":
			return
		default:
			s.sendError(msg.ID, fmt.Sprintf("unknown message type %q", msg.Type))
		}
	}
}

func (s *wsSession) start(ctx context.Context, msg wsMessage) {
	var req GraphQLRequest
	if err := json.Unmarshal(msg.Payload, &req); err != nil || req.Query == "" {
		s.sendError(msg.ID, "payload must carry a query")
		return
	}

	subCtx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	if _, dup := s.subs[msg.ID]; dup || msg.ID == "" {
		s.mu.Unlock()
		cancel()
		s.sendError(msg.ID, fmt.Sprintf("subscriber for %q already exists", msg.ID))
		return
	}
	s.subs[msg.ID] = cancel
	s.mu.Unlock()

	stream, err := s.schema.Subscribe(subCtx, req.Query, req.OperationName, req.Variables)
	if err != nil {
		s.stop(msg.ID)
		s.sendError(msg.ID, err.Error())
		return
	}

	dataType := "next"
	if s.legacy {
		dataType = "data"
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for v := range stream {
			payload, err := json.Marshal(v)
			if err != nil {
				s.log.Error("WS", fmt.Sprintf("encode %s: %v", msg.ID, err))
				continue
			}
			s.send(wsMessage{ID: msg.ID, Type: dataType, Payload: payload})
		}
		// the stream ended on its own, not through stop
		if subCtx.Err() == nil {
			s.send(wsMessage{ID: msg.ID, Type: "complete"})
		}
		s.stop(msg.ID)
	}()
}

func (s *wsSession) stop(id string) {
	s.mu.Lock()
	cancel, ok := s.subs[id]
	delete(s.subs, id)
	s.mu.Unlock()
	if ok {
		cancel()
	}
}

func (s *wsSession) sendError(id, message string) {
	var payload []byte
	if s.legacy {
		payload, _ = json.Marshal(ErrorMessage{Message: message})
	} else {
		payload, _ = json.Marshal([]ErrorMessage{{Message: message}})
	}
	s.send(wsMessage{ID: id, Type: "error", Payload: payload})
}

func (s *wsSession) send(msg wsMessage) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := s.conn.WriteJSON(msg); err != nil {
		s.log.Debug("WS", fmt.Sprintf("write %s: %v", msg.Type, err))
	}
}
