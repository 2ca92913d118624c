package ws

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	sendBuffer   = 16
	readLimit    = 4096
	pongWait     = 60 * time.Second
	pingInterval = 30 * time.Second
)

// Subscriber is one live feed connection. The feed is push-only; inbound frames are discarded.
type Subscriber struct {
	id           string
	ws           *websocket.Conn
	send         chan []byte
	logger       *zap.Logger
	writeTimeout time.Duration
	onClose      func(id string)
	closeOnce    sync.Once
}

// NewSubscriber wraps ws.
func NewSubscriber(id string, ws *websocket.Conn, writeTimeout time.Duration, logger *zap.Logger, onClose func(string)) *Subscriber {
	return &Subscriber{
		id:           id,
		ws:           ws,
		send:         make(chan []byte, sendBuffer),
		logger:       logger,
		writeTimeout: writeTimeout,
		onClose:      onClose,
	}
}

// ID returns identifier.
func (s *Subscriber) ID() string {
	return s.id
}

// Start runs read/write pumps until the connection closes or ctx is cancelled.
func (s *Subscriber) Start(ctx context.Context) {
	go s.writePump(ctx)
	s.readPump()
}

func (s *Subscriber) readPump() {
	defer s.cleanup()
	s.ws.SetReadLimit(readLimit)
	_ = s.ws.SetReadDeadline(time.Now().Add(pongWait))
	s.ws.SetPongHandler(func(string) error {
		return s.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := s.ws.ReadMessage(); err != nil {
			s.logger.Debug("feed subscriber disconnected", zap.String("subscriber_id", s.id), zap.Error(err))
			return
		}
	}
}

func (s *Subscriber) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = s.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
			_ = s.ws.Close()
			return
		case msg, ok := <-s.send:
			if !ok {
				_ = s.write(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.write(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := s.write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Send enqueues a frame without blocking.
func (s *Subscriber) Send(msg []byte) {
	select {
	case s.send <- msg:
	default:
		s.logger.Warn("dropping feed message, buffer full", zap.String("subscriber_id", s.id))
	}
}

// Close terminates the underlying connection; the read pump then cleans up.
func (s *Subscriber) Close() {
	_ = s.ws.Close()
}

func (s *Subscriber) write(messageType int, data []byte) error {
	_ = s.ws.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	return s.ws.WriteMessage(messageType, data)
}

// cleanup unregisters before closing send so Broadcast never writes to a closed channel.
func (s *Subscriber) cleanup() {
	s.closeOnce.Do(func() {
		if s.onClose != nil {
			s.onClose(s.id)
		}
		close(s.send)
		_ = s.ws.Close()
	})
}
