package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"markev/backend/services/charger-finder/internal/models"
)

// SnapshotFunc returns the chargers a new subscriber starts from.
type SnapshotFunc func(ctx context.Context) []models.Charger

// Server upgrades HTTP connections to the live charger feed.
type Server struct {
	hub          *Hub
	snapshot     SnapshotFunc
	logger       *zap.Logger
	writeTimeout time.Duration
	upgrader     websocket.Upgrader
}

// NewServer builds ws server.
func NewServer(hub *Hub, snapshot SnapshotFunc, writeTimeout time.Duration, allowOrigin func(*http.Request) bool, logger *zap.Logger) *Server {
	if writeTimeout <= 0 {
		writeTimeout = 10 * time.Second
	}
	if allowOrigin == nil {
		allowOrigin = func(*http.Request) bool { return true }
	}
	return &Server{
		hub:          hub,
		snapshot:     snapshot,
		logger:       logger,
		writeTimeout: writeTimeout,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     allowOrigin,
		},
	}
}

// HandleWS is HTTP handler for /ws/chargers endpoint.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	sub := NewSubscriber(uuid.NewString(), conn, s.writeTimeout, s.logger, func(id string) {
		s.hub.Remove(id)
		cancel()
	})
	s.hub.Add(sub)

	if s.snapshot != nil {
		payload, err := json.Marshal(NewMessage(MessageSnapshot, s.snapshot(r.Context())))
		if err != nil {
			s.logger.Error("failed to encode snapshot", zap.Error(err))
		} else {
			sub.Send(payload)
		}
	}

	go sub.Start(ctx)
	s.logger.Info("feed subscriber connected", zap.String("subscriber_id", sub.ID()))
}
