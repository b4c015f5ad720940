// Package websocket pushes job progress, job logs and server state to browser observers.
package websocket

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"sync"
	"time"

	"mediastat/internal/dto"
	"mediastat/pkg/codec"
	"mediastat/pkg/logger"
	"mediastat/pkg/metrics"

	"github.com/gorilla/websocket"
)

const defaultBroadcastBuffer = 256

var ErrHubClosed = errors.New("websocket hub closed")

type frame struct {
	messageType string
	payload     []byte
}

// Hub fans broadcast messages out to connected clients. Broadcasts never
// block: a full hub queue drops the message and a client whose queue is full
// is disconnected.
type Hub struct {
	log        *logger.Logger
	codec      codec.Codec
	metrics    *metrics.Metrics
	upgrader   websocket.Upgrader
	broadcast  chan frame
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	mu      sync.RWMutex
	clients map[*Client]struct{}
	nextID  uint64
}

func NewHub(log *logger.Logger, c codec.Codec, m *metrics.Metrics, buffer int) *Hub {
	if buffer <= 0 {
		buffer = defaultBroadcastBuffer
	}
	return &Hub{
		log:     log,
		codec:   c,
		metrics: m,
		upgrader: websocket.Upgrader{
			ReadBufferSize:   1024,
			WriteBufferSize:  1024,
			HandshakeTimeout: 10 * time.Second,
		},
		broadcast:  make(chan frame, buffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		clients:    make(map[*Client]struct{}),
	}
}

// Run delivers queued messages until ctx is done, then closes every client.
func (h *Hub) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.closeAll()
			h.log.InfoContext(ctx, "Websocket hub stopped")
			return nil
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			total := len(h.clients)
			h.mu.Unlock()
			h.log.DebugContext(ctx, "Websocket client connected", logger.IntField("total_clients", total))
		case c := <-h.unregister:
			h.remove(c)
		case f := <-h.broadcast:
			h.deliver(f)
		}
	}
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) deliver(f frame) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i].id < clients[j].id })

	for _, c := range clients {
		select {
		case c.send <- f.payload:
		default:
			h.log.WarnContext(context.Background(), "Websocket client too slow, disconnecting",
				logger.Field("client_id", c.id),
				logger.StringField("type", f.messageType),
			)
			delete(h.clients, c)
			close(c.send)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeWS upgrades the request and attaches the connection to the hub.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	h.mu.Lock()
	h.nextID++
	id := h.nextID
	h.mu.Unlock()

	c := newClient(id, h, conn)
	select {
	case h.register <- c:
	case <-h.done:
		_ = conn.Close()
		return ErrHubClosed
	case <-r.Context().Done():
		_ = conn.Close()
		return r.Context().Err()
	}
	c.start()
	return nil
}

func (h *Hub) publish(messageType string, data interface{}) {
	payload, err := h.codec.Marshal(dto.Message{Type: messageType, Data: data})
	if err != nil {
		h.log.ErrorContext(context.Background(), "Failed to encode websocket message", logger.ErrorField(err), logger.StringField("type", messageType))
		return
	}

	select {
	case h.broadcast <- frame{messageType: messageType, payload: payload}:
	default:
		h.metrics.BroadcastDropped.WithLabelValues(messageType).Inc()
	}
}

func (h *Hub) BroadcastProgress(jobID string, percent float64) {
	h.publish(dto.MessageTypeJobProgress, dto.JobProgressEvent{JobID: jobID, Percent: percent})
}

func (h *Hub) BroadcastLog(jobID, line string, severity dto.LogSeverity) {
	h.publish(dto.MessageTypeJobLog, dto.JobLogEvent{JobID: jobID, Line: line, Severity: severity, Time: time.Now().UTC()})
}

func (h *Hub) BroadcastConnectionStatus(missedPings int) {
	h.publish(dto.MessageTypeConnectionStatus, dto.ConnectionStatusEvent{MissedPings: missedPings})
}

func (h *Hub) BroadcastUpdateState(inProgress bool) {
	h.publish(dto.MessageTypeUpdateState, dto.UpdateStateEvent{InProgress: inProgress})
}

func (h *Hub) BroadcastJobInfo(info dto.JobInfo) {
	h.publish(dto.MessageTypeJobInfo, info)
}
