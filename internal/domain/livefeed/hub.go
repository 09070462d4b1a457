// Package livefeed pushes freshly recorded collections to the websocket
// subscribers of a business so open dashboards can refresh.
package livefeed

import (
	"context"
	"encoding/json"
	"expvar"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/recaudopro/recaudo-api/internal/domain/collection"
)

// EventType for WebSocket messages
type EventType string

const (
	EventCollectionRecorded EventType = "collection_recorded"
)

const tenantChannelPrefix = "recaudo:tenant:"

var (
	wsConnectionsGauge   = expvar.NewInt("livefeed_connections")
	wsEventsSentTotal    = expvar.NewInt("livefeed_events_sent_total")
	wsEventsDroppedTotal = expvar.NewInt("livefeed_events_dropped_total")
)

// Event is the frame sent to subscribers.
type Event struct {
	Type       EventType              `json:"type"`
	BusinessID uuid.UUID              `json:"business_id"`
	Collection *collection.Collection `json:"collection,omitempty"`
}

// envelope travels over Redis so an instance can skip its own publications.
type envelope struct {
	Instance string          `json:"instance"`
	Payload  json.RawMessage `json:"payload"`
}

// Connection is one websocket subscriber.
type Connection struct {
	UserID     uuid.UUID
	BusinessID uuid.UUID
	Conn       *websocket.Conn
	Send       chan []byte
}

// Hub tracks subscribers per business. With Redis every instance receives the
// events published by the others.
type Hub struct {
	connections map[uuid.UUID]map[*Connection]bool

	redis  *redis.Client
	pubsub *redis.PubSub

	mu sync.RWMutex

	register   chan *Connection
	unregister chan *Connection

	ctx    context.Context
	cancel context.CancelFunc

	instanceID string
}

// NewHub creates a hub. redisClient may be nil for a single instance.
func NewHub(redisClient *redis.Client) *Hub {
	ctx, cancel := context.WithCancel(context.Background())

	h := &Hub{
		connections: make(map[uuid.UUID]map[*Connection]bool),
		redis:       redisClient,
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		ctx:         ctx,
		cancel:      cancel,
		instanceID:  uuid.NewString(),
	}
	if redisClient != nil {
		h.pubsub = redisClient.PSubscribe(ctx, tenantChannelPrefix+"*")
	}
	return h
}

// Run starts the hub (call in goroutine)
func (h *Hub) Run() {
	if h.pubsub != nil {
		go h.runRedisSubscriber()
	}

	for {
		select {
		case <-h.ctx.Done():
			return

		case conn := <-h.register:
			h.mu.Lock()
			if h.connections[conn.BusinessID] == nil {
				h.connections[conn.BusinessID] = make(map[*Connection]bool)
			}
			h.connections[conn.BusinessID][conn] = true
			h.mu.Unlock()
			wsConnectionsGauge.Add(1)
			log.Debug().Str("user_id", conn.UserID.String()).Str("business_id", conn.BusinessID.String()).Msg("Subscriber connected")

		case conn := <-h.unregister:
			h.mu.Lock()
			if conns, ok := h.connections[conn.BusinessID]; ok {
				if _, exists := conns[conn]; exists {
					delete(conns, conn)
					close(conn.Send)
					wsConnectionsGauge.Add(-1)
				}
				if len(conns) == 0 {
					delete(h.connections, conn.BusinessID)
				}
			}
			h.mu.Unlock()
			log.Debug().Str("user_id", conn.UserID.String()).Msg("Subscriber disconnected")
		}
	}
}

func (h *Hub) runRedisSubscriber() {
	ch := h.pubsub.Channel()

	for {
		select {
		case <-h.ctx.Done():
			return

		case msg, ok := <-ch:
			if !ok {
				return
			}
			businessID, err := uuid.Parse(strings.TrimPrefix(msg.Channel, tenantChannelPrefix))
			if err != nil {
				continue
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				continue
			}
			if env.Instance == h.instanceID {
				continue
			}
			h.broadcastLocal(businessID, env.Payload)
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	select {
	case h.register <- conn:
	case <-h.ctx.Done():
	}
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	select {
	case h.unregister <- conn:
	case <-h.ctx.Done():
	}
}

// Publish delivers event to every subscriber of the business on all instances.
func (h *Hub) Publish(businessID uuid.UUID, event *Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	h.broadcastLocal(businessID, data)

	if h.redis == nil {
		return nil
	}
	payload, err := json.Marshal(envelope{Instance: h.instanceID, Payload: data})
	if err != nil {
		return err
	}
	return h.redis.Publish(h.ctx, tenantChannelPrefix+businessID.String(), payload).Err()
}

// CollectionRecorded publishes a newly stored collection.
func (h *Hub) CollectionRecorded(_ context.Context, c *collection.Collection) error {
	return h.Publish(c.BusinessID, &Event{
		Type:       EventCollectionRecorded,
		BusinessID: c.BusinessID,
		Collection: c,
	})
}

func (h *Hub) broadcastLocal(businessID uuid.UUID, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for conn := range h.connections[businessID] {
		select {
		case conn.Send <- data:
			wsEventsSentTotal.Add(1)
		default:
			// Buffer full, skip this message
			wsEventsDroppedTotal.Add(1)
			log.Warn().Str("user_id", conn.UserID.String()).Msg("WebSocket send buffer full")
		}
	}
}

// ConnectionCount returns number of local connections
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	total := 0
	for _, conns := range h.connections {
		total += len(conns)
	}
	return total
}

// Shutdown gracefully shuts down the hub
func (h *Hub) Shutdown() {
	h.cancel()
	if h.pubsub != nil {
		h.pubsub.Close()
	}
}
