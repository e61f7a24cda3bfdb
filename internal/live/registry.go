package live

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// EventSender is the slice of a connection the registry needs.
type EventSender interface {
	SendEvent(event any) error
}

const fanoutChannelPrefix = "copilot:presentation:"

type fanoutEnvelope struct {
	Origin string          `json:"origin"`
	Event  json.RawMessage `json:"event"`
}

type presentationSet struct {
	conns  map[EventSender]struct{}
	cancel context.CancelFunc
}

// Registry fans manual slide changes out to every other connection
// watching the same presentation, locally and across instances via
// redis pub/sub. A peer whose send fails is evicted; delivery to the
// rest always continues.
type Registry struct {
	redis    *redis.Client
	logger   *slog.Logger
	instance string

	mu   sync.Mutex
	sets map[string]*presentationSet

	ctx    context.Context
	cancel context.CancelFunc
}

func NewRegistry(redisClient *redis.Client, logger *slog.Logger) *Registry {
	ctx, cancel := context.WithCancel(context.Background())
	return &Registry{
		redis:    redisClient,
		logger:   logger.With("component", "fanout"),
		instance: uuid.New().String(),
		sets:     make(map[string]*presentationSet),
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (r *Registry) Register(presentationID string, conn EventSender) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.sets[presentationID]
	if !ok {
		subCtx, subCancel := context.WithCancel(r.ctx)
		set = &presentationSet{
			conns:  make(map[EventSender]struct{}),
			cancel: subCancel,
		}
		r.sets[presentationID] = set
		if r.redis != nil {
			go r.relay(subCtx, presentationID)
		}
	}
	set.conns[conn] = struct{}{}
	r.logger.Debug("connection registered",
		"presentation_id", presentationID, "viewers", len(set.conns))
}

func (r *Registry) Unregister(presentationID string, conn EventSender) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeLocked(presentationID, conn)
}

func (r *Registry) removeLocked(presentationID string, conn EventSender) {
	set, ok := r.sets[presentationID]
	if !ok {
		return
	}
	delete(set.conns, conn)
	if len(set.conns) == 0 {
		set.cancel()
		delete(r.sets, presentationID)
	}
}

// Broadcast delivers an event to every registered connection for the
// presentation except the originator, then relays it to other
// instances.
func (r *Registry) Broadcast(presentationID string, event any, exclude EventSender) {
	data, err := json.Marshal(event)
	if err != nil {
		r.logger.Error("failed to encode fan-out event", "error", err)
		return
	}

	r.deliverLocal(presentationID, data, exclude)

	if r.redis == nil {
		return
	}
	envelope, err := json.Marshal(fanoutEnvelope{Origin: r.instance, Event: data})
	if err != nil {
		return
	}
	if err := r.redis.Publish(r.ctx, fanoutChannelPrefix+presentationID+":events", envelope).Err(); err != nil {
		r.logger.Warn("failed to relay fan-out event", "presentation_id", presentationID, "error", err)
	}
}

func (r *Registry) deliverLocal(presentationID string, data []byte, exclude EventSender) {
	r.mu.Lock()
	set, ok := r.sets[presentationID]
	if !ok {
		r.mu.Unlock()
		return
	}
	conns := make([]EventSender, 0, len(set.conns))
	for conn := range set.conns {
		if conn != exclude {
			conns = append(conns, conn)
		}
	}
	r.mu.Unlock()

	var event json.RawMessage = data
	for _, conn := range conns {
		if err := conn.SendEvent(event); err != nil {
			r.logger.Warn("evicting broken fan-out peer",
				"presentation_id", presentationID, "error", err)
			r.mu.Lock()
			r.removeLocked(presentationID, conn)
			r.mu.Unlock()
		}
	}
}

func (r *Registry) relay(ctx context.Context, presentationID string) {
	channel := fanoutChannelPrefix + presentationID + ":events"
	pubsub := r.redis.Subscribe(ctx, channel)
	defer pubsub.Close()

	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			r.logger.Error("fan-out relay receive failed",
				"presentation_id", presentationID, "error", err)
			return
		}

		var envelope fanoutEnvelope
		if err := json.Unmarshal([]byte(msg.Payload), &envelope); err != nil {
			r.logger.Error("malformed fan-out envelope", "error", err)
			continue
		}
		if envelope.Origin == r.instance {
			continue
		}
		r.deliverLocal(presentationID, envelope.Event, nil)
	}
}

func (r *Registry) ViewerCount(presentationID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if set, ok := r.sets[presentationID]; ok {
		return len(set.conns)
	}
	return 0
}

func (r *Registry) Shutdown() {
	r.cancel()
}
