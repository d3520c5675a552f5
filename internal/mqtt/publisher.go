package mqtt

import (
	"encoding/json"
	"log/slog"
	"time"

	"ecobeehub/internal/entities"
)

// Publisher sends a payload to a topic
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// statePayload is the JSON body of an entity state message
type statePayload struct {
	EntityID   string                 `json:"entity_id"`
	EntryID    string                 `json:"entry_id"`
	State      string                 `json:"state"`
	Available  bool                   `json:"available"`
	Attributes map[string]interface{} `json:"attributes,omitempty"`
	UpdatedAt  time.Time              `json:"updated_at"`
}

// StatePublisher publishes every entity state change as a retained message
type StatePublisher struct {
	publisher Publisher
	root      string
	qos       byte
	logger    *slog.Logger
}

// NewStatePublisher creates an entity listener that publishes to the given topic root
func NewStatePublisher(publisher Publisher, root string, qos byte, logger *slog.Logger) *StatePublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &StatePublisher{
		publisher: publisher,
		root:      root,
		qos:       qos,
		logger:    logger.With("component", "mqtt-publisher"),
	}
}

// OnStateChanged implements entities.Listener
func (p *StatePublisher) OnStateChanged(entity entities.Entity) {
	payload, err := json.Marshal(statePayload{
		EntityID:   entity.ID,
		EntryID:    entity.EntryID,
		State:      entity.State,
		Available:  entity.Available,
		Attributes: entity.Attributes,
		UpdatedAt:  entity.UpdatedAt,
	})
	if err != nil {
		p.logger.Error("Failed to encode entity state",
			"entity_id", entity.ID,
			"error", err)
		return
	}

	if err := p.publisher.Publish(EntityStateTopic(p.root, entity.ID), payload, p.qos, true); err != nil {
		p.logger.Warn("Failed to publish entity state",
			"entity_id", entity.ID,
			"error", err)
	}
}
