package amqp

import (
	"encoding/json"
	"time"
)

// Mutation operations carried on the change feed.
const (
	OpCreate  = "create"
	OpReplace = "replace"
	OpDelete  = "delete"
	OpSet     = "set"
)

// Entities carried on the change feed.
const (
	EntityTransaction = "transaction"
	EntityBudget      = "budget"
)

// ChangeEvent is a lightweight record of one applied mutation. It carries
// only the entity, operation and id; consumers fetch details from the store
// if they need them.
type ChangeEvent struct {
	Entity    string    `json:"entity"`
	Op        string    `json:"op"`
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewChangeEvent builds a change event stamped with the current time.
func NewChangeEvent(entity, op, id string) *ChangeEvent {
	return &ChangeEvent{
		Entity:    entity,
		Op:        op,
		ID:        id,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the event to JSON bytes.
func (e *ChangeEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// ChangeEventFromJSON parses an event from JSON bytes.
func ChangeEventFromJSON(data []byte) (*ChangeEvent, error) {
	var e ChangeEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
