package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

// Kind names the record family a change touched.
type Kind string

const (
	KindExpense   Kind = "expense"
	KindIncome    Kind = "income"
	KindGoals     Kind = "goals"
	KindRecurring Kind = "recurring"
)

type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

var ErrInvalidMessage = errors.New("invalid change message")

// ChangeMessage announces that source data changed. It carries only the
// record reference; consumers reload whatever they need.
type ChangeMessage struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	Action    Action    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

func NewChangeMessage(kind Kind, action Action, id string) *ChangeMessage {
	return &ChangeMessage{
		ID:        id,
		Kind:      kind,
		Action:    action,
		Timestamp: time.Now().UTC(),
	}
}

func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ChangeMessageFromJSON decodes a message and rejects one without a kind or
// action.
func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Kind == "" || msg.Action == "" {
		return nil, ErrInvalidMessage
	}
	return &msg, nil
}
