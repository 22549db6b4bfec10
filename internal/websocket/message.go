package websocket

import "encoding/json"

// Message defines the structure for websocket messages.
type Message struct {
	Action  string      `json:"action"`
	Payload interface{} `json:"payload,omitempty"`
}

// NewChangeMessage builds the wire form of an entity-change event, e.g.
// action "transaction.changed" with payload {"action":"created"}.
func NewChangeMessage(entity, action string) []byte {
	msg := Message{
		Action:  entity + ".changed",
		Payload: map[string]string{"action": action},
	}
	b, _ := json.Marshal(msg)
	return b
}
