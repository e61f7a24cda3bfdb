package live

import (
	"encoding/json"
	"fmt"
)

// Control actions accepted from the client.
const (
	ActionStart          = "start"
	ActionStop           = "stop"
	ActionPause          = "pause"
	ActionResume         = "resume"
	ActionSetSlide       = "set_slide"
	ActionSetContentType = "set_content_type"
	ActionEndSession     = "end_session"
)

type ClientMessage struct {
	Type        string `json:"type"`
	Action      string `json:"action,omitempty"`
	Slide       int    `json:"slide,omitempty"`
	ContentType string `json:"content_type,omitempty"`
}

// ParseClientMessage decodes one text frame from the client. Malformed
// JSON is an error the session reports without closing the connection.
func ParseClientMessage(data []byte) (*ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("malformed message: %w", err)
	}
	if msg.Type == "" {
		return nil, fmt.Errorf("malformed message: missing type")
	}
	return &msg, nil
}
