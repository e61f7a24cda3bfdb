package live

import (
	"errors"
	"time"
)

var errSendBufferFull = errors.New("send buffer full")

// Session status values carried by StatusEvent.
const (
	StatusConnected  = "connected"
	StatusListening  = "listening"
	StatusProcessing = "processing"
	StatusPaused     = "paused"
	StatusStopped    = "stopped"
)

type SessionInfoEvent struct {
	Type           string `json:"type"`
	SessionID      string `json:"session_id"`
	PresentationID string `json:"presentation_id"`
	TotalSlides    int    `json:"total_slides"`
	CurrentSlide   int    `json:"current_slide"`
	Mode           string `json:"mode"`
	Language       string `json:"language"`
}

type StatusEvent struct {
	Type   string `json:"type"`
	Status string `json:"status"`
}

type TranscriptEvent struct {
	Type       string  `json:"type"`
	Text       string  `json:"text"`
	ChunkIndex int     `json:"chunk_index"`
	DurationMs float64 `json:"duration_ms"`
	IsEmpty    bool    `json:"is_empty"`
}

type SlideChangeEvent struct {
	Type            string   `json:"type"`
	Slide           int      `json:"slide"`
	MatchType       string   `json:"match_type"`
	Confidence      float64  `json:"confidence"`
	MatchedKeywords []string `json:"matched_keywords,omitempty"`
}

type ErrorEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type PongEvent struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
}

func newStatusEvent(status string) StatusEvent {
	return StatusEvent{Type: "status", Status: status}
}

func newErrorEvent(message string) ErrorEvent {
	return ErrorEvent{Type: "error", Message: message}
}

func newPongEvent() PongEvent {
	return PongEvent{Type: "pong", Timestamp: time.Now().UnixMilli()}
}
