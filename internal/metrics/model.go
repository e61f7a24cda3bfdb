package metrics

import (
	"strconv"
	"time"
)

// TotalTextCap bounds the accumulated transcript text stored with a
// session record.
const TotalTextCap = 5000

type SessionRecord struct {
	SessionID      string    `json:"session_id"`
	UserID         string    `json:"user_id"`
	PresentationID string    `json:"presentation_id"`
	Mode           string    `json:"mode"`
	Language       string    `json:"language"`
	StartedAt      time.Time `json:"started_at"`
	EndedAt        time.Time `json:"ended_at"`
	DurationSec    float64   `json:"duration_sec"`

	TotalTranscripts int    `json:"total_transcripts"`
	SlideChanges     int    `json:"slide_changes"`
	SlideCount       int    `json:"slide_count"`
	FinalPage        int    `json:"final_page"`
	TotalText        string `json:"total_text"`
}

func (r *SessionRecord) RedisKey() string {
	return "copilot:session:" + r.SessionID
}

type HourlyMetrics struct {
	PresentationID string `json:"presentation_id"`
	Date           string `json:"date"`
	Hour           int    `json:"hour"`
	Sessions       int64  `json:"sessions"`
	Transcripts    int64  `json:"transcripts"`
	SlideChanges   int64  `json:"slide_changes"`
	ErrorCount     int64  `json:"error_count"`
}

func HourlyRedisKey(presentationID, date string, hour int) string {
	return "copilot:presentation:" + presentationID + ":metrics:" + date + ":" + strconv.Itoa(hour)
}
