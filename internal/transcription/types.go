package transcription

import (
	"strings"
	"time"
)

// Languages accepted as a transcription hint. Auto sends no language
// parameter and lets the recognizer detect it.
const (
	LanguageTurkish = "tr"
	LanguageEnglish = "en"
	LanguageAuto    = "auto"
)

const (
	// Chunks below this are almost certainly silence or noise.
	MinAudioSizeBytes = 1000
	// Upstream API limit.
	MaxAudioSizeBytes = 25 * 1024 * 1024

	// The recognizer conditions on at most ~224 tokens of prompt; the
	// tail of the rolling context is plenty.
	maxPromptChars = 500

	defaultModel      = "whisper-1"
	DefaultWindowSize = 3
)

// supportedFormats maps content types (parameter-stripped or exact) to
// the file extension the upstream API expects.
var supportedFormats = map[string]string{
	"audio/webm":  "webm",
	"audio/ogg":   "ogg",
	"audio/mp4":   "mp4",
	"video/mp4":   "mp4",
	"audio/m4a":   "m4a",
	"audio/x-m4a": "m4a",
	"audio/mpeg":  "mp3",
	"audio/wav":   "wav",
	"audio/x-wav": "wav",
	"audio/flac":  "flac",
}

type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
	Backoff BackoffConfig
}

type BackoffConfig struct {
	Initial     time.Duration
	MaxAttempts int
}

func normalizeBackoff(cfg BackoffConfig) BackoffConfig {
	if cfg.Initial <= 0 {
		cfg.Initial = 500 * time.Millisecond
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	return cfg
}

// Result is one transcription outcome.
type Result struct {
	Text       string
	Language   string
	DurationMs float64
	ChunkIndex int
}

// IsEmpty reports whether the result carries meaningful text. Bare
// punctuation counts as silence.
func (r *Result) IsEmpty() bool {
	cleaned := strings.Trim(strings.TrimSpace(r.Text), ".")
	return len(cleaned) == 0
}

// SessionState tracks one connection's transcription history: the
// rolling context window used to condition the next call, and the
// unbounded accumulator used only for end-of-session metrics.
type SessionState struct {
	SessionID        string
	Language         string
	DetectedLanguage string
	ChunkCounter     int
	LastTranscript   string
	TotalText        string

	window     []string
	windowSize int
}

func NewSessionState(sessionID, language string) *SessionState {
	if language == "" {
		language = LanguageAuto
	}
	return &SessionState{
		SessionID:  sessionID,
		Language:   language,
		windowSize: DefaultWindowSize,
	}
}

// RecentContext joins the rolling window in insertion order.
func (s *SessionState) RecentContext() string {
	return strings.Join(s.window, " ")
}

// Window returns a copy of the rolling window, oldest first.
func (s *SessionState) Window() []string {
	out := make([]string, len(s.window))
	copy(out, s.window)
	return out
}

func (s *SessionState) addTranscript(text string) {
	s.LastTranscript = text

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return
	}

	if s.TotalText == "" {
		s.TotalText = trimmed
	} else {
		s.TotalText += " " + trimmed
	}

	s.window = append(s.window, trimmed)
	if len(s.window) > s.windowSize {
		s.window = s.window[1:]
	}
}
