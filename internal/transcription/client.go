// Package transcription turns short raw audio segments into text via a
// Whisper-style HTTP API, with format validation, a bounded retry
// budget, and a per-session rolling context window that conditions each
// call on what was said just before.
package transcription

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/sunum-ai/copilot-backend/internal/shared"
)

type Client struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
	backoff BackoffConfig
	log     *slog.Logger
}

func NewClient(cfg Config, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   model,
		http:    &http.Client{Timeout: timeout},
		backoff: normalizeBackoff(cfg.Backoff),
		log:     log.With("component", "transcription"),
	}
}

// ValidateAudio checks size limits and the declared content type before
// any network call. Returns the file extension for the container format.
func ValidateAudio(audio []byte, contentType string) (string, error) {
	if len(audio) < MinAudioSizeBytes {
		return "", shared.NewValidationError("too small",
			"received %d bytes, minimum is %d", len(audio), MinAudioSizeBytes)
	}
	if len(audio) > MaxAudioSizeBytes {
		return "", shared.NewValidationError("too large",
			"received %d bytes, maximum is %d", len(audio), MaxAudioSizeBytes)
	}

	full := strings.ToLower(strings.TrimSpace(contentType))
	base := full
	if i := strings.Index(full, ";"); i >= 0 {
		base = strings.TrimSpace(full[:i])
	}

	if ext, ok := supportedFormats[full]; ok {
		return ext, nil
	}
	if ext, ok := supportedFormats[base]; ok {
		return ext, nil
	}
	return "", shared.NewValidationError("unsupported format",
		"content type %q is not supported", contentType)
}

// Transcribe sends one audio chunk to the recognizer. Deterministic
// decoding (temperature 0), the caller's language hint unless auto, and
// the tail of promptContext as a conditioning hint. Retries transient
// failures up to the backoff budget; client-class failures (a message
// containing "400" or "invalid") fail immediately.
func (c *Client) Transcribe(ctx context.Context, audio []byte, contentType, language, prompt string, chunkIndex int) (*Result, error) {
	extension, err := ValidateAudio(audio, contentType)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	backoff := c.backoff.Initial
	var lastErr error

	for attempt := 0; attempt < c.backoff.MaxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, &shared.TranscriptionError{Message: "transcription cancelled", Cause: ctx.Err()}
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		text, err := c.request(ctx, audio, extension, language, prompt, chunkIndex)
		if err == nil {
			durationMs := float64(time.Since(start).Microseconds()) / 1000.0
			result := &Result{
				Text:       strings.TrimSpace(text),
				Language:   language,
				DurationMs: durationMs,
				ChunkIndex: chunkIndex,
			}
			c.log.Debug("chunk transcribed",
				"chunk_index", chunkIndex,
				"bytes", len(audio),
				"duration_ms", result.DurationMs,
				"attempt", attempt+1)
			return result, nil
		}

		lastErr = err
		msg := strings.ToLower(err.Error())
		if strings.Contains(msg, "400") || strings.Contains(msg, "invalid") {
			c.log.Error("client error, not retrying", "chunk_index", chunkIndex, "error", err)
			break
		}
		c.log.Warn("transcription attempt failed",
			"chunk_index", chunkIndex,
			"attempt", attempt+1,
			"max_attempts", c.backoff.MaxAttempts,
			"error", err)
	}

	return nil, &shared.TranscriptionError{Message: "speech-to-text transcription failed", Cause: lastErr}
}

func (c *Client) request(ctx context.Context, audio []byte, extension, language, prompt string, chunkIndex int) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", fmt.Sprintf("chunk_%d.%s", chunkIndex, extension))
	if err != nil {
		return "", err
	}
	if _, err := part.Write(audio); err != nil {
		return "", err
	}

	fields := map[string]string{
		"model":           c.model,
		"response_format": "json",
		"temperature":     "0",
	}
	if language != "" && language != LanguageAuto {
		fields["language"] = language
	}
	if prompt != "" {
		fields["prompt"] = tailChars(prompt, maxPromptChars)
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return "", err
		}
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/audio/transcriptions", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("transcription API error: status=%d body=%s", resp.StatusCode, payload)
	}

	var parsed struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("invalid transcription response: %w", err)
	}
	return parsed.Text, nil
}

// TranscribeWithSession runs one transcription conditioned on the
// session's rolling window and folds the result back into the session.
// The chunk counter advances even when the chunk fails or comes back
// empty; the window and accumulator only grow on non-empty text.
func TranscribeWithSession(ctx context.Context, t Transcriber, audio []byte, contentType string, session *SessionState) (*Result, error) {
	prompt := session.RecentContext()
	chunkIndex := session.ChunkCounter

	result, err := t.Transcribe(ctx, audio, contentType, session.Language, prompt, chunkIndex)
	session.ChunkCounter++
	if err != nil {
		return nil, err
	}

	session.addTranscript(result.Text)

	if session.DetectedLanguage == "" && !result.IsEmpty() {
		session.DetectedLanguage = result.Language
		slog.Info("session language detected",
			"session_id", session.SessionID,
			"language", result.Language)
	}

	return result, nil
}

func tailChars(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[len(runes)-n:])
}
