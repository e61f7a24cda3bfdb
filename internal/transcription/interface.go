package transcription

import "context"

// Transcriber is the speech-recognition collaborator.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, contentType, language, prompt string, chunkIndex int) (*Result, error)
}
