package transcription

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

type fakeTranscriber struct {
	texts   []string
	err     error
	prompts []string
	indexes []int
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audio []byte, contentType, language, prompt string, chunkIndex int) (*Result, error) {
	f.prompts = append(f.prompts, prompt)
	f.indexes = append(f.indexes, chunkIndex)
	if f.err != nil {
		return nil, f.err
	}
	text := ""
	if len(f.texts) > 0 {
		text = f.texts[0]
		f.texts = f.texts[1:]
	}
	return &Result{Text: text, Language: language, ChunkIndex: chunkIndex}, nil
}

func TestResultIsEmpty(t *testing.T) {
	cases := []struct {
		text string
		want bool
	}{
		{"", true},
		{"   ", true},
		{" . ", true},
		{"...", true},
		{". .", false},
		{"merhaba", false},
	}
	for _, tc := range cases {
		r := &Result{Text: tc.text}
		if got := r.IsEmpty(); got != tc.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", tc.text, got, tc.want)
		}
	}
}

func TestSessionWindowEvictsOldest(t *testing.T) {
	session := NewSessionState("sess-1", "tr")
	ft := &fakeTranscriber{texts: []string{"bir", "iki", "üç", "dört"}}

	for i := 0; i < 4; i++ {
		if _, err := TranscribeWithSession(context.Background(), ft, []byte("audio"), "audio/webm", session); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if got := session.Window(); !reflect.DeepEqual(got, []string{"iki", "üç", "dört"}) {
		t.Errorf("window = %v, want last three transcripts", got)
	}
	if got := session.RecentContext(); got != "iki üç dört" {
		t.Errorf("recent context = %q, want %q", got, "iki üç dört")
	}
	if session.TotalText != "bir iki üç dört" {
		t.Errorf("total text = %q, want full accumulation", session.TotalText)
	}
}

func TestSessionPromptsFromRecentContext(t *testing.T) {
	session := NewSessionState("sess-1", "en")
	ft := &fakeTranscriber{texts: []string{"first", "second"}}

	TranscribeWithSession(context.Background(), ft, []byte("audio"), "audio/webm", session)
	TranscribeWithSession(context.Background(), ft, []byte("audio"), "audio/webm", session)

	if !reflect.DeepEqual(ft.prompts, []string{"", "first"}) {
		t.Errorf("prompts = %v, want prior context only", ft.prompts)
	}
	if !reflect.DeepEqual(ft.indexes, []int{0, 1}) {
		t.Errorf("chunk indexes = %v, want sequential", ft.indexes)
	}
}

func TestSessionCounterAdvancesOnFailure(t *testing.T) {
	session := NewSessionState("sess-1", "en")
	ft := &fakeTranscriber{err: errors.New("upstream down")}

	if _, err := TranscribeWithSession(context.Background(), ft, []byte("audio"), "audio/webm", session); err == nil {
		t.Fatal("expected error")
	}
	if session.ChunkCounter != 1 {
		t.Errorf("chunk counter = %d, want 1 after failed chunk", session.ChunkCounter)
	}
	if session.TotalText != "" {
		t.Errorf("total text = %q, want empty after failure", session.TotalText)
	}
}

func TestSessionEmptyTranscriptSkipsWindow(t *testing.T) {
	session := NewSessionState("sess-1", "en")
	ft := &fakeTranscriber{texts: []string{"   ", "hello"}}

	TranscribeWithSession(context.Background(), ft, []byte("audio"), "audio/webm", session)
	TranscribeWithSession(context.Background(), ft, []byte("audio"), "audio/webm", session)

	if got := session.Window(); !reflect.DeepEqual(got, []string{"hello"}) {
		t.Errorf("window = %v, want empty chunks excluded", got)
	}
	if session.ChunkCounter != 2 {
		t.Errorf("chunk counter = %d, want 2", session.ChunkCounter)
	}
}

func TestSessionDetectsLanguageOnce(t *testing.T) {
	session := NewSessionState("sess-1", "tr")
	ft := &fakeTranscriber{texts: []string{" ", "merhaba", "devam"}}

	TranscribeWithSession(context.Background(), ft, []byte("audio"), "audio/webm", session)
	if session.DetectedLanguage != "" {
		t.Errorf("detected language set from empty chunk: %q", session.DetectedLanguage)
	}

	TranscribeWithSession(context.Background(), ft, []byte("audio"), "audio/webm", session)
	if session.DetectedLanguage != "tr" {
		t.Errorf("detected language = %q, want %q", session.DetectedLanguage, "tr")
	}

	session.DetectedLanguage = "en"
	TranscribeWithSession(context.Background(), ft, []byte("audio"), "audio/webm", session)
	if session.DetectedLanguage != "en" {
		t.Error("detected language overwritten after first detection")
	}
}

func TestNewSessionStateDefaultsToAuto(t *testing.T) {
	session := NewSessionState("sess-1", "")
	if session.Language != LanguageAuto {
		t.Errorf("language = %q, want %q", session.Language, LanguageAuto)
	}
}
