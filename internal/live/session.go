package live

import (
	"context"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sunum-ai/copilot-backend/internal/matcher"
	"github.com/sunum-ai/copilot-backend/internal/metrics"
	"github.com/sunum-ai/copilot-backend/internal/transcription"
)

// Frames under this many bytes are treated as silence and dropped
// before any validation or network call.
const silenceFloorBytes = 500

// Per-frame budget for the transcription and matching calls so one
// slow frame cannot wedge the session loop.
const frameTimeout = 30 * time.Second

const defaultContentType = "audio/webm"

type State string

const (
	StateConnecting    State = "connecting"
	StateAuthenticated State = "authenticated"
	StateReady         State = "ready"
	StateListening     State = "listening"
	StatePaused        State = "paused"
	StateClosed        State = "closed"
)

// Decider is the matching collaborator.
type Decider interface {
	Decide(ctx context.Context, transcript string, nav *matcher.NavigationContext, allowSemantic bool) (matcher.Verdict, error)
}

// MetricsSink is the best-effort persistence collaborator.
type MetricsSink interface {
	Persist(ctx context.Context, record *metrics.SessionRecord) error
	IncrementSessions(ctx context.Context, presentationID string) error
	AddTranscripts(ctx context.Context, presentationID string, count int64) error
	AddSlideChanges(ctx context.Context, presentationID string, count int64) error
	IncrementErrors(ctx context.Context, presentationID string) error
}

// Broadcaster is the manual-command fan-out collaborator.
type Broadcaster interface {
	Register(presentationID string, conn EventSender)
	Unregister(presentationID string, conn EventSender)
	Broadcast(presentationID string, event any, exclude EventSender)
}

type transportConn interface {
	EventSender
	ReadMessage() (int, []byte, error)
	Close() error
}

type SessionDeps struct {
	Transcriber transcription.Transcriber
	Matcher     Decider
	Metrics     MetricsSink
	Registry    Broadcaster
	Logger      *slog.Logger
}

// Session drives one live connection: a single-threaded loop that owns
// the navigation context and transcription state, processing at most
// one frame at a time.
type Session struct {
	id             string
	presentationID string
	userID         string
	mode           string

	conn  transportConn
	nav   *matcher.NavigationContext
	tsess *transcription.SessionState
	deps  SessionDeps

	state       State
	contentType string
	startedAt   time.Time

	transcriptCount int
	slideChanges    int

	log *slog.Logger
}

func NewSession(id, presentationID, userID, mode string, conn transportConn, nav *matcher.NavigationContext, tsess *transcription.SessionState, deps SessionDeps) *Session {
	return &Session{
		id:             id,
		presentationID: presentationID,
		userID:         userID,
		mode:           mode,
		conn:           conn,
		nav:            nav,
		tsess:          tsess,
		deps:           deps,
		state:          StateReady,
		contentType:    defaultContentType,
		startedAt:      time.Now(),
		log: deps.Logger.With(
			"session_id", id,
			"presentation_id", presentationID),
	}
}

func (s *Session) State() State { return s.state }

// Run announces the session and consumes frames until the client goes
// away or ends the session, then persists metrics best-effort.
func (s *Session) Run(ctx context.Context) {
	current := 1
	if slide := s.nav.Current(); slide != nil {
		current = slide.PageNumber
	}
	s.sendEvent(SessionInfoEvent{
		Type:           "session_info",
		SessionID:      s.id,
		PresentationID: s.presentationID,
		TotalSlides:    s.nav.SlideCount(),
		CurrentSlide:   current,
		Mode:           s.mode,
		Language:       s.tsess.Language,
	})
	s.sendEvent(newStatusEvent(StatusConnected))
	s.log.Info("session started", "mode", s.mode, "slides", s.nav.SlideCount())

	s.deps.Registry.Register(s.presentationID, s.conn)
	if err := s.deps.Metrics.IncrementSessions(ctx, s.presentationID); err != nil {
		s.log.Debug("failed to record session metric", "error", err)
	}
	defer s.teardown(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		messageType, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				s.log.Error("websocket read error", "error", err)
			}
			return
		}

		switch messageType {
		case websocket.TextMessage:
			if !s.handleText(ctx, data) {
				return
			}
		case websocket.BinaryMessage:
			s.handleAudio(ctx, data)
		}
	}
}

// handleText processes one control frame. Returns false when the
// session should end.
func (s *Session) handleText(ctx context.Context, data []byte) bool {
	msg, err := ParseClientMessage(data)
	if err != nil {
		s.sendEvent(newErrorEvent("malformed message"))
		return true
	}

	switch msg.Type {
	case "ping":
		s.sendEvent(newPongEvent())
		return true
	case "control":
		return s.handleControl(ctx, msg)
	default:
		s.sendEvent(newErrorEvent("unknown message type: " + msg.Type))
		return true
	}
}

func (s *Session) handleControl(ctx context.Context, msg *ClientMessage) bool {
	switch msg.Action {
	case ActionStart, ActionResume:
		s.state = StateListening
		s.sendEvent(newStatusEvent(StatusListening))

	case ActionPause:
		s.state = StatePaused
		s.sendEvent(newStatusEvent(StatusPaused))

	case ActionStop:
		s.sendEvent(newStatusEvent(StatusStopped))
		s.state = StateClosed
		return false

	case ActionSetSlide:
		s.handleSetSlide(msg.Slide)

	case ActionSetContentType:
		if msg.ContentType == "" {
			s.sendEvent(newErrorEvent("content_type is required"))
			return true
		}
		s.contentType = msg.ContentType

	case ActionEndSession:
		s.state = StateClosed
		return false

	default:
		s.sendEvent(newErrorEvent("unknown action: " + msg.Action))
	}
	return true
}

// handleSetSlide jumps the cursor directly, bypassing the matcher, and
// re-broadcasts the change to every co-viewer of the presentation.
func (s *Session) handleSetSlide(page int) {
	if !s.nav.AdvanceTo(page) {
		s.sendEvent(newErrorEvent("slide not found"))
		return
	}
	s.slideChanges++

	event := SlideChangeEvent{
		Type:       "slide_change",
		Slide:      page,
		MatchType:  string(matcher.LayerManual),
		Confidence: 1.0,
	}
	s.sendEvent(event)
	s.deps.Registry.Broadcast(s.presentationID, event, s.conn)
}

func (s *Session) handleAudio(ctx context.Context, data []byte) {
	if s.state != StateListening {
		return
	}
	if len(data) < silenceFloorBytes {
		return
	}

	s.sendEvent(newStatusEvent(StatusProcessing))

	frameCtx, cancel := context.WithTimeout(ctx, frameTimeout)
	s.processFrame(frameCtx, data)
	cancel()

	s.sendEvent(newStatusEvent(StatusListening))
}

func (s *Session) processFrame(ctx context.Context, data []byte) {
	result, err := transcription.TranscribeWithSession(ctx, s.deps.Transcriber, data, s.contentType, s.tsess)
	if err != nil {
		s.log.Warn("transcription failed", "error", err)
		s.sendEvent(newErrorEvent("transcription failed: " + err.Error()))
		s.recordError(ctx)
		return
	}

	s.transcriptCount++
	s.sendEvent(TranscriptEvent{
		Type:       "transcript",
		Text:       result.Text,
		ChunkIndex: result.ChunkIndex,
		DurationMs: result.DurationMs,
		IsEmpty:    result.IsEmpty(),
	})

	if result.IsEmpty() {
		return
	}

	verdict, err := s.deps.Matcher.Decide(ctx, result.Text, s.nav, true)
	if err != nil {
		s.log.Warn("matching failed", "error", err)
		s.sendEvent(newErrorEvent("matching failed: " + err.Error()))
		s.recordError(ctx)
		return
	}
	if !verdict.ShouldAdvance {
		return
	}

	if s.nav.AdvanceTo(verdict.TargetSlide) {
		s.slideChanges++
		s.sendEvent(SlideChangeEvent{
			Type:            "slide_change",
			Slide:           verdict.TargetSlide,
			MatchType:       string(verdict.Layer),
			Confidence:      verdict.Confidence,
			MatchedKeywords: verdict.MatchedKeywords,
		})
		s.log.Info("slide advanced",
			"slide", verdict.TargetSlide,
			"layer", verdict.Layer,
			"confidence", verdict.Confidence)
	}
}

func (s *Session) teardown(ctx context.Context) {
	s.state = StateClosed
	s.deps.Registry.Unregister(s.presentationID, s.conn)

	finalPage := 0
	if slide := s.nav.Current(); slide != nil {
		finalPage = slide.PageNumber
	}
	ended := time.Now()
	record := &metrics.SessionRecord{
		SessionID:        s.id,
		UserID:           s.userID,
		PresentationID:   s.presentationID,
		Mode:             s.mode,
		Language:         s.tsess.Language,
		StartedAt:        s.startedAt,
		EndedAt:          ended,
		DurationSec:      ended.Sub(s.startedAt).Seconds(),
		TotalTranscripts: s.transcriptCount,
		SlideChanges:     s.slideChanges,
		SlideCount:       s.nav.SlideCount(),
		FinalPage:        finalPage,
		TotalText:        s.tsess.TotalText,
	}

	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.deps.Metrics.Persist(persistCtx, record); err != nil {
		s.log.Warn("failed to persist session metrics", "error", err)
	}
	if s.transcriptCount > 0 {
		_ = s.deps.Metrics.AddTranscripts(persistCtx, s.presentationID, int64(s.transcriptCount))
	}
	if s.slideChanges > 0 {
		_ = s.deps.Metrics.AddSlideChanges(persistCtx, s.presentationID, int64(s.slideChanges))
	}

	s.conn.Close()
	s.log.Info("session ended",
		"duration_sec", record.DurationSec,
		"transcripts", s.transcriptCount,
		"slide_changes", s.slideChanges)
}

func (s *Session) recordError(ctx context.Context) {
	if err := s.deps.Metrics.IncrementErrors(ctx, s.presentationID); err != nil {
		s.log.Debug("failed to record error metric", "error", err)
	}
}

func (s *Session) sendEvent(event any) {
	if err := s.conn.SendEvent(event); err != nil {
		s.log.Debug("failed to send event", "error", err)
	}
}
