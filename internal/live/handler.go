package live

import (
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/sunum-ai/copilot-backend/internal/auth"
	"github.com/sunum-ai/copilot-backend/internal/matcher"
	"github.com/sunum-ai/copilot-backend/internal/presentation"
	"github.com/sunum-ai/copilot-backend/internal/shared"
	"github.com/sunum-ai/copilot-backend/internal/transcription"
)

// Session modes accepted on the handshake.
const (
	ModeLive      = "live"
	ModeRehearsal = "rehearsal"
)

type Handler struct {
	validator *auth.JWTValidator
	store     *presentation.Store
	deps      SessionDeps
	logger    *slog.Logger
}

func NewHandler(validator *auth.JWTValidator, store *presentation.Store, deps SessionDeps, logger *slog.Logger) *Handler {
	return &Handler{
		validator: validator,
		store:     store,
		deps:      deps,
		logger:    logger,
	}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/live/:presentation_id", h.Handle)
}

// Handle upgrades the connection, authenticates the handshake query
// parameters, and runs the session loop until the client goes away.
// Handshake failures close with an application code after a preceding
// error event.
func (h *Handler) Handle(c echo.Context) error {
	presentationID := c.Param("presentation_id")

	ws, err := wsUpgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return err
	}
	conn := NewConn(ws, h.logger)

	identity, err := h.validator.ResolveIdentity(
		c.QueryParam("token"), c.QueryParam("guest_token"))
	if err != nil {
		conn.SendEvent(newErrorEvent("authentication failed"))
		return conn.CloseWithCode(CloseUnauthorized, "authentication failed")
	}

	ctx := c.Request().Context()
	allowed, err := h.store.CanAccess(ctx, presentationID, identity.UserID, identity.IsGuest)
	if errors.Is(err, shared.ErrNotFound) {
		conn.SendEvent(newErrorEvent("presentation not found"))
		return conn.CloseWithCode(CloseNotFound, "presentation not found")
	}
	if err != nil {
		h.logger.Error("access check failed", "presentation_id", presentationID, "error", err)
		conn.SendEvent(newErrorEvent("presentation not found"))
		return conn.CloseWithCode(CloseNotFound, "presentation not found")
	}
	if !allowed {
		conn.SendEvent(newErrorEvent("presentation access denied"))
		return conn.CloseWithCode(CloseUnauthorized, "presentation access denied")
	}

	slides, err := h.store.LoadSlides(ctx, presentationID)
	if err != nil || len(slides) == 0 {
		conn.SendEvent(newErrorEvent("presentation has no slides"))
		return conn.CloseWithCode(CloseNotFound, "presentation has no slides")
	}

	data := make([]matcher.SlideData, 0, len(slides))
	for _, slide := range slides {
		data = append(data, matcher.SlideData{
			PageNumber: slide.PageNumber,
			Text:       slide.Text,
			Embedding:  slide.Embedding,
		})
	}
	nav := matcher.BuildContext(presentationID, data)

	mode := c.QueryParam("mode")
	if mode != ModeRehearsal {
		mode = ModeLive
	}
	language := c.QueryParam("language")
	switch language {
	case transcription.LanguageTurkish, transcription.LanguageEnglish:
	default:
		language = transcription.LanguageAuto
	}

	sessionID := uuid.New().String()
	tsess := transcription.NewSessionState(sessionID, language)

	session := NewSession(sessionID, presentationID, identity.UserID, mode, conn, nav, tsess, h.deps)

	h.logger.Info("live session accepted",
		"session_id", sessionID,
		"presentation_id", presentationID,
		"user_id", identity.UserID,
		"guest", identity.IsGuest,
		"mode", mode)

	session.Run(ctx)
	return nil
}
