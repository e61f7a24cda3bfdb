package presentation

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sunum-ai/copilot-backend/internal/auth"
	"github.com/sunum-ai/copilot-backend/internal/lexical"
	"github.com/sunum-ai/copilot-backend/internal/shared"
)

type Handler struct {
	store  *Store
	logger *slog.Logger
}

func NewHandler(store *Store, logger *slog.Logger) *Handler {
	return &Handler{
		store:  store,
		logger: logger,
	}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.List)
	g.GET("/:id", h.Get)
}

type slidePreview struct {
	PageNumber int      `json:"page_number"`
	Keywords   []string `json:"keywords"`
	HasVector  bool     `json:"has_vector"`
}

type presentationResponse struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Language    string         `json:"language"`
	AllowGuests bool           `json:"allow_guests"`
	SlideCount  int            `json:"slide_count"`
	Slides      []slidePreview `json:"slides"`
}

func (h *Handler) List(c echo.Context) error {
	userID, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	presentations, err := h.store.GetByOwner(c.Request().Context(), userID)
	if err != nil {
		h.logger.Error("failed to list presentations", "user_id", userID, "error", err)
		return shared.InternalError("list_failed", "failed to list presentations")
	}
	return c.JSON(http.StatusOK, presentations)
}

func (h *Handler) Get(c echo.Context) error {
	userID, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}
	id := c.Param("id")

	ctx := c.Request().Context()
	p, err := h.store.GetByID(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		return shared.NotFound("presentation_not_found", "presentation not found")
	}
	if err != nil {
		h.logger.Error("failed to load presentation", "presentation_id", id, "error", err)
		return shared.InternalError("load_failed", "failed to load presentation")
	}
	if p.OwnerID != userID && !p.AllowGuests {
		return shared.Forbidden("access_denied", "presentation access denied")
	}

	slides, err := h.store.LoadSlides(ctx, id)
	if err != nil {
		h.logger.Error("failed to load slides", "presentation_id", id, "error", err)
		return shared.InternalError("load_failed", "failed to load slides")
	}

	previews := make([]slidePreview, 0, len(slides))
	for _, slide := range slides {
		keywords := lexical.ExtractKeywords(slide.Text, 5)
		previews = append(previews, slidePreview{
			PageNumber: slide.PageNumber,
			Keywords:   keywords,
			HasVector:  len(slide.Embedding) > 0,
		})
	}

	return c.JSON(http.StatusOK, presentationResponse{
		ID:          p.ID,
		Title:       p.Title,
		Language:    p.Language,
		AllowGuests: p.AllowGuests,
		SlideCount:  len(slides),
		Slides:      previews,
	})
}
