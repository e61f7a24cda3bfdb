package presentation

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/sunum-ai/copilot-backend/internal/auth"
)

func newTestContext(t *testing.T, userID, presentationID string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(presentationID)
	if userID != "" {
		auth.SetClaimsForTest(c, &auth.Claims{UserID: userID})
	}
	return c, rec
}

func TestHandlerGetReturnsPreviews(t *testing.T) {
	store := setupTestStore(t)
	p := seedPresentation(t, store, "user-1", false)
	err := store.SaveSlides(context.Background(), p.ID, []*Slide{
		{PageNumber: 1, Text: "yapay zeka modelleri ve uygulamaları"},
		{PageNumber: 2, Text: "derin öğrenme mimarileri"},
	})
	if err != nil {
		t.Fatalf("save slides: %v", err)
	}

	h := NewHandler(store, slog.Default())
	c, rec := newTestContext(t, "user-1", p.ID)
	if err := h.Get(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var resp presentationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.SlideCount != 2 || len(resp.Slides) != 2 {
		t.Fatalf("slide count = %d previews = %d, want 2/2", resp.SlideCount, len(resp.Slides))
	}
	if resp.Slides[0].PageNumber != 1 {
		t.Errorf("first preview page = %d, want 1", resp.Slides[0].PageNumber)
	}
	if len(resp.Slides[0].Keywords) == 0 {
		t.Error("expected keywords in preview")
	}
}

func TestHandlerGetForbiddenForStranger(t *testing.T) {
	store := setupTestStore(t)
	p := seedPresentation(t, store, "user-1", false)

	h := NewHandler(store, slog.Default())
	c, _ := newTestContext(t, "user-2", p.ID)
	err := h.Get(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusForbidden {
		t.Errorf("error = %v, want 403", err)
	}
}

func TestHandlerGetNotFound(t *testing.T) {
	store := setupTestStore(t)
	h := NewHandler(store, slog.Default())
	c, _ := newTestContext(t, "user-1", "pres_missing")
	err := h.Get(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusNotFound {
		t.Errorf("error = %v, want 404", err)
	}
}

func TestHandlerGetRequiresAuth(t *testing.T) {
	store := setupTestStore(t)
	h := NewHandler(store, slog.Default())
	c, _ := newTestContext(t, "", "pres_x")
	err := h.Get(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Errorf("error = %v, want 401", err)
	}
}
