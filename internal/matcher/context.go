package matcher

import (
	"log/slog"

	"github.com/sunum-ai/copilot-backend/internal/lexical"
)

// SlideSignal is the precomputed, immutable matching material for one
// slide. Built once when a session starts, read-only afterwards.
type SlideSignal struct {
	PageNumber        int
	Text              string
	Keywords          []string
	TransitionPhrases []string
	Embedding         []float32
}

// SlideData is the durable slide record the signals are built from, as
// returned by the slide storage collaborator.
type SlideData struct {
	PageNumber int
	Text       string
	Embedding  []float32
}

// NavigationContext is the mutable cursor over a presentation's ordered
// slide sequence. It is owned by a single session loop and is never
// mutated concurrently, so it carries no locking.
type NavigationContext struct {
	PresentationID string

	slides       []SlideSignal
	currentIndex int
}

// BuildContext precomputes keywords and transition phrases for every
// slide and returns a context with the cursor on the first slide.
func BuildContext(presentationID string, slides []SlideData) *NavigationContext {
	signals := make([]SlideSignal, len(slides))
	for i, slide := range slides {
		signals[i] = SlideSignal{
			PageNumber: slide.PageNumber,
			Text:       slide.Text,
			Keywords:   lexical.ExtractKeywords(slide.Text, lexical.DefaultMaxKeywords),
			Embedding:  slide.Embedding,
		}
		if i < len(slides)-1 {
			signals[i].TransitionPhrases = lexical.GenerateTransitionPhrases(slide.Text, slides[i+1].Text)
		}
	}

	slog.Info("navigation context built",
		"presentation_id", presentationID,
		"slides", len(signals))

	return &NavigationContext{
		PresentationID: presentationID,
		slides:         signals,
	}
}

// Current returns the slide under the cursor, or nil for an empty deck.
func (c *NavigationContext) Current() *SlideSignal {
	if c.currentIndex < 0 || c.currentIndex >= len(c.slides) {
		return nil
	}
	return &c.slides[c.currentIndex]
}

// Lookahead returns up to count slides strictly after the current one,
// clipped at the end of the deck.
func (c *NavigationContext) Lookahead(count int) []SlideSignal {
	start := c.currentIndex + 1
	if start >= len(c.slides) || count <= 0 {
		return nil
	}
	end := start + count
	if end > len(c.slides) {
		end = len(c.slides)
	}
	return c.slides[start:end]
}

// AdvanceTo moves the cursor to the slide with the given page number.
// Returns false, leaving the cursor unchanged, if no such page exists.
func (c *NavigationContext) AdvanceTo(pageNumber int) bool {
	for i := range c.slides {
		if c.slides[i].PageNumber == pageNumber {
			c.currentIndex = i
			return true
		}
	}
	return false
}

// AdvanceNext moves one slide forward; no-op at the last slide.
func (c *NavigationContext) AdvanceNext() bool {
	if c.IsLast() {
		return false
	}
	c.currentIndex++
	return true
}

// GoPrevious moves one slide back; no-op at the first slide.
func (c *NavigationContext) GoPrevious() bool {
	if c.currentIndex == 0 {
		return false
	}
	c.currentIndex--
	return true
}

func (c *NavigationContext) IsLast() bool {
	return c.currentIndex >= len(c.slides)-1
}

func (c *NavigationContext) SlideCount() int {
	return len(c.slides)
}

func (c *NavigationContext) CurrentIndex() int {
	return c.currentIndex
}
