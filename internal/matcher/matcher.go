// Package matcher decides whether and when to advance the displayed
// slide from a transcript fragment. Layers run as a strict short-circuit
// waterfall, cheapest first: voice command, keyword, transition phrase,
// semantic similarity.
package matcher

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/sunum-ai/copilot-backend/internal/shared"
)

// Utterances longer than this are treated as natural speech, not a bare
// navigation command.
const maxCommandLength = 100

type commandClass string

const (
	commandNext     commandClass = "next"
	commandPrevious commandClass = "previous"
	commandFirst    commandClass = "first"
	commandLast     commandClass = "last"
)

// voiceCommands maps each command class to its trigger phrases. Slice
// order is a priority order: the first class with any phrase contained in
// the transcript wins.
var voiceCommands = []struct {
	class   commandClass
	phrases []string
}{
	{commandNext, []string{
		// Turkish
		"sonraki slayt", "sonraki sayfa", "ileri",
		"sonrakine geç", "devam et", "devam",
		"bir sonraki", "ilerle", "geç",
		// English
		"next slide", "next page", "go forward",
		"move on", "continue", "next one", "advance",
	}},
	{commandPrevious, []string{
		// Turkish
		"önceki slayt", "önceki sayfa", "geri",
		"bir önceki", "geri dön", "geri git",
		// English
		"previous slide", "previous page", "go back",
		"go backward", "back one",
	}},
	{commandFirst, []string{
		"ilk slayt", "başa dön", "en başa",
		"first slide", "go to start", "beginning",
	}},
	{commandLast, []string{
		"son slayt", "sona git", "en sona",
		"last slide", "go to end",
	}},
}

type Matcher struct {
	cfg      Config
	embedder Embedder
	log      *slog.Logger
}

func New(cfg Config, embedder Embedder, log *slog.Logger) *Matcher {
	if log == nil {
		log = slog.Default()
	}
	return &Matcher{
		cfg:      normalizeConfig(cfg),
		embedder: embedder,
		log:      log,
	}
}

// Decide runs the waterfall for one transcript fragment. A non-nil error
// is only ever a semantic-layer fault (wrapped as shared.MatchError); the
// returned verdict is still valid and says "no match" in that case.
func (m *Matcher) Decide(ctx context.Context, transcript string, nav *NavigationContext, allowSemantic bool) (Verdict, error) {
	currentPage := 1
	if cur := nav.Current(); cur != nil {
		currentPage = cur.PageNumber
	}

	noMatch := Verdict{
		ShouldAdvance: false,
		Layer:         LayerNone,
		TargetSlide:   currentPage,
		CurrentSlide:  currentPage,
	}

	if v, ok := m.matchVoiceCommand(transcript, nav, currentPage); ok {
		return v, nil
	}

	lookahead := nav.Lookahead(m.cfg.LookaheadCount)
	if len(lookahead) == 0 {
		return noMatch, nil
	}

	if v, ok := m.matchKeywords(transcript, lookahead, currentPage); ok {
		return v, nil
	}

	if v, ok := m.matchTransitionPhrases(transcript, lookahead, currentPage); ok {
		return v, nil
	}

	if allowSemantic && m.embedder != nil {
		v, ok, err := m.matchSemantic(ctx, transcript, lookahead, currentPage)
		if err != nil {
			return noMatch, err
		}
		if ok {
			return v, nil
		}
	}

	return noMatch, nil
}

// Layer 0: explicit navigational utterances, matched by substring against
// the fixed bilingual phrase table.
func (m *Matcher) matchVoiceCommand(transcript string, nav *NavigationContext, currentPage int) (Verdict, bool) {
	text := strings.ToLower(strings.TrimSpace(transcript))
	if text == "" || utf8.RuneCountInString(text) > maxCommandLength {
		return Verdict{}, false
	}

	var class commandClass
	found := false
outer:
	for _, entry := range voiceCommands {
		for _, phrase := range entry.phrases {
			if strings.Contains(text, phrase) {
				class = entry.class
				found = true
				break outer
			}
		}
	}
	if !found {
		return Verdict{}, false
	}

	target := currentPage
	ok := false
	switch class {
	case commandNext:
		target = currentPage + 1
		ok = !nav.IsLast()
	case commandPrevious:
		target = currentPage - 1
		ok = nav.CurrentIndex() > 0
	case commandFirst:
		target = 1
		ok = nav.SlideCount() > 0
	case commandLast:
		target = nav.SlideCount()
		ok = nav.SlideCount() > 0
	}
	if !ok {
		return Verdict{}, false
	}

	m.log.Debug("voice command matched", "command", string(class), "target", target)
	return Verdict{
		ShouldAdvance: true,
		Layer:         LayerVoiceCommand,
		Confidence:    1.0,
		TargetSlide:   target,
		CurrentSlide:  currentPage,
	}, true
}

// Layer 1: counts how many of a lookahead slide's keywords appear in the
// transcript. The first slide meeting both thresholds wins.
func (m *Matcher) matchKeywords(transcript string, lookahead []SlideSignal, currentPage int) (Verdict, bool) {
	text := strings.ToLower(transcript)

	for i := range lookahead {
		slide := &lookahead[i]
		if len(slide.Keywords) == 0 {
			continue
		}

		var matched []string
		for _, kw := range slide.Keywords {
			if strings.Contains(text, kw) {
				matched = append(matched, kw)
			}
		}
		if len(matched) < m.cfg.KeywordMinMatches {
			continue
		}

		confidence := float64(len(matched)) / float64(len(slide.Keywords))
		if confidence > 1.0 {
			confidence = 1.0
		}
		if confidence < m.cfg.KeywordMinConfidence {
			continue
		}

		m.log.Debug("keyword match",
			"target", slide.PageNumber,
			"matched", len(matched),
			"confidence", confidence)
		return Verdict{
			ShouldAdvance:   true,
			Layer:           LayerKeyword,
			Confidence:      confidence,
			TargetSlide:     slide.PageNumber,
			CurrentSlide:    currentPage,
			MatchedKeywords: matched,
		}, true
	}
	return Verdict{}, false
}

// Layer 2: full phrase containment scores 0.85; a partial hit with at
// least 60% of the phrase's distinct words present scores ratio*0.7.
func (m *Matcher) matchTransitionPhrases(transcript string, lookahead []SlideSignal, currentPage int) (Verdict, bool) {
	text := strings.ToLower(transcript)

	for i := range lookahead {
		slide := &lookahead[i]
		best := 0.0

		for _, phrase := range slide.TransitionPhrases {
			lower := strings.ToLower(phrase)
			if strings.Contains(text, lower) {
				best = 0.85
				break
			}

			words := distinctWords(lower)
			if len(words) < 2 {
				continue
			}
			hits := 0
			for w := range words {
				if strings.Contains(text, w) {
					hits++
				}
			}
			ratio := float64(hits) / float64(len(words))
			if ratio >= 0.6 && ratio*0.7 > best {
				best = ratio * 0.7
			}
		}

		if best >= m.cfg.PhraseMinConfidence {
			m.log.Debug("transition phrase match",
				"target", slide.PageNumber,
				"confidence", best)
			return Verdict{
				ShouldAdvance: true,
				Layer:         LayerTransitionPhrase,
				Confidence:    best,
				TargetSlide:   slide.PageNumber,
				CurrentSlide:  currentPage,
			}, true
		}
	}
	return Verdict{}, false
}

// Layer 3: embeds the transcript once and compares it against every
// lookahead slide that carries an embedding. Slides without one are
// skipped, not treated as an error.
func (m *Matcher) matchSemantic(ctx context.Context, transcript string, lookahead []SlideSignal, currentPage int) (Verdict, bool, error) {
	hasEmbedding := false
	for i := range lookahead {
		if len(lookahead[i].Embedding) > 0 {
			hasEmbedding = true
			break
		}
	}
	if !hasEmbedding || strings.TrimSpace(transcript) == "" {
		return Verdict{}, false, nil
	}

	transcriptVec, err := m.embedder.Embed(ctx, transcript)
	if err != nil {
		return Verdict{}, false, &shared.MatchError{Message: "transcript embedding failed", Cause: err}
	}

	bestScore := 0.0
	var bestSlide *SlideSignal
	for i := range lookahead {
		slide := &lookahead[i]
		if len(slide.Embedding) == 0 {
			continue
		}
		score := CosineSimilarity(transcriptVec, slide.Embedding)
		if score > bestScore {
			bestScore = score
			bestSlide = slide
		}
	}

	if bestSlide == nil || bestScore < m.cfg.SemanticMinSimilarity {
		return Verdict{}, false, nil
	}

	m.log.Debug("semantic match",
		"target", bestSlide.PageNumber,
		"similarity", bestScore)
	return Verdict{
		ShouldAdvance: true,
		Layer:         LayerSemantic,
		Confidence:    bestScore,
		TargetSlide:   bestSlide.PageNumber,
		CurrentSlide:  currentPage,
	}, true, nil
}

func distinctWords(s string) map[string]struct{} {
	words := make(map[string]struct{})
	for _, w := range strings.Fields(s) {
		words[w] = struct{}{}
	}
	return words
}
