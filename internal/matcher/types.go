package matcher

import "context"

// Layer identifies which matching layer produced a verdict.
type Layer string

const (
	LayerVoiceCommand     Layer = "voice_command"
	LayerKeyword          Layer = "keyword"
	LayerTransitionPhrase Layer = "transition_phrase"
	LayerSemantic         Layer = "semantic"
	LayerManual           Layer = "manual"
	LayerNone             Layer = "none"
)

// Verdict is the matcher's single decision for one transcript fragment.
// "No match" is a value, not an error.
type Verdict struct {
	ShouldAdvance   bool
	Layer           Layer
	Confidence      float64
	TargetSlide     int
	CurrentSlide    int
	MatchedKeywords []string
}

// Config carries the layer thresholds. Zero values are replaced with the
// defaults by New.
type Config struct {
	// Minimum keyword hits before the keyword layer may qualify.
	KeywordMinMatches int
	// Minimum matched/total keyword ratio for the keyword layer.
	KeywordMinConfidence float64
	// Minimum confidence for the transition-phrase layer.
	PhraseMinConfidence float64
	// Minimum cosine similarity for the semantic layer.
	SemanticMinSimilarity float64
	// How many upcoming slides are considered transition candidates.
	LookaheadCount int
}

func DefaultConfig() Config {
	return Config{
		KeywordMinMatches:     3,
		KeywordMinConfidence:  0.25,
		PhraseMinConfidence:   0.5,
		SemanticMinSimilarity: 0.72,
		LookaheadCount:        3,
	}
}

func normalizeConfig(cfg Config) Config {
	def := DefaultConfig()
	if cfg.KeywordMinMatches <= 0 {
		cfg.KeywordMinMatches = def.KeywordMinMatches
	}
	if cfg.KeywordMinConfidence <= 0 {
		cfg.KeywordMinConfidence = def.KeywordMinConfidence
	}
	if cfg.PhraseMinConfidence <= 0 {
		cfg.PhraseMinConfidence = def.PhraseMinConfidence
	}
	if cfg.SemanticMinSimilarity <= 0 {
		cfg.SemanticMinSimilarity = def.SemanticMinSimilarity
	}
	if cfg.LookaheadCount <= 0 {
		cfg.LookaheadCount = def.LookaheadCount
	}
	return cfg
}

// Embedder is the external embedding-generation collaborator consumed by
// the semantic layer.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
