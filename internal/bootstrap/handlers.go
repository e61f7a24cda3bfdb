package bootstrap

import (
	"log/slog"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/qdrant/go-client/qdrant"
	"github.com/redis/go-redis/v9"
	"github.com/sunum-ai/copilot-backend/internal/auth"
	"github.com/sunum-ai/copilot-backend/internal/embedding"
	"github.com/sunum-ai/copilot-backend/internal/health"
	"github.com/sunum-ai/copilot-backend/internal/live"
	"github.com/sunum-ai/copilot-backend/internal/matcher"
	"github.com/sunum-ai/copilot-backend/internal/metrics"
	"github.com/sunum-ai/copilot-backend/internal/presentation"
	"github.com/sunum-ai/copilot-backend/internal/transcription"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

const version = "1.0.0"

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func ProvideLogger(cfg *Config) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))
}

func ProvideJWTValidator(cfg *Config) *auth.JWTValidator {
	return auth.NewJWTValidator(cfg.HMACKey)
}

func ProvideJWTMiddleware(validator *auth.JWTValidator) *auth.Middleware {
	return auth.NewMiddleware(validator)
}

func ProvideTranscriber(cfg *Config, logger *slog.Logger) transcription.Transcriber {
	return transcription.NewClient(transcription.Config{
		BaseURL: cfg.OpenAIBaseURL,
		APIKey:  cfg.OpenAIAPIKey,
		Model:   cfg.WhisperModel,
		Timeout: 30 * time.Second,
	}, logger)
}

func ProvideEmbedder(cfg *Config, logger *slog.Logger) matcher.Embedder {
	return embedding.NewClient(embedding.Config{
		BaseURL: cfg.OpenAIBaseURL,
		APIKey:  cfg.OpenAIAPIKey,
		Model:   cfg.EmbedModel,
		Timeout: 15 * time.Second,
	}, logger)
}

func ProvideMatcher(cfg *Config, embedder matcher.Embedder, logger *slog.Logger) *matcher.Matcher {
	return matcher.New(matcher.Config{
		KeywordMinMatches:     cfg.KeywordMinMatches,
		KeywordMinConfidence:  cfg.KeywordMinConfidence,
		PhraseMinConfidence:   cfg.PhraseMinConfidence,
		SemanticMinSimilarity: cfg.SemanticMinSimilarity,
	}, embedder, logger)
}

func ProvideRegistry(redisClient *redis.Client, logger *slog.Logger) *live.Registry {
	return live.NewRegistry(redisClient, logger)
}

func ProvidePresentationHandler(store *presentation.Store, logger *slog.Logger) *presentation.Handler {
	return presentation.NewHandler(store, logger.With("handler", "presentation"))
}

func ProvideLiveHandler(
	validator *auth.JWTValidator,
	store *presentation.Store,
	transcriber transcription.Transcriber,
	m *matcher.Matcher,
	sink *metrics.Sink,
	registry *live.Registry,
	logger *slog.Logger,
) *live.Handler {
	deps := live.SessionDeps{
		Transcriber: transcriber,
		Matcher:     m,
		Metrics:     sink,
		Registry:    registry,
		Logger:      logger.With("handler", "live"),
	}
	return live.NewHandler(validator, store, deps, logger.With("handler", "live"))
}

func ProvideHealthHandler(db *gorm.DB, redisClient *redis.Client, qdrantClient *qdrant.Client) *health.Handler {
	return health.NewHandler(db, redisClient, qdrantClient, version)
}

type HandlerParams struct {
	fx.In

	PresentationHandler *presentation.Handler
	LiveHandler         *live.Handler
	HealthHandler       *health.Handler
	JWTMiddleware       *auth.Middleware
}

func RegisterRoutes(e *echo.Echo, params HandlerParams) {
	api := e.Group("/api/v1")

	presentationsGroup := api.Group("/presentations")
	presentationsGroup.Use(params.JWTMiddleware.Authenticate)
	params.PresentationHandler.RegisterRoutes(presentationsGroup)

	// The websocket handshake authenticates via query parameters, so
	// the live route skips the header middleware.
	params.LiveHandler.RegisterRoutes(api.Group("/ws"))

	params.HealthHandler.RegisterRoutes(e)
}

var HandlersModule = fx.Options(
	fx.Provide(
		ProvideLogger,
		ProvideJWTValidator,
		ProvideJWTMiddleware,
		ProvideTranscriber,
		ProvideEmbedder,
		ProvideMatcher,
		ProvideRegistry,
		ProvidePresentationHandler,
		ProvideLiveHandler,
		ProvideHealthHandler,
	),
	fx.Invoke(RegisterRoutes),
)
