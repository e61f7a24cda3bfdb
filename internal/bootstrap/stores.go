package bootstrap

import (
	"github.com/qdrant/go-client/qdrant"
	"github.com/redis/go-redis/v9"
	"github.com/sunum-ai/copilot-backend/internal/metrics"
	"github.com/sunum-ai/copilot-backend/internal/presentation"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func ProvidePresentationStore(db *gorm.DB, qdrantClient *qdrant.Client) *presentation.Store {
	return presentation.NewStore(db, qdrantClient)
}

func ProvideMetricsSink(redisClient *redis.Client) *metrics.Sink {
	return metrics.NewSink(redisClient)
}

func RunMigrations(store *presentation.Store) error {
	return store.Migrate()
}

var StoresModule = fx.Options(
	fx.Provide(
		ProvidePresentationStore,
		ProvideMetricsSink,
	),
	fx.Invoke(RunMigrations),
)
