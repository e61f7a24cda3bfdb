package bootstrap

import (
	"context"
	"crypto/tls"

	"github.com/qdrant/go-client/qdrant"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ProvideRedisClient connects the client backing the session metrics
// sink and the cross-instance fan-out relay. Closed on shutdown so the
// relay subscriptions unwind cleanly.
func ProvideRedisClient(lc fx.Lifecycle, cfg *Config) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	return client
}

// ProvideDatabase opens the presentation and slide store. Query logging
// stays off; the handlers log at the operation level instead.
func ProvideDatabase(cfg *Config) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
}

// ProvideQdrantClient connects the slide-embedding mirror. An API key
// implies a managed deployment, which requires TLS.
func ProvideQdrantClient(cfg *Config) (*qdrant.Client, error) {
	qcfg := &qdrant.Config{
		Host:   cfg.QdrantHost,
		Port:   cfg.QdrantPort,
		APIKey: cfg.QdrantAPIKey,
	}
	if cfg.QdrantAPIKey != "" {
		qcfg.UseTLS = true
		qcfg.TLSConfig = &tls.Config{}
	}
	return qdrant.NewClient(qcfg)
}

var InfrastructureModule = fx.Options(
	fx.Provide(
		ProvideRedisClient,
		ProvideDatabase,
		ProvideQdrantClient,
	),
)
