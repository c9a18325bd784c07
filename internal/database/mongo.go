package database

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-variability/internal/config"
	"github.com/stemsi/exstem-variability/internal/model"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// MongoClients holds one connected client per exam environment.
type MongoClients struct {
	clients   map[model.Environment]*mongo.Client
	databases map[model.Environment]*mongo.Database
}

// NewMongoClients connects to the Staging and Production deployments and
// validates both with a ping. Already opened clients are closed on failure.
func NewMongoClients(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*MongoClients, error) {
	uris := map[model.Environment]string{
		model.EnvironmentStaging:    cfg.MongoURIStaging,
		model.EnvironmentProduction: cfg.MongoURIProduction,
	}

	mc := &MongoClients{
		clients:   make(map[model.Environment]*mongo.Client, len(uris)),
		databases: make(map[model.Environment]*mongo.Database, len(uris)),
	}

	for _, env := range model.Environments {
		client, err := connectMongo(ctx, uris[env], cfg.MongoPoolSize)
		if err != nil {
			mc.Disconnect(context.Background(), log)
			return nil, fmt.Errorf("connect %s mongodb: %w", env, err)
		}
		mc.clients[env] = client
		mc.databases[env] = client.Database(cfg.MongoDatabase)

		log.Info().
			Str("environment", string(env)).
			Str("database", cfg.MongoDatabase).
			Uint64("max_pool_size", cfg.MongoPoolSize).
			Msg("MongoDB connected")
	}

	return mc, nil
}

func connectMongo(ctx context.Context, uri string, poolSize uint64) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1)).
		SetMaxPoolSize(poolSize).
		SetMaxConnIdleTime(60 * time.Second).
		SetRetryReads(true)

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping: %w", err)
	}

	return client, nil
}

// Databases returns the per-environment database handles.
func (m *MongoClients) Databases() map[model.Environment]*mongo.Database {
	return m.databases
}

// Disconnect closes every open client. Errors are logged.
func (m *MongoClients) Disconnect(ctx context.Context, log zerolog.Logger) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	for env, client := range m.clients {
		if err := client.Disconnect(ctx); err != nil {
			log.Error().Err(err).Str("environment", string(env)).Msg("Error disconnecting from MongoDB")
			continue
		}
		log.Info().Str("environment", string(env)).Msg("MongoDB disconnected")
	}
}
