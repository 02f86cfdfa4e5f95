package database

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"fruit-store-api-server/config"
)

// PingTimeout bounds connectivity checks at startup and in /health.
const PingTimeout = 5 * time.Second

// Connect creates the client. The driver connects lazily, so an unreachable
// server is reported by the first ping rather than here. The caller owns the
// client and must Disconnect it on shutdown.
func Connect(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetServerSelectionTimeout(PingTimeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, errors.Wrap(err, "connect to mongodb")
	}
	return client, nil
}
