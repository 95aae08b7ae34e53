package clients

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// NewMongoClient connects to uri and verifies the primary is reachable.
func NewMongoClient(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, CONNECT_TIMEOUT)
	defer cancel()

	opts := options.Client().
		ApplyURI(uri).
		SetReadPreference(readpref.PrimaryPreferred())

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("[MongoClient] failed to connect: %w", err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, PING_TIMEOUT)
	defer pingCancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("[MongoClient] failed to ping MongoDB: %w", err)
	}

	slog.Info("[MongoClient] Successfully connected to MongoDB")
	return client, nil
}
