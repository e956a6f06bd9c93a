// Package database opens and owns the MongoDB connection.
package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Conn bundles the Mongo client with the application database handle.
type Conn struct {
	Client *mongo.Client
	DB     *mongo.Database
}

// Connect opens the MongoDB connection, configures the pool, and verifies
// it with a ping. Returns an error instead of calling log.Fatal so the
// caller can shut down gracefully.
func Connect(ctx context.Context, uri, dbName string) (*Conn, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Client().ApplyURI(uri).
		SetConnectTimeout(5 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(50).
		SetMinPoolSize(5).
		SetMaxConnIdleTime(2 * time.Minute)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("database: connect: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("database: ping: %w", err)
	}

	return &Conn{Client: client, DB: client.Database(dbName)}, nil
}

// Close disconnects from MongoDB.
func (c *Conn) Close(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return c.Client.Disconnect(ctx)
}
