// Package mongo implements the store interfaces on top of MongoDB. Counter
// mutations ride in the same single-document update as their ledger change, so
// the likes/views invariants hold under concurrent writers without
// read-modify-write cycles.
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/tripsketch/tripsketch-backend/config"
)

const (
	tripsCollection   = "trips"
	usersCollection   = "users"
	followsCollection = "follows"
)

// Client wraps the MongoDB connection and exposes the store implementations.
type Client struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect establishes the MongoDB connection and verifies it with a ping.
func Connect(ctx context.Context, cfg config.MongoConfig) (*Client, error) {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("mongo connect failed: %w", err)
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("mongo ping failed: %w", err)
	}

	return &Client{
		client: client,
		db:     client.Database(cfg.Database),
	}, nil
}

// Ping verifies the connection is still healthy.
func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx, readpref.Primary())
}

// Close disconnects from MongoDB.
func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

// TripStore returns the trip store backed by this connection.
func (c *Client) TripStore() *TripStore {
	return &TripStore{coll: c.db.Collection(tripsCollection)}
}

// UserStore returns the user store backed by this connection.
func (c *Client) UserStore() *UserStore {
	return &UserStore{coll: c.db.Collection(usersCollection)}
}

// FollowStore returns the follow store backed by this connection.
func (c *Client) FollowStore() *FollowStore {
	return &FollowStore{coll: c.db.Collection(followsCollection)}
}
