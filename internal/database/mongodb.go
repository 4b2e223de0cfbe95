package database

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"time"

	"asset-report/internal/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names
const (
	ReportsCollection       = "reports"
	FixedAssetsCollection   = "fixed_assets"
	VirtualAssetsCollection = "virtual_assets"
	IncomeCollection        = "income_records"
	SubscriptionsCollection = "report_subscriptions"
)

// MongoDBClient wraps the MongoDB client shared by the asset store, the
// report sink and the schedule subscriptions
type MongoDBClient struct {
	client        *mongo.Client
	database      *mongo.Database
	reports       *mongo.Collection
	fixedAssets   *mongo.Collection
	virtualAssets *mongo.Collection
	income        *mongo.Collection
	subscriptions *mongo.Collection
}

// BuildURI returns the connection URI and a password-masked variant for logs
func BuildURI(cfg config.MongoDBConfig) (uri string, logURI string) {
	if cfg.URI != "" {
		return cfg.URI, maskURI(cfg.URI)
	}

	authSource := cfg.AuthSource
	if authSource == "" {
		authSource = "admin"
	}

	if cfg.Username != "" && cfg.Password != "" {
		// url.UserPassword escapes reserved characters in credentials
		userInfo := url.UserPassword(cfg.Username, cfg.Password)
		uri = fmt.Sprintf("mongodb://%s@%s:%s/%s?authSource=%s",
			userInfo.String(), cfg.Host, cfg.Port, cfg.Database, url.QueryEscape(authSource))
		logURI = fmt.Sprintf("mongodb://%s:***@%s:%s/%s?authSource=%s",
			url.User(cfg.Username).String(), cfg.Host, cfg.Port, cfg.Database, url.QueryEscape(authSource))
		return uri, logURI
	}

	uri = fmt.Sprintf("mongodb://%s:%s/%s", cfg.Host, cfg.Port, cfg.Database)
	return uri, uri
}

func maskURI(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return u.Redacted()
}

// NewMongoDBClient connects, pings and ensures the indexes the service relies on
func NewMongoDBClient(cfg config.MongoDBConfig) (*MongoDBClient, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	uri, logURI := BuildURI(cfg)
	log.Printf("Attempting to connect to MongoDB at %s", logURI)

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB at %s: %w", logURI, err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB at %s: %w", logURI, err)
	}

	database := client.Database(cfg.Database)
	c := &MongoDBClient{
		client:        client,
		database:      database,
		reports:       database.Collection(ReportsCollection),
		fixedAssets:   database.Collection(FixedAssetsCollection),
		virtualAssets: database.Collection(VirtualAssetsCollection),
		income:        database.Collection(IncomeCollection),
		subscriptions: database.Collection(SubscriptionsCollection),
	}
	c.ensureIndexes(ctx)
	return c, nil
}

func (c *MongoDBClient) ensureIndexes(ctx context.Context) {
	indexes := []struct {
		collection *mongo.Collection
		model      mongo.IndexModel
	}{
		{c.reports, mongo.IndexModel{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}}},
		{c.reports, mongo.IndexModel{Keys: bson.D{{Key: "status", Value: 1}}}},
		{c.fixedAssets, mongo.IndexModel{Keys: bson.D{{Key: "userId", Value: 1}}}},
		{c.virtualAssets, mongo.IndexModel{Keys: bson.D{{Key: "userId", Value: 1}}}},
		{c.income, mongo.IndexModel{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "date", Value: 1}}}},
		{c.subscriptions, mongo.IndexModel{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "kind", Value: 1}},
			Options: options.Index().SetUnique(true), // One subscription per user and period
		}},
	}

	for _, idx := range indexes {
		if _, err := idx.collection.Indexes().CreateOne(ctx, idx.model); err != nil {
			// Index might already exist, that's okay
			log.Printf("Note: MongoDB index creation on %s: %v", idx.collection.Name(), err)
		}
	}
}

// Ping checks the connection, used by the health endpoint
func (c *MongoDBClient) Ping(ctx context.Context) error {
	return c.client.Ping(ctx, nil)
}

// Close closes the MongoDB client connection
func (c *MongoDBClient) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return c.client.Disconnect(ctx)
}
