package database

import (
	"context"
	"fmt"
	"time"

	"asset-report/internal/models"
	"asset-report/internal/utils"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Asset documents are written by the bookkeeping application; this service
// only reads them. Amounts are stored as doubles in the currency's major unit.

type fixedAssetDocument struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	UserID        string             `bson:"userId"`
	Name          string             `bson:"name"`
	Category      string             `bson:"category"`
	PurchasePrice float64            `bson:"purchasePrice"`
	CurrentValue  float64            `bson:"currentValue"`
	PurchaseDate  time.Time          `bson:"purchaseDate"`
	Status        string             `bson:"status"`
}

type virtualAssetDocument struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	UserID        string             `bson:"userId"`
	Name          string             `bson:"name"`
	Category      string             `bson:"category"`
	Cost          float64            `bson:"cost"`
	StartDate     time.Time          `bson:"startDate"`
	ExpiryDate    *time.Time         `bson:"expiryDate,omitempty"`
	Status        string             `bson:"status"`
	UsageCount    int                `bson:"usageCount"`
	ExpectedUsage int                `bson:"expectedUsage"`
}

type incomeDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    string             `bson:"userId"`
	AssetID   string             `bson:"assetId"`
	AssetKind string             `bson:"assetKind"`
	Amount    float64            `bson:"amount"`
	Date      time.Time          `bson:"date"`
	Source    string             `bson:"source"`
}

func money(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

func (d fixedAssetDocument) record() models.FixedAssetRecord {
	return models.FixedAssetRecord{
		ID:            d.ID.Hex(),
		Name:          d.Name,
		Category:      d.Category,
		PurchasePrice: money(d.PurchasePrice),
		CurrentValue:  money(d.CurrentValue),
		PurchaseDate:  d.PurchaseDate,
		Status:        d.Status,
	}
}

func (d virtualAssetDocument) record() models.VirtualAssetRecord {
	return models.VirtualAssetRecord{
		ID:            d.ID.Hex(),
		Name:          d.Name,
		Category:      d.Category,
		Cost:          money(d.Cost),
		StartDate:     d.StartDate,
		ExpiryDate:    d.ExpiryDate,
		Status:        d.Status,
		UsageCount:    d.UsageCount,
		ExpectedUsage: d.ExpectedUsage,
	}
}

func (d incomeDocument) record() models.IncomeRecord {
	return models.IncomeRecord{
		ID:        d.ID.Hex(),
		AssetID:   d.AssetID,
		AssetKind: d.AssetKind,
		Amount:    money(d.Amount),
		Date:      d.Date,
		Source:    d.Source,
	}
}

// windowEnd is the exclusive upper bound of the window: midnight after its last day
func windowEnd(w models.Window) time.Time {
	return utils.StartOfDay(w.End).AddDate(0, 0, 1)
}

// QueryFixedAssets returns the fixed assets acquired before the window closed
func (c *MongoDBClient) QueryFixedAssets(ctx context.Context, userID string, window models.Window) ([]models.FixedAssetRecord, error) {
	filter := bson.M{
		"userId":       userID,
		"purchaseDate": bson.M{"$lt": windowEnd(window)},
	}
	var docs []fixedAssetDocument
	if err := findAll(ctx, c.fixedAssets, filter, &docs); err != nil {
		return nil, fmt.Errorf("failed to query fixed assets: %w", err)
	}

	records := make([]models.FixedAssetRecord, 0, len(docs))
	for _, d := range docs {
		records = append(records, d.record())
	}
	return records, nil
}

// QueryVirtualAssets returns the virtual assets that started before the window closed
func (c *MongoDBClient) QueryVirtualAssets(ctx context.Context, userID string, window models.Window) ([]models.VirtualAssetRecord, error) {
	filter := bson.M{
		"userId":    userID,
		"startDate": bson.M{"$lt": windowEnd(window)},
	}
	var docs []virtualAssetDocument
	if err := findAll(ctx, c.virtualAssets, filter, &docs); err != nil {
		return nil, fmt.Errorf("failed to query virtual assets: %w", err)
	}

	records := make([]models.VirtualAssetRecord, 0, len(docs))
	for _, d := range docs {
		records = append(records, d.record())
	}
	return records, nil
}

// QueryIncome returns the income booked inside the window
func (c *MongoDBClient) QueryIncome(ctx context.Context, userID string, window models.Window) ([]models.IncomeRecord, error) {
	filter := bson.M{
		"userId": userID,
		"date": bson.M{
			"$gte": utils.StartOfDay(window.Start),
			"$lt":  windowEnd(window),
		},
	}
	var docs []incomeDocument
	if err := findAll(ctx, c.income, filter, &docs); err != nil {
		return nil, fmt.Errorf("failed to query income records: %w", err)
	}

	records := make([]models.IncomeRecord, 0, len(docs))
	for _, d := range docs {
		records = append(records, d.record())
	}
	return records, nil
}

func findAll(ctx context.Context, coll *mongo.Collection, filter bson.M, out interface{}) error {
	cursor, err := coll.Find(ctx, filter)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)
	return cursor.All(ctx, out)
}
