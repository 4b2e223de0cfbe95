package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"asset-report/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrReportNotFound is returned when no report has the requested id
var ErrReportNotFound = errors.New("report not found")

// ErrNotGenerating is returned when a write targets a report that already
// reached a terminal status
var ErrNotGenerating = errors.New("report is no longer generating")

// CreateReport inserts the initial generating record
func (c *MongoDBClient) CreateReport(ctx context.Context, report *models.Report) error {
	now := time.Now()
	report.Status = models.ReportStatusGenerating
	report.CreatedAt = now
	report.UpdatedAt = now
	if report.ExecutionTrace == nil {
		report.ExecutionTrace = models.ExecutionTrace{}
	}

	if _, err := c.reports.InsertOne(ctx, report); err != nil {
		return fmt.Errorf("failed to create report %s: %w", report.ID, err)
	}
	return nil
}

// GetReport loads a report by id
func (c *MongoDBClient) GetReport(ctx context.Context, reportID string) (*models.Report, error) {
	var report models.Report
	err := c.reports.FindOne(ctx, bson.M{"_id": reportID}).Decode(&report)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to query report %s: %w", reportID, err)
	}
	return &report, nil
}

// ListReports returns a user's most recent reports, newest first
func (c *MongoDBClient) ListReports(ctx context.Context, userID string, limit int64) ([]models.Report, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cursor, err := c.reports.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer cursor.Close(ctx)

	reports := []models.Report{}
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, fmt.Errorf("failed to decode reports: %w", err)
	}
	return reports, nil
}

// Checkpoint stores the trace of a run that is still generating
func (c *MongoDBClient) Checkpoint(ctx context.Context, report *models.Report) error {
	return c.updateGenerating(ctx, report.ID, checkpointUpdate(report, time.Now()))
}

// Complete writes the finished report in one document update. Only a
// generating record can be completed.
func (c *MongoDBClient) Complete(ctx context.Context, report *models.Report) error {
	return c.updateGenerating(ctx, report.ID, completeUpdate(report, time.Now()))
}

// Fail marks the report failed, keeping the trace written so far
func (c *MongoDBClient) Fail(ctx context.Context, report *models.Report) error {
	return c.updateGenerating(ctx, report.ID, failUpdate(report, time.Now()))
}

func (c *MongoDBClient) updateGenerating(ctx context.Context, reportID string, update bson.M) error {
	filter := bson.M{"_id": reportID, "status": models.ReportStatusGenerating}
	result, err := c.reports.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update report %s: %w", reportID, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("report %s: %w", reportID, ErrNotGenerating)
	}
	return nil
}

func checkpointUpdate(report *models.Report, now time.Time) bson.M {
	return bson.M{"$set": bson.M{
		"executionTrace":   report.ExecutionTrace,
		"workflowMetadata": report.WorkflowMetadata,
		"updatedAt":        now,
	}}
}

func completeUpdate(report *models.Report, now time.Time) bson.M {
	set := bson.M{
		"status":           models.ReportStatusCompleted,
		"content":          report.Content,
		"summary":          report.Summary,
		"executionTrace":   report.ExecutionTrace,
		"workflowMetadata": report.WorkflowMetadata,
		"updatedAt":        now,
	}
	if report.GeneratedAt != nil {
		set["generatedAt"] = *report.GeneratedAt
	} else {
		set["generatedAt"] = now
	}
	return bson.M{"$set": set}
}

func failUpdate(report *models.Report, now time.Time) bson.M {
	msg := "report generation failed"
	if report.ErrorMessage != nil && *report.ErrorMessage != "" {
		msg = *report.ErrorMessage
	}
	return bson.M{"$set": bson.M{
		"status":           models.ReportStatusFailed,
		"executionTrace":   report.ExecutionTrace,
		"workflowMetadata": report.WorkflowMetadata,
		"errorMessage":     msg,
		"updatedAt":        now,
	}}
}
