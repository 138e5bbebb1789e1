package sessionRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"fikerless/models"
)

// EnsureIndexes creates the indexes on the sessions collection. The unique
// index on (specialistId, date, startTime) is the double-booking guard.
func (r *mongoSessionRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		// Scoped to CONFIRMED so a cancelled session releases its slot for
		// rebooking.
		{
			Keys: bson.D{{Key: "specialistId", Value: 1}, {Key: "date", Value: 1}, {Key: "startTime", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetName("unique_slot").
				SetPartialFilterExpression(bson.M{"status": models.SessionConfirmed}),
		},
		{
			Keys:    bson.D{{Key: "sessionRequestId", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_request_ref"),
		},
		// Reminder scans select by status and computed start datetime.
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "startAt", Value: 1}},
			Options: options.Index().SetName("status_start_idx"),
		},
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "startAt", Value: -1}},
			Options: options.Index().SetName("user_start_idx"),
		},
	}

	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create sessions indexes: %w", err)
	}
	return nil
}
