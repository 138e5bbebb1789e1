package availabilityRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes on the availability collections.
func (r *mongoAvailabilityRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ruleIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		// Primary query pattern: active rules for one specialist on one day.
		{
			Keys:    bson.D{{Key: "specialistId", Value: 1}, {Key: "dayOfWeek", Value: 1}, {Key: "isActive", Value: 1}},
			Options: options.Index().SetName("specialist_day_active_idx"),
		},
	}
	if _, err := r.rulesColl.Indexes().CreateMany(ctx, ruleIndexes); err != nil {
		return fmt.Errorf("failed to create availability_rules indexes: %w", err)
	}

	settingsIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "specialistId", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_specialist"),
		},
	}
	if _, err := r.settingsColl.Indexes().CreateMany(ctx, settingsIndexes); err != nil {
		return fmt.Errorf("failed to create availability_settings indexes: %w", err)
	}
	return nil
}
