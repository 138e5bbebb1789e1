package availabilityRepo

import (
	"context"

	"fikerless/database"
	"fikerless/models"
	"fikerless/utils"

	"go.mongodb.org/mongo-driver/mongo"
)

// AvailabilityRepository persists weekly recurring rules and per-specialist
// slot settings.
type AvailabilityRepository interface {
	GetRules(ctx context.Context, specialistID string) ([]models.AvailabilityRule, error)
	GetActiveRulesForDay(ctx context.Context, specialistID, dayOfWeek string) ([]models.AvailabilityRule, error)
	ReplaceRules(ctx context.Context, specialistID string, rules []models.AvailabilityRule) error
	GetSettings(ctx context.Context, specialistID string) (*models.AvailabilitySettings, error)
	UpsertSettings(ctx context.Context, settings *models.AvailabilitySettings) error
}

type mongoAvailabilityRepo struct {
	rulesColl    *mongo.Collection
	settingsColl *mongo.Collection
}

// NewMongoAvailabilityRepo constructs a MongoDB AvailabilityRepository.
func NewMongoAvailabilityRepo() AvailabilityRepository {
	db := database.MongoClient.Database(database.DBName)
	repo := &mongoAvailabilityRepo{
		rulesColl:    db.Collection("availability_rules"),
		settingsColl: db.Collection("availability_settings"),
	}
	if err := repo.EnsureIndexes(); err != nil {
		utils.GetLogger().Sugar().Fatalf("availability repo: failed to create indexes: %v", err)
	}
	return repo
}
