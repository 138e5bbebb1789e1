package availabilityRepo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"fikerless/database/repository"
	"fikerless/models"
)

func (r *mongoAvailabilityRepo) GetRules(ctx context.Context, specialistID string) ([]models.AvailabilityRule, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "dayOfWeek", Value: 1}, {Key: "startTime", Value: 1}})
	cursor, err := r.rulesColl.Find(ctx, bson.M{"specialistId": specialistID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rules []models.AvailabilityRule
	if err := cursor.All(ctx, &rules); err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *mongoAvailabilityRepo) GetActiveRulesForDay(ctx context.Context, specialistID, dayOfWeek string) ([]models.AvailabilityRule, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"specialistId": specialistID, "dayOfWeek": dayOfWeek, "isActive": true}
	opts := options.Find().SetSort(bson.D{{Key: "startTime", Value: 1}})
	cursor, err := r.rulesColl.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rules []models.AvailabilityRule
	if err := cursor.All(ctx, &rules); err != nil {
		return nil, err
	}
	return rules, nil
}

// ReplaceRules swaps a specialist's full rule set in one shot. The HTTP
// layer always submits the complete weekly schedule, so delete-then-insert
// keeps the stored set exactly what was sent.
func (r *mongoAvailabilityRepo) ReplaceRules(ctx context.Context, specialistID string, rules []models.AvailabilityRule) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.rulesColl.DeleteMany(ctx, bson.M{"specialistId": specialistID}); err != nil {
		return err
	}
	if len(rules) == 0 {
		return nil
	}

	docs := make([]interface{}, len(rules))
	for i, rule := range rules {
		if rule.ID == "" {
			rule.ID = uuid.New().String()
		}
		rule.SpecialistID = specialistID
		docs[i] = rule
	}
	_, err := r.rulesColl.InsertMany(ctx, docs)
	return err
}

func (r *mongoAvailabilityRepo) GetSettings(ctx context.Context, specialistID string) (*models.AvailabilitySettings, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var settings models.AvailabilitySettings
	err := r.settingsColl.FindOne(ctx, bson.M{"specialistId": specialistID}).Decode(&settings)
	if err == mongo.ErrNoDocuments {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *mongoAvailabilityRepo) UpsertSettings(ctx context.Context, settings *models.AvailabilitySettings) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	settings.UpdatedAt = time.Now().UTC()
	filter := bson.M{"specialistId": settings.SpecialistID}
	update := bson.M{"$set": settings}
	_, err := r.settingsColl.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}
