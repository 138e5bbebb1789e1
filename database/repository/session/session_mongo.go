package sessionRepo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"fikerless/database/repository"
	"fikerless/models"
)

func (r *mongoSessionRepo) Insert(ctx context.Context, session *models.Session) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	session.CreatedAt = now
	session.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, session); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return classifyDuplicate(err)
		}
		return err
	}
	return nil
}

// classifyDuplicate tells which unique index a duplicate-key error hit, so
// the service can distinguish a lost slot race from a double materialization
// of the same request.
func classifyDuplicate(err error) error {
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if strings.Contains(e.Message, "unique_request_ref") {
				return repository.ErrDuplicateRequestRef
			}
		}
	}
	return repository.ErrDuplicateSlot
}

func (r *mongoSessionRepo) GetByID(ctx context.Context, id string) (*models.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var session models.Session
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&session)
	if err == mongo.ErrNoDocuments {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *mongoSessionRepo) FindConfirmedByDate(ctx context.Context, specialistID, date string) ([]models.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"specialistId": specialistID,
		"date":         date,
		"status":       models.SessionConfirmed,
	}
	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var sessions []models.Session
	if err := cursor.All(ctx, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// Transition applies a terminal status change as a single conditional write
// filtered on the current status.
func (r *mongoSessionRepo) Transition(ctx context.Context, id, fromStatus string, update SessionUpdate) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	set := bson.M{
		"status":    update.Status,
		"updatedAt": time.Now().UTC(),
	}
	if update.Notes != "" {
		set["notes"] = update.Notes
	}
	if update.CancellationReason != "" {
		set["cancellationReason"] = update.CancellationReason
	}
	if update.CompletedAt != nil {
		set["completedAt"] = update.CompletedAt
	}
	if update.CancelledAt != nil {
		set["cancelledAt"] = update.CancelledAt
	}

	filter := bson.M{"id": id, "status": fromStatus}
	res, err := r.coll.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotMatched
	}
	return nil
}

// SetSessionFile attaches a file URL while the session is still in one of
// the allowed statuses.
func (r *mongoSessionRepo) SetSessionFile(ctx context.Context, id string, allowedStatuses []string, fileURL string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": id, "status": bson.M{"$in": allowedStatuses}}
	update := bson.M{"$set": bson.M{"sessionFile": fileURL, "updatedAt": time.Now().UTC()}}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotMatched
	}
	return nil
}

func (r *mongoSessionRepo) FindConfirmedStartingBetween(ctx context.Context, from, to time.Time) ([]models.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"status":  models.SessionConfirmed,
		"startAt": bson.M{"$gte": from, "$lte": to},
	}
	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var sessions []models.Session
	if err := cursor.All(ctx, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *mongoSessionRepo) ListByUser(ctx context.Context, userID string) ([]models.Session, error) {
	return r.list(ctx, bson.M{"userId": userID})
}

func (r *mongoSessionRepo) ListBySpecialist(ctx context.Context, specialistID string) ([]models.Session, error) {
	return r.list(ctx, bson.M{"specialistId": specialistID})
}

func (r *mongoSessionRepo) list(ctx context.Context, filter bson.M) ([]models.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "startAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var sessions []models.Session
	if err := cursor.All(ctx, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}
