package requestRepo

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

func (r *mongoSessionRequestRepo) Insert(ctx context.Context, req *models.SessionRequest) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	req.CreatedAt = now
	req.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, req); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicateSlot
		}
		return err
	}
	return nil
}

func (r *mongoSessionRequestRepo) GetByID(ctx context.Context, id string) (*models.SessionRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var req models.SessionRequest
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&req)
	if err == mongo.ErrNoDocuments {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *mongoSessionRequestRepo) FindActiveByDate(ctx context.Context, specialistID, date string) ([]models.SessionRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"specialistId": specialistID,
		"date":         date,
		"status":       bson.M{"$in": models.ActiveRequestStatuses},
	}
	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var reqs []models.SessionRequest
	if err := cursor.All(ctx, &reqs); err != nil {
		return nil, err
	}
	return reqs, nil
}

// Transition applies one state-machine step as a single conditional write.
// The status filter makes concurrent transitions on the same request
// mutually exclusive: the loser's write matches nothing and the caller
// re-reads to classify the failure.
func (r *mongoSessionRequestRepo) Transition(ctx context.Context, id, fromStatus string, update RequestUpdate) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	set := bson.M{
		"status":    update.Status,
		"updatedAt": time.Now().UTC(),
	}
	if update.PaymentScreenshotURL != "" {
		set["paymentScreenshotUrl"] = update.PaymentScreenshotURL
	}
	if update.RejectionReason != "" {
		set["rejectionReason"] = update.RejectionReason
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

func (r *mongoSessionRequestRepo) FindPendingPaymentExpiring(ctx context.Context, from, to time.Time) ([]models.SessionRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"status":    models.RequestPendingPayment,
		"expiresAt": bson.M{"$gte": from, "$lte": to},
	}
	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var reqs []models.SessionRequest
	if err := cursor.All(ctx, &reqs); err != nil {
		return nil, err
	}
	return reqs, nil
}

func (r *mongoSessionRequestRepo) ListByUser(ctx context.Context, userID string) ([]models.SessionRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var reqs []models.SessionRequest
	if err := cursor.All(ctx, &reqs); err != nil {
		return nil, err
	}
	return reqs, nil
}

func (r *mongoSessionRequestRepo) ListBySpecialist(ctx context.Context, specialistID string, statuses []string) ([]models.SessionRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"specialistId": specialistID}
	if len(statuses) > 0 {
		filter["status"] = bson.M{"$in": statuses}
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "startTime", Value: 1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var reqs []models.SessionRequest
	if err := cursor.All(ctx, &reqs); err != nil {
		return nil, err
	}
	return reqs, nil
}
