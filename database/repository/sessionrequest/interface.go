package requestRepo

import (
	"context"
	"time"

	"fikerless/database"
	"fikerless/models"
	"fikerless/utils"

	"go.mongodb.org/mongo-driver/mongo"
)

// RequestUpdate carries the fields a status transition may set. Zero-value
// fields are left untouched.
type RequestUpdate struct {
	Status               string
	PaymentScreenshotURL string
	RejectionReason      string
}

// SessionRequestRepository persists booking attempts. Insert relies on the
// partial unique index over active statuses as the slot race-breaker;
// Transition is a single conditional write filtered on the current status.
type SessionRequestRepository interface {
	Insert(ctx context.Context, req *models.SessionRequest) error
	GetByID(ctx context.Context, id string) (*models.SessionRequest, error)
	FindActiveByDate(ctx context.Context, specialistID, date string) ([]models.SessionRequest, error)
	Transition(ctx context.Context, id, fromStatus string, update RequestUpdate) error
	FindPendingPaymentExpiring(ctx context.Context, from, to time.Time) ([]models.SessionRequest, error)
	ListByUser(ctx context.Context, userID string) ([]models.SessionRequest, error)
	ListBySpecialist(ctx context.Context, specialistID string, statuses []string) ([]models.SessionRequest, error)
}

type mongoSessionRequestRepo struct {
	coll *mongo.Collection
}

// NewMongoSessionRequestRepo constructs a MongoDB SessionRequestRepository.
func NewMongoSessionRequestRepo() SessionRequestRepository {
	db := database.MongoClient.Database(database.DBName)
	repo := &mongoSessionRequestRepo{
		coll: db.Collection("session_requests"),
	}
	if err := repo.EnsureIndexes(); err != nil {
		utils.GetLogger().Sugar().Fatalf("session request repo: failed to create indexes: %v", err)
	}
	return repo
}
