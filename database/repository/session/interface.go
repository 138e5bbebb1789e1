package sessionRepo

import (
	"context"
	"time"

	"fikerless/database"
	"fikerless/models"
	"fikerless/utils"

	"go.mongodb.org/mongo-driver/mongo"
)

// SessionUpdate carries the fields a terminal transition may set.
type SessionUpdate struct {
	Status             string
	Notes              string
	CancellationReason string
	CompletedAt        *time.Time
	CancelledAt        *time.Time
}

// SessionRepository persists confirmed sessions. The unique index on
// (specialistId, date, startTime) is the double-booking guard; the unique
// index on sessionRequestId enforces the 1:1 back-reference.
type SessionRepository interface {
	Insert(ctx context.Context, session *models.Session) error
	GetByID(ctx context.Context, id string) (*models.Session, error)
	FindConfirmedByDate(ctx context.Context, specialistID, date string) ([]models.Session, error)
	Transition(ctx context.Context, id, fromStatus string, update SessionUpdate) error
	SetSessionFile(ctx context.Context, id string, allowedStatuses []string, fileURL string) error
	FindConfirmedStartingBetween(ctx context.Context, from, to time.Time) ([]models.Session, error)
	ListByUser(ctx context.Context, userID string) ([]models.Session, error)
	ListBySpecialist(ctx context.Context, specialistID string) ([]models.Session, error)
}

type mongoSessionRepo struct {
	coll *mongo.Collection
}

// NewMongoSessionRepo constructs a MongoDB SessionRepository.
func NewMongoSessionRepo() SessionRepository {
	db := database.MongoClient.Database(database.DBName)
	repo := &mongoSessionRepo{
		coll: db.Collection("sessions"),
	}
	if err := repo.EnsureIndexes(); err != nil {
		utils.GetLogger().Sugar().Fatalf("session repo: failed to create indexes: %v", err)
	}
	return repo
}
