package userRepo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"fikerless/database"
	"fikerless/database/repository"
	"fikerless/models"
)

// UserRepository is the narrow read surface this core needs from the
// platform's user store: push-token lookup for notification delivery.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

type mongoUserRepo struct {
	coll *mongo.Collection
}

// NewMongoUserRepo constructs a MongoDB UserRepository.
func NewMongoUserRepo() UserRepository {
	db := database.MongoClient.Database(database.DBName)
	return &mongoUserRepo{
		coll: db.Collection("users"),
	}
}

func (r *mongoUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var user models.User
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
