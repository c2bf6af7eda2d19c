package propertyRepo

import (
	"context"
	"fmt"

	"havenstay/database"
	"havenstay/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoPropertyRepo implements PropertyRepository using MongoDB.
type MongoPropertyRepo struct {
	coll *mongo.Collection
}

// NewMongoPropertyRepo creates a new instance of PropertyRepository using MongoDB.
func NewMongoPropertyRepo() PropertyRepository {
	coll := database.MongoClient.Database(database.DatabaseName).Collection("properties")
	return &MongoPropertyRepo{coll: coll}
}

// GetByID retrieves a property by its unique ID.
func (r *MongoPropertyRepo) GetByID(ctx context.Context, id string) (*models.Property, error) {
	var property models.Property
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&property); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch property with id %s: %w", id, err)
	}
	return &property, nil
}
