package paymentRepo

import (
	"context"
	"fmt"
	"time"

	"havenstay/database"
	"havenstay/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoPaymentRepo implements PaymentRepository using MongoDB.
type MongoPaymentRepo struct {
	coll *mongo.Collection
}

// NewMongoPaymentRepo creates a new instance of PaymentRepository using MongoDB.
func NewMongoPaymentRepo() PaymentRepository {
	coll := database.MongoClient.Database(database.DatabaseName).Collection("payment_transactions")
	repo := &MongoPaymentRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

// ensureIndexes creates indexes for fields frequently used in queries.
func (r *MongoPaymentRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "booking_id", Value: 1}}},
		{Keys: bson.D{{Key: "provider_reference", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (r *MongoPaymentRepo) Create(ctx context.Context, tx *models.PaymentTransaction) error {
	if _, err := r.coll.InsertOne(ctx, tx); err != nil {
		return fmt.Errorf("failed to insert payment transaction: %w", err)
	}
	return nil
}

func (r *MongoPaymentRepo) GetByID(ctx context.Context, id string) (*models.PaymentTransaction, error) {
	var tx models.PaymentTransaction
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&tx); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch payment transaction %s: %w", id, err)
	}
	return &tx, nil
}

func (r *MongoPaymentRepo) GetByProviderReference(ctx context.Context, providerRef string) (*models.PaymentTransaction, error) {
	var tx models.PaymentTransaction
	if err := r.coll.FindOne(ctx, bson.M{"provider_reference": providerRef}).Decode(&tx); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch payment transaction by reference %s: %w", providerRef, err)
	}
	return &tx, nil
}

// Resolve conditionally finalizes an unresolved transaction. The filter only
// matches initiated or awaiting_confirmation records, so whichever of the
// poller and the callback loses the race becomes a no-op.
func (r *MongoPaymentRepo) Resolve(ctx context.Context, id string, status models.TransactionStatus, failureReason string) (*models.PaymentTransaction, bool, error) {
	filter := bson.M{
		"id": id,
		"status": bson.M{"$in": bson.A{
			string(models.TransactionInitiated),
			string(models.TransactionAwaitingConfirmation),
		}},
	}
	set := bson.M{
		"status":     string(status),
		"updated_at": time.Now(),
	}
	if failureReason != "" {
		set["failure_reason"] = failureReason
	}

	res, err := r.coll.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return nil, false, fmt.Errorf("failed to resolve payment transaction %s: %w", id, err)
	}

	tx, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return tx, res.ModifiedCount > 0, nil
}
