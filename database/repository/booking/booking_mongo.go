package bookingRepo

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

// MongoBookingRepo implements BookingRepository using MongoDB.
type MongoBookingRepo struct {
	coll *mongo.Collection
}

// NewMongoBookingRepo creates a new instance of BookingRepository using MongoDB.
func NewMongoBookingRepo() BookingRepository {
	coll := database.MongoClient.Database(database.DatabaseName).Collection("bookings")
	repo := &MongoBookingRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

// newContext creates a context with the given timeout.
func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

// ensureIndexes creates indexes for fields frequently used in queries.
func (r *MongoBookingRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "booking_reference", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "property_id", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// overlapFilter matches active bookings for the property whose half-open
// date range conflicts with [checkIn, checkOut): check_in < checkOut AND
// checkIn < check_out.
func overlapFilter(propertyID string, checkIn, checkOut time.Time) bson.M {
	return bson.M{
		"property_id": propertyID,
		"status":      bson.M{"$ne": string(models.BookingStatusCancelled)},
		"check_in":    bson.M{"$lt": checkOut},
		"check_out":   bson.M{"$gt": checkIn},
	}
}

// GetByID retrieves a booking by its unique ID.
func (r *MongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	var booking models.Booking
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&booking); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch booking with id %s: %w", id, err)
	}
	return &booking, nil
}

// GetByReference retrieves a booking by its human-readable reference.
func (r *MongoBookingRepo) GetByReference(ctx context.Context, reference string) (*models.Booking, error) {
	var booking models.Booking
	if err := r.coll.FindOne(ctx, bson.M{"booking_reference": reference}).Decode(&booking); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch booking with reference %s: %w", reference, err)
	}
	return &booking, nil
}

// GetByUser retrieves all bookings created by the given user, newest first.
func (r *MongoBookingRepo) GetByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve bookings for user %s: %w", userID, err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	for cursor.Next(ctx) {
		var b models.Booking
		if err := cursor.Decode(&b); err != nil {
			return nil, fmt.Errorf("failed to decode booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, nil
}

// GetByProperty retrieves a property's bookings, optionally skipping
// cancelled ones, ordered by check-in date.
func (r *MongoBookingRepo) GetByProperty(ctx context.Context, propertyID string, activeOnly bool) ([]models.Booking, error) {
	filter := bson.M{"property_id": propertyID}
	if activeOnly {
		filter["status"] = bson.M{"$ne": string(models.BookingStatusCancelled)}
	}

	opts := options.Find().SetSort(bson.D{{Key: "check_in", Value: 1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve bookings for property %s: %w", propertyID, err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	for cursor.Next(ctx) {
		var b models.Booking
		if err := cursor.Decode(&b); err != nil {
			return nil, fmt.Errorf("failed to decode booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, nil
}

// FindOverlapping returns active bookings conflicting with the given range.
func (r *MongoBookingRepo) FindOverlapping(ctx context.Context, propertyID string, checkIn, checkOut time.Time) ([]models.Booking, error) {
	cursor, err := r.coll.Find(ctx, overlapFilter(propertyID, checkIn, checkOut))
	if err != nil {
		return nil, fmt.Errorf("failed to query overlapping bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	for cursor.Next(ctx) {
		var b models.Booking
		if err := cursor.Decode(&b); err != nil {
			return nil, fmt.Errorf("failed to decode booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, nil
}
