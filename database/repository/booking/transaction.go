package bookingRepo

import (
	"context"
	"fmt"

	"havenstay/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// CreateIfAvailable re-checks availability and inserts the pending booking in
// one transaction. Two concurrent requests for overlapping ranges serialize
// here: exactly one commits, the other observes the conflict and aborts.
func (r *MongoBookingRepo) CreateIfAvailable(ctx context.Context, booking *models.Booking) error {
	client := r.coll.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	txnFn := func(sc mongo.SessionContext) error {
		count, err := r.coll.CountDocuments(sc, overlapFilter(booking.PropertyID, booking.CheckIn, booking.CheckOut))
		if err != nil {
			return fmt.Errorf("availability re-check failed: %w", err)
		}
		if count > 0 {
			return ErrConflict
		}

		if _, err := r.coll.InsertOne(sc, booking); err != nil {
			return fmt.Errorf("insert booking failed: %w", err)
		}
		return nil
	}

	if err := mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := txnFn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	}); err != nil {
		if err == ErrConflict {
			return ErrConflict
		}
		return fmt.Errorf("booking transaction failed: %w", err)
	}

	return nil
}
