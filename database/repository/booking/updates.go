package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"havenstay/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MarkPaid completes the payment and confirms the booking. The update is a
// conditional pipeline: a pending booking moves to confirmed, while a booking
// cancelled mid-flight keeps its terminal status and only records the
// completed payment (a paid-but-cancelled booking is a valid terminal state).
func (r *MongoBookingRepo) MarkPaid(ctx context.Context, bookingID, providerRef string) (*models.Booking, error) {
	filter := bson.M{
		"id":             bookingID,
		"payment_status": bson.M{"$ne": string(models.PaymentStatusCompleted)},
	}
	update := mongo.Pipeline{
		bson.D{
			{Key: "$set", Value: bson.D{
				{Key: "payment_status", Value: string(models.PaymentStatusCompleted)},
				{Key: "payment_reference", Value: providerRef},
				{Key: "updated_at", Value: "$$NOW"},
				{Key: "status", Value: bson.D{
					{Key: "$cond", Value: bson.A{
						bson.D{{Key: "$eq", Value: bson.A{"$status", string(models.BookingStatusPending)}}},
						string(models.BookingStatusConfirmed),
						"$status",
					}},
				}},
			}},
		},
	}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return nil, fmt.Errorf("failed to mark booking %s paid: %w", bookingID, err)
	}

	booking, getErr := r.GetByID(ctx, bookingID)
	if getErr != nil {
		return nil, getErr
	}

	if res.MatchedCount == 0 {
		// Nothing transitioned; decide why from the current state.
		if booking.PaymentStatus == models.PaymentStatusCompleted {
			if booking.PaymentReference == providerRef {
				// Same provider reference replayed: idempotent no-op.
				return booking, nil
			}
			return nil, ErrPaymentRegression
		}
		return nil, ErrTerminalState
	}
	return booking, nil
}

// MarkPaymentFailed records the failed attempt; booking status stays pending.
func (r *MongoBookingRepo) MarkPaymentFailed(ctx context.Context, bookingID, reason string) (*models.Booking, error) {
	filter := bson.M{
		"id":             bookingID,
		"payment_status": bson.M{"$ne": string(models.PaymentStatusCompleted)},
	}
	update := bson.M{
		"$set": bson.M{
			"payment_status": string(models.PaymentStatusFailed),
			"updated_at":     time.Now(),
		},
	}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return nil, fmt.Errorf("failed to mark payment failed for booking %s: %w", bookingID, err)
	}

	booking, getErr := r.GetByID(ctx, bookingID)
	if getErr != nil {
		return nil, getErr
	}
	if res.MatchedCount == 0 {
		return nil, ErrPaymentRegression
	}
	return booking, nil
}

// Cancel applies the terminal cancelled status from pending or confirmed.
// Payment status is left untouched: a paid-but-cancelled booking is a valid
// terminal state.
func (r *MongoBookingRepo) Cancel(ctx context.Context, bookingID, reason string) (*models.Booking, error) {
	filter := bson.M{
		"id":     bookingID,
		"status": bson.M{"$in": bson.A{string(models.BookingStatusPending), string(models.BookingStatusConfirmed)}},
	}
	update := bson.M{
		"$set": bson.M{
			"status":              string(models.BookingStatusCancelled),
			"cancellation_reason": reason,
			"updated_at":          time.Now(),
		},
	}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel booking %s: %w", bookingID, err)
	}

	booking, getErr := r.GetByID(ctx, bookingID)
	if getErr != nil {
		return nil, getErr
	}
	if res.MatchedCount == 0 {
		return nil, ErrTerminalState
	}
	return booking, nil
}

// ExpirePending cancels a booking whose deposit deadline passed while still
// pending and unpaid. A booking that paid or was cancelled in the meantime is
// simply skipped.
func (r *MongoBookingRepo) ExpirePending(ctx context.Context, bookingID string) (bool, error) {
	filter := bson.M{
		"id":             bookingID,
		"status":         string(models.BookingStatusPending),
		"payment_status": bson.M{"$ne": string(models.PaymentStatusCompleted)},
	}
	update := bson.M{
		"$set": bson.M{
			"status":              string(models.BookingStatusCancelled),
			"cancellation_reason": "deposit deadline passed",
			"updated_at":          time.Now(),
		},
	}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to expire booking %s: %w", bookingID, err)
	}
	return res.MatchedCount > 0, nil
}
