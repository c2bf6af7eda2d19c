package tasks

import (
	"context"
	"encoding/json"
	"time"

	"havenstay/config"

	"github.com/hibiken/asynq"
)

const TypeDepositExpire = "deposit:expire"

// DepositExpirePayload identifies the booking whose deposit deadline the
// task enforces.
type DepositExpirePayload struct {
	BookingID string `json:"bookingId"`
}

// NewDepositExpireTask builds the sweep task fired at the booking's deposit
// due time.
func NewDepositExpireTask(bookingID string, dueAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(DepositExpirePayload{BookingID: bookingID})
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeDepositExpire, b)
	opts := []asynq.Option{asynq.ProcessAt(dueAt)}

	return task, opts, nil
}

// Scheduler enqueues deposit expiry tasks through asynq. It implements
// booking.DepositScheduler.
type Scheduler struct {
	client *asynq.Client
}

// NewScheduler builds a Scheduler on the configured redis queue.
func NewScheduler() *Scheduler {
	return &Scheduler{
		client: asynq.NewClient(asynq.RedisClientOpt{
			Addr:     config.AppConfig.RedisAddr,
			Password: config.AppConfig.RedisPassword,
			DB:       config.AppConfig.RedisQueueDB,
		}),
	}
}

// ScheduleExpiry enqueues the sweep for one booking at its deadline. A due
// time already in the past fires immediately.
func (s *Scheduler) ScheduleExpiry(ctx context.Context, bookingID string, dueAt time.Time) error {
	task, opts, err := NewDepositExpireTask(bookingID, dueAt)
	if err != nil {
		return err
	}
	_, err = s.client.EnqueueContext(ctx, task, opts...)
	return err
}

// Close releases the underlying queue connection.
func (s *Scheduler) Close() error {
	return s.client.Close()
}
