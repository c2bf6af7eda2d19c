package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"havenstay/config"
	bookingRepo "havenstay/database/repository/booking"
	"havenstay/services/booking"
	"havenstay/services/tasks"
	"havenstay/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// InitDepositWorker runs the async worker that sweeps unpaid bookings past
// their deposit deadline.
func InitDepositWorker(repo bookingRepo.BookingRepository, hub *booking.WatchHub) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeDepositExpire, handleDepositExpire(repo, hub))

	go func() {
		log.Println("[DepositWorker] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[DepositWorker] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[DepositWorker] max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
}

// handleDepositExpire cancels the booking iff it is still pending and
// unpaid; a booking that paid or was cancelled in the meantime is skipped.
func handleDepositExpire(repo bookingRepo.BookingRepository, hub *booking.WatchHub) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		logger := utils.GetLogger()

		var p tasks.DepositExpirePayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			logger.Error("deposit expire task has invalid payload", zap.Error(err))
			return err
		}

		expired, err := repo.ExpirePending(ctx, p.BookingID)
		if err != nil {
			logger.Error("deposit expiry sweep failed",
				zap.String("bookingID", p.BookingID), zap.Error(err))
			return err
		}
		if !expired {
			return nil
		}

		logger.Info("unpaid booking expired past deposit deadline",
			zap.String("bookingID", p.BookingID))

		if hub != nil {
			if b, err := repo.GetByID(ctx, p.BookingID); err == nil {
				hub.Publish("expired", *b)
			}
		}
		return nil
	}
}
