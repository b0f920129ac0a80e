package task

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/yoj3289/WeNectProject/internal/logger"
	"github.com/yoj3289/WeNectProject/internal/model"
)

type stalePaymentExpirer interface {
	ListStalePending(ctx context.Context, ttl time.Duration, limit int) ([]model.DonationModel, error)
	ExpireStalePayment(ctx context.Context, orderId string) (*model.DonationModel, error)
}

// PendingExpiryJob 收尾长时间停留在 PENDING 的捐款
type PendingExpiryJob struct {
	donations stalePaymentExpirer
	ttl       time.Duration
	batchSize int
	interval  time.Duration
}

func NewPendingExpiryJob(donations stalePaymentExpirer, ttl time.Duration, batchSize int, interval time.Duration) *PendingExpiryJob {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &PendingExpiryJob{
		donations: donations,
		ttl:       ttl,
		batchSize: batchSize,
		interval:  interval,
	}
}

func (j *PendingExpiryJob) GetName() string {
	return "pending_donation_expirer"
}

func (j *PendingExpiryJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(j.interval)
}

func (j *PendingExpiryJob) Execute() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout(j.interval))
	defer cancel()

	stale, err := j.donations.ListStalePending(ctx, j.ttl, j.batchSize)
	if err != nil {
		logger.Error("Failed to fetch stale donations: %v", err)
		return
	}
	if len(stale) == 0 {
		return
	}

	counts := make(map[model.DonationStatus]int)
	for _, donation := range stale {
		result, err := j.donations.ExpireStalePayment(ctx, donation.OrderId)
		if err != nil {
			logger.Error("Failed to expire donation %s: %v", donation.OrderId, err)
			continue
		}
		counts[result.Status]++
	}

	logger.Info("Pending expiry task completed: scanned=%d, failed=%d, completed=%d",
		len(stale), counts[model.DonationStatusFailed], counts[model.DonationStatusCompleted])
}
