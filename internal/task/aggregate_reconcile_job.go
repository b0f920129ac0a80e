package task

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/yoj3289/WeNectProject/internal/logger"
	"github.com/yoj3289/WeNectProject/internal/logic"
	"github.com/yoj3289/WeNectProject/internal/notify"
)

type aggregateReconciler interface {
	ProjectIds(ctx context.Context) ([]int64, error)
	Check(ctx context.Context, projectId int64) (*logic.AggregateCheck, error)
	Recompute(ctx context.Context, projectId int64) (*logic.AggregateSnapshot, error)
}

// AggregateReconcileJob 对比项目缓存与账本, 发现偏差时告警并以账本为准修复
type AggregateReconcileJob struct {
	aggregate aggregateReconciler
	alerter   notify.Alerter
	interval  time.Duration
}

func NewAggregateReconcileJob(aggregate aggregateReconciler, alerter notify.Alerter, interval time.Duration) *AggregateReconcileJob {
	if alerter == nil {
		alerter = notify.LogAlerter{}
	}
	return &AggregateReconcileJob{
		aggregate: aggregate,
		alerter:   alerter,
		interval:  interval,
	}
}

func (j *AggregateReconcileJob) GetName() string {
	return "aggregate_reconciler"
}

func (j *AggregateReconcileJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(j.interval)
}

func (j *AggregateReconcileJob) Execute() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout(j.interval))
	defer cancel()

	ids, err := j.aggregate.ProjectIds(ctx)
	if err != nil {
		logger.Error("Failed to list projects for reconcile: %v", err)
		return
	}

	repaired := 0
	for _, id := range ids {
		check, err := j.aggregate.Check(ctx, id)
		if err != nil {
			logger.Error("Failed to check aggregate for project %d: %v", id, err)
			continue
		}
		if !check.Drifted {
			continue
		}

		text := fmt.Sprintf("项目 %d 统计偏差: 缓存 %s/%d, 账本 %s/%d",
			id, check.CachedAmount.String(), check.CachedCount, check.LedgerAmount.String(), check.LedgerCount)
		logger.Warn("Aggregate drift detected: project=%d, cached=%s/%d, ledger=%s/%d",
			id, check.CachedAmount.String(), check.CachedCount, check.LedgerAmount.String(), check.LedgerCount)
		if err := j.alerter.Alert(ctx, text); err != nil {
			logger.Error("Failed to send drift alert: %v", err)
		}

		if _, err := j.aggregate.Recompute(ctx, id); err != nil {
			logger.Error("Failed to recompute aggregate for project %d: %v", id, err)
			continue
		}
		repaired++
	}

	if repaired > 0 {
		logger.Info("Aggregate reconcile completed: checked=%d, repaired=%d", len(ids), repaired)
	}
}
