package logic

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	appErrors "github.com/yoj3289/WeNectProject/internal/errors"
	"github.com/yoj3289/WeNectProject/internal/logger"
	"github.com/yoj3289/WeNectProject/internal/repository"
	"gorm.io/gorm"
)

// AggregateUpdater 维护项目的 current_amount 与 donor_count 缓存
type AggregateUpdater interface {
	// ApplyCompletedDonation 在调用方事务内累加一笔已完成捐款
	ApplyCompletedDonation(ctx context.Context, tx *gorm.DB, projectId int64, amount decimal.Decimal) error
	// Recompute 以账本为准重算并覆盖缓存
	Recompute(ctx context.Context, projectId int64) (*AggregateSnapshot, error)
}

// AggregateSnapshot 项目聚合值
type AggregateSnapshot struct {
	ProjectId     int64           `json:"project_id"`
	CurrentAmount decimal.Decimal `json:"current_amount"`
	DonorCount    int64           `json:"donor_count"`
}

// AggregateCheck 缓存值与账本值的对比
type AggregateCheck struct {
	ProjectId    int64           `json:"project_id"`
	CachedAmount decimal.Decimal `json:"cached_amount"`
	CachedCount  int64           `json:"cached_count"`
	LedgerAmount decimal.Decimal `json:"ledger_amount"`
	LedgerCount  int64           `json:"ledger_count"`
	Drifted      bool            `json:"drifted"`
}

// AggregateLogic 项目聚合更新
type AggregateLogic struct {
	db        *gorm.DB
	projects  *repository.ProjectRepository
	donations *repository.DonationRepository
}

func NewAggregateLogic(db *gorm.DB) *AggregateLogic {
	return &AggregateLogic{
		db:        db,
		projects:  repository.NewProjectRepository(db),
		donations: repository.NewDonationRepository(db),
	}
}

// ApplyCompletedDonation 单条 UPDATE 原子累加, 并发完成不会丢失更新
func (a *AggregateLogic) ApplyCompletedDonation(ctx context.Context, tx *gorm.DB, projectId int64, amount decimal.Decimal) error {
	rows, err := a.projects.WithTx(tx).IncrementAggregate(ctx, projectId, amount)
	if err != nil {
		return appErrors.ErrAggregateUpdateFailure.WithError(err).
			WithDetails(map[string]interface{}{"project_id": projectId})
	}
	if rows == 0 {
		return appErrors.ErrAggregateUpdateFailure.
			WithError(fmt.Errorf("project %d not found", projectId)).
			WithDetails(map[string]interface{}{"project_id": projectId})
	}
	return nil
}

// Recompute 锁定项目行后从账本重算, 与新的完成操作串行
func (a *AggregateLogic) Recompute(ctx context.Context, projectId int64) (*AggregateSnapshot, error) {
	var snapshot *AggregateSnapshot
	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := a.projects.WithTx(tx).GetForUpdate(ctx, projectId); err != nil {
			return err
		}

		total, count, err := a.donations.WithTx(tx).CompletedTotals(ctx, projectId)
		if err != nil {
			return err
		}

		if err := a.projects.WithTx(tx).SetAggregate(ctx, projectId, total, count); err != nil {
			return err
		}

		snapshot = &AggregateSnapshot{ProjectId: projectId, CurrentAmount: total, DonorCount: count}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Project aggregate recomputed: projectId=%d, amount=%s, donors=%d",
		projectId, snapshot.CurrentAmount.String(), snapshot.DonorCount)
	return snapshot, nil
}

// Check 只读对比, 不修改缓存
func (a *AggregateLogic) Check(ctx context.Context, projectId int64) (*AggregateCheck, error) {
	project, err := a.projects.GetById(ctx, projectId)
	if err != nil {
		return nil, err
	}

	total, count, err := a.donations.CompletedTotals(ctx, projectId)
	if err != nil {
		return nil, err
	}

	return &AggregateCheck{
		ProjectId:    projectId,
		CachedAmount: project.CurrentAmount,
		CachedCount:  project.DonorCount,
		LedgerAmount: total,
		LedgerCount:  count,
		Drifted:      !project.CurrentAmount.Equal(total) || project.DonorCount != count,
	}, nil
}

// ProjectIds 需要对账的项目
func (a *AggregateLogic) ProjectIds(ctx context.Context) ([]int64, error) {
	return a.projects.ListIds(ctx)
}
