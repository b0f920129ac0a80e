package repository

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	appErrors "github.com/yoj3289/WeNectProject/internal/errors"
	"github.com/yoj3289/WeNectProject/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProjectRepository 项目存储
type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) WithTx(tx *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: tx}
}

func (r *ProjectRepository) Create(ctx context.Context, project *model.ProjectModel) error {
	return r.db.WithContext(ctx).Create(project).Error
}

func (r *ProjectRepository) GetById(ctx context.Context, id int64) (*model.ProjectModel, error) {
	var project model.ProjectModel
	if err := r.db.WithContext(ctx).First(&project, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appErrors.NewNotFoundError("项目").WithDetails(map[string]interface{}{"project_id": id})
		}
		return nil, err
	}
	return &project, nil
}

// GetForUpdate 锁定项目行, 需在事务内调用
func (r *ProjectRepository) GetForUpdate(ctx context.Context, id int64) (*model.ProjectModel, error) {
	var project model.ProjectModel
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&project, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appErrors.NewNotFoundError("项目").WithDetails(map[string]interface{}{"project_id": id})
		}
		return nil, err
	}
	return &project, nil
}

// List 按状态过滤的分页列表, status 为空时不过滤
func (r *ProjectRepository) List(ctx context.Context, status model.ProjectStatus, offset, limit int) ([]model.ProjectModel, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.ProjectModel{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var projects []model.ProjectModel
	if err := query.Order("created_at DESC, id DESC").Offset(offset).Limit(limit).Find(&projects).Error; err != nil {
		return nil, 0, err
	}
	return projects, total, nil
}

// ListPopular 进行中的项目按捐款人数与已筹金额倒序
func (r *ProjectRepository) ListPopular(ctx context.Context, limit int) ([]model.ProjectModel, error) {
	var projects []model.ProjectModel
	err := r.db.WithContext(ctx).
		Where("status = ?", model.ProjectStatusActive).
		Order("donor_count DESC, current_amount DESC, id DESC").
		Limit(limit).
		Find(&projects).Error
	return projects, err
}

// ListIds 所有项目 id, 对账任务使用
func (r *ProjectRepository) ListIds(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).Model(&model.ProjectModel{}).Order("id").Pluck("id", &ids).Error
	return ids, err
}

// Updates 更新指定字段
func (r *ProjectRepository) Updates(ctx context.Context, id int64, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&model.ProjectModel{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return appErrors.NewNotFoundError("项目").WithDetails(map[string]interface{}{"project_id": id})
	}
	return nil
}

func (r *ProjectRepository) Delete(ctx context.Context, id int64) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&model.ProjectModel{}, id)
	return result.RowsAffected, result.Error
}

// IncrementAggregate 原子累加金额并将捐款人数加一
func (r *ProjectRepository) IncrementAggregate(ctx context.Context, id int64, amount decimal.Decimal) (int64, error) {
	result := r.db.WithContext(ctx).Model(&model.ProjectModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"current_amount": gorm.Expr("current_amount + ?", amount),
			"donor_count":    gorm.Expr("donor_count + ?", 1),
		})
	return result.RowsAffected, result.Error
}

// SetAggregate 覆盖缓存的聚合值
func (r *ProjectRepository) SetAggregate(ctx context.Context, id int64, amount decimal.Decimal, donorCount int64) error {
	return r.db.WithContext(ctx).Model(&model.ProjectModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"current_amount": amount,
			"donor_count":    donorCount,
		}).Error
}

// ActivateStarted 到达开始时间的待开始项目转为进行中
func (r *ProjectRepository) ActivateStarted(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&model.ProjectModel{}).
		Where("status = ? AND start_time <= ?", model.ProjectStatusPending, now).
		Update("status", model.ProjectStatusActive)
	return result.RowsAffected, result.Error
}

// FinishEnded 已结束的进行中项目, 达标为 success 否则 failed
func (r *ProjectRepository) FinishEnded(ctx context.Context, now time.Time) (succeeded, failed int64, err error) {
	result := r.db.WithContext(ctx).Model(&model.ProjectModel{}).
		Where("status = ? AND end_time <= ? AND current_amount >= target_amount", model.ProjectStatusActive, now).
		Update("status", model.ProjectStatusSuccess)
	if result.Error != nil {
		return 0, 0, result.Error
	}
	succeeded = result.RowsAffected

	result = r.db.WithContext(ctx).Model(&model.ProjectModel{}).
		Where("status = ? AND end_time <= ?", model.ProjectStatusActive, now).
		Update("status", model.ProjectStatusFailed)
	if result.Error != nil {
		return succeeded, 0, result.Error
	}
	return succeeded, result.RowsAffected, nil
}

// ProjectSummary 平台汇总数据
type ProjectSummary struct {
	TotalProjects  int64
	ByStatus       map[model.ProjectStatus]int64
	TotalRaised    decimal.Decimal
	TotalTarget    decimal.Decimal
	TotalDonations int64
}

func (r *ProjectRepository) Summary(ctx context.Context) (*ProjectSummary, error) {
	var rows []struct {
		Status model.ProjectStatus
		Count  int64
	}
	if err := r.db.WithContext(ctx).Model(&model.ProjectModel{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	summary := &ProjectSummary{
		ByStatus:    make(map[model.ProjectStatus]int64, len(rows)),
		TotalRaised: decimal.Zero,
		TotalTarget: decimal.Zero,
	}
	for _, row := range rows {
		summary.ByStatus[row.Status] = row.Count
		summary.TotalProjects += row.Count
	}

	var projects []model.ProjectModel
	if err := r.db.WithContext(ctx).Select("current_amount", "target_amount", "donor_count").Find(&projects).Error; err != nil {
		return nil, err
	}
	for _, p := range projects {
		summary.TotalRaised = summary.TotalRaised.Add(p.CurrentAmount)
		summary.TotalTarget = summary.TotalTarget.Add(p.TargetAmount)
		summary.TotalDonations += p.DonorCount
	}
	return summary, nil
}
