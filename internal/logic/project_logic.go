package logic

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	appErrors "github.com/yoj3289/WeNectProject/internal/errors"
	"github.com/yoj3289/WeNectProject/internal/logger"
	"github.com/yoj3289/WeNectProject/internal/model"
	"github.com/yoj3289/WeNectProject/internal/repository"
	"github.com/yoj3289/WeNectProject/internal/storage"
	"gorm.io/gorm"
)

// Actor 当前操作者
type Actor struct {
	UserId  int64
	IsAdmin bool
}

// ProjectLogic 项目业务逻辑
type ProjectLogic struct {
	db        *gorm.DB
	projects  *repository.ProjectRepository
	donations *repository.DonationRepository
	media     *repository.MediaRepository
	options   *repository.DonationOptionRepository
	files     storage.FileStore
	now       func() time.Time
}

// NewProjectLogic 创建项目业务逻辑
func NewProjectLogic(db *gorm.DB, files storage.FileStore) *ProjectLogic {
	return &ProjectLogic{
		db:        db,
		projects:  repository.NewProjectRepository(db),
		donations: repository.NewDonationRepository(db),
		media:     repository.NewMediaRepository(db),
		options:   repository.NewDonationOptionRepository(db),
		files:     files,
		now:       time.Now,
	}
}

// CreateProject 创建项目, 同时写入预设的捐款档位
func (p *ProjectLogic) CreateProject(ctx context.Context, project *model.ProjectModel, options ...OptionInput) error {
	// 验证项目数据
	if err := p.validateProject(project); err != nil {
		return err
	}
	built := make([]*model.DonationOptionModel, 0, len(options))
	for i, in := range options {
		option, err := buildOption(0, i, in)
		if err != nil {
			return err
		}
		built = append(built, option)
	}

	// 设置默认值, 聚合字段只能由捐款完成写入
	project.Status = model.ProjectStatusPending
	project.CurrentAmount = decimal.Zero
	project.DonorCount = 0

	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := p.projects.WithTx(tx).Create(ctx, project); err != nil {
			return err
		}
		for _, option := range built {
			option.ProjectId = project.Id
		}
		return p.options.WithTx(tx).Create(ctx, built...)
	})
	if err != nil {
		return fmt.Errorf("创建项目失败: %w", err)
	}

	logger.Info("Project created: id=%d, title=%s, target=%s, options=%d",
		project.Id, project.Title, project.TargetAmount.String(), len(built))
	return nil
}

// GetProjects 获取项目列表
func (p *ProjectLogic) GetProjects(ctx context.Context, status model.ProjectStatus, page Page) ([]model.ProjectModel, int64, error) {
	page = page.normalize()
	projects, total, err := p.projects.List(ctx, status, page.offset(), page.PageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("获取项目列表失败: %w", err)
	}
	return projects, total, nil
}

// GetPopularProjects 首页展示的热门项目, 默认 4 个
func (p *ProjectLogic) GetPopularProjects(ctx context.Context, limit int) ([]model.ProjectModel, error) {
	if limit < 1 {
		limit = 4
	}
	if limit > 20 {
		limit = 20
	}
	projects, err := p.projects.ListPopular(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("获取热门项目失败: %w", err)
	}
	return projects, nil
}

// GetProject 获取项目详情
func (p *ProjectLogic) GetProject(ctx context.Context, id int64) (*model.ProjectModel, []model.ProjectMediaModel, error) {
	project, err := p.projects.GetById(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	media, err := p.media.ListByProject(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("获取项目附件失败: %w", err)
	}
	return project, media, nil
}

// ProjectUpdate 可修改的项目字段, nil 表示不修改
type ProjectUpdate struct {
	Title       *string
	Description *string
	ImageURL    *string
	Category    *string
	EndTime     *time.Time
	MinAmount   *decimal.Decimal
	MaxAmount   *decimal.Decimal
}

// UpdateProject 更新项目基本信息, 目标金额与聚合字段不可修改
func (p *ProjectLogic) UpdateProject(ctx context.Context, actor Actor, id int64, update ProjectUpdate) (*model.ProjectModel, error) {
	project, err := p.projects.GetById(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := canManage(project, actor); err != nil {
		return nil, err
	}
	if project.Status != model.ProjectStatusPending && project.Status != model.ProjectStatusActive {
		return nil, appErrors.ErrInvalidState.WithMessage("项目已结束, 无法修改")
	}

	fields := map[string]interface{}{}
	if update.Title != nil {
		if *update.Title == "" {
			return nil, appErrors.NewValidationError("title", "项目标题不能为空")
		}
		fields["title"] = *update.Title
	}
	if update.Description != nil {
		fields["description"] = *update.Description
	}
	if update.ImageURL != nil {
		fields["image_url"] = *update.ImageURL
	}
	if update.Category != nil {
		fields["category"] = *update.Category
	}
	if update.EndTime != nil {
		if !update.EndTime.After(project.StartTime) {
			return nil, appErrors.NewValidationError("end_time", "结束时间必须晚于开始时间")
		}
		fields["end_time"] = *update.EndTime
	}
	if update.MinAmount != nil {
		fields["min_amount"] = *update.MinAmount
	}
	if update.MaxAmount != nil {
		fields["max_amount"] = *update.MaxAmount
	}
	if len(fields) == 0 {
		return project, nil
	}

	if err := p.projects.Updates(ctx, id, fields); err != nil {
		return nil, err
	}
	return p.projects.GetById(ctx, id)
}

// CancelProject 取消项目, 已完成的捐款保持不变
func (p *ProjectLogic) CancelProject(ctx context.Context, actor Actor, id int64) (*model.ProjectModel, error) {
	project, err := p.projects.GetById(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := canManage(project, actor); err != nil {
		return nil, err
	}
	if project.Status == model.ProjectStatusCancelled {
		return project, nil
	}
	if project.Status != model.ProjectStatusPending && project.Status != model.ProjectStatusActive {
		return nil, appErrors.ErrInvalidState.WithMessage("项目已结束, 无法取消")
	}

	if err := p.projects.Updates(ctx, id, map[string]interface{}{"status": model.ProjectStatusCancelled}); err != nil {
		return nil, err
	}
	logger.Info("Project cancelled: id=%d", id)
	return p.projects.GetById(ctx, id)
}

// DeleteProject 删除项目; 捐款记录解除关联后保留
func (p *ProjectLogic) DeleteProject(ctx context.Context, actor Actor, id int64) error {
	project, err := p.projects.GetById(ctx, id)
	if err != nil {
		return err
	}
	if err := canManage(project, actor); err != nil {
		return err
	}

	media, err := p.media.ListByProject(ctx, id)
	if err != nil {
		return err
	}

	err = p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := p.donations.WithTx(tx).DetachProject(ctx, id); err != nil {
			return err
		}
		if err := p.media.WithTx(tx).DeleteByProject(ctx, id); err != nil {
			return err
		}
		if err := p.options.WithTx(tx).DeleteByProject(ctx, id); err != nil {
			return err
		}
		if _, err := p.projects.WithTx(tx).Delete(ctx, id); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("删除项目失败: %w", err)
	}

	// 文件删除失败不影响结果
	for _, m := range media {
		if err := p.files.Delete(ctx, m.Path); err != nil {
			logger.Warn("Failed to delete project media file: path=%s, err=%v", m.Path, err)
		}
	}

	logger.Info("Project deleted: id=%d, detached donations kept for audit", id)
	return nil
}

// ProjectStats 单个项目统计
type ProjectStats struct {
	ProjectId            int64           `json:"project_id"`
	CurrentAmount        decimal.Decimal `json:"current_amount"`
	TargetAmount         decimal.Decimal `json:"target_amount"`
	CompletionPercentage float64         `json:"completion_percentage"`
	DonorCount           int64           `json:"donor_count"`
	RemainingTime        string          `json:"remaining_time"`
	Status               string          `json:"status"`
}

// GetProjectStats 获取项目统计信息
func (p *ProjectLogic) GetProjectStats(ctx context.Context, id int64) (*ProjectStats, error) {
	project, err := p.projects.GetById(ctx, id)
	if err != nil {
		return nil, err
	}

	// 计算完成百分比
	completionPercentage := float64(0)
	if project.TargetAmount.IsPositive() {
		completionPercentage, _ = project.CurrentAmount.Div(project.TargetAmount).Mul(decimal.NewFromInt(100)).Round(2).Float64()
	}

	// 计算剩余时间
	remainingTime := time.Duration(0)
	now := p.now()
	if project.Status == model.ProjectStatusActive && now.Before(project.EndTime) {
		remainingTime = project.EndTime.Sub(now).Truncate(time.Second)
	}

	return &ProjectStats{
		ProjectId:            project.Id,
		CurrentAmount:        project.CurrentAmount,
		TargetAmount:         project.TargetAmount,
		CompletionPercentage: completionPercentage,
		DonorCount:           project.DonorCount,
		RemainingTime:        remainingTime.String(),
		Status:               string(project.Status),
	}, nil
}

// PlatformStats 平台汇总统计
type PlatformStats struct {
	TotalProjects     int64           `json:"total_projects"`
	PendingProjects   int64           `json:"pending_projects"`
	ActiveProjects    int64           `json:"active_projects"`
	SuccessProjects   int64           `json:"success_projects"`
	FailedProjects    int64           `json:"failed_projects"`
	CancelledProjects int64           `json:"cancelled_projects"`
	TotalRaised       decimal.Decimal `json:"total_raised"`
	TotalGoal         decimal.Decimal `json:"total_goal"`
	TotalDonations    int64           `json:"total_donations"`
	TotalDonors       int64           `json:"total_donors"`
	SuccessRate       float64         `json:"success_rate"`
}

// GetAllProjectStats 获取所有项目的统计信息
func (p *ProjectLogic) GetAllProjectStats(ctx context.Context) (*PlatformStats, error) {
	summary, err := p.projects.Summary(ctx)
	if err != nil {
		return nil, fmt.Errorf("获取项目统计失败: %w", err)
	}

	// 实名捐款人去重
	donors, err := p.donations.CountDistinctDonors(ctx)
	if err != nil {
		return nil, fmt.Errorf("获取捐款人统计失败: %w", err)
	}

	stats := &PlatformStats{
		TotalProjects:     summary.TotalProjects,
		PendingProjects:   summary.ByStatus[model.ProjectStatusPending],
		ActiveProjects:    summary.ByStatus[model.ProjectStatusActive],
		SuccessProjects:   summary.ByStatus[model.ProjectStatusSuccess],
		FailedProjects:    summary.ByStatus[model.ProjectStatusFailed],
		CancelledProjects: summary.ByStatus[model.ProjectStatusCancelled],
		TotalRaised:       summary.TotalRaised,
		TotalGoal:         summary.TotalTarget,
		TotalDonations:    summary.TotalDonations,
		TotalDonors:       donors,
	}
	if finished := stats.SuccessProjects + stats.FailedProjects; finished > 0 {
		stats.SuccessRate = float64(stats.SuccessProjects) / float64(finished) * 100
	}
	return stats, nil
}

// UpdateProjectStatuses 按时间推进项目状态, 由定时任务调用
func (p *ProjectLogic) UpdateProjectStatuses(ctx context.Context) error {
	now := p.now()

	activated, err := p.projects.ActivateStarted(ctx, now)
	if err != nil {
		return fmt.Errorf("激活项目失败: %w", err)
	}
	succeeded, failed, err := p.projects.FinishEnded(ctx, now)
	if err != nil {
		return fmt.Errorf("结束项目失败: %w", err)
	}

	if activated+succeeded+failed > 0 {
		logger.Info("Project statuses updated: activated=%d, success=%d, failed=%d", activated, succeeded, failed)
	}
	return nil
}

// AddMedia 上传项目附件
func (p *ProjectLogic) AddMedia(ctx context.Context, actor Actor, projectId int64, kind model.MediaKind, filename, contentType string, data []byte) (*model.ProjectMediaModel, error) {
	project, err := p.projects.GetById(ctx, projectId)
	if err != nil {
		return nil, err
	}
	if err := canManage(project, actor); err != nil {
		return nil, err
	}
	if kind != model.MediaKindImage && kind != model.MediaKindDocument {
		return nil, appErrors.NewValidationError("kind", "附件类型必须为 image 或 document")
	}
	if len(data) == 0 {
		return nil, appErrors.NewValidationError("file", "文件不能为空")
	}

	path, err := p.files.Save(ctx, storage.NewKey(projectId, filename), contentType, data)
	if err != nil {
		return nil, fmt.Errorf("保存文件失败: %w", err)
	}

	media := &model.ProjectMediaModel{
		ProjectId:    projectId,
		Kind:         kind,
		Path:         path,
		OriginalName: filename,
		ContentType:  contentType,
		Size:         int64(len(data)),
	}
	if err := p.media.Create(ctx, media); err != nil {
		// 记录写入失败时清理已保存的文件
		if delErr := p.files.Delete(ctx, path); delErr != nil {
			logger.Warn("Failed to clean up media file: path=%s, err=%v", path, delErr)
		}
		return nil, fmt.Errorf("保存附件记录失败: %w", err)
	}
	return media, nil
}

// RemoveMedia 删除项目附件
func (p *ProjectLogic) RemoveMedia(ctx context.Context, actor Actor, projectId, mediaId int64) error {
	project, err := p.projects.GetById(ctx, projectId)
	if err != nil {
		return err
	}
	if err := canManage(project, actor); err != nil {
		return err
	}

	media, err := p.media.Get(ctx, projectId, mediaId)
	if err != nil {
		return err
	}
	if err := p.media.Delete(ctx, media.Id); err != nil {
		return fmt.Errorf("删除附件失败: %w", err)
	}
	if err := p.files.Delete(ctx, media.Path); err != nil {
		logger.Warn("Failed to delete media file: path=%s, err=%v", media.Path, err)
	}
	return nil
}

// validateProject 验证项目数据
func (p *ProjectLogic) validateProject(project *model.ProjectModel) error {
	if project.Title == "" {
		return appErrors.NewValidationError("title", "项目标题不能为空")
	}
	if !project.TargetAmount.IsPositive() {
		return appErrors.NewValidationError("target_amount", "目标金额必须大于0")
	}
	if project.StartTime.After(project.EndTime) {
		return appErrors.NewValidationError("start_time", "开始时间不能晚于结束时间")
	}
	if project.EndTime.Before(p.now()) {
		return appErrors.NewValidationError("end_time", "结束时间不能早于当前时间")
	}
	if project.MaxAmount.IsPositive() && project.MinAmount.GreaterThan(project.MaxAmount) {
		return appErrors.NewValidationError("min_amount", "最小捐款金额不能大于最大捐款金额")
	}
	return nil
}

// canManage 创建者或管理员
func canManage(project *model.ProjectModel, actor Actor) error {
	if actor.IsAdmin {
		return nil
	}
	if project.CreatorUserId != nil && *project.CreatorUserId == actor.UserId {
		return nil
	}
	return appErrors.ErrForbidden.WithMessage("只有项目创建者可以执行该操作")
}
