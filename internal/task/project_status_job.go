package task

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/yoj3289/WeNectProject/internal/logger"
)

type projectStatusUpdater interface {
	UpdateProjectStatuses(ctx context.Context) error
}

// ProjectStatusJob 项目状态更新任务: 到期开始的项目激活, 到期结束的项目按金额判定成功或失败
type ProjectStatusJob struct {
	projects projectStatusUpdater
	interval time.Duration
}

// NewProjectStatusJob 创建项目状态更新任务
func NewProjectStatusJob(projects projectStatusUpdater, interval time.Duration) *ProjectStatusJob {
	return &ProjectStatusJob{
		projects: projects,
		interval: interval,
	}
}

// GetName 获取任务名称
func (j *ProjectStatusJob) GetName() string {
	return "project_status_updater"
}

// GetSchedule 获取调度配置
func (j *ProjectStatusJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(j.interval)
}

// Execute 执行任务
func (j *ProjectStatusJob) Execute() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout(j.interval))
	defer cancel()

	if err := j.projects.UpdateProjectStatuses(ctx); err != nil {
		logger.Error("Project status task failed: %v", err)
	}
}

// jobTimeout 单轮执行不超过调度间隔
func jobTimeout(interval time.Duration) time.Duration {
	if interval <= 0 {
		return time.Minute
	}
	return interval
}
