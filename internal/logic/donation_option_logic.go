package logic

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	appErrors "github.com/yoj3289/WeNectProject/internal/errors"
	"github.com/yoj3289/WeNectProject/internal/logger"
	"github.com/yoj3289/WeNectProject/internal/model"
	"github.com/yoj3289/WeNectProject/internal/repository"
	"gorm.io/gorm"
)

// minOptionAmount 档位金额下限
var minOptionAmount = decimal.NewFromInt(1000)

// DonationOptionLogic 项目捐款档位
type DonationOptionLogic struct {
	projects *repository.ProjectRepository
	options  *repository.DonationOptionRepository
}

func NewDonationOptionLogic(db *gorm.DB) *DonationOptionLogic {
	return &DonationOptionLogic{
		projects: repository.NewProjectRepository(db),
		options:  repository.NewDonationOptionRepository(db),
	}
}

// OptionInput 创建或修改档位的参数, IsActive 为空时视为启用
type OptionInput struct {
	Name         string
	Description  string
	Amount       decimal.Decimal
	IconEmoji    string
	DisplayOrder *int
	IsActive     *bool
}

// ListOptions 项目的档位; includeInactive 仅项目管理者可用
func (l *DonationOptionLogic) ListOptions(ctx context.Context, actor Actor, projectId int64, includeInactive bool) ([]model.DonationOptionModel, error) {
	project, err := l.projects.GetById(ctx, projectId)
	if err != nil {
		return nil, err
	}
	if includeInactive {
		if err := canManage(project, actor); err != nil {
			return nil, err
		}
	}
	return l.options.ListByProject(ctx, projectId, !includeInactive)
}

func (l *DonationOptionLogic) GetOption(ctx context.Context, optionId int64) (*model.DonationOptionModel, error) {
	return l.options.GetById(ctx, optionId)
}

func (l *DonationOptionLogic) CreateOption(ctx context.Context, actor Actor, projectId int64, in OptionInput) (*model.DonationOptionModel, error) {
	project, err := l.projects.GetById(ctx, projectId)
	if err != nil {
		return nil, err
	}
	if err := canManage(project, actor); err != nil {
		return nil, err
	}

	option, err := buildOption(projectId, 0, in)
	if err != nil {
		return nil, err
	}
	if err := l.options.Create(ctx, option); err != nil {
		return nil, fmt.Errorf("创建捐款档位失败: %w", err)
	}

	logger.Info("Donation option created: id=%d, projectId=%d, amount=%s", option.Id, projectId, option.Amount.String())
	return option, nil
}

// UpdateOption 整体替换档位内容, 所属项目不变
func (l *DonationOptionLogic) UpdateOption(ctx context.Context, actor Actor, optionId int64, in OptionInput) (*model.DonationOptionModel, error) {
	option, err := l.manageableOption(ctx, actor, optionId)
	if err != nil {
		return nil, err
	}

	updated, err := buildOption(option.ProjectId, option.DisplayOrder, in)
	if err != nil {
		return nil, err
	}
	if err := l.options.Updates(ctx, optionId, map[string]interface{}{
		"name":          updated.Name,
		"description":   updated.Description,
		"amount":        updated.Amount,
		"icon_emoji":    updated.IconEmoji,
		"display_order": updated.DisplayOrder,
		"is_active":     updated.IsActive,
	}); err != nil {
		return nil, fmt.Errorf("更新捐款档位失败: %w", err)
	}
	return l.options.GetById(ctx, optionId)
}

// DeleteOption 删除档位, 已选择该档位的捐款保留其 id
func (l *DonationOptionLogic) DeleteOption(ctx context.Context, actor Actor, optionId int64) error {
	if _, err := l.manageableOption(ctx, actor, optionId); err != nil {
		return err
	}
	if err := l.options.Delete(ctx, optionId); err != nil {
		return fmt.Errorf("删除捐款档位失败: %w", err)
	}
	logger.Info("Donation option deleted: id=%d", optionId)
	return nil
}

func (l *DonationOptionLogic) manageableOption(ctx context.Context, actor Actor, optionId int64) (*model.DonationOptionModel, error) {
	option, err := l.options.GetById(ctx, optionId)
	if err != nil {
		return nil, err
	}
	project, err := l.projects.GetById(ctx, option.ProjectId)
	if err != nil {
		return nil, err
	}
	if err := canManage(project, actor); err != nil {
		return nil, err
	}
	return option, nil
}

// buildOption 校验参数; 未给出显示顺序时使用 defaultOrder
func buildOption(projectId int64, defaultOrder int, in OptionInput) (*model.DonationOptionModel, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, appErrors.NewValidationError("name", "档位名称不能为空")
	}
	if utf8.RuneCountInString(name) > 200 {
		return nil, appErrors.NewValidationError("name", "档位名称不能超过200字")
	}
	if utf8.RuneCountInString(in.Description) > 500 {
		return nil, appErrors.NewValidationError("description", "档位说明不能超过500字")
	}
	if in.Amount.LessThan(minOptionAmount) {
		return nil, appErrors.NewValidationError("amount", fmt.Sprintf("档位金额不能低于%s", minOptionAmount.String()))
	}

	option := &model.DonationOptionModel{
		ProjectId:    projectId,
		Name:         name,
		Description:  in.Description,
		Amount:       in.Amount,
		IconEmoji:    in.IconEmoji,
		DisplayOrder: defaultOrder,
		IsActive:     true,
	}
	if in.DisplayOrder != nil {
		option.DisplayOrder = *in.DisplayOrder
	}
	if in.IsActive != nil {
		option.IsActive = *in.IsActive
	}
	return option, nil
}
