package repository

import (
	"context"
	"errors"

	appErrors "github.com/yoj3289/WeNectProject/internal/errors"
	"github.com/yoj3289/WeNectProject/internal/model"
	"gorm.io/gorm"
)

// DonationOptionRepository 项目捐款档位存储
type DonationOptionRepository struct {
	db *gorm.DB
}

func NewDonationOptionRepository(db *gorm.DB) *DonationOptionRepository {
	return &DonationOptionRepository{db: db}
}

func (r *DonationOptionRepository) WithTx(tx *gorm.DB) *DonationOptionRepository {
	return &DonationOptionRepository{db: tx}
}

func (r *DonationOptionRepository) Create(ctx context.Context, options ...*model.DonationOptionModel) error {
	if len(options) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(options).Error
}

func (r *DonationOptionRepository) GetById(ctx context.Context, id int64) (*model.DonationOptionModel, error) {
	var option model.DonationOptionModel
	if err := r.db.WithContext(ctx).First(&option, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appErrors.NewNotFoundError("捐款档位").WithDetails(map[string]interface{}{"option_id": id})
		}
		return nil, err
	}
	return &option, nil
}

// ListByProject 按显示顺序排列, activeOnly 时只返回启用的档位
func (r *DonationOptionRepository) ListByProject(ctx context.Context, projectId int64, activeOnly bool) ([]model.DonationOptionModel, error) {
	query := r.db.WithContext(ctx).Where("project_id = ?", projectId)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var options []model.DonationOptionModel
	err := query.Order("display_order ASC, id ASC").Find(&options).Error
	return options, err
}

func (r *DonationOptionRepository) Updates(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.DonationOptionModel{}).Where("id = ?", id).Updates(fields).Error
}

func (r *DonationOptionRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.DonationOptionModel{}, id).Error
}

func (r *DonationOptionRepository) DeleteByProject(ctx context.Context, projectId int64) error {
	return r.db.WithContext(ctx).Where("project_id = ?", projectId).Delete(&model.DonationOptionModel{}).Error
}
