package repository

import (
	"context"
	"errors"

	appErrors "github.com/yoj3289/WeNectProject/internal/errors"
	"github.com/yoj3289/WeNectProject/internal/model"
	"gorm.io/gorm"
)

type MediaRepository struct {
	db *gorm.DB
}

func NewMediaRepository(db *gorm.DB) *MediaRepository {
	return &MediaRepository{db: db}
}

func (r *MediaRepository) WithTx(tx *gorm.DB) *MediaRepository {
	return &MediaRepository{db: tx}
}

func (r *MediaRepository) Create(ctx context.Context, media *model.ProjectMediaModel) error {
	return r.db.WithContext(ctx).Create(media).Error
}

func (r *MediaRepository) Get(ctx context.Context, projectId, mediaId int64) (*model.ProjectMediaModel, error) {
	var media model.ProjectMediaModel
	err := r.db.WithContext(ctx).Where("id = ? AND project_id = ?", mediaId, projectId).First(&media).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appErrors.NewNotFoundError("项目附件")
		}
		return nil, err
	}
	return &media, nil
}

func (r *MediaRepository) ListByProject(ctx context.Context, projectId int64) ([]model.ProjectMediaModel, error) {
	var media []model.ProjectMediaModel
	err := r.db.WithContext(ctx).Where("project_id = ?", projectId).Order("id").Find(&media).Error
	return media, err
}

func (r *MediaRepository) Delete(ctx context.Context, mediaId int64) error {
	return r.db.WithContext(ctx).Delete(&model.ProjectMediaModel{}, mediaId).Error
}

func (r *MediaRepository) DeleteByProject(ctx context.Context, projectId int64) error {
	return r.db.WithContext(ctx).Where("project_id = ?", projectId).Delete(&model.ProjectMediaModel{}).Error
}
