package repositories

import (
	"context"

	"knowledge-base-api/models"

	"gorm.io/gorm"
)

type TagRepository interface {
	Create(ctx context.Context, tag *models.Tag) error
	GetByName(ctx context.Context, name string) (*models.Tag, error)
	GetByIDs(ctx context.Context, ids []uint) ([]models.Tag, error)
	ListWithArticleCounts(ctx context.Context) ([]models.TagListItem, error)
}

type tagRepository struct {
	db *gorm.DB
}

func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) Create(ctx context.Context, tag *models.Tag) error {
	return r.db.WithContext(ctx).Create(tag).Error
}

func (r *tagRepository) GetByName(ctx context.Context, name string) (*models.Tag, error) {
	var tag models.Tag
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&tag).Error
	return &tag, err
}

func (r *tagRepository) GetByIDs(ctx context.Context, ids []uint) ([]models.Tag, error) {
	var tags []models.Tag
	if len(ids) == 0 {
		return tags, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&tags).Error
	return tags, err
}

func (r *tagRepository) ListWithArticleCounts(ctx context.Context) ([]models.TagListItem, error) {
	var tags []models.TagListItem
	err := r.db.WithContext(ctx).
		Model(&models.Tag{}).
		Select("tags.id, tags.name, COUNT(article_tags.id) AS article_count").
		Joins("LEFT JOIN article_tags ON article_tags.tag_id = tags.id").
		Group("tags.id, tags.name").
		Order("tags.name").
		Scan(&tags).Error
	return tags, err
}
