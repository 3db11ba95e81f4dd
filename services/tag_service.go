package services

import (
	"context"
	"strings"

	"knowledge-base-api/models"
	"knowledge-base-api/repositories"
)

type TagService interface {
	CreateTag(ctx context.Context, req models.CreateTagRequest) (*models.Tag, error)
	GetTags(ctx context.Context) ([]models.TagListItem, error)
}

type tagService struct {
	store *repositories.Store
}

func NewTagService(store *repositories.Store) TagService {
	return &tagService{store: store}
}

func (s *tagService) CreateTag(ctx context.Context, req models.CreateTagRequest) (*models.Tag, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, models.Invalid("Tag name is required")
	}

	if _, err := s.store.Tags.GetByName(ctx, name); err == nil {
		return nil, models.ErrorConflict{Message: "Tag already exists"}
	} else if !isNotFound(err) {
		return nil, storeError("check tag", err, "")
	}

	tag := &models.Tag{Name: name}
	if err := s.store.Tags.Create(ctx, tag); err != nil {
		return nil, storeError("create tag", err, "")
	}

	return tag, nil
}

// GetTags lists every tag with the number of articles carrying it.
func (s *tagService) GetTags(ctx context.Context) ([]models.TagListItem, error) {
	tags, err := s.store.Tags.ListWithArticleCounts(ctx)
	if err != nil {
		return nil, storeError("list tags", err, "")
	}
	if tags == nil {
		tags = []models.TagListItem{}
	}
	return tags, nil
}
