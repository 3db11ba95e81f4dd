package services

import (
	"context"
	"strings"

	"knowledge-base-api/models"
	"knowledge-base-api/repositories"
)

type CategoryService interface {
	GetCategories(ctx context.Context) ([]models.CategoryListItem, error)
	CreateCategory(ctx context.Context, req models.CreateCategoryRequest) (*models.Category, error)
	DeleteCategory(ctx context.Context, id uint) error
}

type categoryService struct {
	store *repositories.Store
}

func NewCategoryService(store *repositories.Store) CategoryService {
	return &categoryService{store: store}
}

func (s *categoryService) GetCategories(ctx context.Context) ([]models.CategoryListItem, error) {
	categories, err := s.store.Categories.ListWithArticleCounts(ctx)
	if err != nil {
		return nil, storeError("list categories", err, "")
	}
	if categories == nil {
		categories = []models.CategoryListItem{}
	}
	return categories, nil
}

func (s *categoryService) CreateCategory(ctx context.Context, req models.CreateCategoryRequest) (*models.Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, models.Invalid("Category name is required")
	}

	if _, err := s.store.Categories.GetByName(ctx, name); err == nil {
		return nil, models.ErrorConflict{Message: "Category already exists"}
	} else if !isNotFound(err) {
		return nil, storeError("check category", err, "")
	}

	category := &models.Category{
		Name:        name,
		Description: strings.TrimSpace(req.Description),
	}
	if err := s.store.Categories.Create(ctx, category); err != nil {
		return nil, storeError("create category", err, "")
	}
	return category, nil
}

// DeleteCategory removes the category together with its articles.
func (s *categoryService) DeleteCategory(ctx context.Context, id uint) error {
	return s.store.Transaction(ctx, func(tx *repositories.Store) error {
		if _, err := tx.Categories.GetByID(ctx, id); err != nil {
			return storeError("load category", err, "Category not found")
		}

		articleIDs, err := tx.Articles.IDsByCategory(ctx, id)
		if err != nil {
			return storeError("list category articles", err, "")
		}
		if err := deleteArticles(ctx, tx, articleIDs...); err != nil {
			return err
		}

		if err := tx.Categories.Delete(ctx, id); err != nil {
			return storeError("delete category", err, "")
		}
		return nil
	})
}
