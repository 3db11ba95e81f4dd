package services

import (
	"context"
	"strings"

	"knowledge-base-api/metrics"
	"knowledge-base-api/models"
	"knowledge-base-api/repositories"
)

// Applied when a create request omits author_id or category_id.
const (
	DefaultAuthorID   uint = 1
	DefaultCategoryID uint = 1
)

type ArticleService interface {
	GetArticles(ctx context.Context, params models.ArticleListParams) (*models.ArticleListResponse, error)
	GetArticle(ctx context.Context, id uint) (*models.ArticleDetail, error)
	GetArticlesByTag(ctx context.Context, name string, params models.PageParams) (*models.TagArticlesResponse, error)
	CreateArticle(ctx context.Context, req models.CreateArticleRequest) (*models.ArticleDetail, error)
	UpdateArticle(ctx context.Context, id uint, req models.UpdateArticleRequest) (*models.ArticleDetail, error)
	DeleteArticle(ctx context.Context, id uint) error
}

type articleService struct {
	store *repositories.Store
}

func NewArticleService(store *repositories.Store) ArticleService {
	return &articleService{store: store}
}

func (s *articleService) GetArticles(ctx context.Context, params models.ArticleListParams) (*models.ArticleListResponse, error) {
	page := models.NewPagination(params.Page, params.PerPage, models.DefaultPerPage)
	filter := repositories.ArticleFilter{
		CategoryID: params.CategoryID,
		TagID:      params.TagID,
		AuthorID:   params.AuthorID,
		Search:     strings.TrimSpace(params.Search),
	}

	articles, total, err := s.store.Articles.List(ctx, filter, page)
	if err != nil {
		return nil, storeError("list articles", err, "")
	}

	items := make([]models.ArticleListItem, 0, len(articles))
	for _, a := range articles {
		items = append(items, models.NewArticleListItem(a))
	}

	return &models.ArticleListResponse{
		Articles: items,
		Total:    total,
		Page:     page.Page,
		PerPage:  page.PerPage,
		Pages:    page.TotalPages(total),
	}, nil
}

func (s *articleService) GetArticle(ctx context.Context, id uint) (*models.ArticleDetail, error) {
	article, err := s.store.Articles.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("get article", err, "Article not found")
	}

	detail := models.NewArticleDetail(*article)
	return &detail, nil
}

func (s *articleService) GetArticlesByTag(ctx context.Context, name string, params models.PageParams) (*models.TagArticlesResponse, error) {
	tag, err := s.store.Tags.GetByName(ctx, name)
	if err != nil {
		return nil, storeError("get tag", err, "Tag not found")
	}

	page := models.NewPagination(params.Page, params.PerPage, models.DefaultPerPage)
	articles, total, err := s.store.Articles.List(ctx, repositories.ArticleFilter{TagID: tag.ID}, page)
	if err != nil {
		return nil, storeError("list articles by tag", err, "")
	}

	items := make([]models.TagArticleItem, 0, len(articles))
	for _, a := range articles {
		items = append(items, models.NewTagArticleItem(a))
	}

	return &models.TagArticlesResponse{
		Tag:      tag.Name,
		Articles: items,
		Total:    total,
		Page:     page.Page,
		PerPage:  page.PerPage,
		Pages:    page.TotalPages(total),
	}, nil
}

func (s *articleService) CreateArticle(ctx context.Context, req models.CreateArticleRequest) (*models.ArticleDetail, error) {
	title := strings.TrimSpace(req.Title)
	content := strings.TrimSpace(req.Content)
	if title == "" || content == "" {
		return nil, models.Invalid("Title and content are required")
	}

	authorID := DefaultAuthorID
	if req.AuthorID != nil {
		authorID = *req.AuthorID
	}
	categoryID := DefaultCategoryID
	if req.CategoryID != nil {
		categoryID = *req.CategoryID
	}

	var created *models.Article
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		if _, err := tx.Users.GetByID(ctx, authorID); err != nil {
			return storeError("load author", err, "Author not found")
		}
		if _, err := tx.Categories.GetByID(ctx, categoryID); err != nil {
			return storeError("load category", err, "Category not found")
		}

		article := &models.Article{
			Title:      title,
			Content:    content,
			AuthorID:   authorID,
			CategoryID: categoryID,
		}
		if err := tx.Articles.Create(ctx, article); err != nil {
			return storeError("create article", err, "")
		}

		if err := replaceTags(ctx, tx, article.ID, req.TagIDs, false); err != nil {
			return err
		}

		loaded, err := tx.Articles.GetByID(ctx, article.ID)
		if err != nil {
			return storeError("reload article", err, "Article not found")
		}
		created = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordArticleMutation("create")
	detail := models.NewArticleDetail(*created)
	return &detail, nil
}

func (s *articleService) UpdateArticle(ctx context.Context, id uint, req models.UpdateArticleRequest) (*models.ArticleDetail, error) {
	if req.Empty() {
		return nil, models.Invalid("No data provided")
	}

	fields := map[string]interface{}{}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, models.Invalid("Title cannot be empty")
		}
		fields["title"] = title
	}
	if req.Content != nil {
		content := strings.TrimSpace(*req.Content)
		if content == "" {
			return nil, models.Invalid("Content cannot be empty")
		}
		fields["content"] = content
	}

	var updated *models.Article
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		if _, err := tx.Articles.GetByID(ctx, id); err != nil {
			return storeError("load article", err, "Article not found")
		}

		if req.CategoryID != nil {
			if _, err := tx.Categories.GetByID(ctx, *req.CategoryID); err != nil {
				return storeError("load category", err, "Category not found")
			}
			fields["category_id"] = *req.CategoryID
		}

		if req.TagIDs != nil {
			if err := replaceTags(ctx, tx, id, *req.TagIDs, true); err != nil {
				return err
			}
		}

		if err := tx.Articles.UpdateFields(ctx, id, fields); err != nil {
			return storeError("update article", err, "")
		}

		loaded, err := tx.Articles.GetByID(ctx, id)
		if err != nil {
			return storeError("reload article", err, "Article not found")
		}
		updated = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordArticleMutation("update")
	detail := models.NewArticleDetail(*updated)
	return &detail, nil
}

func (s *articleService) DeleteArticle(ctx context.Context, id uint) error {
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		if _, err := tx.Articles.GetByID(ctx, id); err != nil {
			return storeError("load article", err, "Article not found")
		}
		return deleteArticles(ctx, tx, id)
	})
	if err != nil {
		return err
	}

	metrics.RecordArticleMutation("delete")
	return nil
}

// replaceTags validates tagIDs and links them to the article. With replace
// set, existing links are removed first.
func replaceTags(ctx context.Context, tx *repositories.Store, articleID uint, tagIDs []uint, replace bool) error {
	ids := uniqueIDs(tagIDs)

	if len(ids) > 0 {
		tags, err := tx.Tags.GetByIDs(ctx, ids)
		if err != nil {
			return storeError("load tags", err, "")
		}
		if len(tags) != len(ids) {
			found := make(map[uint]struct{}, len(tags))
			for _, t := range tags {
				found[t.ID] = struct{}{}
			}
			for _, id := range ids {
				if _, ok := found[id]; !ok {
					return models.NotFound("Tag %d not found", id)
				}
			}
		}
	}

	if replace {
		if err := tx.Articles.ClearTags(ctx, articleID); err != nil {
			return storeError("clear article tags", err, "")
		}
	}

	if err := tx.Articles.AttachTags(ctx, articleID, ids); err != nil {
		return storeError("attach article tags", err, "")
	}
	return nil
}

// deleteArticles removes articles with their tag links and feedback,
// children first.
func deleteArticles(ctx context.Context, tx *repositories.Store, ids ...uint) error {
	if len(ids) == 0 {
		return nil
	}
	if err := tx.Articles.ClearTags(ctx, ids...); err != nil {
		return storeError("delete article tags", err, "")
	}
	if err := tx.Feedback.DeleteByArticles(ctx, ids...); err != nil {
		return storeError("delete article feedback", err, "")
	}
	if err := tx.Articles.Delete(ctx, ids...); err != nil {
		return storeError("delete articles", err, "")
	}
	return nil
}
