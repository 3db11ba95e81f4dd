package repositories

import (
	"context"
	"strings"
	"time"

	"knowledge-base-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ArticleFilter holds the conjunctive filters of an article listing.
// Zero values mean "no filter".
type ArticleFilter struct {
	CategoryID uint
	TagID      uint
	AuthorID   uint
	Search     string
}

type ArticleRepository interface {
	Create(ctx context.Context, article *models.Article) error
	GetByID(ctx context.Context, id uint) (*models.Article, error)
	List(ctx context.Context, filter ArticleFilter, page models.Pagination) ([]models.Article, int64, error)
	ListByAuthor(ctx context.Context, authorID uint) ([]models.Article, error)
	IDsByAuthor(ctx context.Context, authorID uint) ([]uint, error)
	IDsByCategory(ctx context.Context, categoryID uint) ([]uint, error)
	UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error
	Delete(ctx context.Context, ids ...uint) error
	AttachTags(ctx context.Context, articleID uint, tagIDs []uint) error
	ClearTags(ctx context.Context, articleIDs ...uint) error
	LoadTags(ctx context.Context, articles []models.Article) error
}

type articleRepository struct {
	db *gorm.DB
}

func NewArticleRepository(db *gorm.DB) ArticleRepository {
	return &articleRepository{db: db}
}

func (r *articleRepository) Create(ctx context.Context, article *models.Article) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(article).Error
}

func (r *articleRepository) GetByID(ctx context.Context, id uint) (*models.Article, error) {
	var article models.Article
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Category").
		First(&article, id).Error
	if err != nil {
		return &article, err
	}

	articles := []models.Article{article}
	if err := r.LoadTags(ctx, articles); err != nil {
		return &article, err
	}
	return &articles[0], nil
}

func (r *articleRepository) filtered(ctx context.Context, filter ArticleFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.Article{})

	if filter.CategoryID > 0 {
		query = query.Where("articles.category_id = ?", filter.CategoryID)
	}

	if filter.AuthorID > 0 {
		query = query.Where("articles.author_id = ?", filter.AuthorID)
	}

	if filter.TagID > 0 {
		query = query.Joins("JOIN article_tags ON article_tags.article_id = articles.id").
			Where("article_tags.tag_id = ?", filter.TagID)
	}

	if filter.Search != "" {
		pattern := "%" + escapeLike(strings.ToLower(filter.Search)) + "%"
		query = query.Where(
			`(LOWER(articles.title) LIKE ? ESCAPE '\' OR LOWER(articles.content) LIKE ? ESCAPE '\')`,
			pattern, pattern,
		)
	}

	return query
}

func (r *articleRepository) List(ctx context.Context, filter ArticleFilter, page models.Pagination) ([]models.Article, int64, error) {
	var articles []models.Article
	var total int64

	if err := r.filtered(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return articles, 0, nil
	}

	err := r.filtered(ctx, filter).
		Preload("Author").
		Preload("Category").
		Order("articles.created_at DESC").
		Order("articles.id DESC").
		Offset(page.Offset()).
		Limit(page.PerPage).
		Find(&articles).Error
	if err != nil {
		return nil, 0, err
	}

	if err := r.LoadTags(ctx, articles); err != nil {
		return nil, 0, err
	}
	return articles, total, nil
}

func (r *articleRepository) ListByAuthor(ctx context.Context, authorID uint) ([]models.Article, error) {
	var articles []models.Article
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("author_id = ?", authorID).
		Order("created_at DESC").
		Find(&articles).Error
	return articles, err
}

func (r *articleRepository) IDsByAuthor(ctx context.Context, authorID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Article{}).Where("author_id = ?", authorID).Pluck("id", &ids).Error
	return ids, err
}

func (r *articleRepository) IDsByCategory(ctx context.Context, categoryID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Article{}).Where("category_id = ?", categoryID).Pluck("id", &ids).Error
	return ids, err
}

// UpdateFields writes the given columns and always refreshes updated_at.
func (r *articleRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	fields["updated_at"] = time.Now()
	return r.db.WithContext(ctx).Model(&models.Article{}).Where("id = ?", id).Updates(fields).Error
}

func (r *articleRepository) Delete(ctx context.Context, ids ...uint) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&models.Article{}).Error
}

func (r *articleRepository) AttachTags(ctx context.Context, articleID uint, tagIDs []uint) error {
	if len(tagIDs) == 0 {
		return nil
	}
	links := make([]models.ArticleTag, 0, len(tagIDs))
	for _, tagID := range tagIDs {
		links = append(links, models.ArticleTag{ArticleID: articleID, TagID: tagID})
	}
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(&links).Error
}

func (r *articleRepository) ClearTags(ctx context.Context, articleIDs ...uint) error {
	if len(articleIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("article_id IN ?", articleIDs).Delete(&models.ArticleTag{}).Error
}

// LoadTags fills Tags on every article with one query over article_tags.
func (r *articleRepository) LoadTags(ctx context.Context, articles []models.Article) error {
	if len(articles) == 0 {
		return nil
	}

	ids := make([]uint, 0, len(articles))
	for i := range articles {
		ids = append(ids, articles[i].ID)
		articles[i].Tags = []models.Tag{}
	}

	var rows []struct {
		ArticleID uint
		ID        uint
		Name      string
	}
	err := r.db.WithContext(ctx).
		Table("article_tags").
		Select("article_tags.article_id, tags.id, tags.name").
		Joins("JOIN tags ON tags.id = article_tags.tag_id").
		Where("article_tags.article_id IN ?", ids).
		Order("tags.name").
		Scan(&rows).Error
	if err != nil {
		return err
	}

	byArticle := make(map[uint][]models.Tag, len(articles))
	for _, row := range rows {
		byArticle[row.ArticleID] = append(byArticle[row.ArticleID], models.Tag{ID: row.ID, Name: row.Name})
	}
	for i := range articles {
		if tags, ok := byArticle[articles[i].ID]; ok {
			articles[i].Tags = tags
		}
	}
	return nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
