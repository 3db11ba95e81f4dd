package repositories

import (
	"context"

	"knowledge-base-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FeedbackRepository interface {
	Create(ctx context.Context, feedback *models.Feedback) error
	GetByID(ctx context.Context, id uint) (*models.Feedback, error)
	FindByArticleAndUser(ctx context.Context, articleID, userID uint) (*models.Feedback, error)
	ListByArticle(ctx context.Context, articleID uint, minScore *int, page models.Pagination) ([]models.Feedback, int64, error)
	ListByUser(ctx context.Context, userID uint, page models.Pagination) ([]models.Feedback, int64, error)
	StatsForArticle(ctx context.Context, articleID uint) (models.FeedbackStats, error)
	Delete(ctx context.Context, id uint) error
	DeleteByArticles(ctx context.Context, articleIDs ...uint) error
	DetachUser(ctx context.Context, userID uint) error
}

type feedbackRepository struct {
	db *gorm.DB
}

func NewFeedbackRepository(db *gorm.DB) FeedbackRepository {
	return &feedbackRepository{db: db}
}

func (r *feedbackRepository) Create(ctx context.Context, feedback *models.Feedback) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(feedback).Error
}

func (r *feedbackRepository) GetByID(ctx context.Context, id uint) (*models.Feedback, error) {
	var feedback models.Feedback
	err := r.db.WithContext(ctx).First(&feedback, id).Error
	return &feedback, err
}

func (r *feedbackRepository) FindByArticleAndUser(ctx context.Context, articleID, userID uint) (*models.Feedback, error) {
	var feedback models.Feedback
	err := r.db.WithContext(ctx).
		Where("article_id = ? AND user_id = ?", articleID, userID).
		First(&feedback).Error
	return &feedback, err
}

func (r *feedbackRepository) ListByArticle(ctx context.Context, articleID uint, minScore *int, page models.Pagination) ([]models.Feedback, int64, error) {
	var entries []models.Feedback
	var total int64

	build := func() *gorm.DB {
		query := r.db.WithContext(ctx).Model(&models.Feedback{}).Where("article_id = ?", articleID)
		if minScore != nil {
			query = query.Where("helpfulness_score >= ?", *minScore)
		}
		return query
	}

	if err := build().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := build().
		Preload("User").
		Order("created_at DESC").
		Order("id DESC").
		Offset(page.Offset()).
		Limit(page.PerPage).
		Find(&entries).Error
	return entries, total, err
}

func (r *feedbackRepository) ListByUser(ctx context.Context, userID uint, page models.Pagination) ([]models.Feedback, int64, error) {
	var entries []models.Feedback
	var total int64

	build := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&models.Feedback{}).Where("user_id = ?", userID)
	}

	if err := build().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := build().
		Preload("Article").
		Preload("Article.Category").
		Order("created_at DESC").
		Order("id DESC").
		Offset(page.Offset()).
		Limit(page.PerPage).
		Find(&entries).Error
	return entries, total, err
}

// StatsForArticle aggregates the score distribution in a single grouped query.
func (r *feedbackRepository) StatsForArticle(ctx context.Context, articleID uint) (models.FeedbackStats, error) {
	stats := models.FeedbackStats{Breakdown: make(map[int]int64, models.MaxHelpfulnessScore)}
	for score := models.MinHelpfulnessScore; score <= models.MaxHelpfulnessScore; score++ {
		stats.Breakdown[score] = 0
	}

	var rows []struct {
		HelpfulnessScore int
		Count            int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Feedback{}).
		Select("helpfulness_score, COUNT(*) AS count").
		Where("article_id = ?", articleID).
		Group("helpfulness_score").
		Scan(&rows).Error
	if err != nil {
		return stats, err
	}

	for _, row := range rows {
		stats.Breakdown[row.HelpfulnessScore] += row.Count
		stats.Total += row.Count
		stats.Sum += int64(row.HelpfulnessScore) * row.Count
	}
	return stats, nil
}

func (r *feedbackRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Feedback{}, id).Error
}

func (r *feedbackRepository) DeleteByArticles(ctx context.Context, articleIDs ...uint) error {
	if len(articleIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("article_id IN ?", articleIDs).Delete(&models.Feedback{}).Error
}

// DetachUser turns a user's feedback into anonymous feedback.
func (r *feedbackRepository) DetachUser(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Feedback{}).
		Where("user_id = ?", userID).
		Update("user_id", nil).Error
}
