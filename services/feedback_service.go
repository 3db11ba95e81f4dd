package services

import (
	"context"
	"errors"
	"strings"

	"knowledge-base-api/metrics"
	"knowledge-base-api/models"
	"knowledge-base-api/repositories"

	"gorm.io/gorm"
)

const (
	DefaultFeedbackPerPage     = 20
	DefaultUserFeedbackPerPage = 10
)

type FeedbackService interface {
	Submit(ctx context.Context, articleID uint, req models.SubmitFeedbackRequest) (*models.SubmitFeedbackResponse, error)
	Summary(ctx context.Context, articleID uint) (*models.FeedbackSummary, error)
	ListForArticle(ctx context.Context, articleID uint, params models.FeedbackListParams) (*models.ArticleFeedbackPage, error)
	ListForUser(ctx context.Context, userID uint, params models.PageParams) (*models.UserFeedbackPage, error)
	Delete(ctx context.Context, id uint) error
}

type feedbackService struct {
	store *repositories.Store
}

func NewFeedbackService(store *repositories.Store) FeedbackService {
	return &feedbackService{store: store}
}

func (s *feedbackService) Submit(ctx context.Context, articleID uint, req models.SubmitFeedbackRequest) (*models.SubmitFeedbackResponse, error) {
	if _, err := s.store.Articles.GetByID(ctx, articleID); err != nil {
		return nil, storeError("load article", err, "Article not found")
	}

	if req.HelpfulnessScore == nil {
		return nil, models.Invalid("Helpfulness score is required")
	}
	score := *req.HelpfulnessScore
	if score < models.MinHelpfulnessScore || score > models.MaxHelpfulnessScore {
		return nil, models.Invalid("Helpfulness score must be between %d and %d", models.MinHelpfulnessScore, models.MaxHelpfulnessScore)
	}

	// A zero user id is treated like an absent one.
	var userID *uint
	if req.UserID != nil && *req.UserID != 0 {
		userID = req.UserID
	}

	if userID != nil {
		if _, err := s.store.Users.GetByID(ctx, *userID); err != nil {
			return nil, storeError("load user", err, "User not found")
		}
		if err := s.ensureFirstFeedback(ctx, articleID, *userID); err != nil {
			return nil, err
		}
	}

	feedback := &models.Feedback{
		ArticleID:        articleID,
		UserID:           userID,
		HelpfulnessScore: score,
		Comment:          strings.TrimSpace(req.Comment),
	}
	if err := s.store.Feedback.Create(ctx, feedback); err != nil {
		// A concurrent submit can pass the check above; the unique index
		// catches it.
		if errors.Is(err, gorm.ErrDuplicatedKey) && userID != nil {
			if conflict := s.ensureFirstFeedback(ctx, articleID, *userID); conflict != nil {
				return nil, conflict
			}
		}
		return nil, storeError("create feedback", err, "")
	}

	metrics.RecordFeedback(score, userID == nil)

	return &models.SubmitFeedbackResponse{
		Message:          "Feedback submitted successfully",
		FeedbackID:       feedback.ID,
		ArticleID:        articleID,
		HelpfulnessScore: score,
		IsAnonymous:      userID == nil,
		UserID:           userID,
	}, nil
}

// ensureFirstFeedback returns a conflict carrying the existing entry's id
// when the user already rated the article.
func (s *feedbackService) ensureFirstFeedback(ctx context.Context, articleID, userID uint) error {
	existing, err := s.store.Feedback.FindByArticleAndUser(ctx, articleID, userID)
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return storeError("find feedback", err, "")
	}
	return models.ErrorConflict{
		Message: "You have already submitted feedback for this article",
		Details: map[string]interface{}{"existing_feedback_id": existing.ID},
	}
}

func (s *feedbackService) Summary(ctx context.Context, articleID uint) (*models.FeedbackSummary, error) {
	article, err := s.store.Articles.GetByID(ctx, articleID)
	if err != nil {
		return nil, storeError("load article", err, "Article not found")
	}

	stats, err := s.store.Feedback.StatsForArticle(ctx, articleID)
	if err != nil {
		return nil, storeError("feedback stats", err, "")
	}

	summary := &models.FeedbackSummary{
		ArticleID:          article.ID,
		ArticleTitle:       article.Title,
		TotalFeedback:      stats.Total,
		AverageScore:       stats.Average(),
		ScoreBreakdown:     stats.Breakdown,
		PositivePercentage: stats.PositivePercentage(),
	}
	if stats.Total == 0 {
		summary.Message = "No feedback yet"
	}
	return summary, nil
}

func (s *feedbackService) ListForArticle(ctx context.Context, articleID uint, params models.FeedbackListParams) (*models.ArticleFeedbackPage, error) {
	article, err := s.store.Articles.GetByID(ctx, articleID)
	if err != nil {
		return nil, storeError("load article", err, "Article not found")
	}

	page := models.NewPagination(params.Page, params.PerPage, DefaultFeedbackPerPage)
	entries, total, err := s.store.Feedback.ListByArticle(ctx, articleID, params.MinScore, page)
	if err != nil {
		return nil, storeError("list feedback", err, "")
	}

	// Statistics cover every entry on the article, not only the filtered page.
	stats, err := s.store.Feedback.StatsForArticle(ctx, articleID)
	if err != nil {
		return nil, storeError("feedback stats", err, "")
	}

	feedback := make([]models.FeedbackEntry, 0, len(entries))
	for _, f := range entries {
		feedback = append(feedback, models.NewFeedbackEntry(f))
	}

	return &models.ArticleFeedbackPage{
		Article:  models.ArticleRef{ID: article.ID, Title: article.Title},
		Feedback: feedback,
		Statistics: models.FeedbackStatistics{
			TotalFeedback:    stats.Total,
			AverageScore:     stats.Average(),
			PositiveFeedback: stats.Positive(),
		},
		Total:      total,
		Pagination: page,
	}, nil
}

func (s *feedbackService) ListForUser(ctx context.Context, userID uint, params models.PageParams) (*models.UserFeedbackPage, error) {
	user, err := s.store.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, storeError("load user", err, "User not found")
	}

	page := models.NewPagination(params.Page, params.PerPage, DefaultUserFeedbackPerPage)
	entries, total, err := s.store.Feedback.ListByUser(ctx, userID, page)
	if err != nil {
		return nil, storeError("list user feedback", err, "")
	}

	feedback := make([]models.UserFeedbackEntry, 0, len(entries))
	for _, f := range entries {
		feedback = append(feedback, models.NewUserFeedbackEntry(f))
	}

	return &models.UserFeedbackPage{
		User:     models.FeedbackUserSummary{ID: user.ID, Username: user.Username},
		Feedback: feedback,
		Total:    total,
		Page:     page.Page,
		PerPage:  page.PerPage,
		Pages:    page.TotalPages(total),
	}, nil
}

func (s *feedbackService) Delete(ctx context.Context, id uint) error {
	if _, err := s.store.Feedback.GetByID(ctx, id); err != nil {
		return storeError("load feedback", err, "Feedback not found")
	}
	if err := s.store.Feedback.Delete(ctx, id); err != nil {
		return storeError("delete feedback", err, "")
	}
	return nil
}
