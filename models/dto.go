package models

import (
	"time"
)

type RegisterRequest struct {
	Username string   `json:"username" validate:"required,min=3,max=50"`
	Email    string   `json:"email" validate:"required,email,max=120"`
	Password string   `json:"password" validate:"required,min=6"`
	Role     UserRole `json:"role,omitempty" validate:"omitempty,oneof=viewer employee"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type UpdateUserRequest struct {
	Username *string   `json:"username" validate:"omitempty,min=3,max=50"`
	Email    *string   `json:"email" validate:"omitempty,email,max=120"`
	Password *string   `json:"password" validate:"omitempty,min=6"`
	Role     *UserRole `json:"role" validate:"omitempty,oneof=admin editor employee viewer"`
}

// SyncRequest carries an externally authenticated identity. When a
// verifier is configured, ExternalID and Email are taken from the
// verified session instead.
type SyncRequest struct {
	ExternalID string `json:"external_id" validate:"max=128"`
	Email      string `json:"email" validate:"omitempty,email,max=120"`
	Username   string `json:"username" validate:"omitempty,max=50"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type SyncResponse struct {
	Message string      `json:"message"`
	Outcome SyncOutcome `json:"outcome"`
	Token   string      `json:"token"`
	User    User        `json:"user"`
}

type SyncOutcome string

const (
	SyncResolved SyncOutcome = "resolved"
	SyncLinked   SyncOutcome = "linked"
	SyncCreated  SyncOutcome = "created"
)

type CreateArticleRequest struct {
	Title      string `json:"title" validate:"required,max=200"`
	Content    string `json:"content" validate:"required"`
	AuthorID   *uint  `json:"author_id"`
	CategoryID *uint  `json:"category_id"`
	TagIDs     []uint `json:"tag_ids"`
}

// UpdateArticleRequest uses pointers so absent fields stay untouched.
// A non-nil TagIDs replaces the whole tag set.
type UpdateArticleRequest struct {
	Title      *string `json:"title" validate:"omitempty,max=200"`
	Content    *string `json:"content"`
	CategoryID *uint   `json:"category_id"`
	TagIDs     *[]uint `json:"tag_ids"`
}

func (r UpdateArticleRequest) Empty() bool {
	return r.Title == nil && r.Content == nil && r.CategoryID == nil && r.TagIDs == nil
}

type CreateTagRequest struct {
	Name string `json:"name" validate:"required,min=1,max=50"`
}

type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"max=255"`
}

type SubmitFeedbackRequest struct {
	HelpfulnessScore *int   `json:"helpfulness_score" validate:"required"`
	UserID           *uint  `json:"user_id"`
	Comment          string `json:"comment"`
}

type ArticleListParams struct {
	Page       int    `form:"page"`
	PerPage    int    `form:"per_page"`
	CategoryID uint   `form:"category_id"`
	TagID      uint   `form:"tag_id"`
	AuthorID   uint   `form:"author_id"`
	Search     string `form:"search"`
}

type PageParams struct {
	Page    int `form:"page"`
	PerPage int `form:"per_page"`
}

type FeedbackListParams struct {
	Page     int  `form:"page"`
	PerPage  int  `form:"per_page"`
	MinScore *int `form:"min_score"`
}

type AuthorSummary struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type CategorySummary struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type TagSummary struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type ArticleDetail struct {
	ID        uint            `json:"id"`
	Title     string          `json:"title"`
	Content   string          `json:"content"`
	Author    AuthorSummary   `json:"author"`
	Category  CategorySummary `json:"category"`
	Tags      []TagSummary    `json:"tags"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ArticleListItem carries the full content next to the excerpt so a list
// page can open an article without a second request.
type ArticleListItem struct {
	ArticleDetail
	Excerpt string `json:"excerpt"`
}

type ArticleListResponse struct {
	Articles []ArticleListItem `json:"articles"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PerPage  int               `json:"per_page"`
	Pages    int               `json:"pages"`
}

type TagArticleItem struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	Excerpt   string    `json:"excerpt"`
	Author    string    `json:"author"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"created_at"`
}

type TagArticlesResponse struct {
	Tag      string           `json:"tag"`
	Articles []TagArticleItem `json:"articles"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PerPage  int              `json:"per_page"`
	Pages    int              `json:"pages"`
}

func NewArticleDetail(a Article) ArticleDetail {
	tags := make([]TagSummary, 0, len(a.Tags))
	for _, t := range a.Tags {
		tags = append(tags, TagSummary{ID: t.ID, Name: t.Name})
	}
	return ArticleDetail{
		ID:      a.ID,
		Title:   a.Title,
		Content: a.Content,
		Author: AuthorSummary{
			ID:       a.Author.ID,
			Username: a.Author.Username,
			Email:    a.Author.Email,
		},
		Category: CategorySummary{
			ID:          a.Category.ID,
			Name:        a.Category.Name,
			Description: a.Category.Description,
		},
		Tags:      tags,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func NewArticleListItem(a Article) ArticleListItem {
	return ArticleListItem{
		ArticleDetail: NewArticleDetail(a),
		Excerpt:       Excerpt(a.Content, ListExcerptLength),
	}
}

func NewTagArticleItem(a Article) TagArticleItem {
	return TagArticleItem{
		ID:        a.ID,
		Title:     a.Title,
		Excerpt:   Excerpt(a.Content, ByTagExcerptLength),
		Author:    a.Author.Username,
		Category:  a.Category.Name,
		CreatedAt: a.CreatedAt,
	}
}

type UserListItem struct {
	ID           uint      `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Role         UserRole  `json:"role"`
	ArticleCount int64     `json:"article_count"`
	CreatedAt    time.Time `json:"created_at"`
}

type UserArticleSummary struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"created_at"`
}

type UserDetail struct {
	ID        uint                 `json:"id"`
	Username  string               `json:"username"`
	Email     string               `json:"email"`
	Role      UserRole             `json:"role"`
	CreatedAt time.Time            `json:"created_at"`
	Articles  []UserArticleSummary `json:"articles"`
}

type CategoryListItem struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	ArticleCount int64  `json:"article_count"`
}

type TagListItem struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	ArticleCount int64  `json:"article_count"`
}

type FeedbackUserSummary struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

type FeedbackEntry struct {
	ID               uint                 `json:"id"`
	HelpfulnessScore int                  `json:"helpfulness_score"`
	Comment          string               `json:"comment"`
	CreatedAt        time.Time            `json:"created_at"`
	IsAnonymous      bool                 `json:"is_anonymous"`
	User             *FeedbackUserSummary `json:"user,omitempty"`
}

func NewFeedbackEntry(f Feedback) FeedbackEntry {
	entry := FeedbackEntry{
		ID:               f.ID,
		HelpfulnessScore: f.HelpfulnessScore,
		Comment:          f.Comment,
		CreatedAt:        f.CreatedAt,
		IsAnonymous:      f.UserID == nil,
	}
	if f.UserID != nil && f.User != nil {
		entry.User = &FeedbackUserSummary{ID: f.User.ID, Username: f.User.Username}
	}
	return entry
}

type FeedbackStatistics struct {
	TotalFeedback    int64   `json:"total_feedback"`
	AverageScore     float64 `json:"average_score"`
	PositiveFeedback int64   `json:"positive_feedback"`
}

type ArticleRef struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
}

// ArticleFeedbackPage is one page of feedback plus whole-article statistics.
type ArticleFeedbackPage struct {
	Article    ArticleRef         `json:"article"`
	Feedback   []FeedbackEntry    `json:"feedback"`
	Statistics FeedbackStatistics `json:"statistics"`
	Total      int64              `json:"-"`
	Pagination Pagination         `json:"-"`
}

type FeedbackSummary struct {
	ArticleID          uint          `json:"article_id"`
	ArticleTitle       string        `json:"article_title"`
	TotalFeedback      int64         `json:"total_feedback"`
	AverageScore       float64       `json:"average_score"`
	ScoreBreakdown     map[int]int64 `json:"score_breakdown"`
	PositivePercentage *float64      `json:"positive_percentage,omitempty"`
	Message            string        `json:"message,omitempty"`
}

type SubmitFeedbackResponse struct {
	Message          string `json:"message"`
	FeedbackID       uint   `json:"feedback_id"`
	ArticleID        uint   `json:"article_id"`
	HelpfulnessScore int    `json:"helpfulness_score"`
	IsAnonymous      bool   `json:"is_anonymous"`
	UserID           *uint  `json:"user_id,omitempty"`
}

type UserFeedbackArticle struct {
	ID       uint   `json:"id"`
	Title    string `json:"title"`
	Category string `json:"category"`
}

type UserFeedbackEntry struct {
	ID               uint                `json:"id"`
	Article          UserFeedbackArticle `json:"article"`
	HelpfulnessScore int                 `json:"helpfulness_score"`
	Comment          string              `json:"comment"`
	CreatedAt        time.Time           `json:"created_at"`
}

func NewUserFeedbackEntry(f Feedback) UserFeedbackEntry {
	entry := UserFeedbackEntry{
		ID:               f.ID,
		HelpfulnessScore: f.HelpfulnessScore,
		Comment:          f.Comment,
		CreatedAt:        f.CreatedAt,
	}
	if f.Article != nil {
		entry.Article = UserFeedbackArticle{
			ID:       f.Article.ID,
			Title:    f.Article.Title,
			Category: f.Article.Category.Name,
		}
	}
	return entry
}

type UserFeedbackPage struct {
	User     FeedbackUserSummary `json:"user"`
	Feedback []UserFeedbackEntry `json:"feedback"`
	Total    int64               `json:"total_feedback"`
	Page     int                 `json:"page"`
	PerPage  int                 `json:"per_page"`
	Pages    int                 `json:"pages"`
}
