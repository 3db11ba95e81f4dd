package models

import (
	"time"
)

const (
	MinHelpfulnessScore = 1
	MaxHelpfulnessScore = 5
)

// Feedback is a helpfulness rating on an article. UserID is nil for
// anonymous entries and for entries whose author was deleted.
type Feedback struct {
	ID               uint      `json:"id" gorm:"primarykey"`
	ArticleID        uint      `json:"article_id" gorm:"not null;uniqueIndex:unique_feedback_article_user"`
	Article          *Article  `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	UserID           *uint     `json:"user_id" gorm:"uniqueIndex:unique_feedback_article_user;index"`
	User             *User     `json:"-" gorm:"constraint:OnDelete:SET NULL"`
	HelpfulnessScore int       `json:"helpfulness_score" gorm:"not null;check:chk_feedback_score,helpfulness_score >= 1 AND helpfulness_score <= 5"`
	Comment          string    `json:"comment" gorm:"type:text"`
	CreatedAt        time.Time `json:"created_at" gorm:"index"`
}

func (Feedback) TableName() string {
	return "feedback"
}

// FeedbackStats is the aggregate view of all feedback on one article.
type FeedbackStats struct {
	Total     int64
	Sum       int64
	Breakdown map[int]int64
}

// Average returns the mean score rounded to two decimals, or 0 when empty.
func (s FeedbackStats) Average() float64 {
	if s.Total == 0 {
		return 0
	}
	return Round2(float64(s.Sum) / float64(s.Total))
}

// Positive is the number of entries scoring 4 or 5.
func (s FeedbackStats) Positive() int64 {
	return s.Breakdown[4] + s.Breakdown[5]
}

// PositivePercentage is undefined (nil) when there is no feedback.
func (s FeedbackStats) PositivePercentage() *float64 {
	if s.Total == 0 {
		return nil
	}
	pct := Round2(float64(s.Positive()) / float64(s.Total) * 100)
	return &pct
}
