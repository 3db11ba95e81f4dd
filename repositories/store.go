package repositories

import (
	"context"

	"gorm.io/gorm"
)

// Store bundles every repository over one gorm handle. A Store built
// inside Transaction shares the transaction across all repositories.
type Store struct {
	db         *gorm.DB
	Users      UserRepository
	Categories CategoryRepository
	Tags       TagRepository
	Articles   ArticleRepository
	Feedback   FeedbackRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:         db,
		Users:      NewUserRepository(db),
		Categories: NewCategoryRepository(db),
		Tags:       NewTagRepository(db),
		Articles:   NewArticleRepository(db),
		Feedback:   NewFeedbackRepository(db),
	}
}

// Transaction runs fn against a Store bound to a single transaction.
// The transaction is rolled back if fn returns an error or panics.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

func (s *Store) DB() *gorm.DB {
	return s.db
}
