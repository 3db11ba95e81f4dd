package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"knowledge-base-api/auth"
	"knowledge-base-api/models"
	"knowledge-base-api/repositories"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestStore opens a private in-memory database with the full schema.
func newTestStore(t *testing.T) *repositories.Store {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, models.AutoMigrate(db))
	return repositories.NewStore(db)
}

func testJWT() *auth.JWTManager {
	return auth.NewJWTManager("test-secret", 24*time.Hour)
}

func seedUser(t *testing.T, store *repositories.Store, username string, role models.UserRole) *models.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: string(hashed),
		Role:     role,
	}
	require.NoError(t, store.Users.Create(context.Background(), user))
	return user
}

func seedCategory(t *testing.T, store *repositories.Store, name string) *models.Category {
	t.Helper()
	category := &models.Category{Name: name, Description: name + " articles"}
	require.NoError(t, store.Categories.Create(context.Background(), category))
	return category
}

func seedTag(t *testing.T, store *repositories.Store, name string) *models.Tag {
	t.Helper()
	tag := &models.Tag{Name: name}
	require.NoError(t, store.Tags.Create(context.Background(), tag))
	return tag
}

func seedArticle(t *testing.T, svc ArticleService, title string, authorID, categoryID uint, tagIDs ...uint) *models.ArticleDetail {
	t.Helper()
	article, err := svc.CreateArticle(context.Background(), models.CreateArticleRequest{
		Title:      title,
		Content:    fmt.Sprintf("Content of %s", title),
		AuthorID:   &authorID,
		CategoryID: &categoryID,
		TagIDs:     tagIDs,
	})
	require.NoError(t, err)
	return article
}

func countRows(t *testing.T, store *repositories.Store, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	q := store.DB().Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}

func intPtr(v int) *int       { return &v }
func uintPtr(v uint) *uint    { return &v }
func strPtr(v string) *string { return &v }

func tagNames(tags []models.TagSummary) []string {
	names := make([]string, 0, len(tags))
	for _, tag := range tags {
		names = append(names, tag.Name)
	}
	return names
}
