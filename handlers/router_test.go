package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"knowledge-base-api/auth"
	"knowledge-base-api/helper"
	"knowledge-base-api/middleware"
	"knowledge-base-api/models"
	"knowledge-base-api/repositories"
	"knowledge-base-api/services"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/suite"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type IntegrationTestSuite struct {
	suite.Suite
	db         *gorm.DB
	store      *repositories.Store
	jwtManager *auth.JWTManager
	router     *gin.Engine

	admin    *models.User
	editor   *models.User
	viewer   *models.User
	category *models.Category
	tag      *models.Tag
}

func TestIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(IntegrationTestSuite))
}

func (suite *IntegrationTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
}

func (suite *IntegrationTestSuite) SetupTest() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	suite.Require().NoError(err)
	sqlDB, err := db.DB()
	suite.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)
	suite.Require().NoError(models.AutoMigrate(db))

	suite.db = db
	suite.store = repositories.NewStore(db)
	suite.jwtManager = auth.NewJWTManager("test-secret", 24*time.Hour)
	suite.router = suite.newRouter(nil)

	ctx := context.Background()
	suite.admin = suite.seedUser("admin", models.RoleAdmin)
	suite.editor = suite.seedUser("editor", models.RoleEditor)
	suite.viewer = suite.seedUser("viewer", models.RoleViewer)

	suite.category = &models.Category{Name: "Guides", Description: "How we work"}
	suite.Require().NoError(suite.store.Categories.Create(ctx, suite.category))
	suite.tag = &models.Tag{Name: "go"}
	suite.Require().NoError(suite.store.Tags.Create(ctx, suite.tag))
}

func (suite *IntegrationTestSuite) TearDownTest() {
	if sqlDB, err := suite.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func (suite *IntegrationTestSuite) newRouter(limiter *middleware.RateLimiter) *gin.Engine {
	h := helper.New()
	identityService := services.NewIdentityService(suite.store, suite.jwtManager, nil)

	return NewRouter(Handlers{
		Articles:   NewArticleHandler(services.NewArticleService(suite.store), h),
		Feedback:   NewFeedbackHandler(services.NewFeedbackService(suite.store), h),
		Auth:       NewAuthHandler(services.NewAuthService(suite.store, suite.jwtManager), identityService, h),
		Users:      NewUserHandler(services.NewUserService(suite.store), h),
		Tags:       NewTagHandler(services.NewTagService(suite.store), h),
		Categories: NewCategoryHandler(services.NewCategoryService(suite.store), h),
	}, RouterOptions{
		JWTManager:  suite.jwtManager,
		CORSOrigins: []string{"*"},
		AuthLimiter: limiter,
	})
}

func (suite *IntegrationTestSuite) seedUser(username string, role models.UserRole) *models.User {
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "not-a-hash",
		Role:     role,
	}
	suite.Require().NoError(suite.store.Users.Create(context.Background(), user))
	return user
}

func (suite *IntegrationTestSuite) tokenFor(user *models.User) string {
	token, err := suite.jwtManager.Generate(user)
	suite.Require().NoError(err)
	return token
}

func (suite *IntegrationTestSuite) do(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	return suite.doWith(suite.router, method, path, body, token)
}

func (suite *IntegrationTestSuite) doWith(router *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		suite.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func (suite *IntegrationTestSuite) decode(w *httptest.ResponseRecorder) map[string]interface{} {
	var out map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (suite *IntegrationTestSuite) createArticle(title string, tagIDs ...uint) uint {
	w := suite.do(http.MethodPost, "/articles", map[string]interface{}{
		"title":       title,
		"content":     "Content of " + title,
		"author_id":   suite.editor.ID,
		"category_id": suite.category.ID,
		"tag_ids":     tagIDs,
	}, "")
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	article := suite.decode(w)["article"].(map[string]interface{})
	return uint(article["id"].(float64))
}

func (suite *IntegrationTestSuite) TestIndexAndHealth() {
	w := suite.do(http.MethodGet, "/", nil, "")
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("Knowledge Base API is running!", suite.decode(w)["message"])

	w = suite.do(http.MethodGet, "/health", nil, "")
	suite.Equal(http.StatusOK, w.Code)
	suite.JSONEq(`{"status":"healthy"}`, w.Body.String())

	w = suite.do(http.MethodGet, "/metrics", nil, "")
	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), "kb_http_requests_total")

	w = suite.do(http.MethodGet, "/nowhere", nil, "")
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *IntegrationTestSuite) TestArticleLifecycle() {
	id := suite.createArticle("Concurrency in Go", suite.tag.ID)

	w := suite.do(http.MethodGet, fmt.Sprintf("/articles/%d", id), nil, "")
	suite.Require().Equal(http.StatusOK, w.Code)
	article := suite.decode(w)
	suite.Equal("Concurrency in Go", article["title"])
	suite.Len(article["tags"], 1)
	suite.NotContains(article, "excerpt")

	w = suite.do(http.MethodGet, "/articles/tag/go", nil, "")
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Equal(float64(1), suite.decode(w)["total"])

	w = suite.do(http.MethodPut, fmt.Sprintf("/articles/%d", id), map[string]interface{}{"tag_ids": []uint{}}, "")
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	updated := suite.decode(w)["article"].(map[string]interface{})
	suite.Empty(updated["tags"])

	w = suite.do(http.MethodPut, fmt.Sprintf("/articles/%d", id), map[string]interface{}{}, "")
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.do(http.MethodDelete, fmt.Sprintf("/articles/%d", id), nil, "")
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Equal(float64(id), suite.decode(w)["deleted_article_id"])

	w = suite.do(http.MethodGet, fmt.Sprintf("/articles/%d", id), nil, "")
	suite.Equal(http.StatusNotFound, w.Code)
	suite.JSONEq(`{"error":"Article not found"}`, w.Body.String())
}

func (suite *IntegrationTestSuite) TestArticleList() {
	for i := 1; i <= 12; i++ {
		suite.createArticle(fmt.Sprintf("Article %d", i))
	}

	w := suite.do(http.MethodGet, "/articles?page=2&per_page=5", nil, "")
	suite.Require().Equal(http.StatusOK, w.Code)
	body := suite.decode(w)
	suite.Len(body["articles"], 5)
	suite.Equal(float64(12), body["total"])
	suite.Equal(float64(3), body["pages"])

	first := body["articles"].([]interface{})[0].(map[string]interface{})
	suite.Contains(first, "excerpt")
	suite.Contains(first, "content")

	w = suite.do(http.MethodGet, "/articles?page=abc", nil, "")
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.do(http.MethodGet, "/articles/abc", nil, "")
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *IntegrationTestSuite) TestCreateArticle_Errors() {
	w := suite.do(http.MethodPost, "/articles", map[string]interface{}{"content": "no title"}, "")
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(suite.decode(w)["fields"], "title")

	w = suite.do(http.MethodPost, "/articles", map[string]interface{}{
		"title": "t", "content": "c", "category_id": 999,
	}, "")
	suite.Equal(http.StatusNotFound, w.Code)
	suite.JSONEq(`{"error":"Category not found"}`, w.Body.String())
}

func (suite *IntegrationTestSuite) TestFeedbackFlow() {
	id := suite.createArticle("Rated")
	path := fmt.Sprintf("/articles/%d/feedback", id)

	w := suite.do(http.MethodGet, path+"/summary", nil, "")
	suite.Require().Equal(http.StatusOK, w.Code)
	summary := suite.decode(w)
	suite.Equal(float64(0), summary["total_feedback"])
	suite.NotContains(summary, "positive_percentage")
	suite.Equal("No feedback yet", summary["message"])

	for _, score := range []interface{}{0, 6, 3.5, "four"} {
		w = suite.do(http.MethodPost, path, map[string]interface{}{"helpfulness_score": score}, "")
		suite.Equal(http.StatusBadRequest, w.Code, "score %v", score)
	}

	w = suite.do(http.MethodPost, path, map[string]interface{}{"helpfulness_score": 5, "user_id": suite.viewer.ID, "comment": "nice"}, "")
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	created := suite.decode(w)
	suite.Equal(false, created["is_anonymous"])

	w = suite.do(http.MethodPost, path, map[string]interface{}{"helpfulness_score": 2, "user_id": suite.viewer.ID}, "")
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal(created["feedback_id"], suite.decode(w)["existing_feedback_id"])

	w = suite.do(http.MethodPost, path, map[string]interface{}{"helpfulness_score": 2}, "")
	suite.Require().Equal(http.StatusCreated, w.Code)
	suite.Equal(true, suite.decode(w)["is_anonymous"])

	w = suite.do(http.MethodGet, path+"/summary", nil, "")
	summary = suite.decode(w)
	suite.Equal(float64(2), summary["total_feedback"])
	suite.Equal(3.5, summary["average_score"])
	suite.Equal(float64(50), summary["positive_percentage"])

	w = suite.do(http.MethodGet, path+"?per_page=1", nil, "")
	suite.Require().Equal(http.StatusOK, w.Code)
	list := suite.decode(w)
	suite.Len(list["feedback"], 1)
	pagination := list["pagination"].(map[string]interface{})
	suite.Equal(float64(2), pagination["pages"])
	suite.NotEmpty(pagination["links"].(map[string]interface{})["next"])
	stats := list["statistics"].(map[string]interface{})
	suite.Equal(float64(1), stats["positive_feedback"])

	w = suite.do(http.MethodGet, fmt.Sprintf("/users/%d/feedback", suite.viewer.ID), nil, "")
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Equal(float64(1), suite.decode(w)["total_feedback"])

	feedbackPath := fmt.Sprintf("/feedback/%v", created["feedback_id"])
	w = suite.do(http.MethodDelete, feedbackPath, nil, "")
	suite.Equal(http.StatusUnauthorized, w.Code)
	w = suite.do(http.MethodDelete, feedbackPath, nil, suite.tokenFor(suite.viewer))
	suite.Equal(http.StatusForbidden, w.Code)
	w = suite.do(http.MethodDelete, feedbackPath, nil, suite.tokenFor(suite.editor))
	suite.Equal(http.StatusOK, w.Code)
	w = suite.do(http.MethodDelete, feedbackPath, nil, suite.tokenFor(suite.editor))
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *IntegrationTestSuite) TestRegisterLoginProfile() {
	w := suite.do(http.MethodPost, "/register", map[string]interface{}{
		"username": "newbie", "email": "newbie@example.com", "password": "password123",
	}, "")
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	user := suite.decode(w)["user"].(map[string]interface{})
	suite.Equal("viewer", user["role"])
	suite.NotContains(user, "password")

	w = suite.do(http.MethodPost, "/register", map[string]interface{}{
		"username": "newbie", "email": "other@example.com", "password": "password123",
	}, "")
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.JSONEq(`{"error":"Username already exists"}`, w.Body.String())

	w = suite.do(http.MethodPost, "/register", map[string]interface{}{
		"username": "x", "email": "not-an-email", "password": "1",
	}, "")
	suite.Equal(http.StatusBadRequest, w.Code)
	fields := suite.decode(w)["fields"].(map[string]interface{})
	suite.Contains(fields, "username")
	suite.Contains(fields, "email")
	suite.Contains(fields, "password")

	w = suite.do(http.MethodPost, "/login", map[string]interface{}{"username": "newbie", "password": "wrong"}, "")
	suite.Equal(http.StatusUnauthorized, w.Code)

	w = suite.do(http.MethodPost, "/login", map[string]interface{}{"username": "newbie", "password": "password123"}, "")
	suite.Require().Equal(http.StatusOK, w.Code)
	token := suite.decode(w)["token"].(string)

	w = suite.do(http.MethodGet, "/profile", nil, token)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Equal("newbie", suite.decode(w)["username"])

	w = suite.do(http.MethodGet, "/profile", nil, "")
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *IntegrationTestSuite) TestSync() {
	body := map[string]interface{}{"external_id": "ext-1", "email": "viewer@corp.example"}

	w := suite.do(http.MethodPost, "/users/sync", body, "")
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	created := suite.decode(w)
	suite.Equal("created", created["outcome"])
	suite.Equal("viewer1", created["user"].(map[string]interface{})["username"])

	claims, err := suite.jwtManager.Parse(created["token"].(string))
	suite.Require().NoError(err)
	suite.Equal(uint(created["user"].(map[string]interface{})["id"].(float64)), claims.UserID)

	w = suite.do(http.MethodPost, "/users/sync", body, "")
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Equal("resolved", suite.decode(w)["outcome"])

	w = suite.do(http.MethodPost, "/users/sync", map[string]interface{}{"email": "a@example.com"}, "")
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *IntegrationTestSuite) TestUsers() {
	suite.createArticle("Editor's article")

	w := suite.do(http.MethodGet, "/users", nil, "")
	suite.Require().Equal(http.StatusOK, w.Code)
	var users []models.UserListItem
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &users))
	suite.Len(users, 3)

	w = suite.do(http.MethodGet, fmt.Sprintf("/users/%d", suite.editor.ID), nil, "")
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Len(suite.decode(w)["articles"], 1)

	path := fmt.Sprintf("/users/%d", suite.editor.ID)
	w = suite.do(http.MethodPut, path, map[string]interface{}{"username": "renamed"}, suite.tokenFor(suite.viewer))
	suite.Equal(http.StatusForbidden, w.Code)

	w = suite.do(http.MethodPut, path, map[string]interface{}{"username": "renamed"}, suite.tokenFor(suite.editor))
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	suite.Equal("renamed", suite.decode(w)["user"].(map[string]interface{})["username"])

	w = suite.do(http.MethodDelete, path, nil, suite.tokenFor(suite.editor))
	suite.Equal(http.StatusForbidden, w.Code)

	w = suite.do(http.MethodDelete, path, nil, suite.tokenFor(suite.admin))
	suite.Require().Equal(http.StatusOK, w.Code)

	w = suite.do(http.MethodGet, "/articles", nil, "")
	suite.Equal(float64(0), suite.decode(w)["total"])
}

func (suite *IntegrationTestSuite) TestCategoriesAndTags() {
	w := suite.do(http.MethodPost, "/categories", map[string]interface{}{"name": "FAQ"}, suite.tokenFor(suite.editor))
	suite.Equal(http.StatusForbidden, w.Code)

	w = suite.do(http.MethodPost, "/categories", map[string]interface{}{"name": "FAQ"}, suite.tokenFor(suite.admin))
	suite.Require().Equal(http.StatusCreated, w.Code)

	w = suite.do(http.MethodPost, "/tags", map[string]interface{}{"name": "sql"}, suite.tokenFor(suite.editor))
	suite.Require().Equal(http.StatusCreated, w.Code)
	w = suite.do(http.MethodPost, "/tags", map[string]interface{}{"name": "sql"}, suite.tokenFor(suite.editor))
	suite.Equal(http.StatusBadRequest, w.Code)

	suite.createArticle("Tagged", suite.tag.ID)

	w = suite.do(http.MethodGet, "/tags", nil, "")
	suite.Require().Equal(http.StatusOK, w.Code)
	var tags []models.TagListItem
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &tags))
	suite.Len(tags, 2)

	w = suite.do(http.MethodGet, "/categories", nil, "")
	suite.Require().Equal(http.StatusOK, w.Code)
	var categories []models.CategoryListItem
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &categories))
	suite.Len(categories, 2)

	w = suite.do(http.MethodDelete, fmt.Sprintf("/categories/%d", suite.category.ID), nil, suite.tokenFor(suite.admin))
	suite.Require().Equal(http.StatusOK, w.Code)

	w = suite.do(http.MethodGet, "/articles", nil, "")
	suite.Equal(float64(0), suite.decode(w)["total"])
}

func (suite *IntegrationTestSuite) TestAuthRateLimit() {
	router := suite.newRouter(middleware.NewRateLimiter(rate.Limit(0.01), 1))
	body := map[string]interface{}{"username": "nobody", "password": "secret"}

	w := suite.doWith(router, http.MethodPost, "/login", body, "")
	suite.Equal(http.StatusUnauthorized, w.Code)

	w = suite.doWith(router, http.MethodPost, "/login", body, "")
	suite.Equal(http.StatusTooManyRequests, w.Code)
}
