package handlers

import (
	"net/http"

	"knowledge-base-api/helper"
	"knowledge-base-api/models"
	"knowledge-base-api/services"

	"github.com/gin-gonic/gin"
)

type ArticleHandler struct {
	articleService services.ArticleService
	Helper         *helper.HTTPHelper
}

func NewArticleHandler(articleService services.ArticleService, h *helper.HTTPHelper) *ArticleHandler {
	return &ArticleHandler{articleService: articleService, Helper: h}
}

func (h *ArticleHandler) GetArticles(c *gin.Context) {
	var params models.ArticleListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		h.Helper.SendBadRequest(c, "Invalid query parameters")
		return
	}

	res, err := h.articleService.GetArticles(c.Request.Context(), params)
	if err != nil {
		h.Helper.SendError(c, err)
		return
	}

	h.Helper.SendSuccess(c, http.StatusOK, res)
}

func (h *ArticleHandler) GetArticle(c *gin.Context) {
	id, ok := h.Helper.ParamID(c, "id")
	if !ok {
		return
	}

	article, err := h.articleService.GetArticle(c.Request.Context(), id)
	if err != nil {
		h.Helper.SendError(c, err)
		return
	}

	h.Helper.SendSuccess(c, http.StatusOK, article)
}

func (h *ArticleHandler) GetArticlesByTag(c *gin.Context) {
	var params models.PageParams
	if err := c.ShouldBindQuery(&params); err != nil {
		h.Helper.SendBadRequest(c, "Invalid query parameters")
		return
	}

	res, err := h.articleService.GetArticlesByTag(c.Request.Context(), c.Param("name"), params)
	if err != nil {
		h.Helper.SendError(c, err)
		return
	}

	h.Helper.SendSuccess(c, http.StatusOK, res)
}

func (h *ArticleHandler) CreateArticle(c *gin.Context) {
	var req models.CreateArticleRequest
	if !h.Helper.BindJSON(c, &req) {
		return
	}

	article, err := h.articleService.CreateArticle(c.Request.Context(), req)
	if err != nil {
		h.Helper.SendError(c, err)
		return
	}

	h.Helper.SendSuccess(c, http.StatusCreated, gin.H{
		"message": "Article created successfully",
		"article": article,
	})
}

func (h *ArticleHandler) UpdateArticle(c *gin.Context) {
	id, ok := h.Helper.ParamID(c, "id")
	if !ok {
		return
	}

	var req models.UpdateArticleRequest
	if !h.Helper.BindJSON(c, &req) {
		return
	}

	article, err := h.articleService.UpdateArticle(c.Request.Context(), id, req)
	if err != nil {
		h.Helper.SendError(c, err)
		return
	}

	h.Helper.SendSuccess(c, http.StatusOK, gin.H{
		"message": "Article updated successfully",
		"article": article,
	})
}

func (h *ArticleHandler) DeleteArticle(c *gin.Context) {
	id, ok := h.Helper.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.articleService.DeleteArticle(c.Request.Context(), id); err != nil {
		h.Helper.SendError(c, err)
		return
	}

	h.Helper.SendSuccess(c, http.StatusOK, gin.H{
		"message":            "Article deleted successfully",
		"deleted_article_id": id,
	})
}
