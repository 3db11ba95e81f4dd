package handlers

import (
	"net/http"

	"knowledge-base-api/helper"
	"knowledge-base-api/models"
	"knowledge-base-api/services"

	"github.com/gin-gonic/gin"
)

type FeedbackHandler struct {
	feedbackService services.FeedbackService
	Helper          *helper.HTTPHelper
}

func NewFeedbackHandler(feedbackService services.FeedbackService, h *helper.HTTPHelper) *FeedbackHandler {
	return &FeedbackHandler{feedbackService: feedbackService, Helper: h}
}

func (h *FeedbackHandler) SubmitFeedback(c *gin.Context) {
	articleID, ok := h.Helper.ParamID(c, "id")
	if !ok {
		return
	}

	var req models.SubmitFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Helper.SendBadRequest(c, "Helpfulness score must be an integer between 1 and 5")
		return
	}

	res, err := h.feedbackService.Submit(c.Request.Context(), articleID, req)
	if err != nil {
		h.Helper.SendError(c, err)
		return
	}

	h.Helper.SendSuccess(c, http.StatusCreated, res)
}

func (h *FeedbackHandler) GetArticleFeedback(c *gin.Context) {
	articleID, ok := h.Helper.ParamID(c, "id")
	if !ok {
		return
	}

	var params models.FeedbackListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		h.Helper.SendBadRequest(c, "Invalid query parameters")
		return
	}

	page, err := h.feedbackService.ListForArticle(c.Request.Context(), articleID, params)
	if err != nil {
		h.Helper.SendError(c, err)
		return
	}

	h.Helper.SendSuccess(c, http.StatusOK, gin.H{
		"article":    page.Article,
		"feedback":   page.Feedback,
		"statistics": page.Statistics,
		"pagination": h.Helper.GeneratePaging(c, page.Pagination.Page, page.Pagination.PerPage, page.Total),
	})
}

func (h *FeedbackHandler) GetFeedbackSummary(c *gin.Context) {
	articleID, ok := h.Helper.ParamID(c, "id")
	if !ok {
		return
	}

	summary, err := h.feedbackService.Summary(c.Request.Context(), articleID)
	if err != nil {
		h.Helper.SendError(c, err)
		return
	}

	h.Helper.SendSuccess(c, http.StatusOK, summary)
}

func (h *FeedbackHandler) GetUserFeedback(c *gin.Context) {
	userID, ok := h.Helper.ParamID(c, "id")
	if !ok {
		return
	}

	var params models.PageParams
	if err := c.ShouldBindQuery(&params); err != nil {
		h.Helper.SendBadRequest(c, "Invalid query parameters")
		return
	}

	page, err := h.feedbackService.ListForUser(c.Request.Context(), userID, params)
	if err != nil {
		h.Helper.SendError(c, err)
		return
	}

	h.Helper.SendSuccess(c, http.StatusOK, page)
}

func (h *FeedbackHandler) DeleteFeedback(c *gin.Context) {
	id, ok := h.Helper.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.feedbackService.Delete(c.Request.Context(), id); err != nil {
		h.Helper.SendError(c, err)
		return
	}

	h.Helper.SendSuccess(c, http.StatusOK, gin.H{
		"message":             "Feedback deleted successfully",
		"deleted_feedback_id": id,
	})
}
