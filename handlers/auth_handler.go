package handlers

import (
	"net/http"

	"knowledge-base-api/helper"
	"knowledge-base-api/middleware"
	"knowledge-base-api/models"
	"knowledge-base-api/services"

	"github.com/gin-gonic/gin"
)

const sessionTokenHeader = "X-Session-Token"

type AuthHandler struct {
	authService     services.AuthService
	identityService services.IdentityService
	Helper          *helper.HTTPHelper
}

func NewAuthHandler(authService services.AuthService, identityService services.IdentityService, h *helper.HTTPHelper) *AuthHandler {
	return &AuthHandler{
		authService:     authService,
		identityService: identityService,
		Helper:          h,
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if !h.Helper.BindJSON(c, &req) {
		return
	}

	response, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		h.Helper.SendError(c, err)
		return
	}

	h.Helper.SendSuccess(c, http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"token":   response.Token,
		"user":    response.User,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if !h.Helper.BindJSON(c, &req) {
		return
	}

	response, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		h.Helper.SendError(c, err)
		return
	}

	h.Helper.SendSuccess(c, http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   response.Token,
		"user":    response.User,
	})
}

func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, _, ok := middleware.CurrentUser(c)
	if !ok {
		h.Helper.SendUnauthorizedError(c, "User not found in context")
		return
	}

	user, err := h.authService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		h.Helper.SendError(c, err)
		return
	}

	h.Helper.SendSuccess(c, http.StatusOK, user)
}

// Sync links an externally authenticated identity to a local user. The body
// may be empty when the session is verified upstream.
func (h *AuthHandler) Sync(c *gin.Context) {
	var req models.SyncRequest
	if c.Request.ContentLength != 0 {
		if !h.Helper.BindJSON(c, &req) {
			return
		}
	}

	creds := services.SessionCredentials{
		SessionToken: c.GetHeader(sessionTokenHeader),
		Cookie:       c.GetHeader("Cookie"),
	}

	response, err := h.identityService.Sync(c.Request.Context(), req, creds)
	if err != nil {
		h.Helper.SendError(c, err)
		return
	}

	status := http.StatusOK
	if response.Outcome == models.SyncCreated {
		status = http.StatusCreated
	}
	h.Helper.SendSuccess(c, status, response)
}
