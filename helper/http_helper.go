package helper

import (
	"errors"
	"math"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"knowledge-base-api/logger"
	"knowledge-base-api/models"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"gopkg.in/go-playground/validator.v9"
	en_translations "gopkg.in/go-playground/validator.v9/translations/en"
)

const (
	textError          = `error`
	textInternalError  = `internal server error`
	textValidationFail = `validation failed`
)

// HTTPHelper validates request bodies and writes the JSON error envelope.
type HTTPHelper struct {
	Validate   *validator.Validate
	Translator ut.Translator
}

// New builds a helper whose validation messages are English and keyed by
// the JSON field name.
func New() *HTTPHelper {
	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")

	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = en_translations.RegisterDefaultTranslations(validate, trans)

	return &HTTPHelper{
		Validate:   validate,
		Translator: trans,
	}
}

// GetStatusCode maps a typed domain error to its HTTP status.
func (u *HTTPHelper) GetStatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var (
		validationErr   models.ErrorValidation
		conflictErr     models.ErrorConflict
		unauthorizedErr models.ErrorUnauthorized
		forbiddenErr    models.ErrorForbidden
		notFoundErr     models.ErrorNotFound
	)

	switch {
	case errors.As(err, &validationErr), errors.As(err, &conflictErr):
		return http.StatusBadRequest
	case errors.As(err, &unauthorizedErr):
		return http.StatusUnauthorized
	case errors.As(err, &forbiddenErr):
		return http.StatusForbidden
	case errors.As(err, &notFoundErr):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// SendError writes err with the status GetStatusCode picks. Internal
// failures are logged and replaced by a generic message.
func (u *HTTPHelper) SendError(c *gin.Context, err error) {
	status := u.GetStatusCode(err)
	if status == http.StatusInternalServerError {
		logger.Log.Errorw("request failed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"error", err,
		)
		c.JSON(status, gin.H{textError: textInternalError})
		return
	}

	body := gin.H{textError: err.Error()}
	var conflictErr models.ErrorConflict
	if errors.As(err, &conflictErr) {
		for k, v := range conflictErr.Details {
			body[k] = v
		}
	}
	c.JSON(status, body)
}

// SendSuccess writes data with the given status.
func (u *HTTPHelper) SendSuccess(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

// SendBadRequest ...
func (u *HTTPHelper) SendBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{textError: message})
}

// SendUnauthorizedError ...
func (u *HTTPHelper) SendUnauthorizedError(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, gin.H{textError: message})
}

// SendForbiddenError ...
func (u *HTTPHelper) SendForbiddenError(c *gin.Context, message string) {
	c.JSON(http.StatusForbidden, gin.H{textError: message})
}

// SendNotFoundError ...
func (u *HTTPHelper) SendNotFoundError(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, gin.H{textError: message})
}

// SendValidationError writes every failed rule, translated, per field.
func (u *HTTPHelper) SendValidationError(c *gin.Context, validationErrors validator.ValidationErrors) {
	errorResponse := map[string][]string{}
	errorTranslation := validationErrors.Translate(u.Translator)
	for _, err := range validationErrors {
		errKey := err.Field()
		errorResponse[errKey] = append(errorResponse[errKey], errorTranslation[err.Namespace()])
	}

	c.JSON(http.StatusBadRequest, gin.H{
		textError: textValidationFail,
		"fields":  errorResponse,
	})
}

// BindJSON decodes the body into req and validates it. It writes the error
// response itself and reports whether the handler may continue.
func (u *HTTPHelper) BindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		u.SendBadRequest(c, "invalid request body: "+err.Error())
		return false
	}
	return u.ValidateStruct(c, req)
}

// ValidateStruct runs the validate tags of req.
func (u *HTTPHelper) ValidateStruct(c *gin.Context, req interface{}) bool {
	if err := u.Validate.Struct(req); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			u.SendValidationError(c, validationErrors)
			return false
		}
		u.SendBadRequest(c, err.Error())
		return false
	}
	return true
}

// ParamID parses a positive integer path parameter.
func (u *HTTPHelper) ParamID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		u.SendBadRequest(c, "invalid "+strings.ReplaceAll(name, "_", " "))
		return 0, false
	}
	return uint(id), true
}

// GetPagingUrl rebuilds the current URL with another page, keeping the
// other query parameters.
func (u *HTTPHelper) GetPagingUrl(c *gin.Context, page, perPage int) string {
	r := c.Request
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}

	query := r.URL.Query()
	query.Set("page", strconv.Itoa(page))
	query.Set("per_page", strconv.Itoa(perPage))
	return scheme + "://" + r.Host + r.URL.Path + "?" + query.Encode()
}

// GeneratePaging builds the pagination block with navigation links. Links
// that do not apply are empty strings.
func (u *HTTPHelper) GeneratePaging(c *gin.Context, page, perPage int, totalRecord int64) map[string]interface{} {
	prevURL, nextURL, firstURL, lastURL := "", "", "", ""

	totalPages := 0
	if perPage > 0 {
		totalPages = int(math.Ceil(float64(totalRecord) / float64(perPage)))
	}

	if page > 1 && page <= totalPages {
		prevURL = u.GetPagingUrl(c, page-1, perPage)
		firstURL = u.GetPagingUrl(c, 1, perPage)
	}

	if totalPages > page {
		nextURL = u.GetPagingUrl(c, page+1, perPage)
		lastURL = u.GetPagingUrl(c, totalPages, perPage)
	}

	links := map[string]interface{}{
		"previous": prevURL,
		"next":     nextURL,
		"first":    firstURL,
		"last":     lastURL,
	}

	return map[string]interface{}{
		"page":     page,
		"per_page": perPage,
		"total":    totalRecord,
		"pages":    totalPages,
		"links":    links,
	}
}
