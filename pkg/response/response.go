package response

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ErrorBody is the JSON shape of every non-2xx answer.
type ErrorBody struct {
	Message   string `json:"message"`
	ErrorKind string `json:"errorKind"`
}

const (
	KindUnauthenticated = "UNAUTHENTICATED"
	KindForbidden       = "FORBIDDEN"
	KindValidation      = "VALIDATION"
	KindNotFound        = "NOT_FOUND"
	KindConflict        = "CONFLICT"
	KindRateLimited     = "RATE_LIMITED"
	KindInternal        = "INTERNAL"
)

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

func Error(c *gin.Context, httpStatus int, kind string, message string) {
	c.JSON(httpStatus, ErrorBody{Message: message, ErrorKind: kind})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, KindValidation, message)
}

func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, KindUnauthenticated, message)
}

func Forbidden(c *gin.Context, message string) {
	Error(c, http.StatusForbidden, KindForbidden, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, KindNotFound, message)
}

func Conflict(c *gin.Context, message string) {
	Error(c, http.StatusConflict, KindConflict, message)
}

func TooManyRequests(c *gin.Context, retryAfterSeconds int) {
	c.Header("Retry-After", strconv.Itoa(retryAfterSeconds))
	Error(c, http.StatusTooManyRequests, KindRateLimited, "Troppi tentativi, riprova più tardi")
}

func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, KindInternal, message)
}
