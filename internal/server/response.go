package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the JSON envelope for every API reply. Code 0 means success.
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Details string `json:"details,omitempty"`
}

const (
	codeBadRequest = 10001
	codeValidation = 10002
	codeNotFound   = 10004
	codeInternal   = 50000
)

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{Code: 0, Message: "success", Data: data})
}

func created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, Response{Code: 0, Message: "success", Data: data})
}

func fail(c *gin.Context, status, code int, message string) {
	c.JSON(status, Response{Code: code, Message: message})
}

func failWithDetails(c *gin.Context, status, code int, message, details string) {
	c.JSON(status, Response{Code: code, Message: message, Details: details})
}

func internalError(c *gin.Context, err error) {
	c.Error(err)
	fail(c, http.StatusInternalServerError, codeInternal, "internal server error")
}
