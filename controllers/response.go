package controllers

import (
	"errors"
	"net/http"

	"iris-api/monitor"
	"iris-api/services"

	"github.com/gin-gonic/gin"
)

// Error codes returned in the "code" field of error responses.
const (
	CodeValidation        = "VALIDATION"
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeCapacity          = "CAPACITY"
	CodeNotFound          = "NOT_FOUND"
	CodeAmbiguousLookup   = "AMBIGUOUS_LOOKUP"
	CodeForbidden         = "FORBIDDEN"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeInternal          = "INTERNAL"
)

// classify maps a service error onto its HTTP status and error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest, CodeValidation
	case errors.Is(err, services.ErrInvalidTransition):
		return http.StatusConflict, CodeInvalidTransition
	case errors.Is(err, services.ErrCapacity):
		return http.StatusConflict, CodeCapacity
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, services.ErrAmbiguousLookup):
		return http.StatusConflict, CodeAmbiguousLookup
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden, CodeForbidden
	case errors.Is(err, services.ErrUnauthorized):
		return http.StatusUnauthorized, CodeUnauthorized
	}
	return http.StatusInternalServerError, CodeInternal
}

func respondError(c *gin.Context, err error) {
	status, code := classify(err)
	msg := err.Error()
	if code == CodeInternal {
		_ = c.Error(err)
		msg = "internal server error"
	} else {
		monitor.RecordRejection(code)
	}
	c.JSON(status, gin.H{
		"success": false,
		"error":   msg,
		"code":    code,
	})
}

func badRequest(c *gin.Context, msg string) {
	monitor.RecordRejection(CodeValidation)
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error":   msg,
		"code":    CodeValidation,
	})
}

func respondOK(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}
