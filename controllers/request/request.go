// Package request holds the small binding helpers shared by the handlers.
package request

import (
	"strconv"

	"github.com/Raqibreyaz/EcommerceBackend/apperror"
	"github.com/gin-gonic/gin"
)

// Invalid turns a binding error into a validation error.
func Invalid(err error) error {
	return apperror.Validation("invalid input: %v", err)
}

// ID parses a positive numeric path parameter.
func ID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperror.Validation("invalid %s", name)
	}
	return uint(id), nil
}

// Page reads page and limit query parameters, falling back to defaultLimit.
func Page(c *gin.Context, defaultLimit int) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if err != nil || limit < 1 {
		limit = defaultLimit
	}
	return page, limit
}
