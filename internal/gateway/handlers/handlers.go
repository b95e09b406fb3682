// Package handlers holds the gin HTTP handlers. Handlers bind input,
// call the matching service and translate sentinel errors to statuses;
// all business rules live in the services.
package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Pankaj72885/care.xyz/internal/apperr"
)

func respondErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		log.Printf("[http] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// pageParams reads 1-based page/page_size query params and returns the
// 0-based page the repositories expect.
func pageParams(c *gin.Context) (page, size int32) {
	p, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	s, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if p < 1 {
		p = 1
	}
	if s < 1 || s > 100 {
		s = 20
	}
	return int32(p - 1), int32(s)
}

func callerID(c *gin.Context) string { return c.GetString("sub") }

func isAdmin(c *gin.Context) bool { return c.GetString("role") == "ADMIN" }
