package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"dailydiet/common"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// CookieSettings controls the session cookie set on bootstrap.
type CookieSettings struct {
	Name   string
	MaxAge int // seconds
	Secure bool
}

func (s CookieSettings) set(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.Name, token, s.MaxAge, "/", "", s.Secure, true)
}

// respondError maps service errors onto status codes. Unknown errors are logged
// and reported without detail.
func respondError(c *gin.Context, log logrus.FieldLogger, err error) {
	var ve *common.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error(), "fields": ve.Fields})
	case errors.Is(err, common.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Meal not found"})
	case errors.Is(err, common.ErrSessionExists):
		c.JSON(http.StatusForbidden, gin.H{"error": "Cannot create a new session because you already have one"})
	case errors.Is(err, common.ErrExportDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		log.WithError(err).WithField("path", c.FullPath()).Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// bindJSON decodes the body into dst. Type mismatches are reported as a
// validation error naming the offending field.
func bindJSON(c *gin.Context, dst any) error {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return &common.ValidationError{Fields: []string{typeErr.Field}}
	}
	if errors.Is(err, io.EOF) {
		// empty body: let the caller's validation list every required field
		return nil
	}
	return err
}
